package moves

import (
	"math/rand"

	"github.com/jjtimmons/gaml/internal/graph"
)

// BreakPathMove picks a walk of length >= 2 and splits it at a uniformly
// chosen interior position into two walks. This is the only move
// eligible for annealing (uphill) acceptance, since it is the sole
// topology-reducing move: nothing else in the move set can undo an
// over-greedy join without it.
func BreakPathMove(rng *rand.Rand, walks WalkSet, g *graph.Graph, cfg Config) (WalkSet, bool) {
	var candidates []int
	for i, w := range walks {
		if len(w) >= 2 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return walks, false
	}
	idx := candidates[rng.Intn(len(candidates))]
	w := walks[idx]

	splitAt := 1 + rng.Intn(len(w)-1) // interior position, 1..len(w)-1
	left := append([]int{}, w[:splitAt]...)
	right := append([]int{}, w[splitAt:]...)

	next := make(WalkSet, 0, len(walks)+1)
	for i, ww := range walks {
		if i == idx {
			next = append(next, left, right)
			continue
		}
		next = append(next, append([]int{}, ww...))
	}
	return next, true
}
