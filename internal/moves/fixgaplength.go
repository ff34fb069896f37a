package moves

import (
	"math/rand"

	"github.com/jjtimmons/gaml/internal/graph"
)

// FixGapLengthMove picks a gap marker -g inside a walk and proposes a new
// length g' = g + delta for a small nonzero integer perturbation delta in
// [-cfg.GapStepBound, cfg.GapStepBound], clamped so the proposed gap
// never drops below 1 base. Fails if the walk set has no gap markers.
func FixGapLengthMove(rng *rand.Rand, walks WalkSet, g *graph.Graph, cfg Config) (WalkSet, bool) {
	type loc struct{ walk, pos int }
	var gaps []loc
	for i, w := range walks {
		for j, n := range w {
			if _, isGap := graph.ParseGapMarker(n); isGap {
				gaps = append(gaps, loc{i, j})
			}
		}
	}
	if len(gaps) == 0 {
		return walks, false
	}

	bound := cfg.GapStepBound
	if bound <= 0 {
		bound = 5
	}
	pick := gaps[rng.Intn(len(gaps))]
	length, _ := graph.ParseGapMarker(walks[pick.walk][pick.pos])

	delta := 1 + rng.Intn(bound)
	if rng.Intn(2) == 0 {
		delta = -delta
	}
	newLength := length + delta
	if newLength < 1 {
		newLength = 1
	}

	next := cloneWalkSet(walks)
	next[pick.walk][pick.pos] = -newLength
	return next, true
}
