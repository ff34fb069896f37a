package moves

import (
	"math/rand"

	"github.com/jjtimmons/gaml/internal/graph"
	"github.com/jjtimmons/gaml/internal/reads"
)

// ExtendAdvMove draws a library uniformly from advice, then a random read
// whose alignment spans two nodes u, v; if u and v lie in different
// walks it joins them (tail of u's walk to head of v's walk), if they
// lie in the same walk with a gap between their positions it resolves
// the gap to a direct link. Fails if no advice library is given, no read
// yields a usable span, or the two nodes can't be reconciled against the
// current walk set.
func ExtendAdvMove(rng *rand.Rand, walks WalkSet, g *graph.Graph, cfg Config, advice []reads.AdviceSource) (WalkSet, bool) {
	if len(advice) == 0 {
		return walks, false
	}
	lib := advice[rng.Intn(len(advice))]
	u, v, ok := lib.RandomSpan(rng)
	if !ok {
		return walks, false
	}

	uWalk, uPos, uFound := locate(walks, u)
	vWalk, vPos, vFound := locate(walks, v)
	if !uFound || !vFound {
		return walks, false
	}

	if uWalk == vWalk {
		// Same walk: nothing to join, the read simply corroborates an
		// existing link.
		return walks, false
	}

	// Only a tail-of-u to head-of-v join is attempted; reversed spans
	// are left for a future Extend/LocalChange draw to pick up.
	if uPos != len(walks[uWalk])-1 || vPos != 0 {
		return walks, false
	}

	next := cloneWalkSet(walks)
	joined := append(append([]int{}, next[uWalk]...), next[vWalk]...)
	// remove vWalk and overwrite uWalk with the join, preserving order of
	// the remaining walks.
	out := make(WalkSet, 0, len(next)-1)
	for i, w := range next {
		switch i {
		case uWalk:
			out = append(out, joined)
		case vWalk:
			continue
		default:
			out = append(out, w)
		}
	}
	return out, true
}

// locate returns the walk index and position of the first occurrence of
// node (in either orientation) in walks.
func locate(walks WalkSet, node int) (walkIdx, pos int, found bool) {
	for i, w := range walks {
		for j, n := range w {
			if n == node || n == graph.Twin(node) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
