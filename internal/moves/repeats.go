package moves

import (
	"math/rand"

	"github.com/jjtimmons/gaml/internal/graph"
)

// occurrence is one (walk, position) pair at which a canonical big-contig
// node id appears.
type occurrence struct {
	walk, pos int
}

// duplicatedBigNodes returns every canonical big-contig node id that
// appears in more than one (walk, position) slot, each mapped to its
// occurrences.
func duplicatedBigNodes(walks WalkSet, g *graph.Graph, threshold int) map[int][]occurrence {
	locs := make(map[int][]occurrence)
	for i, w := range walks {
		for j, n := range w {
			if _, isGap := graph.ParseGapMarker(n); isGap {
				continue
			}
			if g.Node(n).Len() < threshold {
				continue
			}
			c := canonical(n)
			locs[c] = append(locs[c], occurrence{i, j})
		}
	}
	dups := make(map[int][]occurrence)
	for n, occs := range locs {
		if len(occs) > 1 {
			dups[n] = occs
		}
	}
	return dups
}

// FixSomeBigRepsMove finds a big-contig node duplicated across the walk
// set and reconciles one randomly chosen pair of its occurrences by
// merging them down to a single surviving occurrence. Fails if no node
// is duplicated.
func FixSomeBigRepsMove(rng *rand.Rand, walks WalkSet, g *graph.Graph, cfg Config) (WalkSet, bool) {
	dups := duplicatedBigNodes(walks, g, cfg.Threshold)
	if len(dups) == 0 {
		return walks, false
	}

	keys := make([]int, 0, len(dups))
	for n := range dups {
		keys = append(keys, n)
	}
	node := keys[rng.Intn(len(keys))]
	occs := dups[node]

	a := occs[rng.Intn(len(occs))]
	b := a
	for b == a {
		b = occs[rng.Intn(len(occs))]
	}

	next := cloneWalkSet(walks)
	return mergeDuplicate(next, a, b), true
}

// mergeDuplicate resolves two occurrences of the same big-contig node
// down to one: a's copy is kept untouched and b's walk is cut around
// b.pos, dropping the node there entirely and keeping the two halves as
// separate walks. The halves can't simply be rejoined to each other
// instead -- the node's two neighbors in the original walk are not
// necessarily linked by an edge in the graph -- so splitting, not
// splicing, is the only change that never invents an edge that doesn't
// exist. This strictly reduces the node's total occurrence count by
// one, guaranteeing FixBigRepsMove's sweep terminates.
func mergeDuplicate(walks WalkSet, a, b occurrence) WalkSet {
	before := append([]int{}, walks[b.walk][:b.pos]...)
	after := append([]int{}, walks[b.walk][b.pos+1:]...)

	next := make(WalkSet, 0, len(walks)+1)
	for i, w := range walks {
		if i != b.walk {
			next = append(next, w)
			continue
		}
		if len(before) > 0 {
			next = append(next, before)
		}
		if len(after) > 0 {
			next = append(next, after)
		}
	}
	_ = a // a's occurrence is left untouched in whichever walk it already sits in
	return next
}

// FixBigRepsMove is the deterministic post-process sweep: every
// duplicated big-contig node is resolved in a single pass (rather than
// one random pair per call, as FixSomeBigRepsMove does), invoked directly
// by the Search Driver when do_postprocess is set. Each pass strictly
// shrinks the total duplicate-occurrence count, so the loop always
// terminates. It always succeeds.
func FixBigRepsMove(rng *rand.Rand, walks WalkSet, g *graph.Graph, cfg Config) (WalkSet, bool) {
	next := cloneWalkSet(walks)
	for {
		dups := duplicatedBigNodes(next, g, cfg.Threshold)
		if len(dups) == 0 {
			return next, true
		}
		resolved := false
		for _, occs := range dups {
			if len(occs) < 2 {
				continue
			}
			next = mergeDuplicate(next, occs[0], occs[1])
			resolved = true
			break
		}
		if !resolved {
			return next, true
		}
	}
}
