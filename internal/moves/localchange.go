package moves

import (
	"math/rand"

	"github.com/jjtimmons/gaml/internal/graph"
)

// LocalChangeMove picks a walk p and two positions s < t within it such
// that reach_big[walks[p][s]] contains walks[p][t], then replaces the
// subrange (s, t) with a different witness path drawn uniformly from the
// alternatives discovered via bounded BFS (reach_limit). On success it
// also reports (p, s, t) against the *returned* walk set so the Search
// Driver can overwrite the witness caches on acceptance; locP is -1 when
// no such index applies (ok=false).
func LocalChangeMove(rng *rand.Rand, walks WalkSet, g *graph.Graph, cfg Config) (next WalkSet, locP, locS, locT int, ok bool) {
	locP = -1

	type candidate struct {
		walk, s, t int
	}
	var candidates []candidate
	for wi, w := range walks {
		for s := 0; s < len(w); s++ {
			if _, isGap := graph.ParseGapMarker(w[s]); isGap {
				continue
			}
			for t := s + 2; t < len(w); t++ {
				if _, isGap := graph.ParseGapMarker(w[t]); isGap {
					continue
				}
				if _, reaches := g.ReachBig(w[s], w[t]); reaches {
					candidates = append(candidates, candidate{wi, s, t})
				}
			}
		}
	}
	if len(candidates) == 0 {
		return walks, -1, -1, -1, false
	}

	c := candidates[rng.Intn(len(candidates))]
	walk := walks[c.walk]
	current, _ := g.ReachBig(walk[c.s], walk[c.t])

	alts := g.ReachLimitAlternatives(walk[c.s], walk[c.t])
	var distinct [][]int
	for _, alt := range alts {
		if !sameIntSlice(alt, current) {
			distinct = append(distinct, alt)
		}
	}
	if len(distinct) == 0 {
		return walks, -1, -1, -1, false
	}
	chosen := distinct[rng.Intn(len(distinct))]

	next = cloneWalkSet(walks)
	rebuilt := make([]int, 0, c.s+1+len(chosen)+(len(walk)-c.t))
	rebuilt = append(rebuilt, walk[:c.s+1]...)
	rebuilt = append(rebuilt, chosen...)
	rebuilt = append(rebuilt, walk[c.t:]...)
	next[c.walk] = rebuilt

	return next, c.walk, c.s, c.s + 1 + len(chosen), true
}

func sameIntSlice(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
