package moves

import (
	"math/rand"

	"github.com/jjtimmons/gaml/internal/graph"
)

// ExtendMove picks a walk endpoint uniformly, follows reach_big to a
// randomly chosen big-contig node, and appends the witness path plus
// that node. Fails (ok=false) if no walk has an endpoint with any
// reachable big-contig node.
func ExtendMove(rng *rand.Rand, walks WalkSet, g *graph.Graph, cfg Config) (WalkSet, bool) {
	type endpoint struct {
		walkIdx int
		atEnd   bool
		node    int
	}

	var endpoints []endpoint
	for i, w := range walks {
		if len(w) == 0 {
			continue
		}
		if last := w[len(w)-1]; last >= 0 {
			endpoints = append(endpoints, endpoint{i, true, last})
		}
		if first := w[0]; first >= 0 {
			endpoints = append(endpoints, endpoint{i, false, first})
		}
	}
	if len(endpoints) == 0 {
		return walks, false
	}
	ep := endpoints[rng.Intn(len(endpoints))]

	from := ep.node
	if !ep.atEnd {
		from = graph.Twin(ep.node)
	}

	targets := g.ReachBigTargets(from)
	if len(targets) == 0 {
		return walks, false
	}
	target := targets[rng.Intn(len(targets))]

	witness, ok := g.ReachBig(from, target)
	if !ok {
		return walks, false
	}

	next := cloneWalkSet(walks)
	if ep.atEnd {
		extended := append(append([]int{}, walks[ep.walkIdx]...), witness...)
		next[ep.walkIdx] = append(extended, target)
	} else {
		prefix := make([]int, 0, len(witness)+1)
		prefix = append(prefix, graph.Twin(target))
		for i := len(witness) - 1; i >= 0; i-- {
			prefix = append(prefix, graph.Twin(witness[i]))
		}
		next[ep.walkIdx] = append(prefix, walks[ep.walkIdx]...)
	}
	return next, true
}
