package graph

// bigIndex holds, for one source node, the shortest known witness path
// to each "big contig" node reachable from it. Witness paths are
// mutable: LocalChange acceptance in the search driver can overwrite
// an entry with a locally better one via UpdateWitness.
type bigIndex struct {
	witness map[int][]int
}

// ComputeReach builds the full transitive-closure reachability set for
// every node: reach[u] is the set of nodes reachable by any path from
// u. This must be recomputed whenever graph topology changes; the core
// never mutates topology after startup, so one call per run suffices.
func (g *Graph) ComputeReach() {
	g.reachMu.Lock()
	defer g.reachMu.Unlock()
	g.reach = make(map[int]map[int]bool, len(g.nodes))
	for u := 0; u < len(g.nodes); u++ {
		g.reach[u] = g.bfsReachable(u)
	}
}

func (g *Graph) bfsReachable(u int) map[int]bool {
	visited := map[int]bool{u: true}
	queue := []int{u}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, v := range g.Successors(cur) {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	delete(visited, u)
	return visited
}

// Reaches reports whether v is reachable from u via any path. ComputeReach
// must have been called first.
func (g *Graph) Reaches(u, v int) bool {
	g.reachMu.Lock()
	defer g.reachMu.Unlock()
	set, ok := g.reach[u]
	return ok && set[v]
}

// ComputeReachBig computes, for every node u, the shortest witness path
// to every reachable "big contig" node (length >= threshold), where a
// branch of the search terminates the moment it crosses the first such
// node. Results are cached; a second call with the same threshold is a
// no-op.
func (g *Graph) ComputeReachBig(threshold int) {
	g.reachMu.Lock()
	defer g.reachMu.Unlock()
	if g.reachBigThreshold == threshold && g.reachBigByNode != nil {
		return
	}
	g.reachBigByNode = g.computeBigReachability(threshold, 0)
	g.reachBigThreshold = threshold
}

// ReachBig returns the witness path from u to v recorded for the given
// threshold, and whether one exists.
func (g *Graph) ReachBig(u, v int) ([]int, bool) {
	g.witnessMu.RLock()
	defer g.witnessMu.RUnlock()
	idx, ok := g.reachBigByNode[u]
	if !ok {
		return nil, false
	}
	path, ok := idx.witness[v]
	return path, ok
}

// ReachBigTargets returns every big-contig node reachable from u under
// the cached reach_big index, in no particular order.
func (g *Graph) ReachBigTargets(u int) []int {
	g.witnessMu.RLock()
	defer g.witnessMu.RUnlock()
	idx, ok := g.reachBigByNode[u]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(idx.witness))
	for v := range idx.witness {
		out = append(out, v)
	}
	return out
}

// ComputeReachLimit computes, like ComputeReachBig, witnesses to every
// reachable big-contig node, but only over branches whose accumulated
// extension length is at most limit bases. L is conventionally twice
// the longest read in the input.
func (g *Graph) ComputeReachLimit(threshold, limit int) {
	g.reachMu.Lock()
	defer g.reachMu.Unlock()
	if g.reachLimitLen == limit && g.reachLimitByNode != nil {
		return
	}
	g.reachLimitByNode = g.computeBigReachability(threshold, limit)
	g.reachLimitLen = limit
}

// ReachLimit returns the bounded-length witness path from u to v, and
// whether one exists.
func (g *Graph) ReachLimit(u, v int) ([]int, bool) {
	g.witnessMu.RLock()
	defer g.witnessMu.RUnlock()
	idx, ok := g.reachLimitByNode[u]
	if !ok {
		return nil, false
	}
	path, ok := idx.witness[v]
	return path, ok
}

// ReachLimitAlternatives returns every witness path from u discovered
// during the bounded BFS that passes through v as an intermediate or
// terminal node -- used by LocalChange to draw an alternative route
// between two walk positions.
func (g *Graph) ReachLimitAlternatives(u, v int) [][]int {
	g.witnessMu.RLock()
	defer g.witnessMu.RUnlock()
	idx, ok := g.reachLimitByNode[u]
	if !ok {
		return nil
	}
	var alts [][]int
	for target, path := range idx.witness {
		if target == v {
			alts = append(alts, path)
			continue
		}
		for _, n := range path {
			if n == v {
				alts = append(alts, path)
				break
			}
		}
	}
	return alts
}

// UpdateWitness overwrites the stored witness path between u and v in
// both the reach_big and reach_limit caches, wherever an entry for the
// pair already exists. This is the only interface through which the
// search driver mutates reachability state after startup.
func (g *Graph) UpdateWitness(u, v int, path []int) {
	g.witnessMu.Lock()
	defer g.witnessMu.Unlock()
	if idx, ok := g.reachBigByNode[u]; ok {
		if _, exists := idx.witness[v]; exists {
			idx.witness[v] = path
		}
	}
	if idx, ok := g.reachLimitByNode[u]; ok {
		if _, exists := idx.witness[v]; exists {
			idx.witness[v] = path
		}
	}
}

// computeBigReachability is the shared BFS behind ComputeReachBig and
// ComputeReachLimit. A branch terminates the moment it crosses a node
// whose length is >= threshold; if limit > 0 the branch also stops once
// its accumulated extension length would exceed limit.
func (g *Graph) computeBigReachability(threshold, limit int) map[int]*bigIndex {
	result := make(map[int]*bigIndex, len(g.nodes))
	for u := 0; u < len(g.nodes); u++ {
		result[u] = g.bfsBigFrom(u, threshold, limit)
	}
	return result
}

type frontierEntry struct {
	node   int
	length int
	path   []int
}

func (g *Graph) bfsBigFrom(u, threshold, limit int) *bigIndex {
	idx := &bigIndex{witness: make(map[int][]int)}
	visited := map[int]bool{u: true}
	queue := []frontierEntry{{node: u, length: 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, v := range g.Successors(cur.node) {
			if visited[v] {
				continue
			}
			extLen := cur.length + g.nodes[v].Len()
			if limit > 0 && extLen > limit {
				continue
			}
			visited[v] = true
			if g.nodes[v].Len() >= threshold {
				if _, exists := idx.witness[v]; !exists {
					idx.witness[v] = append([]int{}, cur.path...)
				}
				continue // terminates this branch
			}
			next := make([]int, len(cur.path)+1)
			copy(next, cur.path)
			next[len(cur.path)] = v
			queue = append(queue, frontierEntry{node: v, length: extLen, path: next})
		}
	}
	return idx
}
