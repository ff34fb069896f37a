// Package moves implements the seven proposal operators that mutate a
// walk set during the search: the hill-climbing moves (Extend,
// FixSomeBigReps, LocalChange, ExtendAdv, FixGapLength), the single move
// eligible for annealing acceptance (BreakPath), and the deterministic
// post-process sweep (FixBigReps). Every move takes and returns copies of
// the walk set -- none mutates its input in place -- and threads an
// explicit *rand.Rand so the sequence of draws is reproducible under a
// fixed seed.
package moves

import (
	"github.com/jjtimmons/gaml/internal/graph"
)

// WalkSet is the optimizer's state: an unordered collection of walks,
// each an ordered sequence of node ids optionally interleaved with gap
// markers (see graph.ParseGapMarker).
type WalkSet = [][]int

// Kind tags which of the seven move operators produced a candidate walk
// set, so the Search Driver can dispatch acceptance rules and
// witness-cache bookkeeping explicitly rather than by falling through a
// positional if/else chain.
type Kind int

const (
	Extend Kind = iota
	FixSomeBigReps
	LocalChange
	ExtendAdv
	BreakPath
	FixGapLength
	FixBigReps // post-process only; not drawn by weight
)

func (k Kind) String() string {
	switch k {
	case Extend:
		return "extend"
	case FixSomeBigReps:
		return "fix_some_big_reps"
	case LocalChange:
		return "local_change"
	case ExtendAdv:
		return "extend_adv"
	case BreakPath:
		return "break_path"
	case FixGapLength:
		return "fix_gap_length"
	case FixBigReps:
		return "fix_big_reps"
	default:
		return "unknown"
	}
}

// Config is the subset of global settings a move needs to propose an
// edit. Weighted move selection itself lives in the Search Driver; moves
// only need the big-contig threshold and a gap-length perturbation bound.
type Config struct {
	Threshold    int
	GapStepBound int // FixGapLength perturbs a gap by +/- [1, GapStepBound]
}

func cloneWalkSet(walks WalkSet) WalkSet {
	next := make(WalkSet, len(walks))
	for i, w := range walks {
		next[i] = append([]int{}, w...)
	}
	return next
}

// InsertMissingBigNodes appends, as a new length-1 walk, every big-contig
// node (length >= threshold) not already covered (in either orientation)
// by the given walk set. Grounded on gaml.cc's "Rep stats" sweep
// (lines 216-241 of Optimize) that runs after every move; reused by
// internal/seed's assembly-import path so both call sites share one
// implementation.
func InsertMissingBigNodes(walks WalkSet, g *graph.Graph, threshold int) WalkSet {
	covered := make(map[int]bool)
	for _, w := range walks {
		for _, n := range w {
			if _, isGap := graph.ParseGapMarker(n); isGap {
				continue
			}
			covered[canonical(n)] = true
		}
	}

	next := cloneWalkSet(walks)
	for _, n := range g.BigContigs(threshold) {
		if !covered[canonical(n)] {
			next = append(next, []int{n})
		}
	}
	return next
}

// canonical maps a node and its twin onto the same even id, matching
// gaml.cc's (id/2)*2 bucketing of a forward/reverse-complement pair.
func canonical(id int) int {
	if id%2 == 1 {
		return id - 1
	}
	return id
}

// CleanLoneRepeats deletes every length-1 walk whose sole node (in either
// orientation) also appears in some other walk, repeating until no such
// walk remains. If localIdx is non-nil, it is decremented whenever a walk
// is removed from an index position strictly before *localIdx, keeping a
// LocalChange-recorded (p, s, t) reference valid across the cleanup --
// this is the single operation the two call sites in gaml.cc (startup
// and the post-move sweep) differ only in whether they invoke.
func CleanLoneRepeats(walks WalkSet, localIdx *int) WalkSet {
	next := cloneWalkSet(walks)
	for {
		locs := make(map[int][]int) // node (either orientation) -> walk indices containing it
		for i, w := range next {
			for _, n := range w {
				if _, isGap := graph.ParseGapMarker(n); isGap {
					continue
				}
				locs[n] = append(locs[n], i)
				locs[graph.Twin(n)] = append(locs[graph.Twin(n)], i)
			}
		}

		clean := -1
		for i, w := range next {
			if len(w) != 1 {
				continue
			}
			for _, j := range locs[w[0]] {
				if j != i {
					clean = i
				}
			}
		}
		if clean == -1 {
			return next
		}

		if localIdx != nil && clean < *localIdx {
			*localIdx--
		}
		next = append(next[:clean], next[clean+1:]...)
	}
}
