// Package prob turns a walk set into a single log-likelihood score by
// aggregating per-library contributions against the current consensus
// sequences.
package prob

import (
	"github.com/jjtimmons/gaml/internal/graph"
	"github.com/jjtimmons/gaml/internal/reads"
)

// ReadRef identifies one read within one library, used to report
// low-coverage diagnostics.
type ReadRef struct {
	LibraryIndex int
	ReadIndex    int
}

// Result is the outcome of scoring a walk set.
type Result struct {
	LogScore         float64
	ConsensusLength  int
	LowCoverageReads []ReadRef
}

// Calculator aggregates every configured read library's log-likelihood
// contribution into one scalar. It holds no mutable state of its own --
// libraries carry their own prepared indices.
type Calculator struct {
	Graph     *graph.Graph
	Libraries []reads.Library
	K         int // overlap length, subtracted when computing consensus length
}

// New builds a Calculator over the given graph and prepared libraries.
func New(g *graph.Graph, libs []reads.Library, k int) *Calculator {
	return &Calculator{Graph: g, Libraries: libs, K: k}
}

// Score computes the aggregate log-likelihood of the given walk set: the
// sum of every library's per-walk log-likelihood, minus each library's
// structural fragmentation penalty, penalty_constant +
// penalty_step*(len(walks)-1).
func (c *Calculator) Score(walks [][]int) Result {
	var total float64
	var lowCoverage []ReadRef

	fragPenaltyCount := len(walks) - 1
	if fragPenaltyCount < 0 {
		fragPenaltyCount = 0
	}

	for i, lib := range c.Libraries {
		libScore, low := lib.LogLikelihood(c.Graph, walks, c.K)
		for _, readIdx := range low {
			lowCoverage = append(lowCoverage, ReadRef{LibraryIndex: i, ReadIndex: readIdx})
		}
		penalty := lib.PenaltyConstant() + lib.PenaltyStep()*float64(fragPenaltyCount)
		total += lib.Weight()*libScore - penalty
	}

	return Result{
		LogScore:         total,
		ConsensusLength:  c.consensusLength(walks),
		LowCoverageReads: lowCoverage,
	}
}

// consensusLength sums the realized length of every walk: the full first
// node plus, for each subsequent entry, its extension past the k-1 base
// overlap (or its gap length for a gap marker).
func (c *Calculator) consensusLength(walks [][]int) int {
	total := 0
	for _, walk := range walks {
		for i, entry := range walk {
			if g, isGap := graph.ParseGapMarker(entry); isGap {
				total += g
				continue
			}
			n := c.Graph.Node(entry)
			if i == 0 {
				total += n.Len()
			} else {
				total += n.Len() - (c.K - 1)
			}
		}
	}
	return total
}
