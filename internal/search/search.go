// Package search implements the simulated-annealing local search that
// turns a starting walk set into a scored assembly: each iteration
// draws a move by weighted lottery, applies the accept/reject rule
// against the read-likelihood objective, and checkpoints progress.
package search

import (
	"math"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/jjtimmons/gaml/internal/graph"
	"github.com/jjtimmons/gaml/internal/moves"
	"github.com/jjtimmons/gaml/internal/prob"
	"github.com/jjtimmons/gaml/internal/reads"
	"github.com/jjtimmons/gaml/internal/sink"
)

// Weights are the per-move draw weights from config, combined into a
// single interval: a draw r in [0, total) selects Extend if r < ExtendP,
// then FixSomeBigReps, LocalChange, ExtendAdv, FixGapLength in turn,
// with whatever remains falling to BreakPath -- the same interval chain
// as gaml.cc's Optimize (lines 157-196). JoinByAdviceP is forced to zero
// whenever the driver has no advice libraries, exactly as Optimize zeros
// extendadvp when advice_pacbio and advice_paired are both empty.
type Weights struct {
	ExtendP       int
	InterchangeP  int // FixSomeBigReps
	LocalP        int
	JoinByAdviceP int // ExtendAdv
	FixlenP       int
	DisconnectP   int // BreakPath
}

// Driver runs the annealing loop to convergence. It holds no data not
// already described by the search state machine: the current and best
// walk sets, their scores, the iteration counter, and the single random
// source threaded through every move for reproducibility.
type Driver struct {
	Graph  *graph.Graph
	Calc   *prob.Calculator
	Advice []reads.AdviceSource

	Weights       Weights
	Threshold     int
	GapStepBound  int
	T0            float64
	MaxIterations int
	DoPostprocess bool

	OutputPrefix string

	Rng *rand.Rand

	// ForceBest preserves gaml.cc's force_best local, always false and
	// never wired to a config key -- an inert hook for a future
	// deterministic-acceptance override (spec Open Question).
	ForceBest bool

	paths     moves.WalkSet
	bestPaths moves.WalkSet
	curProb   float64
	bestProb  float64
	itnum     int
	temp      float64
}

// Run executes the annealing loop starting from initial, returning the
// best-scoring walk set found. initial is cleaned of duplicate
// singleton walks before the loop starts, matching gaml.cc's pre-loop
// cleanup (lines 113-144). Before the loop starts it builds the three
// reachability indices every move draws against -- reach, reach_big(
// threshold), and reach_limit(2x the longest configured read) -- exactly
// as gaml.cc's Optimize does at lines 96-98.
func (d *Driver) Run(initial moves.WalkSet) (moves.WalkSet, error) {
	d.Graph.ComputeReach()
	d.Graph.ComputeReachBig(d.Threshold)
	d.Graph.ComputeReachLimit(d.Threshold, 2*d.longestRead())

	d.paths = moves.CleanLoneRepeats(initial, nil)
	result := d.Calc.Score(d.paths)
	d.curProb = result.LogScore
	d.bestProb = d.curProb
	d.bestPaths = d.paths

	log.WithFields(log.Fields{
		"start_prob": d.curProb,
		"len":        result.ConsensusLength,
	}).Info("search starting")

	if err := d.checkpoint(d.paths); err != nil {
		return nil, err
	}

	for d.itnum <= d.MaxIterations {
		d.step()
	}

	if err := d.checkpoint(d.bestPaths); err != nil {
		return nil, err
	}
	return d.bestPaths, nil
}

func (d *Driver) checkpoint(walks moves.WalkSet) error {
	return sink.WriteFile(d.OutputPrefix, walks, d.Graph, d.Calc.K, d.Threshold)
}

// longestRead returns the longest read length across every configured
// library, 0 if none report any (an all-empty input, which leaves
// reach_limit unbounded via computeBigReachability's limit<=0 case).
func (d *Driver) longestRead() int {
	max := 0
	for _, lib := range d.Calc.Libraries {
		if l := lib.LongestRead(); l > max {
			max = l
		}
	}
	return max
}

// moveResult is what every drawn move reports in common, regardless of
// which of the seven operators produced it.
type moveResult struct {
	walks      moves.WalkSet
	ok         bool
	kind       moves.Kind
	locP       int // LocalChange's anchor walk index, -1 otherwise
	locS, locT int // LocalChange's anchor positions within locP
}

// step runs one proposal-accept/reject cycle. A move that fails to
// produce a candidate (ok=false) leaves itnum untouched and returns
// immediately, mirroring Optimize's `continue` on a failed draw -- the
// caller's for loop redraws without counting the attempt.
func (d *Driver) step() {
	cfg := moves.Config{Threshold: d.Threshold, GapStepBound: d.GapStepBound}

	var mr moveResult
	mr.locP = -1
	if d.DoPostprocess {
		mr.walks, mr.ok = moves.FixBigRepsMove(d.Rng, d.paths, d.Graph, cfg)
		mr.kind = moves.FixBigReps
	} else {
		mr = d.draw(d.paths, cfg)
	}
	if !mr.ok {
		return
	}

	next := moves.InsertMissingBigNodes(mr.walks, d.Graph, d.Threshold)
	var locIdx *int
	if mr.kind == moves.LocalChange {
		locIdx = &mr.locP
	}
	next = moves.CleanLoneRepeats(next, locIdx)

	d.itnum++
	d.temp = d.T0 / math.Log(float64(d.itnum+1))
	if d.itnum%100 == 0 {
		if err := d.checkpoint(d.bestPaths); err != nil {
			log.WithError(err).Warn("failed to write periodic checkpoint")
		}
	}

	result := d.Calc.Score(next)
	newProb := result.LogScore

	accept := false
	if newProb > d.curProb || d.DoPostprocess {
		if mr.kind == moves.LocalChange && mr.locP >= 0 {
			d.saveLocalWitness(next, mr.locP, mr.locS, mr.locT)
		}
		accept = true
	} else if mr.kind == moves.BreakPath {
		p := math.Exp((newProb - d.curProb) / d.temp)
		if d.Rng.Float64() < p {
			accept = true
		}
	}

	if accept {
		d.curProb = newProb
		d.paths = next
	}
	if newProb > d.bestProb || d.ForceBest {
		d.bestProb = newProb
		d.bestPaths = next
	}

	log.WithFields(log.Fields{
		"itnum":     d.itnum,
		"move":      mr.kind.String(),
		"temp":      d.temp,
		"new_prob":  newProb,
		"cur_prob":  d.curProb,
		"best_prob": d.bestProb,
		"len":       result.ConsensusLength,
		"accepted":  accept,
	}).Info("iteration complete")
}

// draw picks a move by weighted lottery and applies it. The weight
// order -- Extend, FixSomeBigReps, LocalChange, ExtendAdv, FixGapLength,
// then whatever remains to BreakPath -- matches Optimize's interval
// chain exactly.
func (d *Driver) draw(walks moves.WalkSet, cfg moves.Config) moveResult {
	w := d.Weights
	if len(d.Advice) == 0 {
		w.JoinByAdviceP = 0
	}
	total := w.ExtendP + w.InterchangeP + w.LocalP + w.JoinByAdviceP + w.FixlenP + w.DisconnectP
	if total <= 0 {
		return moveResult{locP: -1}
	}
	r := d.Rng.Intn(total)

	switch {
	case r < w.ExtendP:
		next, ok := moves.ExtendMove(d.Rng, walks, d.Graph, cfg)
		return moveResult{walks: next, ok: ok, kind: moves.Extend, locP: -1}

	case r < w.ExtendP+w.InterchangeP:
		next, ok := moves.FixSomeBigRepsMove(d.Rng, walks, d.Graph, cfg)
		return moveResult{walks: next, ok: ok, kind: moves.FixSomeBigReps, locP: -1}

	case r < w.ExtendP+w.InterchangeP+w.LocalP:
		next, locP, locS, locT, ok := moves.LocalChangeMove(d.Rng, walks, d.Graph, cfg)
		return moveResult{walks: next, ok: ok, kind: moves.LocalChange, locP: locP, locS: locS, locT: locT}

	case r < w.ExtendP+w.InterchangeP+w.LocalP+w.JoinByAdviceP:
		next, ok := moves.ExtendAdvMove(d.Rng, walks, d.Graph, cfg, d.Advice)
		return moveResult{walks: next, ok: ok, kind: moves.ExtendAdv, locP: -1}

	case r < w.ExtendP+w.InterchangeP+w.LocalP+w.JoinByAdviceP+w.FixlenP:
		next, ok := moves.FixGapLengthMove(d.Rng, walks, d.Graph, cfg)
		return moveResult{walks: next, ok: ok, kind: moves.FixGapLength, locP: -1}

	default:
		next, ok := moves.BreakPathMove(d.Rng, walks, d.Graph, cfg)
		return moveResult{walks: next, ok: ok, kind: moves.BreakPath, locP: -1}
	}
}

// saveLocalWitness overwrites the reach_big/reach_limit witness path
// between a LocalChange move's anchor nodes with the interior of the
// newly accepted subwalk -- gaml.cc's "local save" branch (lines
// 300-313). s and t are read from the post-move walk because
// LocalChangeMove's reported positions index into its own return value,
// not the pre-move walk.
func (d *Driver) saveLocalWitness(walks moves.WalkSet, p, s, t int) {
	walk := walks[p]
	if s < 0 || t >= len(walk) || s >= t {
		return
	}
	sNode, tNode := walk[s], walk[t]
	witness := append([]int{}, walk[s+1:t]...)
	d.Graph.UpdateWitness(sNode, tNode, witness)
}
