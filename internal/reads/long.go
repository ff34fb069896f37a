package reads

import (
	"math"
	"sort"

	"github.com/jjtimmons/gaml/internal/graph"
)

// Anchor is one precomputed candidate placement of a long read onto a
// node: a seed match extended in both directions, scored independently
// of the current walk set so it can be recomputed once per read and
// reused across many search iterations.
type Anchor struct {
	ReadID     int
	NodeID     int
	QueryStart int
	NodePos    int
	Matches    int
	Mismatches int
	Score      int
}

// Long is a PacBio-like noisy long read library: each read contributes
// the best-scoring anchor among its precomputed candidates that maps
// onto a node covered by the current walk set.
type Long struct {
	Name     string
	Filename string

	MatchProb    float64
	MismatchProb float64

	MinProbPerBase float64
	MinProbStart   float64
	PenaltyConst   float64
	PenaltyStepVal float64
	WeightVal      float64
	AdviceFlag     bool

	alignments []Alignment
	anchors    map[int][]Anchor // read id -> candidate anchors, populated by ComputeAnchors
}

// NewLong builds a Long library handle from its resolved config.
func NewLong(name, filename string, matchProb, mismatchProb, minProbPerBase, minProbStart, penaltyConst, penaltyStep, weight float64, advice bool) *Long {
	return &Long{
		Name:           name,
		Filename:       filename,
		MatchProb:      matchProb,
		MismatchProb:   mismatchProb,
		MinProbPerBase: minProbPerBase,
		MinProbStart:   minProbStart,
		PenaltyConst:   penaltyConst,
		PenaltyStepVal: penaltyStep,
		WeightVal:      weight,
		AdviceFlag:     advice,
	}
}

// LoadAlignments reads the cached BAM file of coarse long-read mappings
// that ComputeAnchors will refine into per-node anchors.
func (l *Long) LoadAlignments() error {
	alns, err := loadBAMAlignments(l.Filename)
	if err != nil {
		return err
	}
	l.alignments = alns
	return nil
}

// PreprocessReads is a no-op for Long: unlike Single/Paired, every coarse
// alignment is a candidate seed region for ComputeAnchors, not evidence
// in itself.
func (l *Long) PreprocessReads() {}

// ComputeAnchors turns each coarse cached alignment into an Anchor
// candidate placement, carrying over the match/mismatch tally the
// aligner already reports in the cache -- seeding and extension happen
// upstream in the external long-read aligner (internal/align), not here.
func (l *Long) ComputeAnchors(g *graph.Graph) {
	l.anchors = make(map[int][]Anchor)
	for _, a := range l.alignments {
		anchor := Anchor{
			ReadID:     a.ReadID,
			NodeID:     a.NodeID,
			QueryStart: 0,
			NodePos:    a.Pos,
			Matches:    a.Matches,
			Mismatches: a.Mismatches,
			Score:      a.Matches - a.Mismatches,
		}
		l.anchors[a.ReadID] = append(l.anchors[a.ReadID], anchor)
	}
}

// NormalizeCache rewrites anchor node references that point at a twin
// id's reverse-complement partner onto the canonical forward (even) id;
// LogLikelihood then matches each anchor against a walk node in either
// orientation.
func (l *Long) NormalizeCache(g *graph.Graph) {
	for readID, anchors := range l.anchors {
		for i, a := range anchors {
			if a.NodeID%2 == 1 {
				anchors[i].NodeID = graph.Twin(a.NodeID)
			}
		}
		l.anchors[readID] = anchors
	}
}

func (l *Long) Weight() float64          { return l.WeightVal }
func (l *Long) PenaltyConstant() float64 { return l.PenaltyConst }
func (l *Long) PenaltyStep() float64     { return l.PenaltyStepVal }
func (l *Long) IsAdvice() bool           { return l.AdviceFlag }

// LongestRead returns the longest read length seen in this library's
// cached alignments.
func (l *Long) LongestRead() int {
	max := 0
	for _, a := range l.alignments {
		if a.ReadLength > max {
			max = a.ReadLength
		}
	}
	return max
}

// LogLikelihood picks, for each read, the best-scoring anchor landing on
// a node covered by the current walk set and converts its match/mismatch
// tally into a log-probability, floored as the other libraries are.
func (l *Long) LogLikelihood(g *graph.Graph, walks [][]int, k int) (float64, []int) {
	covered := nodePositions(g, walks, k)

	readIDs := make([]int, 0, len(l.anchors))
	for readID := range l.anchors {
		readIDs = append(readIDs, readID)
	}
	sort.Ints(readIDs)

	total := 0.0
	var low []int
	for _, readID := range readIDs {
		anchors := l.anchors[readID]
		best := math.Inf(-1)
		bestLen := 0
		for _, a := range anchors {
			_, fwd := covered[a.NodeID]
			_, rev := covered[graph.Twin(a.NodeID)]
			if !fwd && !rev {
				continue
			}
			logp := float64(a.Matches)*logOrNegInf(l.MatchProb) + float64(a.Mismatches)*logOrNegInf(l.MismatchProb)
			if logp > best {
				best = logp
				bestLen = a.Matches + a.Mismatches
			}
		}
		if math.IsInf(best, -1) {
			continue
		}
		floor := l.MinProbPerBase * float64(bestLen)
		if best < floor {
			best = floor
		}
		if best < l.MinProbStart {
			low = append(low, readID)
		}
		total += best
	}
	return total, low
}
