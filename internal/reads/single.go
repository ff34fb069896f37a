package reads

import (
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/jjtimmons/gaml/internal/graph"
)

// Single is an unpaired short-read library: for each read, the likelihood
// is the sum over every candidate node placement of
// match_prob^matches * mismatch_prob^mismatches.
type Single struct {
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
	byRead     map[int][]Alignment
}

// NewSingle builds a Single library handle from its resolved config.
func NewSingle(name, filename string, matchProb, mismatchProb, minProbPerBase, minProbStart, penaltyConst, penaltyStep, weight float64, advice bool) *Single {
	return &Single{
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

// LoadAlignments reads the cached BAM file for this library.
func (s *Single) LoadAlignments() error {
	alns, err := loadBAMAlignments(s.Filename)
	if err != nil {
		return err
	}
	s.alignments = alns
	return nil
}

// PreprocessReads drops duplicate placements of the same read against the
// same node, keeping the best-scoring one -- a read realigned to the same
// node by the cache is not additional evidence.
func (s *Single) PreprocessReads() {
	type key struct{ read, node int }
	best := make(map[key]Alignment)
	for _, a := range s.alignments {
		k := key{a.ReadID, a.NodeID}
		cur, ok := best[k]
		if !ok || a.Matches-a.Mismatches > cur.Matches-cur.Mismatches {
			best[k] = a
		}
	}
	out := make([]Alignment, 0, len(best))
	for _, a := range best {
		out = append(out, a)
	}
	s.alignments = out
}

// PrepareReadIndex groups the preprocessed alignments by read id so
// LogLikelihood can iterate reads rather than raw alignment rows.
func (s *Single) PrepareReadIndex() {
	s.byRead = make(map[int][]Alignment)
	for _, a := range s.alignments {
		s.byRead[a.ReadID] = append(s.byRead[a.ReadID], a)
	}
}

func (s *Single) Weight() float64          { return s.WeightVal }
func (s *Single) PenaltyConstant() float64 { return s.PenaltyConst }
func (s *Single) PenaltyStep() float64     { return s.PenaltyStepVal }
func (s *Single) IsAdvice() bool           { return s.AdviceFlag }

// LongestRead returns the longest read length seen in this library's
// alignments, used to size reach_limit's bound at 2x the longest read
// across every configured library.
func (s *Single) LongestRead() int {
	max := 0
	for _, a := range s.alignments {
		if a.ReadLength > max {
			max = a.ReadLength
		}
	}
	return max
}

// LogLikelihood sums, over every read, the log-sum of match/mismatch
// probabilities across its candidate placements that land on a node
// covered by the current walk set, floored at min_prob_per_base*length.
func (s *Single) LogLikelihood(g *graph.Graph, walks [][]int, k int) (float64, []int) {
	covered := nodePositions(g, walks, k)

	readIDs := make([]int, 0, len(s.byRead))
	for readID := range s.byRead {
		readIDs = append(readIDs, readID)
	}
	sort.Ints(readIDs)

	total := 0.0
	var low []int
	for _, readID := range readIDs {
		alns := s.byRead[readID]
		var candidates []float64
		readLen := alns[0].ReadLength
		for _, a := range alns {
			if _, ok := covered[a.NodeID]; !ok {
				continue
			}
			logp := float64(a.Matches)*logOrNegInf(s.MatchProb) + float64(a.Mismatches)*logOrNegInf(s.MismatchProb)
			candidates = append(candidates, logp)
		}
		logProb := logSumExp(candidates)
		floor := s.MinProbPerBase * float64(readLen)
		if logProb < floor {
			logProb = floor
		}
		if logProb < s.MinProbStart {
			low = append(low, readID)
		}
		total += logProb
	}
	return total, low
}

func logOrNegInf(p float64) float64 {
	if p <= 0 {
		log.Warnf("non-positive probability %v passed to logOrNegInf", p)
		return math.Inf(-1)
	}
	return math.Log(p)
}
