package reads

import (
	"sort"

	"github.com/jjtimmons/gaml/internal/graph"
	"github.com/jjtimmons/gaml/internal/stat"
)

// Paired is a two-mate short-read library: each read's per-base
// match/mismatch likelihood is weighted by a Gaussian factor on the
// signed distance between the two mates' placements on the same walk.
type Paired struct {
	Name string

	Mate1Filename string
	Mate2Filename string

	MatchProb    float64
	MismatchProb float64

	InsertMean float64
	InsertStd  float64

	MinProbPerBase float64
	MinProbStart   float64
	PenaltyConst   float64
	PenaltyStepVal float64
	WeightVal      float64
	AdviceFlag     bool

	mate1, mate2 []Alignment
	byRead1      map[int][]Alignment
	byRead2      map[int][]Alignment
}

// NewPaired builds a Paired library handle from its resolved config.
func NewPaired(name, fn1, fn2 string, matchProb, mismatchProb, insertMean, insertStd, minProbPerBase, minProbStart, penaltyConst, penaltyStep, weight float64, advice bool) *Paired {
	return &Paired{
		Name:           name,
		Mate1Filename:  fn1,
		Mate2Filename:  fn2,
		MatchProb:      matchProb,
		MismatchProb:   mismatchProb,
		InsertMean:     insertMean,
		InsertStd:      insertStd,
		MinProbPerBase: minProbPerBase,
		MinProbStart:   minProbStart,
		PenaltyConst:   penaltyConst,
		PenaltyStepVal: penaltyStep,
		WeightVal:      weight,
		AdviceFlag:     advice,
	}
}

// LoadAlignments reads both mates' cached BAM files.
func (p *Paired) LoadAlignments() error {
	a1, err := loadBAMAlignments(p.Mate1Filename)
	if err != nil {
		return err
	}
	a2, err := loadBAMAlignments(p.Mate2Filename)
	if err != nil {
		return err
	}
	p.mate1, p.mate2 = a1, a2
	return nil
}

// PreprocessReads keeps the single best placement per read per mate --
// paired scoring needs one position per mate to compute an insert
// distance, not a full candidate set like Single.
func (p *Paired) PreprocessReads() {
	p.mate1 = bestPerRead(p.mate1)
	p.mate2 = bestPerRead(p.mate2)
}

func bestPerRead(alns []Alignment) []Alignment {
	best := make(map[int]Alignment)
	for _, a := range alns {
		cur, ok := best[a.ReadID]
		if !ok || a.Matches-a.Mismatches > cur.Matches-cur.Mismatches {
			best[a.ReadID] = a
		}
	}
	out := make([]Alignment, 0, len(best))
	for _, a := range best {
		out = append(out, a)
	}
	return out
}

// PrepareReadIndex groups each mate's best alignment by read id.
func (p *Paired) PrepareReadIndex() {
	p.byRead1 = indexByRead(p.mate1)
	p.byRead2 = indexByRead(p.mate2)
}

func indexByRead(alns []Alignment) map[int][]Alignment {
	idx := make(map[int][]Alignment, len(alns))
	for _, a := range alns {
		idx[a.ReadID] = append(idx[a.ReadID], a)
	}
	return idx
}

func (p *Paired) Weight() float64          { return p.WeightVal }
func (p *Paired) PenaltyConstant() float64 { return p.PenaltyConst }
func (p *Paired) PenaltyStep() float64     { return p.PenaltyStepVal }
func (p *Paired) IsAdvice() bool           { return p.AdviceFlag }

// LongestRead returns the longer of the two mates' longest read lengths.
func (p *Paired) LongestRead() int {
	max := 0
	for _, a := range p.mate1 {
		if a.ReadLength > max {
			max = a.ReadLength
		}
	}
	for _, a := range p.mate2 {
		if a.ReadLength > max {
			max = a.ReadLength
		}
	}
	return max
}

// LogLikelihood scores every read pair present in both mates' indices:
// the match/mismatch term for each mate, plus a Gaussian(insert_mean,
// insert_std) log-density on the distance between their consensus
// positions when both mates land in the same walk.
func (p *Paired) LogLikelihood(g *graph.Graph, walks [][]int, k int) (float64, []int) {
	positions := nodePositions(g, walks, k)

	readIDs := make([]int, 0, len(p.byRead1))
	for readID := range p.byRead1 {
		readIDs = append(readIDs, readID)
	}
	sort.Ints(readIDs)

	total := 0.0
	var low []int
	for _, readID := range readIDs {
		a1s := p.byRead1[readID]
		a2s, ok := p.byRead2[readID]
		if !ok {
			continue
		}
		a1, a2 := a1s[0], a2s[0]

		logp := float64(a1.Matches+a2.Matches)*logOrNegInf(p.MatchProb) +
			float64(a1.Mismatches+a2.Mismatches)*logOrNegInf(p.MismatchProb)

		if pos1, ok1 := positions[a1.NodeID]; ok1 {
			if pos2, ok2 := positions[a2.NodeID]; ok2 && pos1.walk == pos2.walk {
				dist := float64((pos2.offset + a2.Pos) - (pos1.offset + a1.Pos))
				logp += stat.NormalLogDensity(dist, p.InsertMean, p.InsertStd)
			}
		}

		readLen := a1.ReadLength + a2.ReadLength
		floor := p.MinProbPerBase * float64(readLen)
		if logp < floor {
			logp = floor
		}
		if logp < p.MinProbStart {
			low = append(low, readID)
		}
		total += logp
	}
	return total, low
}
