// Package reads provides the three read-library handles the Probability
// Calculator scores walks against: unpaired short reads, paired short
// reads with an insert-size distribution, and noisy long (PacBio-like)
// reads scored by per-node anchors taken from the aligner's placements.
// Alignments are loaded from a cached
// alignment table in SAM/BAM format, produced up front by an external
// aligner (out of scope for this module).
package reads

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/jjtimmons/gaml/internal/graph"
)

// Library is the contract the Probability Calculator scores a walk set
// against. k is the graph's fixed overlap, needed to translate node
// offsets into consensus coordinates for the paired insert-size factor.
type Library interface {
	LogLikelihood(g *graph.Graph, walks [][]int, k int) (score float64, lowCoverage []int)
	Weight() float64
	PenaltyConstant() float64
	PenaltyStep() float64
	IsAdvice() bool
	// LongestRead returns the longest read length in this library's
	// loaded alignments, feeding reach_limit's 2x-longest-read bound.
	LongestRead() int
}

// Alignment is one read's mapping onto one graph node, as recovered from
// a cached alignment table.
type Alignment struct {
	ReadID     int
	NodeID     int
	Pos        int // 0-based offset into the node's sequence
	Matches    int
	Mismatches int
	ReadLength int
}

// Advice returns the subset of libs flagged for use by the advice-guided
// ExtendAdv move.
func Advice(libs []Library) []Library {
	var out []Library
	for _, l := range libs {
		if l.IsAdvice() {
			out = append(out, l)
		}
	}
	return out
}

// loadBAMAlignments reads every mapped record from a cached BAM file and
// turns it into an Alignment, tallying matches/mismatches from the CIGAR
// string (M operators split into matches via the NM tag when present,
// otherwise counted as all-match) -- grounded on the record-walking idiom
// of reading a bam.Reader to completion and skipping sam.Unmapped reads.
func loadBAMAlignments(filename string) ([]Alignment, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open alignment cache %s: %w", filename, err)
	}
	defer f.Close()

	r, err := bam.NewReader(f, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read BAM header from %s: %w", filename, err)
	}
	defer r.Close()

	var out []Alignment
	for {
		rec, err := r.Read()
		if err != nil {
			break // EOF or truncated stream; whatever was read so far stands
		}
		if rec.Flags&sam.Unmapped != 0 {
			continue
		}
		nodeID, err := strconv.Atoi(rec.Ref.Name())
		if err != nil {
			continue // reference names that aren't graph node ids are ignored
		}
		matches, mismatches := cigarTally(rec)
		readID, _ := strconv.Atoi(rec.Name)
		out = append(out, Alignment{
			ReadID:     readID,
			NodeID:     nodeID,
			Pos:        rec.Pos,
			Matches:    matches,
			Mismatches: mismatches,
			ReadLength: rec.Len(),
		})
	}
	return out, nil
}

// cigarTally sums M-operator length as matches and pulls the NM edit
// distance tag (if present) to split matches from mismatches.
func cigarTally(rec *sam.Record) (matches, mismatches int) {
	for _, op := range rec.Cigar {
		if op.Type() == sam.CigarMatch {
			matches += op.Len()
		}
	}
	nm := rec.AuxFields.Get(sam.Tag{'N', 'M'})
	if nm != nil {
		if v, ok := nm.Value().(uint8); ok {
			mismatches = int(v)
			matches -= mismatches
		}
	}
	return matches, mismatches
}

// nodePositions reports, for every node id referenced anywhere in walks,
// the walk index and base offset of its first occurrence -- consensus position
// bookkeeping shared by Single's coverage check and Paired's insert-size
// distance.
type nodeOffset struct {
	walk   int
	offset int
}

func nodePositions(g *graph.Graph, walks [][]int, k int) map[int]nodeOffset {
	pos := make(map[int]nodeOffset)
	for wi, walk := range walks {
		base := 0
		for i, entry := range walk {
			if gapLen, isGap := graph.ParseGapMarker(entry); isGap {
				base += gapLen
				continue
			}
			// A node after the first starts k-1 bases before the current
			// end of the consensus, since those bases overlap its predecessor.
			start := base
			if i > 0 {
				start = base - (k - 1)
			}
			if _, seen := pos[entry]; !seen {
				pos[entry] = nodeOffset{walk: wi, offset: start}
			}
			base = start + g.Node(entry).Len()
		}
	}
	return pos
}

// logSumExp combines independent candidate-placement log-probabilities
// into the log of their sum, the standard numerically stable reduction.
func logSumExp(logs []float64) float64 {
	if len(logs) == 0 {
		return math.Inf(-1)
	}
	max := logs[0]
	for _, v := range logs[1:] {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return max
	}
	sum := 0.0
	for _, v := range logs {
		sum += math.Exp(v - max)
	}
	return max + math.Log(sum)
}
