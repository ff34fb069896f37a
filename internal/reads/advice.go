package reads

import "math/rand"

// AdviceSource is implemented by a library that can propose a pair of
// nodes spanned by one of its reads, for the advice-guided ExtendAdv
// move. Grounded on gaml.cc's GetAdvice, which collects the
// advice-flagged libraries into parallel vectors for this exact purpose.
type AdviceSource interface {
	Library
	// RandomSpan picks a uniformly random read with at least two
	// distinct node placements and returns the pair it spans.
	RandomSpan(rng *rand.Rand) (u, v int, ok bool)
}

// RandomSpan for Paired returns the two mates' best-placement nodes for a
// uniformly chosen shared read id.
func (p *Paired) RandomSpan(rng *rand.Rand) (u, v int, ok bool) {
	var shared []int
	for readID := range p.byRead1 {
		if _, hasMate2 := p.byRead2[readID]; hasMate2 {
			shared = append(shared, readID)
		}
	}
	if len(shared) == 0 {
		return 0, 0, false
	}
	readID := shared[rng.Intn(len(shared))]
	return p.byRead1[readID][0].NodeID, p.byRead2[readID][0].NodeID, true
}

// RandomSpan for Single returns two distinct node placements of the same
// read, if the alignment cache recorded more than one candidate for it.
func (s *Single) RandomSpan(rng *rand.Rand) (u, v int, ok bool) {
	var multi [][]Alignment
	for _, alns := range s.byRead {
		if len(alns) >= 2 {
			multi = append(multi, alns)
		}
	}
	if len(multi) == 0 {
		return 0, 0, false
	}
	alns := multi[rng.Intn(len(multi))]
	return alns[0].NodeID, alns[1].NodeID, true
}

// RandomSpan for Long returns two consecutive anchors of a uniformly
// chosen read.
func (l *Long) RandomSpan(rng *rand.Rand) (u, v int, ok bool) {
	var multi [][]Anchor
	for _, anchors := range l.anchors {
		if len(anchors) >= 2 {
			multi = append(multi, anchors)
		}
	}
	if len(multi) == 0 {
		return 0, 0, false
	}
	anchors := multi[rng.Intn(len(multi))]
	return anchors[0].NodeID, anchors[1].NodeID, true
}
