package moves

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/jjtimmons/gaml/internal/graph"
)

func TestCleanLoneRepeatsRemovesDuplicateSingleton(t *testing.T) {
	walks := WalkSet{
		{1, 2, 3},
		{2}, // node 2 already covered by the first walk
	}
	got := CleanLoneRepeats(walks, nil)
	want := WalkSet{{1, 2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CleanLoneRepeats() = %v, want %v", got, want)
	}
}

func TestCleanLoneRepeatsKeepsUniqueSingleton(t *testing.T) {
	walks := WalkSet{
		{1, 2, 3},
		{9},
	}
	got := CleanLoneRepeats(walks, nil)
	if !reflect.DeepEqual(got, walks) {
		t.Fatalf("CleanLoneRepeats() = %v, want unchanged %v", got, walks)
	}
}

func TestCleanLoneRepeatsDecrementsLocalIdx(t *testing.T) {
	walks := WalkSet{
		{2},          // removed: index 0, duplicate of node 2 below
		{1, 2, 3},
		{9},
	}
	localIdx := 2 // referring to the {9} walk before cleanup
	got := CleanLoneRepeats(walks, &localIdx)
	if localIdx != 1 {
		t.Fatalf("localIdx = %d, want 1 after removing an earlier walk", localIdx)
	}
	want := WalkSet{{1, 2, 3}, {9}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CleanLoneRepeats() = %v, want %v", got, want)
	}
}

func TestInsertMissingBigNodesAddsUncoveredSingleton(t *testing.T) {
	g := graph.New()
	small := g.AddNode("AAAA")
	big := g.AddNode("GGGGGGGGGG") // len 10

	walks := WalkSet{{small}}
	next := InsertMissingBigNodes(walks, g, 10)

	found := false
	for _, w := range next {
		if len(w) == 1 && w[0] == big {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected big node %d to be inserted as a singleton walk, got %v", big, next)
	}
}

func TestInsertMissingBigNodesLeavesCoveredNodeAlone(t *testing.T) {
	g := graph.New()
	big := g.AddNode("GGGGGGGGGG")

	walks := WalkSet{{big}}
	next := InsertMissingBigNodes(walks, g, 10)

	if len(next) != 1 {
		t.Fatalf("expected no new walk for an already-covered big node, got %v", next)
	}
}

func TestBreakPathMoveSplitsWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	walks := WalkSet{{1, 2, 3, 4}}
	next, ok := BreakPathMove(rng, walks, graph.New(), Config{Threshold: 500})
	if !ok {
		t.Fatalf("expected BreakPathMove to succeed on a length-4 walk")
	}
	if len(next) != 2 {
		t.Fatalf("expected 2 walks after break, got %d", len(next))
	}
	var rebuilt []int
	rebuilt = append(rebuilt, next[0]...)
	rebuilt = append(rebuilt, next[1]...)
	if !reflect.DeepEqual(rebuilt, []int{1, 2, 3, 4}) {
		t.Fatalf("split walks do not reassemble to the original: %v", rebuilt)
	}
}

func TestBreakPathMoveFailsOnAllSingletons(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	walks := WalkSet{{1}, {2}}
	_, ok := BreakPathMove(rng, walks, graph.New(), Config{})
	if ok {
		t.Fatalf("expected BreakPathMove to fail when every walk has length 1")
	}
}

func TestFixGapLengthMoveAdjustsGap(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	walks := WalkSet{{1, -50, 2}}
	next, ok := FixGapLengthMove(rng, walks, graph.New(), Config{GapStepBound: 5})
	if !ok {
		t.Fatalf("expected FixGapLengthMove to succeed with a gap present")
	}
	newLen, isGap := graph.ParseGapMarker(next[0][1])
	if !isGap {
		t.Fatalf("expected position 1 to remain a gap marker")
	}
	if newLen == 50 {
		t.Fatalf("expected the gap length to change")
	}
	if newLen < 45 || newLen > 55 {
		t.Fatalf("gap length %d drifted further than the configured bound allows", newLen)
	}
}

func TestFixGapLengthMoveFailsWithoutGap(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	walks := WalkSet{{1, 2, 3}}
	_, ok := FixGapLengthMove(rng, walks, graph.New(), Config{})
	if ok {
		t.Fatalf("expected FixGapLengthMove to fail when no walk has a gap marker")
	}
}

func TestExtendMoveUsesWitness(t *testing.T) {
	g := graph.New()
	// A big node sits on either side of a, so the move succeeds whichever
	// of the walk's two (identical, single-node) endpoints is drawn.
	bigLeft := g.AddNode("GGGGGGGGGG")
	pre := g.AddNode("TTTT")
	a := g.AddNode("AAAA")
	mid := g.AddNode("CCCC")
	bigRight := g.AddNode("CCCCCCCCCC")
	g.AddEdge(bigLeft, pre)
	g.AddEdge(pre, a)
	g.AddEdge(a, mid)
	g.AddEdge(mid, bigRight)
	g.ComputeReachBig(10)

	rng := rand.New(rand.NewSource(1))
	walks := WalkSet{{a}}
	next, ok := ExtendMove(rng, walks, g, Config{Threshold: 10})
	if !ok {
		t.Fatalf("expected ExtendMove to succeed")
	}
	if len(next[0]) <= len(walks[0]) {
		t.Fatalf("expected the walk to grow, got %v", next[0])
	}
	found := false
	for _, n := range next[0] {
		if n == bigLeft || graph.Twin(n) == bigLeft || n == bigRight || graph.Twin(n) == bigRight {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a big node (either orientation) to appear in extended walk %v", next[0])
	}
}

func TestExtendMoveFailsWithNoReachableBigNode(t *testing.T) {
	g := graph.New()
	a := g.AddNode("AAAA")
	g.ComputeReachBig(500)

	rng := rand.New(rand.NewSource(1))
	walks := WalkSet{{a}}
	_, ok := ExtendMove(rng, walks, g, Config{Threshold: 500})
	if ok {
		t.Fatalf("expected ExtendMove to fail when no big node is reachable")
	}
}
