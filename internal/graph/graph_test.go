package graph

import "testing"

func TestAddNodeCreatesTwin(t *testing.T) {
	g := New()
	id := g.AddNode("ACGTACGT")

	if g.NumNodes() != 2 {
		t.Fatalf("expected 2 nodes (forward + twin), got %d", g.NumNodes())
	}
	twin := Twin(id)
	if g.Node(twin).Seq != ReverseComplement("ACGTACGT") {
		t.Fatalf("twin sequence mismatch: got %s", g.Node(twin).Seq)
	}
	if Twin(twin) != id {
		t.Fatalf("twin of twin should be original id")
	}
}

func TestAddEdgeAddsReverseTwin(t *testing.T) {
	g := New()
	a := g.AddNode("AAAA")
	b := g.AddNode("CCCC")
	g.AddEdge(a, b)

	succ := g.Successors(a)
	if len(succ) != 1 || succ[0] != b {
		t.Fatalf("expected a->b, got %v", succ)
	}
	// twin(b) -> twin(a) must also exist
	tb, ta := Twin(b), Twin(a)
	found := false
	for _, s := range g.Successors(tb) {
		if s == ta {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected twin edge %d->%d", tb, ta)
	}
}

func TestComputeReach(t *testing.T) {
	g := New()
	a := g.AddNode("AAAA")
	b := g.AddNode("CCCC")
	c := g.AddNode("GGGG")
	g.AddEdge(a, b)
	g.AddEdge(b, c)

	g.ComputeReach()

	if !g.Reaches(a, c) {
		t.Fatalf("expected a to reach c transitively")
	}
	if g.Reaches(c, a) {
		t.Fatalf("did not expect c to reach a")
	}
}

func TestComputeReachBigTerminatesAtFirstBigNode(t *testing.T) {
	g := New()
	// a -> small -> big -> smaller_ignored
	a := g.AddNode("AAAA")
	small := g.AddNode("CCCC")
	big := g.AddNode("GGGGGGGGGG") // len 10
	beyond := g.AddNode("TTTT")
	g.AddEdge(a, small)
	g.AddEdge(small, big)
	g.AddEdge(big, beyond)

	g.ComputeReachBig(10)

	path, ok := g.ReachBig(a, big)
	if !ok {
		t.Fatalf("expected witness from a to big")
	}
	if len(path) != 1 || path[0] != small {
		t.Fatalf("expected witness [small], got %v", path)
	}
	if _, ok := g.ReachBig(a, beyond); ok {
		t.Fatalf("branch should have terminated at the big node")
	}
}

func TestUpdateWitnessOverwritesBothCaches(t *testing.T) {
	g := New()
	a := g.AddNode("AAAA")
	mid := g.AddNode("CCCC")
	big := g.AddNode("GGGGGGGGGG")
	g.AddEdge(a, mid)
	g.AddEdge(mid, big)

	g.ComputeReachBig(10)
	g.ComputeReachLimit(10, 1000)

	newPath := []int{}
	g.UpdateWitness(a, big, newPath)

	got, _ := g.ReachBig(a, big)
	if len(got) != 0 {
		t.Fatalf("expected overwritten witness to be empty, got %v", got)
	}
	got, _ = g.ReachLimit(a, big)
	if len(got) != 0 {
		t.Fatalf("expected overwritten limit witness to be empty, got %v", got)
	}
}

func TestReverseComplement(t *testing.T) {
	got := ReverseComplement("ACGT")
	if got != "ACGT" {
		t.Fatalf("ACGT should be its own reverse complement, got %s", got)
	}
	got = ReverseComplement("AAGG")
	if got != "CCTT" {
		t.Fatalf("expected CCTT, got %s", got)
	}
}

func TestBigContigs(t *testing.T) {
	g := New()
	g.AddNode("AAAA")           // len 4
	g.AddNode("GGGGGGGGGG")     // len 10
	big := g.BigContigs(10)
	if len(big) != 1 || big[0] != 2 {
		t.Fatalf("expected only node 2 to be a big contig, got %v", big)
	}
}
