package reads

import (
	"math"
	"testing"

	"github.com/jjtimmons/gaml/internal/graph"
)

func TestLogSumExp(t *testing.T) {
	got := logSumExp([]float64{math.Log(0.5), math.Log(0.5)})
	if math.Abs(got-math.Log(1.0)) > 1e-9 {
		t.Fatalf("logSumExp([ln0.5, ln0.5]) = %v, want ln(1)", got)
	}
}

func TestLogSumExpEmpty(t *testing.T) {
	if got := logSumExp(nil); !math.IsInf(got, -1) {
		t.Fatalf("logSumExp(nil) = %v, want -Inf", got)
	}
}

func TestNodePositions(t *testing.T) {
	g := graph.New()
	a := g.AddNode("AAAA")
	b := g.AddNode("CCCCCCC") // len 7

	walks := [][]int{{a, b}}
	pos := nodePositions(g, walks, 4) // k=4

	if pos[a].offset != 0 {
		t.Fatalf("expected node a at offset 0, got %d", pos[a].offset)
	}
	want := g.Node(a).Len() - (4 - 1)
	if pos[b].offset != want {
		t.Fatalf("expected node b at offset %d, got %d", want, pos[b].offset)
	}
}

func TestAdviceFiltersByFlag(t *testing.T) {
	advisor := NewSingle("advisor", "a.bam", 0.97, 0.01, -0.7, -10, 0, 50, 1, true)
	quiet := NewSingle("quiet", "q.bam", 0.97, 0.01, -0.7, -10, 0, 50, 1, false)

	libs := []Library{advisor, quiet}
	out := Advice(libs)
	if len(out) != 1 || out[0] != Library(advisor) {
		t.Fatalf("expected only the advisor library, got %v", out)
	}
}
