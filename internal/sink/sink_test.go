package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jjtimmons/gaml/internal/graph"
)

func buildTestGraph() *graph.Graph {
	g := graph.New()
	g.AddNode("AAAAAA")
	g.AddNode("AAAAAGG") // overlaps the first 5 bases (k=6 -> overlap 5)
	return g
}

func TestWriteJoinsOverlap(t *testing.T) {
	g := buildTestGraph()
	walks := [][]int{{0, 2}}

	var buf bytes.Buffer
	if err := Write(&buf, walks, g, 6, 500); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, ">contig_0\n") {
		t.Fatalf("expected a contig_0 header, got %q", out)
	}
	if !strings.Contains(out, "AAAAAAGG") {
		t.Fatalf("expected overlap-trimmed consensus AAAAAAGG in output, got %q", out)
	}
}

func TestWriteNamesBigContigs(t *testing.T) {
	g := graph.New()
	g.AddNode(strings.Repeat("A", 600))
	walks := [][]int{{0}}

	var buf bytes.Buffer
	if err := Write(&buf, walks, g, 6, 500); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), ">contig_big_0\n") {
		t.Fatalf("expected contig_big_0 header for a node over threshold, got %q", buf.String())
	}
}

func TestWriteFillsGapWithNs(t *testing.T) {
	g := buildTestGraph()
	walks := [][]int{{0, -4, 2}}

	var buf bytes.Buffer
	if err := Write(&buf, walks, g, 6, 500); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "NNNN") {
		t.Fatalf("expected 4 N bases for the gap marker, got %q", buf.String())
	}
}

func TestWriteFileAtomicRename(t *testing.T) {
	g := buildTestGraph()
	walks := [][]int{{0, 2}}
	dir := t.TempDir()
	prefix := filepath.Join(dir, "out")

	if err := WriteFile(prefix, walks, g, 6, 500); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := os.Stat(prefix + ".fas.tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected the temp file to be renamed away, stat err = %v", err)
	}
	data, err := os.ReadFile(prefix + ".fas")
	if err != nil {
		t.Fatalf("expected final output file to exist: %v", err)
	}
	if !strings.Contains(string(data), "AAAAAAGG") {
		t.Fatalf("expected consensus sequence in final file, got %q", string(data))
	}
}
