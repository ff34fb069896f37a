package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gaml.conf")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadGlobals(t *testing.T) {
	path := writeTempConfig(t, `
graph=asm.graph
output_prefix=out
long_contig_threshold=1000
max_iterations=200
t0=0.5
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Graph != "asm.graph" {
		t.Errorf("Graph = %q, want asm.graph", c.Graph)
	}
	if c.LongContigThreshold != 1000 {
		t.Errorf("LongContigThreshold = %d, want 1000", c.LongContigThreshold)
	}
	if c.MaxIterations != 200 {
		t.Errorf("MaxIterations = %d, want 200", c.MaxIterations)
	}
	if c.T0 != 0.5 {
		t.Errorf("T0 = %v, want 0.5", c.T0)
	}
}

func TestLoadMissingGraphIsError(t *testing.T) {
	path := writeTempConfig(t, "output_prefix=out\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error when graph and starting_assembly are both absent")
	}
}

func TestLoadReadSetSection(t *testing.T) {
	path := writeTempConfig(t, `
graph=asm.graph

[lib1]
type=paired
filename1=a.bam
filename2=b.bam
insert_mean=300
insert_std=30
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	rs, ok := c.ReadSets["lib1"]
	if !ok {
		t.Fatalf("expected read set lib1 to be present")
	}
	if rs.Type != "paired" || rs.Filename1 != "a.bam" || rs.Filename2 != "b.bam" {
		t.Errorf("unexpected read set contents: %+v", rs)
	}
	if rs.InsertMean != 300 || rs.InsertStd != 30 {
		t.Errorf("unexpected insert stats: %+v", rs)
	}
	// defaulted fields carried from newReadSetConfig
	if rs.Weight != 1 {
		t.Errorf("Weight = %v, want default 1", rs.Weight)
	}
}

func TestFinalizeReadSetsDropsIncomplete(t *testing.T) {
	path := writeTempConfig(t, `
graph=asm.graph

[good]
type=single
filename=reads.bam

[bad]
type=paired
filename1=a.bam
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, ok := c.ReadSets["good"]; !ok {
		t.Errorf("expected good read set to survive")
	}
	if _, ok := c.ReadSets["bad"]; ok {
		t.Errorf("expected bad read set (missing filename2) to be dropped")
	}
}

func TestLoadUnknownKeysIgnored(t *testing.T) {
	path := writeTempConfig(t, "graph=asm.graph\nsome_future_key=123\n")
	if _, err := Load(path); err != nil {
		t.Fatalf("unknown keys should not cause an error: %v", err)
	}
}

func TestLoadDoProprocessPinsSingleIteration(t *testing.T) {
	path := writeTempConfig(t, "graph=asm.graph\nmax_iterations=9999\ndo_proprocess=1\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !c.DoPostprocess {
		t.Errorf("expected DoPostprocess to be true")
	}
	if c.MaxIterations != 1 {
		t.Errorf("MaxIterations = %d, want 1 when do_proprocess is set", c.MaxIterations)
	}
}

func TestMismatchProbRecomputesMatchProb(t *testing.T) {
	path := writeTempConfig(t, `
graph=asm.graph

[lib1]
type=single
filename=reads.bam
mismatch_prob=0.02
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	rs := c.ReadSets["lib1"]
	want := 1 - 4*0.02
	if rs.MatchProb != want {
		t.Errorf("MatchProb = %v, want %v", rs.MatchProb, want)
	}
}

func TestParseConfigLine(t *testing.T) {
	key, value, ok := parseConfigLine("graph=asm.graph")
	if !ok || key != "graph" || value != "asm.graph" {
		t.Fatalf("parseConfigLine returned (%q, %q, %v)", key, value, ok)
	}
	if _, _, ok := parseConfigLine("no equals sign here"); ok {
		t.Fatalf("expected malformed line to report ok=false")
	}
}
