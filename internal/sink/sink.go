// Package sink writes a walk set out as a FASTA consensus file. It is
// the terminal step of every search iteration that checkpoints progress
// and of the final best-path output when the search loop ends.
package sink

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jjtimmons/gaml/internal/graph"
)

// Write renders walks as FASTA records, one per walk, consensus-joining
// each node's sequence against its predecessor by trimming the k-1 base
// overlap (or inserting one N base per base of a gap marker's length).
// Contig records whose walk contains a node at or above threshold are
// named "contig_big_N"; the rest are named "contig_N", both 0-indexed
// in walk order -- grounded on gaml.cc's OutputPathsToFile naming.
func Write(w io.Writer, walks [][]int, g *graph.Graph, k, threshold int) error {
	for i, walk := range walks {
		name := contigName(walk, g, i, threshold)
		seq := consensus(walk, g, k)
		if _, err := fmt.Fprintf(w, ">%s\n", name); err != nil {
			return fmt.Errorf("failed to write record header for %s: %w", name, err)
		}
		if err := writeWrapped(w, seq, 70); err != nil {
			return fmt.Errorf("failed to write sequence for %s: %w", name, err)
		}
	}
	return nil
}

// WriteFile writes walks to prefix+".fas", via a temp-file-then-rename
// so a reader never observes a partially written checkpoint --
// grounded on the write-then-persist shape of jjti-repp's internal/io
// output path, generalized to an atomic rename since checkpoints are
// written repeatedly over the life of a run rather than once.
func WriteFile(prefix string, walks [][]int, g *graph.Graph, k, threshold int) error {
	final := prefix + ".fas"
	tmp := final + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file %s: %w", tmp, err)
	}
	if err := Write(f, walks, g, k, threshold); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close checkpoint file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to rename checkpoint file into place: %w", err)
	}
	return nil
}

func contigName(walk []int, g *graph.Graph, idx, threshold int) string {
	for _, n := range walk {
		if _, isGap := graph.ParseGapMarker(n); isGap {
			continue
		}
		if g.Node(n).Len() >= threshold {
			return fmt.Sprintf("contig_big_%d", idx)
		}
	}
	return fmt.Sprintf("contig_%d", idx)
}

// consensus joins a walk's node sequences into one string, trimming the
// k-1 base overlap between consecutive nodes and filling gap markers
// with that many N bases.
func consensus(walk []int, g *graph.Graph, k int) string {
	var b strings.Builder
	for i, entry := range walk {
		if length, isGap := graph.ParseGapMarker(entry); isGap {
			b.WriteString(strings.Repeat("N", length))
			continue
		}
		seq := g.Node(entry).Seq
		if i == 0 || b.Len() == 0 {
			b.WriteString(seq)
			continue
		}
		overlap := k - 1
		if overlap > len(seq) {
			overlap = len(seq)
		}
		b.WriteString(seq[overlap:])
	}
	return b.String()
}

func writeWrapped(w io.Writer, seq string, width int) error {
	var buf bytes.Buffer
	for i := 0; i < len(seq); i += width {
		end := i + width
		if end > len(seq) {
			end = len(seq)
		}
		buf.WriteString(seq[i:end])
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}
