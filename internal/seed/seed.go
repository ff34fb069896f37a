// Package seed imports a pre-existing assembly (a FASTA file of already
// assembled contigs) and aligns it against the sequence graph to
// materialize a starting walk set, so a search run can begin from a
// previous result instead of one singleton walk per big-contig node.
// This is a separate, non-hot-path pipeline from the Search Driver.
package seed

import (
	"bufio"
	"container/list"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jjtimmons/gaml/internal/graph"
	"github.com/jjtimmons/gaml/internal/moves"
)

var unwantedChars = regexp.MustCompile(`(?i)[^ACGTN]`)

// readContigs parses a FASTA file into a name -> sequence map, in the
// teacher's ReadFASTA style (split on newlines, gather sequence lines
// between headers) adapted to keep names rather than build
// frag.Fragment records.
func readContigs(path string) (map[string]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open assembly file %s: %w", path, err)
	}
	defer f.Close()

	contigs := make(map[string]string)
	var order []string
	var name string
	var buf strings.Builder

	flush := func() {
		if name != "" {
			contigs[name] = unwantedChars.ReplaceAllString(buf.String(), "")
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<28)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			name = strings.Fields(line[1:])[0]
			order = append(order, name)
			buf.Reset()
			continue
		}
		buf.WriteString(strings.ToUpper(line))
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading assembly file %s: %w", path, err)
	}
	return contigs, order, nil
}

// BaseEq reports whether a matches the (possibly ambiguous) reference
// base b, honoring the IUPAC ambiguity codes gaml.cc's BaseEq supports.
func BaseEq(a, b byte) bool {
	if a == b {
		return true
	}
	switch b {
	case 'R':
		return a == 'A' || a == 'G'
	case 'Y':
		return a == 'C' || a == 'T'
	case 'K':
		return a == 'G' || a == 'T'
	case 'M':
		return a == 'A' || a == 'C'
	case 'S':
		return a == 'C' || a == 'G'
	case 'W':
		return a == 'A' || a == 'T'
	}
	return false
}

// pos is one state in AlignContig's 0-1 BFS: a position within the
// contig being aligned paired with a position within the graph node
// currently being walked, plus the accumulated mismatch distance that
// keeps the search bounded.
type pos struct {
	contigPos int
	nodePos   int
	node      int
	dist      int
	path      []int
}

func (p pos) key() [4]int { return [4]int{p.contigPos, p.nodePos, p.node, p.dist} }

const maxAlignDist = 10

// AlignContig walks a 0-1 BFS (zero-cost base match, unit-cost mismatch
// or indel) from start through the graph, consuming contig from the
// current offset, until it exhausts the contig (target == -1) or
// reaches target exactly as the contig is exhausted. It returns the
// node path taken between start and the terminal node, exclusive of
// start. Grounded directly on gaml.cc's AlignContig.
func AlignContig(g *graph.Graph, start, target int, contig string) ([]int, bool) {
	fr := list.New()
	visited := make(map[[4]int]bool)

	push := func(p pos, front bool) {
		k := p.key()
		if visited[k] {
			return
		}
		visited[k] = true
		if front {
			fr.PushFront(p)
		} else {
			fr.PushBack(p)
		}
	}

	start0 := pos{contigPos: 0, nodePos: g.Node(start).Len(), node: start}
	push(start0, false)

	for fr.Len() > 0 {
		front := fr.Front()
		fr.Remove(front)
		x := front.Value.(pos)

		if x.contigPos > len(contig) {
			continue
		}
		if x.dist < maxAlignDist {
			nx := pos{contigPos: x.contigPos + 1, nodePos: x.nodePos, node: x.node, dist: x.dist + 1, path: x.path}
			push(nx, false)
		}
		if target == -1 && x.contigPos == len(contig) {
			return x.path, true
		}

		if x.nodePos == g.Node(x.node).Len() {
			for _, nnode := range g.Successors(x.node) {
				if nnode == target && x.contigPos == len(contig) {
					return x.path, true
				}
				if x.contigPos >= len(contig) {
					continue
				}
				nextSeq := g.Node(nnode).Seq
				if len(nextSeq) == 0 {
					continue
				}
				if BaseEq(nextSeq[0], contig[x.contigPos]) {
					p := appendPath(x.path, nnode)
					push(pos{contigPos: x.contigPos + 1, nodePos: 1, node: nnode, dist: x.dist, path: p}, true)
				} else if x.dist < maxAlignDist {
					p := appendPath(x.path, nnode)
					push(pos{contigPos: x.contigPos + 1, nodePos: 1, node: nnode, dist: x.dist + 1, path: p}, false)
					push(pos{contigPos: x.contigPos, nodePos: 1, node: nnode, dist: x.dist + 1, path: p}, false)
				}
			}
		} else {
			if x.contigPos >= len(contig) {
				continue
			}
			seq := g.Node(x.node).Seq
			if BaseEq(seq[x.nodePos], contig[x.contigPos]) {
				push(pos{contigPos: x.contigPos + 1, nodePos: x.nodePos + 1, node: x.node, dist: x.dist, path: x.path}, true)
			} else if x.dist < maxAlignDist {
				push(pos{contigPos: x.contigPos + 1, nodePos: x.nodePos + 1, node: x.node, dist: x.dist + 1, path: x.path}, false)
				push(pos{contigPos: x.contigPos, nodePos: x.nodePos + 1, node: x.node, dist: x.dist + 1, path: x.path}, false)
			}
		}
	}
	return nil, false
}

func appendPath(path []int, n int) []int {
	next := make([]int, len(path)+1)
	copy(next, path)
	next[len(path)] = n
	return next
}

// anchor is one exact-match placement of a graph node within a contig,
// the substring-search stand-in for the external exact-matcher gaml.cc
// shells out to (nucmer) -- out of scope per the alignment-collaborator
// non-goal, so placements here come from direct substring search over
// the in-memory node sequences instead of an external coordinate file.
type anchor struct {
	contigPos int
	node      int
}

// findAnchors returns every node of at least minAnchorLen bases that
// occurs verbatim in contig, in ascending contig-position order ties
// broken by node id -- the exact-match seed gaml.cc's nucmer pass would
// otherwise supply.
func findAnchors(g *graph.Graph, contig string, minAnchorLen int) []anchor {
	var anchors []anchor
	for id := 0; id < g.NumNodes(); id++ {
		seq := g.Node(id).Seq
		if len(seq) < minAnchorLen {
			continue
		}
		for start := 0; ; {
			idx := strings.Index(contig[start:], seq)
			if idx < 0 {
				break
			}
			pos := start + idx
			anchors = append(anchors, anchor{contigPos: pos, node: id})
			start = pos + 1
		}
	}
	sortAnchors(anchors)
	return anchors
}

func sortAnchors(a []anchor) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && (a[j].contigPos < a[j-1].contigPos ||
			(a[j].contigPos == a[j-1].contigPos && a[j].node < a[j-1].node)); j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

// alignmentToPath stitches a sorted anchor list into one walk, filling
// the span between consecutive anchors either by a short AlignContig
// bridge or, when the span holds more than four N bases or no bridge is
// found, a gap marker of the span's length -- grounded on gaml.cc's
// AligmentToPath.
func alignmentToPath(g *graph.Graph, anchors []anchor, contig string) []int {
	if len(anchors) == 0 {
		return nil
	}
	path := []int{anchors[0].node}
	last := anchors[0].contigPos + g.Node(anchors[0].node).Len()

	for i := 1; i < len(anchors); i++ {
		cur := anchors[i].contigPos
		if cur < last {
			// Overlapping anchor; gaml.cc logs and keeps going rather
			// than dropping the contig.
		} else if last < cur {
			gapSeq := contig[last:cur]
			if strings.Count(gapSeq, "N") > 4 {
				path = append(path, -(cur - last))
			} else if bridge, ok := AlignContig(g, path[len(path)-1], anchors[i].node, gapSeq); ok {
				path = append(path, bridge...)
			} else {
				path = append(path, -(cur - last))
			}
		}
		last = anchors[i].contigPos + g.Node(anchors[i].node).Len()
		path = append(path, anchors[i].node)
	}
	return path
}

// minAnchorLen mirrors gaml.cc's GetPaths cutoff for which graph nodes
// are offered to the external matcher (nodes shorter than this are too
// likely to match spuriously).
const minAnchorLen = 50

// GetPaths aligns every contig in the assembly FASTA at assemblyPath
// against g, returning one walk per contig that had at least one
// anchor. Contigs with no anchor are silently dropped, matching
// gaml.cc's GetPaths (a contig with no alignment simply isn't added to
// paths).
func GetPaths(g *graph.Graph, assemblyPath string) (moves.WalkSet, error) {
	contigs, order, err := readContigs(assemblyPath)
	if err != nil {
		return nil, err
	}

	var paths moves.WalkSet
	for _, name := range order {
		contig := contigs[name]
		anchors := findAnchors(g, contig, minAnchorLen)
		if len(anchors) == 0 {
			continue
		}
		paths = append(paths, alignmentToPath(g, anchors, contig))
	}
	return paths, nil
}

// ClipPaths trims every walk down to the span between its first and
// last node at or above threshold, dropping walks with no such node
// entirely -- gaml.cc's ClipPaths.
func ClipPaths(paths moves.WalkSet, g *graph.Graph, threshold int) moves.WalkSet {
	var out moves.WalkSet
	for _, p := range paths {
		b, e := -1, -1
		for i, n := range p {
			if n < 0 {
				continue
			}
			if g.Node(n).Len() >= threshold {
				e = i
				if b == -1 {
					b = i
				}
			}
		}
		if b == -1 {
			continue
		}
		out = append(out, append([]int{}, p[b:e+1]...))
	}
	return out
}

// AddMissingBigNodes appends a singleton walk for every big-contig node
// not already covered by paths. Shares moves.InsertMissingBigNodes with
// the Search Driver's post-move sweep since both need the same
// canonical-id coverage check -- gaml.cc's AddMissingBigNodes.
func AddMissingBigNodes(paths moves.WalkSet, g *graph.Graph, threshold int) moves.WalkSet {
	return moves.InsertMissingBigNodes(paths, g, threshold)
}

// GraphFromAssembly covers the no-graph combined-builder branch: when a
// run is given only a starting assembly and no graph file, each contig
// becomes a standalone node with no inferred adjacency (building a real
// overlap graph from raw contigs is out of scope, per the graph
// construction non-goal), and the walk set is one singleton per contig.
func GraphFromAssembly(assemblyPath string) (*graph.Graph, moves.WalkSet, error) {
	contigs, order, err := readContigs(assemblyPath)
	if err != nil {
		return nil, nil, err
	}
	g := graph.New()
	var paths moves.WalkSet
	for _, name := range order {
		id := g.AddNode(contigs[name])
		paths = append(paths, []int{id})
	}
	return g, paths, nil
}
