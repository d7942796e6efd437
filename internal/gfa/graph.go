package gfa

import (
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/inodb/minigfa/internal/dna"
)

// Graph gives random access to the segments and paths of one graph file.
//
// Lookups use io.ReaderAt, so a Graph may be shared between goroutines once
// opened. Each Graph owns its file handle.
type Graph struct {
	ra     io.ReaderAt
	closer io.Closer
	idx    *Index
}

// NewGraph creates a Graph over ra with a prebuilt index.
func NewGraph(ra io.ReaderAt, idx *Index) *Graph {
	return &Graph{ra: ra, idx: idx}
}

// Open indexes the graph file at path in one pass and keeps it open for lookups.
func Open(path string, opts BuildOptions) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}

	idx, err := BuildIndex(f, opts)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("index %s: %w", path, err)
	}

	return &Graph{ra: f, closer: f, idx: idx}, nil
}

// OpenWithIndex opens the graph file at path using an index built earlier
// for the same, unmodified file.
func OpenWithIndex(path string, idx *Index) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	return &Graph{ra: f, closer: f, idx: idx}, nil
}

// Close releases the underlying file, if the Graph owns one.
func (g *Graph) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

// Index returns the frozen index.
func (g *Graph) Index() *Index {
	return g.idx
}

// SegmentSequence reads the sequence of segment id from disk.
func (g *Graph) SegmentSequence(id string) (string, error) {
	r, err := g.idx.Segment(id)
	if err != nil {
		return "", err
	}
	b, err := r.Read(g.ra)
	if err != nil {
		return "", fmt.Errorf("read segment %s: %w", id, err)
	}
	return string(b), nil
}

// SegmentLength returns the sequence length of segment id without any I/O.
func (g *Graph) SegmentLength(id string) (int, error) {
	r, err := g.idx.Segment(id)
	if err != nil {
		return 0, err
	}
	return r.Len(), nil
}

// Path reads and parses the record of path name. Records are not cached;
// every call re-reads the line.
func (g *Graph) Path(name string) (*Path, error) {
	r, err := g.idx.Path(name)
	if err != nil {
		return nil, err
	}
	b, err := r.Read(g.ra)
	if err != nil {
		return nil, fmt.Errorf("read path %s: %w", name, err)
	}
	p, err := ParsePath(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse path %s: %w", name, err)
	}
	return p, nil
}

// PathSequence assembles the nucleotide sequence spelled by path name:
// segment sequences concatenated in step order, reverse-complemented for
// reverse steps, with nothing between them.
func (g *Graph) PathSequence(name string) (string, error) {
	p, err := g.Path(name)
	if err != nil {
		return "", err
	}

	steps, err := p.Steps()
	if err != nil {
		return "", err
	}

	total := 0
	for i, st := range steps {
		n, err := g.SegmentLength(st.SegmentID)
		if err != nil {
			return "", fmt.Errorf("path %s step %d: %w", name, i, err)
		}
		total += n
	}

	var sb strings.Builder
	sb.Grow(total)
	for i, st := range steps {
		seq, err := g.SegmentSequence(st.SegmentID)
		if err != nil {
			return "", fmt.Errorf("path %s step %d: %w", name, i, err)
		}
		if st.Orientation == Reverse {
			seq, err = dna.ReverseComplement(seq)
			if err != nil {
				return "", fmt.Errorf("path %s step %d segment %s: %w", name, i, st.SegmentID, err)
			}
		}
		sb.WriteString(seq)
	}
	return sb.String(), nil
}

// PathNames returns all path names, sorted.
func (g *Graph) PathNames() []string {
	return g.idx.PathNames()
}

// PathCount returns the number of paths in the graph.
func (g *Graph) PathCount() int {
	return g.idx.PathCount()
}

// SegmentCount returns the number of segments in the graph.
func (g *Graph) SegmentCount() int {
	return g.idx.SegmentCount()
}

// Paths iterates over all paths in name order. Iteration continues after a
// path fails to load; the error is yielded with a nil path.
func (g *Graph) Paths() iter.Seq2[*Path, error] {
	return g.PathsWithPrefix("")
}

// PathsWithPrefix is like Paths restricted to names starting with prefix.
func (g *Graph) PathsWithPrefix(prefix string) iter.Seq2[*Path, error] {
	return func(yield func(*Path, error) bool) {
		for _, name := range g.idx.PathNamesWithPrefix(prefix) {
			if !yield(g.Path(name)) {
				return
			}
		}
	}
}
