// Package gfa provides byte-indexed random access to segments and paths of
// GFA assembly graph files.
//
// Only S (segment) and P (path) records are indexed; every other line type
// is skipped. An index is built in one sequential pass and frozen; after
// that it is read-only and may be shared between goroutines.
package gfa

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"

	"github.com/armon/go-radix"

	"github.com/inodb/minigfa/internal/coord"
	"github.com/inodb/minigfa/internal/seqerr"
)

// Record type tags.
const (
	SegmentTag = "S"
	PathTag    = "P"
)

// BuildOptions control index construction.
type BuildOptions struct {
	// Strict rejects repeated segment or path identifiers with
	// seqerr.ErrDuplicateRecord. When false, the last record wins.
	Strict bool
}

// errFrozen is returned when a finalized builder is reused.
var errFrozen = errors.New("index builder already finalized")

// IndexBuilder accumulates segment and path locations while the graph file
// is streamed through Add, one line at a time and in file order.
type IndexBuilder struct {
	opts     BuildOptions
	segments map[string]coord.ByteRange
	paths    map[string]coord.ByteRange
	cursor   int64 // byte offset of the next line
	line     int
	frozen   bool
}

// NewIndexBuilder creates an empty builder.
func NewIndexBuilder(opts BuildOptions) *IndexBuilder {
	return &IndexBuilder{
		opts:     opts,
		segments: make(map[string]coord.ByteRange),
		paths:    make(map[string]coord.ByteRange),
	}
}

// Add consumes one raw line, including its terminator if present.
// The cursor advances by the number of bytes given, whatever the line holds.
func (b *IndexBuilder) Add(raw []byte) error {
	if b.frozen {
		return errFrozen
	}
	start := b.cursor
	b.cursor += int64(len(raw))
	b.line++

	content := bytes.TrimSuffix(raw, []byte{'\n'})
	content = bytes.TrimSuffix(content, []byte{'\r'})
	if len(content) == 0 {
		return nil
	}

	tag, _, _ := bytes.Cut(content, []byte{'\t'})
	switch string(tag) {
	case SegmentTag:
		return b.addSegment(start, content)
	case PathTag:
		return b.addPath(start, content)
	}
	return nil
}

// addSegment records the byte range of the sequence column only:
// offset = line start + len(tag) + len(name) + 2 tab separators.
func (b *IndexBuilder) addSegment(start int64, content []byte) error {
	fields := bytes.SplitN(content, []byte{'\t'}, 4)
	if len(fields) < 3 {
		return seqerr.Recordf(b.line, seqerr.ErrMalformedRecord,
			"segment record has %d fields, want at least 3", len(fields))
	}
	name := string(fields[1])
	if name == "" {
		return seqerr.Recordf(b.line, seqerr.ErrMalformedRecord, "segment record without name")
	}

	offset := start + int64(len(fields[0])) + int64(len(fields[1])) + 2
	r, err := coord.NewByteRange(offset, len(fields[2]))
	if err != nil {
		return seqerr.Recordf(b.line, seqerr.ErrMalformedRecord, "segment %s: %v", name, err)
	}
	return b.put(b.segments, "segment", name, r)
}

// addPath records the byte range of the whole line so the step list can be
// re-parsed on demand.
func (b *IndexBuilder) addPath(start int64, content []byte) error {
	fields := bytes.SplitN(content, []byte{'\t'}, 4)
	if len(fields) < 3 {
		return seqerr.Recordf(b.line, seqerr.ErrMalformedRecord,
			"path record has %d fields, want at least 3", len(fields))
	}
	name := string(fields[1])
	if name == "" {
		return seqerr.Recordf(b.line, seqerr.ErrMalformedRecord, "path record without name")
	}

	r, err := coord.NewByteRange(start, len(content))
	if err != nil {
		return seqerr.Recordf(b.line, seqerr.ErrMalformedRecord, "path %s: %v", name, err)
	}
	return b.put(b.paths, "path", name, r)
}

func (b *IndexBuilder) put(m map[string]coord.ByteRange, kind, name string, r coord.ByteRange) error {
	if b.opts.Strict {
		if _, dup := m[name]; dup {
			return seqerr.Recordf(b.line, seqerr.ErrDuplicateRecord, "%s %s", kind, name)
		}
	}
	m[name] = r
	return nil
}

// Finalize freezes the builder and returns the immutable index.
// The builder cannot be used afterwards.
func (b *IndexBuilder) Finalize() *Index {
	b.frozen = true
	idx := newIndex(b.segments, b.paths)
	b.segments, b.paths = nil, nil
	return idx
}

// BuildIndex streams r once and returns the frozen index.
// On any error no index is returned.
func BuildIndex(r io.Reader, opts BuildOptions) (*Index, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	b := NewIndexBuilder(opts)

	for {
		raw, err := reader.ReadBytes('\n')
		if len(raw) > 0 {
			if addErr := b.Add(raw); addErr != nil {
				return nil, addErr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read graph: %w", err)
		}
	}

	return b.Finalize(), nil
}

// Index holds the frozen segment and path locations of one graph file.
type Index struct {
	segments map[string]coord.ByteRange // segment id -> sequence column
	paths    map[string]coord.ByteRange // path name -> whole record line
	names    *radix.Tree                // path names, for ordered and prefix listing
}

func newIndex(segments, paths map[string]coord.ByteRange) *Index {
	if segments == nil {
		segments = make(map[string]coord.ByteRange)
	}
	if paths == nil {
		paths = make(map[string]coord.ByteRange)
	}
	names := radix.New()
	for name := range paths {
		names.Insert(name, nil)
	}
	return &Index{segments: segments, paths: paths, names: names}
}

// Segment returns the location of a segment's sequence.
func (idx *Index) Segment(id string) (coord.ByteRange, error) {
	r, ok := idx.segments[id]
	if !ok {
		return coord.ByteRange{}, fmt.Errorf("segment %q: %w", id, seqerr.ErrNotFound)
	}
	return r, nil
}

// Path returns the location of a path's record line.
func (idx *Index) Path(name string) (coord.ByteRange, error) {
	r, ok := idx.paths[name]
	if !ok {
		return coord.ByteRange{}, fmt.Errorf("path %q: %w", name, seqerr.ErrNotFound)
	}
	return r, nil
}

// SegmentCount returns the number of indexed segments.
func (idx *Index) SegmentCount() int {
	return len(idx.segments)
}

// PathCount returns the number of indexed paths.
func (idx *Index) PathCount() int {
	return len(idx.paths)
}

// PathNames returns all path names, sorted.
func (idx *Index) PathNames() []string {
	return idx.PathNamesWithPrefix("")
}

// PathNamesWithPrefix returns the sorted path names starting with prefix,
// e.g. "HG002#1#" for one haplotype of a PanSN-named graph.
func (idx *Index) PathNamesWithPrefix(prefix string) []string {
	names := make([]string, 0)
	idx.names.WalkPrefix(prefix, func(name string, _ interface{}) bool {
		names = append(names, name)
		return false
	})
	return names
}

// Snapshot is the serializable form of an Index.
type Snapshot struct {
	Segments map[string]coord.ByteRange
	Paths    map[string]coord.ByteRange
}

// Snapshot returns a copy of the index contents.
func (idx *Index) Snapshot() Snapshot {
	return Snapshot{
		Segments: maps.Clone(idx.segments),
		Paths:    maps.Clone(idx.paths),
	}
}

// IndexFromSnapshot rebuilds a frozen index from a snapshot.
func IndexFromSnapshot(s Snapshot) *Index {
	return newIndex(maps.Clone(s.Segments), maps.Clone(s.Paths))
}
