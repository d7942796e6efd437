// Package fasta provides random access to line-wrapped FASTA files through a
// layout index, without loading records into memory.
package fasta

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/inodb/minigfa/internal/coord"
	"github.com/inodb/minigfa/internal/fai"
	"github.com/inodb/minigfa/internal/seqerr"
)

// Reader extracts subsequences from a wrapped FASTA file.
//
// Reads go through io.ReaderAt, so a single Reader may serve concurrent
// Extract calls; there is no shared file position to race on.
type Reader struct {
	ra     io.ReaderAt
	closer io.Closer
	idx    *fai.Index
}

// NewReader creates a Reader over ra using the given layout index.
func NewReader(ra io.ReaderAt, idx *fai.Index) *Reader {
	return &Reader{ra: ra, idx: idx}
}

// Open opens fastaPath with the layout index at faiPath.
// An empty faiPath defaults to fastaPath+".fai".
func Open(fastaPath, faiPath string) (*Reader, error) {
	if faiPath == "" {
		faiPath = fastaPath + ".fai"
	}
	idx, err := fai.Load(faiPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fastaPath)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}

	return &Reader{ra: f, closer: f, idx: idx}, nil
}

// Index returns the layout index backing the reader.
func (r *Reader) Index() *fai.Index {
	return r.idx
}

// Close releases the underlying file, if the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ByteRange returns the exact bytes spanned by iv on chrom, terminators included.
func (r *Reader) ByteRange(chrom string, iv coord.Interval) (coord.ByteRange, error) {
	l, err := r.idx.Lookup(chrom)
	if err != nil {
		return coord.ByteRange{}, err
	}
	return ByteRangeFor(l, iv)
}

// ByteRangeFor maps a 1-based inclusive interval to the byte range it
// occupies in a record with layout l.
//
// With s and e the 0-based first and last positions, w bases per line and
// t terminator bytes per line:
//
//	start = offset + (s/w)*t + s
//	count = (e-s) + (e/w - s/w)*t + 1
func ByteRangeFor(l fai.Layout, iv coord.Interval) (coord.ByteRange, error) {
	if err := iv.Validate(); err != nil {
		return coord.ByteRange{}, fmt.Errorf("%s:%s: %w", l.Name, iv, seqerr.ErrOutOfRange)
	}
	if l.Length > 0 && iv.End > l.Length {
		return coord.ByteRange{}, fmt.Errorf("%s:%s beyond record length %d: %w",
			l.Name, iv, l.Length, seqerr.ErrOutOfRange)
	}
	if l.BasesPerLine == 0 {
		return coord.ByteRange{}, fmt.Errorf("%s: zero bases per line: %w", l.Name, seqerr.ErrMalformedIndex)
	}

	s, e := iv.Start0(), iv.End0()
	width := int64(l.BasesPerLine)
	term := l.TerminatorWidth()

	linesBeforeStart := s / width
	start := l.Offset + linesBeforeStart*term + s
	newlines := e/width - linesBeforeStart
	count := (e - s) + newlines*term + 1

	return coord.NewByteRange(start, int(count))
}

// Extract returns the bases of chrom covered by iv with line terminators removed.
func (r *Reader) Extract(chrom string, iv coord.Interval) (string, error) {
	br, err := r.ByteRange(chrom, iv)
	if err != nil {
		return "", err
	}

	raw, err := br.Read(r.ra)
	if err != nil {
		return "", fmt.Errorf("extract %s:%s: %w", chrom, iv, err)
	}

	seq := stripTerminators(raw)
	if bytes.IndexByte(seq, '>') >= 0 {
		return "", fmt.Errorf("extract %s:%s crosses into the next record: %w", chrom, iv, seqerr.ErrOutOfRange)
	}
	if int64(len(seq)) != iv.Len() {
		return "", fmt.Errorf("extract %s:%s: got %d bases, want %d: %w",
			chrom, iv, len(seq), iv.Len(), seqerr.ErrMalformedIndex)
	}
	return string(seq), nil
}

// ExtractRegion parses a "chrom:start-end" region and extracts it.
func (r *Reader) ExtractRegion(region string) (string, error) {
	chrom, iv, err := coord.ParseRegion(region)
	if err != nil {
		return "", err
	}
	return r.Extract(chrom, iv)
}

// stripTerminators removes '\n' and '\r' in place.
func stripTerminators(b []byte) []byte {
	out := b[:0]
	for _, c := range b {
		if c == '\n' || c == '\r' {
			continue
		}
		out = append(out, c)
	}
	return out
}
