// Package fai reads and builds line-layout indexes (.fai) for line-wrapped FASTA files.
//
// Each index line is tab-separated:
//
//	name  length  dataStartOffset  basesPerLine  bytesPerLine
//
// The length column is informational; it is used for bounds checks when it
// parses and ignored otherwise.
package fai

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/minigfa/internal/seqerr"
)

// Layout describes how one record's bases are laid out in the FASTA file.
type Layout struct {
	Name         string
	Length       int64  // total bases, 0 if unknown
	Offset       int64  // byte offset of the first base
	BasesPerLine uint32 // bases on every full line
	BytesPerLine uint32 // bytes on every full line, terminator included
}

// TerminatorWidth returns the number of line-terminator bytes per line.
func (l Layout) TerminatorWidth() int64 {
	return int64(l.BytesPerLine) - int64(l.BasesPerLine)
}

// Index maps record names to their layouts. It is immutable after
// construction and safe for concurrent lookups.
type Index struct {
	layouts map[string]Layout
	order   []string
}

// Lookup returns the layout for name.
func (idx *Index) Lookup(name string) (Layout, error) {
	l, ok := idx.layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("layout for %q: %w", name, seqerr.ErrNotFound)
	}
	return l, nil
}

// Names returns record names in file order.
func (idx *Index) Names() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

// Len returns the number of records.
func (idx *Index) Len() int {
	return len(idx.order)
}

// Load opens and parses an index file.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fai file: %w", err)
	}
	defer f.Close()

	idx, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return idx, nil
}

// Parse reads an index from r. Empty lines are skipped. A repeated name
// replaces the earlier entry.
func Parse(r io.Reader) (*Index, error) {
	scanner := bufio.NewScanner(r)

	idx := &Index{layouts: make(map[string]Layout)}
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		l, err := parseLine(line, lineNum)
		if err != nil {
			return nil, err
		}
		if _, seen := idx.layouts[l.Name]; !seen {
			idx.order = append(idx.order, l.Name)
		}
		idx.layouts[l.Name] = l
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan fai: %w", err)
	}
	return idx, nil
}

func parseLine(line string, lineNum int) (Layout, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return Layout{}, seqerr.Recordf(lineNum, seqerr.ErrMalformedIndex,
			"expected 5 fields, got %d", len(fields))
	}

	l := Layout{Name: fields[0]}
	if l.Name == "" {
		return Layout{}, seqerr.Recordf(lineNum, seqerr.ErrMalformedIndex, "empty record name")
	}

	// Length is advisory.
	if n, err := strconv.ParseInt(fields[1], 10, 64); err == nil && n > 0 {
		l.Length = n
	}

	offset, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || offset < 0 {
		return Layout{}, seqerr.Recordf(lineNum, seqerr.ErrMalformedIndex,
			"invalid data offset %q", fields[2])
	}
	bases, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil || bases == 0 {
		return Layout{}, seqerr.Recordf(lineNum, seqerr.ErrMalformedIndex,
			"invalid bases per line %q", fields[3])
	}
	width, err := strconv.ParseUint(fields[4], 10, 32)
	if err != nil {
		return Layout{}, seqerr.Recordf(lineNum, seqerr.ErrMalformedIndex,
			"invalid bytes per line %q", fields[4])
	}
	if width < bases {
		return Layout{}, seqerr.Recordf(lineNum, seqerr.ErrMalformedIndex,
			"bytes per line %d smaller than bases per line %d", width, bases)
	}

	l.Offset = offset
	l.BasesPerLine = uint32(bases)
	l.BytesPerLine = uint32(width)
	return l, nil
}
