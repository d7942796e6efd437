// Package gtf reads GTF annotation records and rewrites their coordinates.
package gtf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/minigfa/internal/coord"
	"github.com/inodb/minigfa/internal/seqerr"
)

// GTF column indexes.
const (
	colChrom = iota
	colSource
	colFeature
	colStart
	colEnd
	colScore
	colStrand
	colPhase
	colAttributes
	numColumns
)

// Record is one parsed GTF feature line.
type Record struct {
	Fields     []string // raw columns, rewritten in place by SetInterval
	Chrom      string
	Feature    string
	Interval   coord.Interval // 1-based, inclusive
	Strand     string
	Attributes map[string]string
}

// GeneID returns the gene_id attribute.
func (r *Record) GeneID() string {
	return r.Attributes["gene_id"]
}

// SetInterval replaces the start and end columns.
func (r *Record) SetInterval(iv coord.Interval) {
	r.Interval = iv
	r.Fields[colStart] = strconv.FormatInt(iv.Start, 10)
	r.Fields[colEnd] = strconv.FormatInt(iv.End, 10)
}

// String renders the record as a tab-separated line without terminator.
func (r *Record) String() string {
	return strings.Join(r.Fields, "\t")
}

// Gene is the gene-level feature of an annotation.
type Gene struct {
	ID       string
	Name     string
	Chrom    string
	Interval coord.Interval
	Strand   int8 // +1 forward, -1 reverse
}

// ParseLine parses a single GTF line.
func ParseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < numColumns {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", seqerr.ErrMalformedRecord, numColumns, len(fields))
	}

	start, err := strconv.ParseInt(fields[colStart], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: parse start: %v", seqerr.ErrMalformedRecord, err)
	}
	end, err := strconv.ParseInt(fields[colEnd], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: parse end: %v", seqerr.ErrMalformedRecord, err)
	}
	iv, err := coord.NewInterval(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", seqerr.ErrMalformedRecord, err)
	}

	return &Record{
		Fields:     fields,
		Chrom:      fields[colChrom],
		Feature:    fields[colFeature],
		Interval:   iv,
		Strand:     fields[colStrand],
		Attributes: ParseAttributes(fields[colAttributes]),
	}, nil
}

// ParseAttributes parses the GTF attribute column.
// Format: key "value"; key "value"; ...
// Repeated keys keep the last value.
func ParseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}
		attrs[key] = strings.Trim(strings.TrimSpace(value), "\"")
	}

	return attrs
}

// matchesGene compares gene IDs, ignoring the version suffix when id has none.
func matchesGene(attr, id string) bool {
	if attr == id {
		return true
	}
	return !strings.Contains(id, ".") && stripVersion(attr) == id
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENSG00000133703.14" -> "ENSG00000133703"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}

func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// Open opens a GTF file for reading. Gzip input is detected by magic bytes.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GTF file: %w", err)
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		return &gzipFile{Reader: gz, f: f}, nil
	}

	return &plainFile{Reader: br, f: f}, nil
}

type plainFile struct {
	*bufio.Reader
	f *os.File
}

func (p *plainFile) Close() error {
	return p.f.Close()
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long attribute columns
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return scanner
}

// FindGene returns the first "gene" feature whose gene_id matches id.
func FindGene(r io.Reader, id string) (*Gene, error) {
	genes, err := FindGenes(r, []string{id})
	if err != nil {
		return nil, err
	}
	return genes[id], nil
}

// FindGenes returns the "gene" features for every requested id in one pass.
// Any id without a gene feature fails the call with seqerr.ErrNotFound.
func FindGenes(r io.Reader, ids []string) (map[string]*Gene, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	found := make(map[string]*Gene, len(ids))

	scanner := newScanner(r)
	lineNum := 0
	for scanner.Scan() && len(found) < len(want) {
		lineNum++
		line := scanner.Text()

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if rec.Feature != "gene" {
			continue
		}

		for id := range want {
			if _, done := found[id]; done || !matchesGene(rec.GeneID(), id) {
				continue
			}
			found[id] = &Gene{
				ID:       rec.GeneID(),
				Name:     rec.Attributes["gene_name"],
				Chrom:    rec.Chrom,
				Interval: rec.Interval,
				Strand:   parseStrand(rec.Strand),
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("gene %q: %w", id, seqerr.ErrNotFound)
		}
	}
	return found, nil
}
