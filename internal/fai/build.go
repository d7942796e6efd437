package fai

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/biogo/hts/fai"
)

// Build scans a FASTA stream and returns its layout index.
// Every record must use a constant line width except for its last line.
func Build(r io.Reader) (*Index, error) {
	raw, err := fai.NewIndex(r)
	if err != nil {
		return nil, fmt.Errorf("index FASTA: %w", err)
	}
	return fromRecords(raw), nil
}

// BuildFile indexes the FASTA at fastaPath and writes the index to
// fastaPath+".fai". The written file is returned alongside the parsed index.
func BuildFile(fastaPath string) (*Index, string, error) {
	in, err := os.Open(fastaPath)
	if err != nil {
		return nil, "", fmt.Errorf("open FASTA file: %w", err)
	}
	defer in.Close()

	raw, err := fai.NewIndex(in)
	if err != nil {
		return nil, "", fmt.Errorf("index FASTA: %w", err)
	}

	outPath := fastaPath + ".fai"
	out, err := os.Create(outPath)
	if err != nil {
		return nil, "", fmt.Errorf("create fai file: %w", err)
	}
	if err := fai.WriteTo(out, raw); err != nil {
		out.Close()
		os.Remove(outPath)
		return nil, "", fmt.Errorf("write fai file: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, "", fmt.Errorf("close fai file: %w", err)
	}

	return fromRecords(raw), outPath, nil
}

// fromRecords converts a biogo index, preserving file order.
func fromRecords(raw fai.Index) *Index {
	recs := make([]fai.Record, 0, len(raw))
	for _, rec := range raw {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Start < recs[j].Start
	})

	idx := &Index{layouts: make(map[string]Layout, len(recs))}
	for _, rec := range recs {
		idx.order = append(idx.order, rec.Name)
		idx.layouts[rec.Name] = Layout{
			Name:         rec.Name,
			Length:       int64(rec.Length),
			Offset:       rec.Start,
			BasesPerLine: uint32(rec.BasesPerLine),
			BytesPerLine: uint32(rec.BytesPerLine),
		}
	}
	return idx
}
