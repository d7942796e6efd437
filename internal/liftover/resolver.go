// Package liftover translates annotation coordinates from a reference genome
// into the coordinate system of a path through a gene-scoped subgraph.
//
// The gene's reference sequence must occur verbatim in the path sequence.
// Matching is exact byte equality: no mismatches, indels or strand flips are
// tolerated, and a missing match is an error rather than a guess.
package liftover

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/inodb/minigfa/internal/coord"
	"github.com/inodb/minigfa/internal/gtf"
	"github.com/inodb/minigfa/internal/seqerr"
)

// GenomeSource extracts reference sequence by 1-based coordinates.
type GenomeSource interface {
	Extract(chrom string, iv coord.Interval) (string, error)
}

// PathSource assembles the sequence spelled by a graph path.
type PathSource interface {
	PathSequence(name string) (string, error)
}

// Resolution is the outcome of aligning one gene to one path.
type Resolution struct {
	GeneID    string
	PathName  string
	Chrom     string
	GeneStart int64 // 1-based reference start of the gene
	GeneEnd   int64 // 1-based reference end of the gene
	MatchPos  int64 // 0-based position of the gene in the path sequence
	Offset    int64 // subtracted from every reference coordinate of the gene
}

// Matches reports whether r was derived from gene at its current location.
func (r Resolution) Matches(gene *gtf.Gene) bool {
	return r.GeneID == gene.ID &&
		r.Chrom == gene.Chrom &&
		r.GeneStart == gene.Interval.Start &&
		r.GeneEnd == gene.Interval.End
}

// Translate maps a reference interval of the gene into path coordinates.
func (r Resolution) Translate(iv coord.Interval) (coord.Interval, error) {
	out := iv.Shift(-r.Offset)
	if err := out.Validate(); err != nil {
		return coord.Interval{}, fmt.Errorf("%s shifted by %d: %w", iv, -r.Offset, seqerr.ErrOutOfRange)
	}
	return out, nil
}

// RewriteAnnotations writes the gene's records from in to out in path coordinates.
func (r Resolution) RewriteAnnotations(in io.Reader, out io.Writer) (int, error) {
	return gtf.Rewrite(in, out, r.GeneID, r.Translate)
}

// OffsetFor locates geneSeq inside pathSeq and returns the 0-based match
// position and the coordinate offset geneStart - matchPos - 1. The first
// occurrence wins.
func OffsetFor(geneSeq, pathSeq string, geneStart int64) (matchPos, offset int64, err error) {
	if geneSeq == "" {
		return 0, 0, fmt.Errorf("empty gene sequence: %w", seqerr.ErrSequenceNotFound)
	}
	pos := strings.Index(pathSeq, geneSeq)
	if pos < 0 {
		return 0, 0, fmt.Errorf("gene sequence of %d bases absent from path sequence of %d bases: %w",
			len(geneSeq), len(pathSeq), seqerr.ErrSequenceNotFound)
	}
	matchPos = int64(pos)
	return matchPos, geneStart - matchPos - 1, nil
}

// Resolver derives coordinate offsets for genes against graph paths.
// It is safe for concurrent use when its sources are.
type Resolver struct {
	genome GenomeSource
	graph  PathSource
	logger *zap.Logger

	group    singleflight.Group
	mu       sync.RWMutex
	pathSeqs map[string]string
}

// NewResolver creates a resolver over a reference genome and a graph.
func NewResolver(genome GenomeSource, graph PathSource) *Resolver {
	return &Resolver{
		genome:   genome,
		graph:    graph,
		logger:   zap.NewNop(),
		pathSeqs: make(map[string]string),
	}
}

// SetLogger sets the logger for debug and warning messages.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
}

// PathSequence returns the assembled sequence of a path. Each path is
// assembled once; concurrent callers share the work.
func (r *Resolver) PathSequence(name string) (string, error) {
	r.mu.RLock()
	seq, ok := r.pathSeqs[name]
	r.mu.RUnlock()
	if ok {
		return seq, nil
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		r.mu.RLock()
		seq, ok := r.pathSeqs[name]
		r.mu.RUnlock()
		if ok {
			return seq, nil
		}

		seq, err := r.graph.PathSequence(name)
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.pathSeqs[name] = seq
		r.mu.Unlock()
		r.logger.Debug("assembled path sequence",
			zap.String("path", name),
			zap.Int("length", len(seq)))
		return seq, nil
	})
	if err != nil {
		return "", fmt.Errorf("assemble path %s: %w", name, err)
	}
	return v.(string), nil
}

// Resolve aligns gene to pathName. The gene sequence is always taken from
// the forward strand of the reference.
func (r *Resolver) Resolve(gene *gtf.Gene, pathName string) (Resolution, error) {
	geneSeq, err := r.genome.Extract(gene.Chrom, gene.Interval)
	if err != nil {
		return Resolution{}, fmt.Errorf("extract gene %s at %s:%s: %w", gene.ID, gene.Chrom, gene.Interval, err)
	}

	pathSeq, err := r.PathSequence(pathName)
	if err != nil {
		return Resolution{}, err
	}

	matchPos, offset, err := OffsetFor(geneSeq, pathSeq, gene.Interval.Start)
	if err != nil {
		return Resolution{}, fmt.Errorf("gene %s in path %s: %w", gene.ID, pathName, err)
	}

	r.logger.Debug("resolved offset",
		zap.String("gene", gene.ID),
		zap.String("path", pathName),
		zap.Int64("match_pos", matchPos),
		zap.Int64("offset", offset))

	return Resolution{
		GeneID:    gene.ID,
		PathName:  pathName,
		Chrom:     gene.Chrom,
		GeneStart: gene.Interval.Start,
		GeneEnd:   gene.Interval.End,
		MatchPos:  matchPos,
		Offset:    offset,
	}, nil
}
