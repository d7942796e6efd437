package gtf

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/inodb/minigfa/internal/coord"
	"github.com/inodb/minigfa/internal/seqerr"
)

// TranslateFunc maps an annotation interval into another coordinate system.
type TranslateFunc func(coord.Interval) (coord.Interval, error)

// Rewrite copies the records of gene geneID from r to w with start and end
// translated. "#!" header lines are kept unchanged; other comments, empty
// lines and records of other genes are dropped. It returns the number of
// records written.
func Rewrite(r io.Reader, w io.Writer, geneID string, translate TranslateFunc) (int, error) {
	out := bufio.NewWriter(w)
	scanner := newScanner(r)

	written := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#!"):
			if _, err := out.WriteString(line + "\n"); err != nil {
				return written, fmt.Errorf("write header: %w", err)
			}
			continue
		case strings.HasPrefix(line, "#"):
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			return written, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if !matchesGene(rec.GeneID(), geneID) {
			continue
		}

		iv, err := translate(rec.Interval)
		if err != nil {
			return written, fmt.Errorf("line %d: translate %s: %w", lineNum, rec.Interval, err)
		}
		if err := iv.Validate(); err != nil {
			return written, fmt.Errorf("line %d: translated %s to %s: %w",
				lineNum, rec.Interval, iv, seqerr.ErrOutOfRange)
		}
		rec.SetInterval(iv)

		if _, err := out.WriteString(rec.String() + "\n"); err != nil {
			return written, fmt.Errorf("write record: %w", err)
		}
		written++
	}

	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("scan GTF: %w", err)
	}
	return written, out.Flush()
}

// MiniOutputPath derives the rewritten annotation path for geneID:
// "dir/genes.gtf" becomes "dir/genes_<geneID>_mini.gtf". A trailing ".gz" is
// dropped because the rewritten file is written uncompressed.
func MiniOutputPath(gtfPath, geneID string) string {
	dir, base := filepath.Split(gtfPath)
	base = strings.TrimSuffix(base, ".gz")

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"_"+geneID+"_mini"+ext)
}
