// Package output provides result formatters for the command-line tool.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/minigfa/internal/liftover"
)

// TabWriter writes offset resolutions in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Gene",
			"Path",
			"Gene_start",
			"Match_pos",
			"Offset",
			"Source",
			"Error",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single resolution. source names where the offset came
// from (e.g. "resolved" or "cache"); a non-nil resolveErr is reported in
// place of the coordinates.
func (tw *TabWriter) Write(geneID, pathName string, res liftover.Resolution, source string, resolveErr error) error {
	geneStart, matchPos, offset := "-", "-", "-"
	errText := "-"
	if resolveErr != nil {
		source = "-"
		// Keep the row on one line
		errText = strings.NewReplacer("\t", " ", "\n", " ").Replace(resolveErr.Error())
	} else {
		geneStart = strconv.FormatInt(res.GeneStart, 10)
		matchPos = strconv.FormatInt(res.MatchPos, 10)
		offset = strconv.FormatInt(res.Offset, 10)
	}
	if source == "" {
		source = "-"
	}

	values := []string{
		geneID,
		pathName,
		geneStart,
		matchPos,
		offset,
		source,
		errText,
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
