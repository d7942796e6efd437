package output

import (
	"bufio"
	"io"
)

// DefaultLineWidth is the sequence line width used by samtools faidx.
const DefaultLineWidth = 60

// FASTAWriter writes named sequences as FASTA records.
type FASTAWriter struct {
	w     *bufio.Writer
	width int
}

// NewFASTAWriter creates a FASTA writer wrapping sequence lines at width
// bases. A width of 0 or less writes each sequence on a single line.
func NewFASTAWriter(w io.Writer, width int) *FASTAWriter {
	return &FASTAWriter{w: bufio.NewWriter(w), width: width}
}

// Write writes one record.
func (fw *FASTAWriter) Write(name, seq string) error {
	if _, err := fw.w.WriteString(">" + name + "\n"); err != nil {
		return err
	}
	if fw.width <= 0 {
		_, err := fw.w.WriteString(seq + "\n")
		return err
	}
	for len(seq) > 0 {
		n := min(fw.width, len(seq))
		if _, err := fw.w.WriteString(seq[:n] + "\n"); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (fw *FASTAWriter) Flush() error {
	return fw.w.Flush()
}
