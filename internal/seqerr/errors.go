// Package seqerr defines the error kinds shared by the sequence access packages.
//
// Callers distinguish kinds with errors.Is; the concrete errors returned by
// lookups and parsers wrap one of the sentinels below.
package seqerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an identifier is absent from an index.
	ErrNotFound = errors.New("not found")

	// ErrMalformedRecord is returned for lines lacking the expected fields or separators.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMalformedIndex is returned when a layout index field does not parse.
	ErrMalformedIndex = errors.New("malformed index")

	// ErrUnsupportedBase is returned when a base has no defined complement.
	ErrUnsupportedBase = errors.New("unsupported base")

	// ErrSequenceNotFound is returned when a gene sequence does not occur in a path sequence.
	ErrSequenceNotFound = errors.New("sequence not found")

	// ErrOutOfRange is returned for coordinates outside a record's extent.
	ErrOutOfRange = errors.New("coordinate out of range")

	// ErrDuplicateRecord is returned in strict mode when an identifier repeats.
	ErrDuplicateRecord = errors.New("duplicate record")
)

// RecordError reports a parse failure on a specific input line.
type RecordError struct {
	Line int   // 1-based line number, 0 if unknown
	Kind error // one of the sentinels in this package
	Msg  string
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %s", e.Line, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

func (e *RecordError) Unwrap() error {
	return e.Kind
}

// Recordf builds a RecordError with a formatted message.
func Recordf(line int, kind error, format string, args ...any) *RecordError {
	return &RecordError{Line: line, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
