package coord

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is a genomic range in 1-based coordinates, inclusive on both ends.
// All public APIs take and return Intervals; 0-based positions only appear
// inside byte arithmetic via Start0 and End0.
type Interval struct {
	Start int64
	End   int64
}

// NewInterval validates and returns a 1-based inclusive interval.
func NewInterval(start, end int64) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// FromZeroBased converts a 0-based inclusive pair to a 1-based Interval.
func FromZeroBased(start0, end0 int64) Interval {
	return Interval{Start: start0 + 1, End: end0 + 1}
}

// Validate reports whether the interval is well formed.
func (iv Interval) Validate() error {
	if iv.Start < 1 {
		return fmt.Errorf("start %d: positions are 1-based", iv.Start)
	}
	if iv.End < iv.Start {
		return fmt.Errorf("end %d before start %d", iv.End, iv.Start)
	}
	return nil
}

// Start0 returns the 0-based position of the first base.
func (iv Interval) Start0() int64 {
	return iv.Start - 1
}

// End0 returns the 0-based position of the last base.
func (iv Interval) End0() int64 {
	return iv.End - 1
}

// Len returns the number of bases covered.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start + 1
}

// Contains returns true if pos (1-based) lies within the interval.
func (iv Interval) Contains(pos int64) bool {
	return pos >= iv.Start && pos <= iv.End
}

// Shift moves both ends by delta. The result is not validated.
func (iv Interval) Shift(delta int64) Interval {
	return Interval{Start: iv.Start + delta, End: iv.End + delta}
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d-%d", iv.Start, iv.End)
}

// ParseRegion parses a samtools-style region "chrom:start-end" (1-based, inclusive).
// Thousands separators in the numbers are accepted.
func ParseRegion(s string) (string, Interval, error) {
	idx := strings.LastIndex(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return "", Interval{}, fmt.Errorf("invalid region %q: expected chrom:start-end", s)
	}
	chrom, rng := s[:idx], strings.ReplaceAll(s[idx+1:], ",", "")

	startStr, endStr, ok := strings.Cut(rng, "-")
	if !ok {
		return "", Interval{}, fmt.Errorf("invalid region %q: expected chrom:start-end", s)
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return "", Interval{}, fmt.Errorf("parse region start: %w", err)
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return "", Interval{}, fmt.Errorf("parse region end: %w", err)
	}

	iv, err := NewInterval(start, end)
	if err != nil {
		return "", Interval{}, fmt.Errorf("invalid region %q: %w", s, err)
	}
	return chrom, iv, nil
}
