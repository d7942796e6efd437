// Package coord provides file byte ranges and 1-based genomic intervals.
package coord

import (
	"fmt"
	"io"
)

// ByteRange is a slice of a file: Length bytes starting at Offset.
// Values are immutable once constructed; copy them freely.
type ByteRange struct {
	Offset int64
	Length uint32
}

// NewByteRange creates a range, rejecting negative offsets and lengths
// that do not fit the 32-bit length field.
func NewByteRange(offset int64, length int) (ByteRange, error) {
	if offset < 0 {
		return ByteRange{}, fmt.Errorf("negative byte offset %d", offset)
	}
	if length < 0 || int64(length) > int64(^uint32(0)) {
		return ByteRange{}, fmt.Errorf("byte length %d out of range", length)
	}
	return ByteRange{Offset: offset, Length: uint32(length)}, nil
}

// End returns the offset one past the last byte of the range.
func (r ByteRange) End() int64 {
	return r.Offset + int64(r.Length)
}

// Len returns the length as an int.
func (r ByteRange) Len() int {
	return int(r.Length)
}

// Read reads exactly the bytes of the range from ra.
// A short read is reported as io.ErrUnexpectedEOF.
func (r ByteRange) Read(ra io.ReaderAt) ([]byte, error) {
	buf := make([]byte, r.Length)
	if r.Length == 0 {
		return buf, nil
	}
	n, err := ra.ReadAt(buf, r.Offset)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("read %d bytes at offset %d: %w", r.Length, r.Offset, err)
}

func (r ByteRange) String() string {
	return fmt.Sprintf("%d+%d", r.Offset, r.Length)
}
