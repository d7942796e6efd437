// Package dna provides nucleotide complement operations.
//
// Only the unambiguous alphabet {A, C, G, T} is supported. IUPAC ambiguity
// codes (N, R, Y, ...) and lowercase soft-masked bases are rejected with
// seqerr.ErrUnsupportedBase rather than passed through.
package dna

import (
	"fmt"

	"github.com/inodb/minigfa/internal/seqerr"
)

// Complement returns the Watson-Crick partner of base.
func Complement(base byte) (byte, error) {
	switch base {
	case 'A':
		return 'T', nil
	case 'T':
		return 'A', nil
	case 'G':
		return 'C', nil
	case 'C':
		return 'G', nil
	default:
		return 0, fmt.Errorf("%w: %q", seqerr.ErrUnsupportedBase, base)
	}
}

// ReverseComplement returns the reverse complement of seq.
func ReverseComplement(seq string) (string, error) {
	n := len(seq)
	// Stack-allocate for short segments.
	var buf [64]byte
	var result []byte
	if n <= len(buf) {
		result = buf[:n]
	} else {
		result = make([]byte, n)
	}
	for i := 0; i < n; i++ {
		c, err := Complement(seq[n-1-i])
		if err != nil {
			return "", fmt.Errorf("reverse complement at position %d: %w", n-1-i, err)
		}
		result[i] = c
	}
	return string(result), nil
}

// Validate checks that every base of seq is in the supported alphabet.
// It returns the 0-based position of the first offending base.
func Validate(seq string) (int, error) {
	for i := 0; i < len(seq); i++ {
		if _, err := Complement(seq[i]); err != nil {
			return i, err
		}
	}
	return -1, nil
}
