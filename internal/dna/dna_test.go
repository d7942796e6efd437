package dna

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/minigfa/internal/seqerr"
)

func TestReverseComplement(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"simple", "ATGC", "GCAT"},
		{"single base", "A", "T"},
		{"palindrome", "ATAT", "ATAT"},
		{"poly-A", "AAAA", "TTTT"},
		{"GC rich", "GCGC", "GCGC"},
		{"segment B", "GGT", "ACC"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReverseComplement(tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReverseComplement_Long(t *testing.T) {
	// Longer than the stack buffer
	seq := strings.Repeat("ACGTT", 40)
	got, err := ReverseComplement(seq)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("AACGT", 40), got)
}

func TestReverseComplement_Involutive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := "ACGT"

	for n := 0; n < 300; n += 7 {
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.Intn(4)]
		}
		seq := string(b)

		once, err := ReverseComplement(seq)
		require.NoError(t, err)
		twice, err := ReverseComplement(once)
		require.NoError(t, err)
		assert.Equal(t, seq, twice, "length %d", n)
		assert.Len(t, once, n)
	}
}

func TestReverseComplement_UnsupportedBase(t *testing.T) {
	for _, seq := range []string{"ACNGT", "acgt", "ACG-T", "R"} {
		t.Run(seq, func(t *testing.T) {
			_, err := ReverseComplement(seq)
			assert.ErrorIs(t, err, seqerr.ErrUnsupportedBase)
		})
	}
}

func TestValidate(t *testing.T) {
	pos, err := Validate("ACGT")
	require.NoError(t, err)
	assert.Equal(t, -1, pos)

	pos, err = Validate("ACGNT")
	assert.ErrorIs(t, err, seqerr.ErrUnsupportedBase)
	assert.Equal(t, 3, pos)
}
