package fai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/minigfa/internal/seqerr"
)

const sampleFASTA = ">chr1\nACGT\nGGCC\nAT\n>chr2\nTTTT\n"

func TestParse(t *testing.T) {
	content := "chr1\t248956422\t112\t60\t61\n" +
		"\n" +
		"chr2\t242193529\t253105752\t60\t61\n" +
		"chrM\tNA\t500\t70\t72\r\n"

	idx, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []string{"chr1", "chr2", "chrM"}, idx.Names())

	l, err := idx.Lookup("chr1")
	require.NoError(t, err)
	assert.Equal(t, Layout{Name: "chr1", Length: 248956422, Offset: 112, BasesPerLine: 60, BytesPerLine: 61}, l)
	assert.Equal(t, int64(1), l.TerminatorWidth())

	// Unparsable length is tolerated; CRLF layouts have a two-byte terminator
	m, err := idx.Lookup("chrM")
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Length)
	assert.Equal(t, int64(2), m.TerminatorWidth())

	_, err = idx.Lookup("chrX")
	assert.ErrorIs(t, err, seqerr.ErrNotFound)
}

func TestParse_DuplicateLastWins(t *testing.T) {
	content := "chr1\t10\t6\t4\t5\nchr1\t10\t99\t4\t5\n"
	idx, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	l, err := idx.Lookup("chr1")
	require.NoError(t, err)
	assert.Equal(t, int64(99), l.Offset)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "chr1\t10\t6\t4\n"},
		{"offset not numeric", "chr1\t10\tsix\t4\t5\n"},
		{"negative offset", "chr1\t10\t-6\t4\t5\n"},
		{"bases not numeric", "chr1\t10\t6\tx\t5\n"},
		{"zero bases per line", "chr1\t10\t6\t0\t1\n"},
		{"width not numeric", "chr1\t10\t6\t4\t\n"},
		{"width below bases", "chr1\t10\t6\t4\t3\n"},
		{"empty name", "\t10\t6\t4\t5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("chr0\t4\t0\t4\t5\n" + tt.line))
			require.Error(t, err)
			assert.ErrorIs(t, err, seqerr.ErrMalformedIndex)

			var recErr *seqerr.RecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, 2, recErr.Line)
		})
	}
}

func TestBuild(t *testing.T) {
	idx, err := Build(strings.NewReader(sampleFASTA))
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1", "chr2"}, idx.Names())

	l, err := idx.Lookup("chr1")
	require.NoError(t, err)
	assert.Equal(t, Layout{Name: "chr1", Length: 10, Offset: 6, BasesPerLine: 4, BytesPerLine: 5}, l)

	l, err = idx.Lookup("chr2")
	require.NoError(t, err)
	assert.Equal(t, Layout{Name: "chr2", Length: 4, Offset: 25, BasesPerLine: 4, BytesPerLine: 5}, l)
}

func TestBuildFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fastaPath := filepath.Join(dir, "genome.fa")
	require.NoError(t, os.WriteFile(fastaPath, []byte(sampleFASTA), 0644))

	built, outPath, err := BuildFile(fastaPath)
	require.NoError(t, err)
	assert.Equal(t, fastaPath+".fai", outPath)

	loaded, err := Load(outPath)
	require.NoError(t, err)
	assert.Equal(t, built.Names(), loaded.Names())
	for _, name := range built.Names() {
		want, _ := built.Lookup(name)
		got, err := loaded.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.fai"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
