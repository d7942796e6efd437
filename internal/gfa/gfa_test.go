package gfa

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/minigfa/internal/coord"
	"github.com/inodb/minigfa/internal/seqerr"
)

const sampleGFA = "H\tVN:Z:1.0\n" +
	"S\tA\tATG\n" +
	"S\tB\tGGT\tLN:i:3\n" +
	"L\tA\t+\tB\t-\t0M\n" +
	"\n" +
	"S\tC\tTTTTAAAACCCCGGGG\n" +
	"P\tP1\tA+,B-\t*\n" +
	"P\tP2\tB+,A+,C-,B+\t*\n" +
	"P\tP3\tA+,Z+\t*\n" +
	"W\tsample\t0\tchr1\t0\t6\t>A<B\n"

func newTestGraph(t *testing.T, content string, opts BuildOptions) *Graph {
	t.Helper()
	idx, err := BuildIndex(strings.NewReader(content), opts)
	require.NoError(t, err)
	return NewGraph(bytes.NewReader([]byte(content)), idx)
}

func TestBuildIndex_Counts(t *testing.T) {
	g := newTestGraph(t, sampleGFA, BuildOptions{})
	assert.Equal(t, 3, g.SegmentCount())
	assert.Equal(t, 3, g.PathCount())
	assert.Equal(t, []string{"P1", "P2", "P3"}, g.PathNames())
}

func TestBuildIndex_SegmentOffsets(t *testing.T) {
	g := newTestGraph(t, sampleGFA, BuildOptions{})

	r, err := g.Index().Segment("A")
	require.NoError(t, err)
	// Sequence column starts after "S\tA\t"
	want := int64(strings.Index(sampleGFA, "S\tA\t") + len("S\tA\t"))
	assert.Equal(t, coord.ByteRange{Offset: want, Length: 3}, r)

	r, err = g.Index().Path("P1")
	require.NoError(t, err)
	assert.Equal(t, int64(strings.Index(sampleGFA, "P\tP1\t")), r.Offset)
	assert.Equal(t, len("P\tP1\tA+,B-\t*"), r.Len())
}

// Every S and P line must be recoverable byte-for-byte through the index.
func TestBuildIndex_RoundTrip(t *testing.T) {
	for name, term := range map[string]string{"LF": "\n", "CRLF": "\r\n"} {
		t.Run(name, func(t *testing.T) {
			content := strings.ReplaceAll(sampleGFA, "\n", term)
			g := newTestGraph(t, content, BuildOptions{})

			for _, line := range strings.Split(content, term) {
				fields := strings.Split(line, "\t")
				switch fields[0] {
				case SegmentTag:
					seq, err := g.SegmentSequence(fields[1])
					require.NoError(t, err)
					assert.Equal(t, fields[2], seq)

					n, err := g.SegmentLength(fields[1])
					require.NoError(t, err)
					assert.Equal(t, len(fields[2]), n)
				case PathTag:
					r, err := g.Index().Path(fields[1])
					require.NoError(t, err)
					raw, err := r.Read(g.ra)
					require.NoError(t, err)
					assert.Equal(t, line, string(raw))
				}
			}
		})
	}
}

func TestBuildIndex_NoFinalNewline(t *testing.T) {
	g := newTestGraph(t, "S\tA\tAC\nS\tB\tGGTT", BuildOptions{})
	seq, err := g.SegmentSequence("B")
	require.NoError(t, err)
	assert.Equal(t, "GGTT", seq)
}

func TestBuildIndex_DuplicateLastWins(t *testing.T) {
	content := "S\tA\tAAAA\nS\tA\tCC\nP\tX\tA+\t*\nP\tX\tA-\t*\n"
	g := newTestGraph(t, content, BuildOptions{})

	seq, err := g.SegmentSequence("A")
	require.NoError(t, err)
	assert.Equal(t, "CC", seq)

	p, err := g.Path("X")
	require.NoError(t, err)
	assert.Equal(t, "A-", p.StepAt(0))
}

func TestBuildIndex_Strict(t *testing.T) {
	content := "S\tA\tAAAA\nS\tA\tCC\n"
	_, err := BuildIndex(strings.NewReader(content), BuildOptions{Strict: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, seqerr.ErrDuplicateRecord)

	var recErr *seqerr.RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 2, recErr.Line)
}

func TestBuildIndex_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"segment without sequence", "H\tVN:Z:1.0\nS\tA\n", 2},
		{"segment without name", "S\t\tACGT\n", 1},
		{"path without steps", "S\tA\tAC\n\nP\tP1\n", 3},
		{"bare tag", "P\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := BuildIndex(strings.NewReader(tt.content), BuildOptions{})
			assert.Nil(t, idx)
			assert.ErrorIs(t, err, seqerr.ErrMalformedRecord)

			var recErr *seqerr.RecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.line, recErr.Line)
		})
	}
}

func TestIndexBuilder_Frozen(t *testing.T) {
	b := NewIndexBuilder(BuildOptions{})
	require.NoError(t, b.Add([]byte("S\tA\tACGT\n")))
	idx := b.Finalize()
	assert.Equal(t, 1, idx.SegmentCount())

	assert.Error(t, b.Add([]byte("S\tB\tACGT\n")))
	assert.Equal(t, 1, idx.SegmentCount())
}

func TestLookup_NotFound(t *testing.T) {
	g := newTestGraph(t, sampleGFA, BuildOptions{})

	_, err := g.SegmentSequence("Z")
	assert.ErrorIs(t, err, seqerr.ErrNotFound)
	_, err = g.SegmentLength("Z")
	assert.ErrorIs(t, err, seqerr.ErrNotFound)
	_, err = g.Path("P9")
	assert.ErrorIs(t, err, seqerr.ErrNotFound)
	_, err = g.PathSequence("P9")
	assert.ErrorIs(t, err, seqerr.ErrNotFound)
}

func TestPathSequence(t *testing.T) {
	g := newTestGraph(t, sampleGFA, BuildOptions{})

	seq, err := g.PathSequence("P1")
	require.NoError(t, err)
	assert.Equal(t, "ATGACC", seq)

	seq, err = g.PathSequence("P2")
	require.NoError(t, err)
	assert.Equal(t, "GGT"+"ATG"+"CCCCGGGGTTTTAAAA"+"GGT", seq)
}

func TestPathSequence_LengthIsSumOfSegments(t *testing.T) {
	g := newTestGraph(t, sampleGFA, BuildOptions{})

	for _, name := range []string{"P1", "P2"} {
		p, err := g.Path(name)
		require.NoError(t, err)

		want := 0
		for i := 0; i < p.Len(); i++ {
			n, err := g.SegmentLength(p.SegmentID(i))
			require.NoError(t, err)
			want += n
		}

		seq, err := g.PathSequence(name)
		require.NoError(t, err)
		assert.Len(t, seq, want, name)
	}
}

func TestPathSequence_MissingSegment(t *testing.T) {
	g := newTestGraph(t, sampleGFA, BuildOptions{})

	// The record itself parses; the dangling reference surfaces on assembly.
	p, err := g.Path("P3")
	require.NoError(t, err)
	assert.Equal(t, "Z", p.SegmentID(1))

	_, err = g.PathSequence("P3")
	assert.ErrorIs(t, err, seqerr.ErrNotFound)
}

func TestPathSequence_UnsupportedBase(t *testing.T) {
	content := "S\tA\tACNT\nP\tfwd\tA+\t*\nP\trev\tA-\t*\n"
	g := newTestGraph(t, content, BuildOptions{})

	seq, err := g.PathSequence("fwd")
	require.NoError(t, err)
	assert.Equal(t, "ACNT", seq)

	_, err = g.PathSequence("rev")
	assert.ErrorIs(t, err, seqerr.ErrUnsupportedBase)
}

func TestPathSequence_MalformedStep(t *testing.T) {
	content := "S\tA\tACGT\nP\tbad\tA+,A*\t*\n"
	g := newTestGraph(t, content, BuildOptions{})

	_, err := g.PathSequence("bad")
	assert.ErrorIs(t, err, seqerr.ErrMalformedRecord)
}

func TestPaths_Iterate(t *testing.T) {
	g := newTestGraph(t, sampleGFA, BuildOptions{})

	var names []string
	for p, err := range g.Paths() {
		require.NoError(t, err)
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"P1", "P2", "P3"}, names)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mini.gfa")
	require.NoError(t, os.WriteFile(path, []byte(sampleGFA), 0644))

	g, err := Open(path, BuildOptions{})
	require.NoError(t, err)
	defer g.Close()

	seq, err := g.PathSequence("P1")
	require.NoError(t, err)
	assert.Equal(t, "ATGACC", seq)

	g2, err := OpenWithIndex(path, g.Index())
	require.NoError(t, err)
	defer g2.Close()
	seq, err = g2.SegmentSequence("C")
	require.NoError(t, err)
	assert.Equal(t, "TTTTAAAACCCCGGGG", seq)

	_, err = Open(filepath.Join(t.TempDir(), "missing.gfa"), BuildOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := newTestGraph(t, sampleGFA, BuildOptions{})
	snap := g.Index().Snapshot()

	idx := IndexFromSnapshot(snap)
	assert.Equal(t, g.Index().PathNames(), idx.PathNames())
	assert.Equal(t, g.Index().SegmentCount(), idx.SegmentCount())

	// Mutating the snapshot must not leak into the frozen index.
	delete(snap.Segments, "A")
	_, err := g.Index().Segment("A")
	assert.NoError(t, err)

	empty := IndexFromSnapshot(Snapshot{})
	_, err = empty.Segment("A")
	assert.ErrorIs(t, err, seqerr.ErrNotFound)
}

func TestPathNamesWithPrefix(t *testing.T) {
	content := "S\ta\tACGT\n" +
		"P\tHG002#2#chr12\ta+\t*\n" +
		"P\tGRCh38#0#chr12\ta+\t*\n" +
		"P\tHG002#1#chr12\ta-\t*\n" +
		"P\tHG002#1#chr12_alt\ta+\t*\n"
	g := newTestGraph(t, content, BuildOptions{})

	assert.Equal(t, []string{"GRCh38#0#chr12", "HG002#1#chr12", "HG002#1#chr12_alt", "HG002#2#chr12"}, g.PathNames())
	assert.Equal(t, []string{"HG002#1#chr12", "HG002#1#chr12_alt"}, g.Index().PathNamesWithPrefix("HG002#1#"))
	assert.Empty(t, g.Index().PathNamesWithPrefix("CHM13#"))

	var names []string
	for p, err := range g.PathsWithPrefix("HG002#") {
		require.NoError(t, err)
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"HG002#1#chr12", "HG002#1#chr12_alt", "HG002#2#chr12"}, names)
}
