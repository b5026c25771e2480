package alignment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAligner(t testing.TB, scores Scores) *Aligner {
	t.Helper()
	a, err := NewAligner(scores, 64, 256)
	require.NoError(t, err)
	return a
}

func ops(s string) []Operation {
	result := make([]Operation, 0, len(s))
	for _, c := range s {
		switch c {
		case 'M':
			result = append(result, Match)
		case 'S':
			result = append(result, Substitution)
		case 'D':
			result = append(result, Deletion)
		case 'I':
			result = append(result, Insertion)
		}
	}
	return result
}

func TestScores(t *testing.T) {
	t.Run("DefaultScores", func(t *testing.T) {
		s := DefaultScores()
		assert.Equal(t, 3, s.Match)
		assert.Equal(t, -3, s.Mismatch)
		assert.Equal(t, -5, s.GapOpen)
		assert.Equal(t, -1, s.GapExtend)
		assert.NoError(t, s.Validate())
	})

	t.Run("NanoporeScores", func(t *testing.T) {
		assert.NoError(t, NanoporeScores().Validate())
	})

	t.Run("Invalid scores", func(t *testing.T) {
		tests := []struct {
			name                             string
			match, mismatch, gapOpen, gapExt int
			field                            string
		}{
			{"zero match", 0, -1, -2, -1, "match"},
			{"positive mismatch", 2, 1, -2, -1, "mismatch"},
			{"zero gap open", 2, -1, 0, -1, "gap open"},
			{"zero gap extend", 2, -1, -2, 0, "gap extend"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := BuildScores(tt.match, tt.mismatch, tt.gapOpen, tt.gapExt)
				require.Error(t, err)
				var scoreErr *ScoreError
				require.True(t, errors.As(err, &scoreErr))
				assert.Equal(t, tt.field, scoreErr.Field)
			})
		}
	})
}

func TestMatches(t *testing.T) {
	tests := []struct {
		query, read byte
		want        bool
	}{
		{'A', 'A', true},
		{'A', 'C', false},
		{'a', 'A', true},
		{'N', 'A', true},
		{'N', 'C', true},
		{'N', 'G', true},
		{'N', 'T', true},
		{'N', 'N', true},
		{'A', 'N', false},
		{'R', 'A', true},
		{'R', 'G', true},
		{'R', 'C', false},
		{'r', 'g', true},
		{'Y', 'R', false},
		{'H', 'G', false},
		{'B', 'A', false},
		{'V', 'T', false},
		{'D', 'C', false},
		{'X', 'X', true},
	}
	for _, tt := range tests {
		t.Run(string([]byte{tt.query, '/', tt.read}), func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.query, tt.read))
		})
	}

	for _, code := range []byte("RYMKSWHBVDN") {
		assert.True(t, IsDegenerate(code))
	}
	assert.False(t, IsDegenerate('A'))
}

func TestMatrix(t *testing.T) {
	_, err := NewMatrix(0, 10)
	require.Error(t, err)

	_, err = NewMatrix(10, 0)
	require.Error(t, err)

	m, err := NewMatrix(4, 8)
	require.NoError(t, err)
	q, tg := m.Capacity()
	assert.Equal(t, 4, q)
	assert.Equal(t, 8, tg)
	assert.True(t, m.Fits(4, 8))
	assert.False(t, m.Fits(5, 8))

	require.NoError(t, m.Resize(2, 2))
	q, tg = m.Capacity()
	assert.Equal(t, 2, q)
	assert.Equal(t, 2, tg)
}

func TestAlignScenarios(t *testing.T) {
	tests := []struct {
		name       string
		scores     Scores
		query      string
		target     string
		wantOps    string
		wantScore  int
		wantQuery  Range
		wantTarget Range
	}{
		{
			name:       "identical",
			scores:     DefaultScores(),
			query:      "AGCT",
			target:     "AGCT",
			wantOps:    "MMMM",
			wantScore:  12,
			wantQuery:  Range{1, 4},
			wantTarget: Range{1, 4},
		},
		{
			// AG and AGGT both score 6; the first best cell wins.
			name:       "substitution tie keeps first best cell",
			scores:     DefaultScores(),
			query:      "AGCT",
			target:     "AGGT",
			wantOps:    "MM",
			wantScore:  6,
			wantQuery:  Range{1, 2},
			wantTarget: Range{1, 2},
		},
		{
			name:       "substitution",
			scores:     DefaultScores(),
			query:      "AGCTA",
			target:     "AGGTA",
			wantOps:    "MMSMM",
			wantScore:  9,
			wantQuery:  Range{1, 5},
			wantTarget: Range{1, 5},
		},
		{
			name:       "deletion at duplicated base",
			scores:     Scores{Match: 3, Mismatch: -3, GapOpen: -2, GapExtend: -1},
			query:      "AGCT",
			target:     "AGCCT",
			wantOps:    "MMDMM",
			wantScore:  10,
			wantQuery:  Range{1, 4},
			wantTarget: Range{1, 5},
		},
		{
			name:       "gap too expensive",
			scores:     DefaultScores(),
			query:      "AGCT",
			target:     "AGCCT",
			wantOps:    "MMM",
			wantScore:  9,
			wantQuery:  Range{1, 3},
			wantTarget: Range{1, 3},
		},
		{
			name:       "insertion",
			scores:     Scores{Match: 3, Mismatch: -3, GapOpen: -2, GapExtend: -1},
			query:      "AGCCT",
			target:     "AGCT",
			wantOps:    "MMIMM",
			wantScore:  10,
			wantQuery:  Range{1, 5},
			wantTarget: Range{1, 4},
		},
		{
			name:       "embedded query",
			scores:     DefaultScores(),
			query:      "ACGTTGCA",
			target:     "TTACGTTGCATT",
			wantOps:    "MMMMMMMM",
			wantScore:  24,
			wantQuery:  Range{1, 8},
			wantTarget: Range{3, 10},
		},
		{
			name:       "degenerate query base",
			scores:     DefaultScores(),
			query:      "ANGT",
			target:     "ACGT",
			wantOps:    "MMMM",
			wantScore:  12,
			wantQuery:  Range{1, 4},
			wantTarget: Range{1, 4},
		},
		{
			name:       "degenerate read base",
			scores:     DefaultScores(),
			query:      "ACGT",
			target:     "ANGT",
			wantOps:    "MM",
			wantScore:  6,
			wantQuery:  Range{3, 4},
			wantTarget: Range{3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAligner(t, tt.scores)
			result := a.Align([]byte(tt.query), []byte(tt.target))

			assert.Equal(t, ops(tt.wantOps), result.Operations)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantQuery, result.QueryRange)
			assert.Equal(t, tt.wantTarget, result.TargetRange)
			assert.NotContains(t, result.Operations, None)
		})
	}
}

func TestAlignNoSimilarity(t *testing.T) {
	a := newTestAligner(t, DefaultScores())
	result := a.Align([]byte("AAAA"), []byte("TTTT"))

	assert.True(t, result.IsEmpty())
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, Range{}, result.QueryRange)
	assert.Equal(t, Range{}, result.TargetRange)
	assert.Equal(t, 0.0, result.Identity())
	assert.Equal(t, 0.0, result.Coverage())
	assert.Nil(t, result.Cigar())
}

func TestAlignSelf(t *testing.T) {
	sequences := []string{
		"A",
		"AAAA",
		"AGCT",
		"AATGTACTTCGTTCAGTTACGTATTGCT",
		"GTTTTCGCATTTATCGTGAAACGCTTTCGCGTTTTTCGTGCGCCGCTTCA",
	}
	scoreSets := []Scores{
		DefaultScores(),
		NanoporeScores(),
		{Match: 1, Mismatch: -1, GapOpen: -1, GapExtend: -1},
	}

	for _, scores := range scoreSets {
		a := newTestAligner(t, scores)
		for _, s := range sequences {
			result := a.Align([]byte(s), []byte(s))

			require.Len(t, result.Operations, len(s))
			assert.Equal(t, len(s), result.Matches())
			assert.Equal(t, 1.0, result.Identity())
			assert.Equal(t, 1.0, result.Coverage())
			assert.Equal(t, 1.0, result.QueryCoverage())
			assert.Equal(t, Range{1, len(s)}, result.QueryRange)
			assert.Equal(t, Range{1, len(s)}, result.TargetRange)
			assert.Equal(t, len(s)*scores.Match, result.Score)
		}
	}
}

// An exact embedded match scores the same with query and target swapped.
func TestAlignSwappedEmbedded(t *testing.T) {
	a := newTestAligner(t, DefaultScores())
	query, target := []byte("ACGTTGCA"), []byte("TTACGTTGCATT")

	forward := a.Align(query, target)
	swapped := a.Align(target, query)

	assert.Equal(t, forward.Score, swapped.Score)
	assert.Equal(t, forward.QueryRange, swapped.TargetRange)
	assert.Equal(t, forward.TargetRange, swapped.QueryRange)
}

// Deletions are preferred over insertions on ties and a gap only extends
// along its own provenance, so gapped scores can differ once the sequences
// are swapped.
func TestAlignSwappedGapped(t *testing.T) {
	a := newTestAligner(t, Scores{Match: 3, Mismatch: -3, GapOpen: -2, GapExtend: -1})

	forward := a.Align([]byte("ACAGTC"), []byte("CGTAGACCTCA"))
	assert.Equal(t, 8, forward.Score)
	assert.Equal(t, Range{3, 6}, forward.QueryRange)
	assert.Equal(t, Range{4, 10}, forward.TargetRange)

	swapped := a.Align([]byte("CGTAGACCTCA"), []byte("ACAGTC"))
	assert.Equal(t, 7, swapped.Score)
}

func TestAlignReuse(t *testing.T) {
	scores := Scores{Match: 3, Mismatch: -3, GapOpen: -2, GapExtend: -1}
	a := newTestAligner(t, scores)

	long := []byte(strings.Repeat("ACGTTGCAAC", 6))
	short := []byte("AGCT")
	read := []byte("AGCCT")

	first := a.Align(short, read)
	_ = a.Align(long, long)
	second := a.Align(short, read)
	third := a.Align(short, read)

	assert.Equal(t, first, second)
	assert.Equal(t, second, third)

	fresh := newTestAligner(t, scores).Align(short, read)
	assert.Equal(t, fresh, second)
}

func TestAlignPackageFunc(t *testing.T) {
	m, err := NewMatrix(8, 8)
	require.NoError(t, err)

	result := Align(m, DefaultScores(), []byte("AGCT"), []byte("AGCT"))
	assert.Equal(t, 12, result.Score)
}

func TestAlignContractViolations(t *testing.T) {
	a, err := NewAligner(DefaultScores(), 4, 10)
	require.NoError(t, err)

	assert.PanicsWithError(t, "query length 5 exceeds matrix capacity 4", func() {
		a.Align([]byte("ACGTA"), []byte("ACGT"))
	})
	assert.PanicsWithError(t, "target length 11 exceeds matrix capacity 10", func() {
		a.Align([]byte("ACGT"), []byte("ACGTACGTACG"))
	})
	assert.PanicsWithError(t, "query sequence is empty", func() {
		a.Align(nil, []byte("ACGT"))
	})
	assert.PanicsWithError(t, "target sequence is empty", func() {
		a.Align([]byte("ACGT"), []byte{})
	})

	// a violation leaves the aligner usable
	result := a.Align([]byte("ACGT"), []byte("ACGT"))
	assert.Equal(t, 12, result.Score)
}

func TestAlignerResize(t *testing.T) {
	a, err := NewAligner(DefaultScores(), 4, 4)
	require.NoError(t, err)

	require.Error(t, a.Resize(0, 4, DefaultScores()))
	require.Error(t, a.Resize(4, 4, Scores{}))

	require.NoError(t, a.Resize(8, 16, NanoporeScores()))
	q, tg := a.Capacity()
	assert.Equal(t, 8, q)
	assert.Equal(t, 16, tg)
	assert.Equal(t, NanoporeScores(), a.Scores())

	result := a.Align([]byte("ACGTACGT"), []byte("ACGTACGT"))
	assert.Equal(t, 16, result.Score)
}

func TestAlignContext(t *testing.T) {
	a := newTestAligner(t, DefaultScores())

	result, err := a.AlignContext(context.Background(), []byte("AGCT"), []byte("AGCT"))
	require.NoError(t, err)
	assert.Equal(t, 12, result.Score)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.AlignContext(ctx, []byte("AGCT"), []byte("AGCT"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalAlignmentMetrics(t *testing.T) {
	a := &LocalAlignment{
		QueryRange:  Range{3, 6},
		TargetRange: Range{11, 15},
		Operations:  ops("MMDSM"),
		QueryLen:    8,
		TargetLen:   20,
	}

	assert.Equal(t, 5, a.Length())
	assert.Equal(t, 3, a.Matches())
	assert.Equal(t, 1, a.Substitutions())
	assert.Equal(t, 1, a.Deletions())
	assert.Equal(t, 0, a.Insertions())
	assert.InDelta(t, 0.6, a.Identity(), 1e-9)
	assert.InDelta(t, 0.25, a.Coverage(), 1e-9)
	assert.InDelta(t, 0.5, a.QueryCoverage(), 1e-9)
	assert.InDelta(t, 0.625, a.AdapterCoverage(8), 1e-9)
	assert.Equal(t, 0.0, a.AdapterCoverage(0))
	assert.Equal(t, "2S2=1D1X1=2S", a.Cigar().String())
}

func TestPretty(t *testing.T) {
	a := newTestAligner(t, Scores{Match: 3, Mismatch: -3, GapOpen: -2, GapExtend: -1})
	query, target := []byte("AGCT"), []byte("AGCCT")
	result := a.Align(query, target)

	pretty := result.Pretty(query, target)
	lines := strings.Split(pretty, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "query  1 AG-CT 4", lines[0])
	assert.Equal(t, "         || ||", lines[1])
	assert.Equal(t, "target 1 AGCCT 5", lines[2])
	assert.Contains(t, lines[3], "score: 10")
	assert.Contains(t, lines[3], "cigar: 2=1D2=")

	fromEnd := strings.Split(result.PrettyFromEnd(query, target), "\n")
	assert.Equal(t, "query   1 AG-CT 4", fromEnd[0])
	assert.Equal(t, "target -5 AGCCT -1", fromEnd[2])

	empty := newTestAligner(t, DefaultScores()).Align([]byte("AAAA"), []byte("TTTT"))
	assert.Equal(t, "no alignment\n", empty.Pretty([]byte("AAAA"), []byte("TTTT")))
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "Match", Match.String())
	assert.Equal(t, "Substitution", Substitution.String())
	assert.Equal(t, "Deletion", Deletion.String())
	assert.Equal(t, "Insertion", Insertion.String())
	assert.Equal(t, "None", None.String())
}

func BenchmarkAlignAdapter(b *testing.B) {
	adapter := []byte("AATGTACTTCGTTCAGTTACGTATTGCT")
	read := []byte(strings.Repeat("ACGTTGCAAC", 100))
	a, err := NewAligner(DefaultScores(), len(adapter), len(read))
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Align(adapter, read)
	}
}

func BenchmarkAlignAllocating(b *testing.B) {
	adapter := []byte("AATGTACTTCGTTCAGTTACGTATTGCT")
	read := []byte(strings.Repeat("ACGTTGCAAC", 100))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a, _ := NewAligner(DefaultScores(), len(adapter), len(read))
		_ = a.Align(adapter, read)
	}
}
