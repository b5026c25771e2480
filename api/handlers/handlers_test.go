package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/nanotrim/internal/batch"
	"github.com/aria-lang/nanotrim/internal/sequence"
	"github.com/aria-lang/nanotrim/internal/trim"
)

const (
	ligationStart = "AATGTACTTCGTTCAGTTACGTATTGCT"
	ligationEnd   = "AGCAATACGTAACTGAACGAAGT"
	insert        = "GGCCCAGTGTGAATCGCTTAAGGGTTAAGTAAGTGTGATGCATACGCCTTTACTTGCTGT"
)

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		want    string
	}{
		{"malformed json", LocalAlignHandler, `{"query":`, "invalid request body"},
		{"unknown field", AlignmentScoreHandler, `{"query":"ACGT","target":"ACGT","band":3}`, "invalid request body"},
		{"empty query", LocalAlignHandler, `{"query":"","target":"ACGT"}`, "query"},
		{"invalid target", LocalAlignHandler, `{"query":"ACGT","target":"AC-T"}`, "target"},
		{"invalid scores", LocalAlignHandler, `{"query":"ACGT","target":"ACGT","scores":{"match":-2}}`, ""},
		{"revcomp invalid base", ReverseComplementHandler, `{"sequence":"ACGU"}`, ""},
		{"info empty", SequenceInfoHandler, `{"sequence":""}`, ""},
		{"quality empty", QualityStatsHandler, `{"quality":""}`, "quality"},
		{"filter length mismatch", FilterReadHandler, `{"sequence":"ACGT","quality":"III"}`, "4 bases but 3 quality scores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, tt.handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.NotEmpty(t, resp.Error)
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestLocalAlignHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		score      int
		start, end int
		cigar      string
		pretty     string
	}{
		{
			name:  "exact",
			body:  `{"query":"acgt","target":"TTACGTTT"}`,
			score: 12, start: 3, end: 6, cigar: "4=", pretty: "ACGT",
		},
		{
			name:  "adapter in read",
			body:  `{"query":"` + ligationEnd + `","target":"` + ligationStart + insert + ligationEnd + `"}`,
			score: 69, start: 89, end: 111, cigar: "23=",
		},
		{
			name:  "match override",
			body:  `{"query":"ACGT","target":"TTACGTTT","scores":{"match":5}}`,
			score: 20, start: 3, end: 6, cigar: "4=",
		},
		{
			name:  "from end",
			body:  `{"query":"ACGT","target":"TTACGTTT","from_end":true}`,
			score: 12, start: 3, end: 6, cigar: "4=", pretty: "-6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, LocalAlignHandler, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			var resp AlignmentResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.score, resp.Score)
			assert.Equal(t, tt.start, resp.TargetStart)
			assert.Equal(t, tt.end, resp.TargetEnd)
			assert.Equal(t, tt.cigar, resp.CIGAR)
			assert.Equal(t, 1.0, resp.Identity)
			assert.Equal(t, 1.0, resp.Coverage)
			assert.Zero(t, resp.Substitutions)
			assert.Contains(t, resp.Pretty, tt.pretty)
		})
	}
}

func TestAlignmentScoreHandler(t *testing.T) {
	rec := post(t, AlignmentScoreHandler, `{"query":"ACGT","target":"GGGG"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ScoreResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 3, resp.Score)
}

func TestSequenceHandlers(t *testing.T) {
	t.Run("reverse complement keeps case", func(t *testing.T) {
		rec := post(t, ReverseComplementHandler, `{"sequence":"AAcgTN"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp ReverseComplementResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "NAcgTT", resp.ReverseComplement)
	})

	t.Run("info", func(t *testing.T) {
		rec := post(t, SequenceInfoHandler, `{"sequence":"GGCCRY"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp SequenceInfoResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, 6, resp.Length)
		assert.Equal(t, 2, resp.Degenerate)
		assert.Greater(t, resp.GCContent, 0.0)
	})

	validate := []struct {
		seq   string
		valid bool
	}{
		{"ACGTRYKMSWBDHVN", true},
		{"acgt", true},
		{"ACGU", false},
		{"AC GT", false},
		{"", false},
	}
	for _, tt := range validate {
		t.Run("validate "+tt.seq, func(t *testing.T) {
			rec := post(t, ValidateHandler, `{"sequence":"`+tt.seq+`"}`)
			require.Equal(t, http.StatusOK, rec.Code)
			var resp ValidateResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.valid, resp.Valid)
			assert.Equal(t, tt.valid, resp.Message == "")
		})
	}
}

func TestQualityStatsHandler(t *testing.T) {
	rec := post(t, QualityStatsHandler, `{"quality":"IIII+"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp QualityStatsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 5, resp.Count)
	assert.Equal(t, 10, resp.Min)
	assert.Equal(t, 40, resp.Max)
	assert.Equal(t, 40, resp.Median)
	assert.NotEmpty(t, resp.Category)
	assert.Equal(t, 4, resp.Q20)
	assert.InDelta(t, 0.1004, resp.ExpectedErrors, 1e-9)
}

func TestFilterReadHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		passed     bool
		reason     string
		start, end int
	}{
		{
			name:   "too short for default",
			body:   `{"sequence":"ACGT","quality":"IIII"}`,
			reason: "too short",
			start:  0, end: 4,
		},
		{
			name:   "custom length",
			body:   `{"sequence":"ACGT","quality":"IIII","min_length":4}`,
			passed: true,
			start:  0, end: 4,
		},
		{
			name:   "low quality",
			body:   `{"sequence":"ACGT","quality":"$$$$","min_length":1}`,
			reason: "mean quality",
			start:  0, end: 4,
		},
		{
			name:   "quality trim",
			body:   `{"sequence":"ACGTAC","quality":"##II##","min_length":2,"quality_trim":7}`,
			passed: true,
			start:  2, end: 4,
		},
		{
			name:   "quality trim removes everything",
			body:   `{"sequence":"ACGT","quality":"####","min_length":1,"quality_trim":7}`,
			reason: "too short",
			start:  4, end: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, FilterReadHandler, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			var resp FilterReadResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.passed, resp.Passed)
			assert.Contains(t, resp.Reason, tt.reason)
			assert.Equal(t, tt.start, resp.TrimStart)
			assert.Equal(t, tt.end, resp.TrimEnd)
		})
	}
}

func newTestTrim(t *testing.T) *Trim {
	t.Helper()
	h, err := NewTrim(trim.BuiltinCatalog(), batch.DefaultConfig())
	require.NoError(t, err)
	return h
}

func TestNewTrim(t *testing.T) {
	_, err := NewTrim(nil, batch.DefaultConfig())
	assert.Error(t, err)

	cfg := batch.DefaultConfig()
	cfg.Scores.Match = 0
	_, err = NewTrim(trim.BuiltinCatalog(), cfg)
	assert.Error(t, err)
}

func TestTrimReadHandler(t *testing.T) {
	h := newTestTrim(t)
	read := ligationStart + insert + ligationEnd

	t.Run("ligation", func(t *testing.T) {
		rec := post(t, h.ReadHandler, `{"sequence":"`+strings.ToLower(read)+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp TrimReadResponse
		decodeBody(t, rec, &resp)
		assert.True(t, resp.Found)
		assert.Equal(t, "ligation", resp.Definition)
		assert.Equal(t, 28, resp.Start)
		assert.Equal(t, 88, resp.End)
		assert.False(t, resp.ReverseComplement)
		assert.False(t, resp.Degenerate)
		assert.Equal(t, insert, resp.Insert)
		require.Len(t, resp.Matches, 2)
		assert.Equal(t, "end5", resp.Matches[0].End)
		assert.Equal(t, 28, resp.Matches[0].Cut)
		assert.Equal(t, "end3", resp.Matches[1].End)
		assert.Equal(t, 88, resp.Matches[1].Cut)
		assert.Equal(t, 89, resp.Matches[1].TargetStart)
		assert.Equal(t, 111, resp.Matches[1].TargetEnd)
		assert.Equal(t, "23=", resp.Matches[1].CIGAR)
	})

	t.Run("no boundary", func(t *testing.T) {
		rec := post(t, h.ReadHandler, `{"sequence":"`+insert+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp TrimReadResponse
		decodeBody(t, rec, &resp)
		assert.False(t, resp.Found)
		assert.Empty(t, resp.Matches)
	})

	t.Run("selected definition", func(t *testing.T) {
		rec := post(t, h.ReadHandler, `{"sequence":"`+read+`","definitions":["NB01"]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp TrimReadResponse
		decodeBody(t, rec, &resp)
		assert.False(t, resp.Found)
	})

	t.Run("unknown definition", func(t *testing.T) {
		rec := post(t, h.ReadHandler, `{"sequence":"`+read+`","definitions":["nope"]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid sequence", func(t *testing.T) {
		rec := post(t, h.ReadHandler, `{"sequence":"ACGTXX"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTrimBatchHandler(t *testing.T) {
	h := newTestTrim(t)
	read := ligationStart + insert + ligationEnd
	body, err := json.Marshal(TrimBatchRequest{
		Reads: []BatchRead{
			{ID: "fwd", Sequence: read, Quality: strings.Repeat("I", len(read))},
			{ID: "plain", Sequence: insert},
			{ID: "bad", Sequence: insert, Quality: "II"},
		},
		Definitions: []string{"ligation"},
	})
	require.NoError(t, err)

	rec := post(t, h.BatchHandler, string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp TrimBatchResponse
	decodeBody(t, rec, &resp)

	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Reads, 1)
	assert.Equal(t, "fwd", resp.Reads[0].ID)
	assert.Equal(t, insert, resp.Reads[0].Sequence)
	assert.Equal(t, strings.Repeat("I", len(insert)), resp.Reads[0].Quality)
	assert.Equal(t, int64(1), resp.Trimmed)
	assert.Equal(t, int64(1), resp.Forward)
	assert.Zero(t, resp.Reverse)

	require.Len(t, resp.Outcomes, 3)
	assert.Equal(t, BatchOutcome{ID: "fwd", Status: "trimmed", Trimmed: true, Definition: "ligation"}, resp.Outcomes[0])
	assert.Equal(t, "no_boundary", resp.Outcomes[1].Status)
	assert.False(t, resp.Outcomes[1].Trimmed)
	assert.False(t, resp.Outcomes[2].Trimmed)
	assert.Equal(t, "invalid", resp.Outcomes[2].Status)
	assert.NotEmpty(t, resp.Outcomes[2].Reason)

	t.Run("keep untrimmed", func(t *testing.T) {
		rec := post(t, h.BatchHandler, `{"reads":[{"id":"plain","sequence":"`+insert+`"}],"keep_untrimmed":true}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp TrimBatchResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Reads, 1)
		assert.Equal(t, insert, resp.Reads[0].Sequence)
		assert.Equal(t, "untrimmed", resp.Outcomes[0].Status)
		assert.False(t, resp.Outcomes[0].Trimmed)
	})

	t.Run("too many reads", func(t *testing.T) {
		reads := make([]BatchRead, maxBatchReads+1)
		for i := range reads {
			reads[i] = BatchRead{ID: "r", Sequence: "A"}
		}
		body, err := json.Marshal(TrimBatchRequest{Reads: reads})
		require.NoError(t, err)
		rec := post(t, h.BatchHandler, string(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cancelled request", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reads":[{"id":"plain","sequence":"`+insert+`"}]}`)).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.BatchHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Contains(t, resp.Error, context.Canceled.Error())
	})
}

func TestCatalogHandler(t *testing.T) {
	h := newTestTrim(t)
	rec := httptest.NewRecorder()
	h.CatalogHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []DefinitionResponse
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp)
	assert.Equal(t, "ligation", resp[0].Name)
	require.Len(t, resp[0].Adapters, 4)
	assert.Equal(t, "end5", resp[0].Adapters[0].End)
	assert.Equal(t, ligationStart, resp[0].Adapters[0].Sequence)
	assert.Equal(t, "rev_com_end3", resp[0].Adapters[3].End)
	assert.Equal(t, string(sequence.MustReverseComplement([]byte(ligationStart))), resp[0].Adapters[3].Sequence)
}
