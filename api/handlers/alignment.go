package handlers

import (
	"net/http"
	"strings"

	"github.com/aria-lang/nanotrim/pkg/nanotrim"
)

// ScoresRequest overrides alignment scores. Zero fields keep the default.
type ScoresRequest struct {
	Match     int `json:"match"`
	Mismatch  int `json:"mismatch"`
	GapOpen   int `json:"gap_open"`
	GapExtend int `json:"gap_extend"`
}

func (s *ScoresRequest) resolve(base nanotrim.Scores) (nanotrim.Scores, error) {
	if s == nil {
		return base, nil
	}
	if s.Match != 0 {
		base.Match = s.Match
	}
	if s.Mismatch != 0 {
		base.Mismatch = s.Mismatch
	}
	if s.GapOpen != 0 {
		base.GapOpen = s.GapOpen
	}
	if s.GapExtend != 0 {
		base.GapExtend = s.GapExtend
	}
	return nanotrim.BuildScores(base.Match, base.Mismatch, base.GapOpen, base.GapExtend)
}

// AlignmentRequest represents an alignment request. The query is searched
// within the target.
type AlignmentRequest struct {
	Query   string         `json:"query"`
	Target  string         `json:"target"`
	Scores  *ScoresRequest `json:"scores,omitempty"`
	FromEnd bool           `json:"from_end,omitempty"`
}

// AlignmentResponse represents the response for alignment. Ranges are
// 1-based and inclusive; they are zero when nothing aligned.
type AlignmentResponse struct {
	Score         int     `json:"score"`
	QueryStart    int     `json:"query_start"`
	QueryEnd      int     `json:"query_end"`
	TargetStart   int     `json:"target_start"`
	TargetEnd     int     `json:"target_end"`
	Identity      float64 `json:"identity"`
	Coverage      float64 `json:"query_coverage"`
	CIGAR         string  `json:"cigar"`
	Matches       int     `json:"matches"`
	Substitutions int     `json:"substitutions"`
	Insertions    int     `json:"insertions"`
	Deletions     int     `json:"deletions"`
	Pretty        string  `json:"pretty"`
}

func (req *AlignmentRequest) align() (*nanotrim.LocalAlignment, []byte, []byte, error) {
	scores, err := req.Scores.resolve(nanotrim.DefaultScores())
	if err != nil {
		return nil, nil, nil, err
	}
	query, target := []byte(strings.ToUpper(req.Query)), []byte(strings.ToUpper(req.Target))
	aln, err := nanotrim.Align(query, target, scores)
	return aln, query, target, err
}

// LocalAlignHandler handles local alignment requests.
func LocalAlignHandler(w http.ResponseWriter, r *http.Request) {
	var req AlignmentRequest
	if !decode(w, r, &req) {
		return
	}

	aln, query, target, err := req.align()
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	pretty := aln.Pretty(query, target)
	if req.FromEnd {
		pretty = aln.PrettyFromEnd(query, target)
	}
	writeJSON(w, http.StatusOK, AlignmentResponse{
		Score:         aln.Score,
		QueryStart:    aln.QueryRange.Start,
		QueryEnd:      aln.QueryRange.End,
		TargetStart:   aln.TargetRange.Start,
		TargetEnd:     aln.TargetRange.End,
		Identity:      aln.Identity(),
		Coverage:      aln.QueryCoverage(),
		CIGAR:         aln.Cigar().String(),
		Matches:       aln.Matches(),
		Substitutions: aln.Substitutions(),
		Insertions:    aln.Insertions(),
		Deletions:     aln.Deletions(),
		Pretty:        pretty,
	})
}

// ScoreResponse represents the response for alignment score.
type ScoreResponse struct {
	Score int `json:"score"`
}

// AlignmentScoreHandler handles alignment score requests.
func AlignmentScoreHandler(w http.ResponseWriter, r *http.Request) {
	var req AlignmentRequest
	if !decode(w, r, &req) {
		return
	}

	aln, _, _, err := req.align()
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Score: aln.Score})
}
