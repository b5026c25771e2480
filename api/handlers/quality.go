package handlers

import (
	"net/http"

	"github.com/aria-lang/nanotrim/internal/quality"
)

// QualityRequest carries a Phred+33 quality string.
type QualityRequest struct {
	Quality string `json:"quality"`
}

// QualityStatsResponse represents the response for quality stats. Q20
// counts bases at or above Phred 20; ExpectedErrors sums the error
// probabilities of all bases.
type QualityStatsResponse struct {
	Count          int     `json:"count"`
	Min            int     `json:"min"`
	Max            int     `json:"max"`
	Mean           float64 `json:"mean"`
	Average        float64 `json:"average"`
	Median         int     `json:"median"`
	Category       string  `json:"category"`
	Q20            int     `json:"q20"`
	ExpectedErrors float64 `json:"expected_errors"`
}

// QualityStatsHandler handles quality statistics requests.
func QualityStatsHandler(w http.ResponseWriter, r *http.Request) {
	var req QualityRequest
	if !decode(w, r, &req) {
		return
	}

	scores, err := quality.FromPhred33([]byte(req.Quality))
	if err != nil {
		writeError(w, http.StatusBadRequest, "quality: %v", err)
		return
	}

	var expected float64
	for _, q := range scores.Values {
		p, err := quality.ScoreToProbability(int(q))
		if err != nil {
			writeError(w, http.StatusBadRequest, "quality: %v", err)
			return
		}
		expected += p
	}

	stats := scores.Statistics()
	writeJSON(w, http.StatusOK, QualityStatsResponse{
		Count:          stats.Count,
		Min:            stats.MinScore,
		Max:            stats.MaxScore,
		Mean:           stats.Mean,
		Average:        stats.Average,
		Median:         stats.Median,
		Category:       stats.Category.String(),
		Q20:            scores.CountAtOrAbove(20),
		ExpectedErrors: expected,
	})
}

// FilterReadRequest represents a filter read request. Zero thresholds keep
// the defaults.
type FilterReadRequest struct {
	Sequence    string  `json:"sequence"`
	Quality     string  `json:"quality"`
	MinLength   int     `json:"min_length,omitempty"`
	MinQuality  float64 `json:"min_quality,omitempty"`
	QualityTrim int     `json:"quality_trim,omitempty"`
}

// FilterReadResponse represents the response for read filtering.
type FilterReadResponse struct {
	Passed         bool    `json:"passed"`
	Reason         string  `json:"reason,omitempty"`
	TrimStart      int     `json:"trim_start"`
	TrimEnd        int     `json:"trim_end"`
	OriginalLength int     `json:"original_length"`
	MeanQuality    float64 `json:"mean_quality"`
}

// FilterReadHandler trims low quality ends of a read when quality_trim is
// set and applies the read filter to the rest.
func FilterReadHandler(w http.ResponseWriter, r *http.Request) {
	var req FilterReadRequest
	if !decode(w, r, &req) {
		return
	}

	scores, err := quality.FromPhred33([]byte(req.Quality))
	if err != nil {
		writeError(w, http.StatusBadRequest, "quality: %v", err)
		return
	}
	bases := []byte(req.Sequence)
	if len(bases) != scores.Len() {
		writeError(w, http.StatusBadRequest, "sequence has %d bases but %d quality scores", len(bases), scores.Len())
		return
	}

	filter := quality.DefaultFilter()
	if req.MinLength > 0 {
		filter.MinLength = req.MinLength
	}
	if req.MinQuality > 0 {
		filter.MinMeanQuality = req.MinQuality
	}

	start, end := 0, len(bases)
	if req.QualityTrim > 0 {
		start, end = (&quality.EndTrimmer{Threshold: req.QualityTrim}).Trim(scores)
	}
	kept, err := scores.Slice(start, end)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	result, err := filter.Check(bases[start:end], kept)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, FilterReadResponse{
		Passed:         result.Passed,
		Reason:         result.Reason,
		TrimStart:      start,
		TrimEnd:        end,
		OriginalLength: len(bases),
		MeanQuality:    result.MeanQuality,
	})
}
