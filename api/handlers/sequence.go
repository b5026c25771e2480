package handlers

import (
	"net/http"

	"github.com/aria-lang/nanotrim/internal/sequence"
)

// SequenceRequest represents a request with a sequence.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
}

// ReverseComplementResponse represents the response for reverse complement.
type ReverseComplementResponse struct {
	ReverseComplement string `json:"reverse_complement"`
}

// ReverseComplementHandler handles reverse complement requests. Case is
// preserved.
func ReverseComplementHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	rc, err := sequence.ReverseComplement([]byte(req.Sequence))
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, ReverseComplementResponse{ReverseComplement: string(rc)})
}

// SequenceInfoResponse represents sequence information.
type SequenceInfoResponse struct {
	Length     int     `json:"length"`
	GCContent  float64 `json:"gc_content"`
	Degenerate int     `json:"degenerate"`
}

// SequenceInfoHandler handles sequence info requests.
func SequenceInfoHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	seq, err := sequence.New([]byte(req.Sequence))
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, SequenceInfoResponse{
		Length:     seq.Len(),
		GCContent:  seq.GCContent(),
		Degenerate: seq.CountDegenerate(),
	})
}

// ValidateResponse represents validation result.
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ValidateHandler handles sequence validation requests. Invalid sequences
// are reported in the body with status 200.
func ValidateHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	if err := sequence.Validate([]byte(req.Sequence)); err != nil {
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true})
}
