// Package alignment provides local sequence alignment for short known
// sequences (adapters, primers, barcodes) searched within sequencing reads.
//
// The aligner is a Smith-Waterman implementation with affine gap penalties
// and IUPAC degenerate-base matching. It fills a caller-owned Matrix that is
// reused across calls, so one Aligner must never be used by more than one
// goroutine at a time.
package alignment

import "fmt"

// Scores holds the integer scoring parameters of an alignment.
//
// Scores is a small value type; copy it freely.
type Scores struct {
	Match     int
	Mismatch  int
	GapOpen   int
	GapExtend int
}

// ScoreError is returned when scoring parameters violate their sign constraints.
type ScoreError struct {
	Field string
	Value int
	Want  string
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("invalid %s score %d: must be %s", e.Field, e.Value, e.Want)
}

// BuildScores creates scoring parameters with validation.
//
// The match score must be positive; mismatch, gap open and gap extend scores
// must all be negative.
func BuildScores(match, mismatch, gapOpen, gapExtend int) (Scores, error) {
	s := Scores{
		Match:     match,
		Mismatch:  mismatch,
		GapOpen:   gapOpen,
		GapExtend: gapExtend,
	}
	if err := s.Validate(); err != nil {
		return Scores{}, err
	}
	return s, nil
}

// Validate checks the sign constraints.
func (s Scores) Validate() error {
	if s.Match <= 0 {
		return &ScoreError{Field: "match", Value: s.Match, Want: "> 0"}
	}
	if s.Mismatch >= 0 {
		return &ScoreError{Field: "mismatch", Value: s.Mismatch, Want: "< 0"}
	}
	if s.GapOpen >= 0 {
		return &ScoreError{Field: "gap open", Value: s.GapOpen, Want: "< 0"}
	}
	if s.GapExtend >= 0 {
		return &ScoreError{Field: "gap extend", Value: s.GapExtend, Want: "< 0"}
	}
	return nil
}

// DefaultScores returns the scores used for adapter and primer search.
func DefaultScores() Scores {
	return Scores{
		Match:     3,
		Mismatch:  -3,
		GapOpen:   -5,
		GapExtend: -1,
	}
}

// NanoporeScores returns scores tuned for the indel-heavy error profile of
// nanopore reads.
func NanoporeScores() Scores {
	return Scores{
		Match:     2,
		Mismatch:  -4,
		GapOpen:   -4,
		GapExtend: -2,
	}
}

func (s Scores) String() string {
	return fmt.Sprintf("Scores { match: %d, mismatch: %d, gap_open: %d, gap_extend: %d }",
		s.Match, s.Mismatch, s.GapOpen, s.GapExtend)
}
