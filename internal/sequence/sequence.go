// Package sequence provides nucleotide sequences over the IUPAC alphabet
// and their reverse complement.
//
// Reads and adapter sequences are handled as byte slices. A Sequence adds
// an identifier and validation on construction.
package sequence

import (
	"bytes"
	"fmt"
)

// Sequence is a validated, upper-case nucleotide sequence.
type Sequence struct {
	ID          string
	Description string
	Bases       []byte
}

// New validates bases and returns an upper-case copy as a Sequence.
func New(bases []byte) (*Sequence, error) {
	if err := Validate(bases); err != nil {
		return nil, err
	}
	return &Sequence{Bases: bytes.ToUpper(bases)}, nil
}

// WithID creates a sequence with an identifier.
func WithID(id string, bases []byte) (*Sequence, error) {
	if id == "" {
		return nil, fmt.Errorf("sequence ID cannot be empty")
	}
	seq, err := New(bases)
	if err != nil {
		return nil, fmt.Errorf("sequence %s: %w", id, err)
	}
	seq.ID = id
	return seq, nil
}

// Len returns the number of bases.
func (s *Sequence) Len() int {
	return len(s.Bases)
}

// HasDegenerate reports whether the sequence contains an IUPAC degenerate
// code.
func (s *Sequence) HasDegenerate() bool {
	return s.CountDegenerate() > 0
}

// CountDegenerate counts the bases that are not A, C, G or T.
func (s *Sequence) CountDegenerate() int {
	count := 0
	for _, b := range s.Bases {
		switch b {
		case 'A', 'C', 'G', 'T':
		default:
			count++
		}
	}
	return count
}

// Subsequence returns bases [start, end) as a new sequence sharing the
// identifier.
func (s *Sequence) Subsequence(start, end int) (*Sequence, error) {
	if start < 0 || end <= start || end > len(s.Bases) {
		return nil, &RangeError{Start: start, End: end, Len: len(s.Bases)}
	}
	return &Sequence{
		ID:          s.ID,
		Description: s.Description,
		Bases:       append([]byte(nil), s.Bases[start:end]...),
	}, nil
}

// ReverseComplement returns the reverse complement, keeping the identifier.
func (s *Sequence) ReverseComplement() *Sequence {
	return &Sequence{
		ID:          s.ID,
		Description: s.Description,
		Bases:       MustReverseComplement(s.Bases),
	}
}

// GCContent returns the fraction of G and C bases. S counts as GC.
func (s *Sequence) GCContent() float64 {
	if len(s.Bases) == 0 {
		return 0
	}
	gc := 0
	for _, b := range s.Bases {
		if b == 'G' || b == 'C' || b == 'S' {
			gc++
		}
	}
	return float64(gc) / float64(len(s.Bases))
}

// Equal compares bases only.
func (s *Sequence) Equal(other *Sequence) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(s.Bases, other.Bases)
}

func (s *Sequence) String() string {
	if s.ID != "" {
		return fmt.Sprintf(">%s\n%s", s.ID, s.Bases)
	}
	return string(s.Bases)
}
