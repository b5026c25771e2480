package sequence

import "fmt"

// SequenceError is implemented by every error of this package.
type SequenceError interface {
	error
	IsSequenceError()
}

// EmptySequenceError is returned when a sequence has no bases.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string {
	return "sequence must have at least one base"
}

func (e *EmptySequenceError) IsSequenceError() {}

// InvalidBaseError is returned when a byte outside the IUPAC nucleotide
// alphabet is found.
type InvalidBaseError struct {
	Position int
	Found    byte
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base %q at position %d", e.Found, e.Position)
}

func (e *InvalidBaseError) IsSequenceError() {}

// RangeError is returned by Subsequence for an out of bounds interval.
type RangeError struct {
	Start, End, Len int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range [%d, %d) out of bounds for sequence of length %d", e.Start, e.End, e.Len)
}

func (e *RangeError) IsSequenceError() {}

// Validate checks that every byte of bases is a nucleotide or an IUPAC
// degenerate code, in either case.
func Validate(bases []byte) error {
	if len(bases) == 0 {
		return &EmptySequenceError{}
	}
	for i, b := range bases {
		if complement[b] == 0 {
			return &InvalidBaseError{Position: i, Found: b}
		}
	}
	return nil
}

// IsValidBase reports whether b belongs to the IUPAC nucleotide alphabet.
func IsValidBase(b byte) bool {
	return complement[b] != 0
}
