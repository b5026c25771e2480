package alignment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// Operation is one step of an alignment, seen from the query.
type Operation byte

const (
	// None marks a cell that did not extend any alignment. It never
	// appears in a finished LocalAlignment.
	None Operation = iota
	// Match consumes one query and one target base that match.
	Match
	// Substitution consumes one query and one target base that differ.
	Substitution
	// Deletion consumes a target base with no query base (gap in the query).
	Deletion
	// Insertion consumes a query base with no target base (gap in the target).
	Insertion
)

func (op Operation) String() string {
	switch op {
	case Match:
		return "Match"
	case Substitution:
		return "Substitution"
	case Deletion:
		return "Deletion"
	case Insertion:
		return "Insertion"
	default:
		return "None"
	}
}

func (op Operation) cigarType() sam.CigarOpType {
	switch op {
	case Match:
		return sam.CigarEqual
	case Substitution:
		return sam.CigarMismatch
	case Deletion:
		return sam.CigarDeletion
	default:
		return sam.CigarInsertion
	}
}

// Range is an inclusive 1-based interval of a sequence.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bases in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// LocalAlignment is the result of aligning a query within a target.
//
// Ranges refer to the original sequences. When no cell scored above zero
// Operations is empty and both ranges are zero: check IsEmpty before using
// the ranges.
type LocalAlignment struct {
	QueryRange  Range
	TargetRange Range
	Operations  []Operation
	Score       int

	QueryLen  int
	TargetLen int
}

// IsEmpty reports whether the alignment has no operations.
func (a *LocalAlignment) IsEmpty() bool {
	return len(a.Operations) == 0
}

// Length returns the number of alignment operations.
func (a *LocalAlignment) Length() int {
	return len(a.Operations)
}

func (a *LocalAlignment) count(op Operation) int {
	n := 0
	for _, o := range a.Operations {
		if o == op {
			n++
		}
	}
	return n
}

// Matches returns the number of Match operations.
func (a *LocalAlignment) Matches() int { return a.count(Match) }

// Substitutions returns the number of Substitution operations.
func (a *LocalAlignment) Substitutions() int { return a.count(Substitution) }

// Deletions returns the number of Deletion operations.
func (a *LocalAlignment) Deletions() int { return a.count(Deletion) }

// Insertions returns the number of Insertion operations.
func (a *LocalAlignment) Insertions() int { return a.count(Insertion) }

// Identity is the fraction of operations that are matches.
func (a *LocalAlignment) Identity() float64 {
	if len(a.Operations) == 0 {
		return 0
	}
	return float64(a.Matches()) / float64(len(a.Operations))
}

// Coverage is the fraction of the target spanned by the alignment.
func (a *LocalAlignment) Coverage() float64 {
	if a.TargetLen == 0 || a.IsEmpty() {
		return 0
	}
	return float64(a.TargetRange.Len()) / float64(a.TargetLen)
}

// QueryCoverage is the fraction of the query spanned by the alignment.
func (a *LocalAlignment) QueryCoverage() float64 {
	if a.QueryLen == 0 || a.IsEmpty() {
		return 0
	}
	return float64(a.QueryRange.Len()) / float64(a.QueryLen)
}

// AdapterCoverage is the number of operations relative to the expected
// length of the query. It can exceed 1 when the alignment contains gaps.
func (a *LocalAlignment) AdapterCoverage(expectedLen int) float64 {
	if expectedLen <= 0 {
		return 0
	}
	return float64(len(a.Operations)) / float64(expectedLen)
}

// Cigar returns the alignment as an extended CIGAR with the query as the
// read and the target as the reference. Unaligned query flanks are soft
// clipped.
func (a *LocalAlignment) Cigar() sam.Cigar {
	if a.IsEmpty() {
		return nil
	}
	var cigar sam.Cigar
	if clip := a.QueryRange.Start - 1; clip > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarSoftClipped, clip))
	}
	current, n := a.Operations[0], 0
	for _, op := range a.Operations {
		if op != current {
			cigar = append(cigar, sam.NewCigarOp(current.cigarType(), n))
			current, n = op, 0
		}
		n++
	}
	cigar = append(cigar, sam.NewCigarOp(current.cigarType(), n))
	if clip := a.QueryLen - a.QueryRange.End; clip > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarSoftClipped, clip))
	}
	return cigar
}

// Pretty renders the alignment as aligned query, match line and aligned
// target with 1-based coordinates.
func (a *LocalAlignment) Pretty(query, target []byte) string {
	return a.pretty(query, target, false)
}

// PrettyFromEnd is Pretty with target coordinates counted backwards from
// the end of the target (-1 is the last base), for alignments at the 3' end
// of a read.
func (a *LocalAlignment) PrettyFromEnd(query, target []byte) string {
	return a.pretty(query, target, true)
}

func (a *LocalAlignment) pretty(query, target []byte, fromEnd bool) string {
	if a.IsEmpty() {
		return "no alignment\n"
	}

	var q, mid, t strings.Builder
	qi, tj := a.QueryRange.Start-1, a.TargetRange.Start-1
	for _, op := range a.Operations {
		switch op {
		case Match, Substitution:
			q.WriteByte(query[qi])
			t.WriteByte(target[tj])
			if op == Match {
				mid.WriteByte('|')
			} else {
				mid.WriteByte('.')
			}
			qi++
			tj++
		case Deletion:
			q.WriteByte('-')
			mid.WriteByte(' ')
			t.WriteByte(target[tj])
			tj++
		case Insertion:
			q.WriteByte(query[qi])
			mid.WriteByte(' ')
			t.WriteByte('-')
			qi++
		}
	}

	tStart, tEnd := a.TargetRange.Start, a.TargetRange.End
	if fromEnd {
		tStart -= a.TargetLen + 1
		tEnd -= a.TargetLen + 1
	}

	startQ, startT := strconv.Itoa(a.QueryRange.Start), strconv.Itoa(tStart)
	width := len(startQ)
	if len(startT) > width {
		width = len(startT)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "query  %*s %s %d\n", width, startQ, q.String(), a.QueryRange.End)
	fmt.Fprintf(&sb, "       %*s %s\n", width, "", mid.String())
	fmt.Fprintf(&sb, "target %*s %s %d\n", width, startT, t.String(), tEnd)
	fmt.Fprintf(&sb, "score: %d, identity: %.1f%%, cigar: %s\n", a.Score, a.Identity()*100, a.Cigar())
	return sb.String()
}

func (a *LocalAlignment) String() string {
	return fmt.Sprintf("LocalAlignment { score: %d, query: %s, target: %s, identity: %.1f%%, length: %d }",
		a.Score, a.QueryRange, a.TargetRange, a.Identity()*100, a.Length())
}
