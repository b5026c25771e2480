package trim

import (
	"fmt"

	"github.com/aria-lang/nanotrim/internal/alignment"
)

// EndMatch is the outcome of aligning one adapter end against a read.
type EndMatch struct {
	End End
	// Alignment has target coordinates relative to the whole read, even
	// when only a window of the read was searched.
	Alignment *alignment.LocalAlignment
	Coverage  float64
	Identity  float64
	// Cut is the 0-based trim coordinate in the read: the first base after
	// a 5' adapter, or the first base of a 3' adapter.
	Cut int
}

// Boundary is the part of a read to keep, read[Start:End], in the
// coordinates of the read as given.
type Boundary struct {
	Start int
	End   int
	// ReverseComplement is set when the reverse complement ends accepted:
	// the kept bases must be reverse complemented to restore forward
	// orientation.
	ReverseComplement bool
	Has5              bool
	Has3              bool
	Matches           []EndMatch
}

// Len returns the number of kept bases.
func (b Boundary) Len() int {
	if b.End < b.Start {
		return 0
	}
	return b.End - b.Start
}

// Degenerate reports whether the boundary carries too little information to
// be trusted: a cut at either end of the read or an empty keep range. The
// read should be skipped rather than trimmed.
func (b Boundary) Degenerate(readLen int) bool {
	return b.Start == 0 || b.End == 0 || b.End == readLen || b.Start >= b.End
}

// Empty reports whether the boundary keeps no bases. It is the only check
// applied when a single-ended definition is accepted on its own.
func (b Boundary) Empty() bool {
	return b.Start >= b.End
}

// Trimmer searches reads for adapter ends. It owns one aligner and is not
// safe for concurrent use; give each worker its own Trimmer.
type Trimmer struct {
	aligner *alignment.Aligner

	// Window limits the search of 5' ends to the first Window bases of a
	// read and the search of 3' ends to the last Window bases. Zero searches
	// the whole read.
	Window int
}

// NewTrimmer creates a trimmer whose aligner initially fits adapters up to
// maxAdapter bases and reads up to maxRead bases. The aligner grows on
// demand.
func NewTrimmer(scores alignment.Scores, maxAdapter, maxRead int) (*Trimmer, error) {
	a, err := alignment.NewAligner(scores, maxAdapter, maxRead)
	if err != nil {
		return nil, fmt.Errorf("creating trimmer: %w", err)
	}
	return &Trimmer{aligner: a}, nil
}

// Aligner returns the aligner owned by the trimmer.
func (t *Trimmer) Aligner() *alignment.Aligner {
	return t.aligner
}

func (t *Trimmer) fit(queryLen, targetLen int) {
	maxQuery, maxTarget := t.aligner.Capacity()
	if queryLen <= maxQuery && targetLen <= maxTarget {
		return
	}
	if queryLen > maxQuery {
		maxQuery = queryLen
	}
	if targetLen > maxTarget {
		maxTarget = targetLen
	}
	// Both capacities are positive and the scores were validated on
	// construction.
	if err := t.aligner.Resize(maxQuery, maxTarget, t.aligner.Scores()); err != nil {
		panic(err)
	}
}

func (t *Trimmer) window(end End, read []byte) ([]byte, int) {
	if t.Window <= 0 || t.Window >= len(read) {
		return read, 0
	}
	if end.IsFivePrime() {
		return read[:t.Window], 0
	}
	offset := len(read) - t.Window
	return read[offset:], offset
}

// TrimEnd aligns one end of def against read. The match is returned even
// when rejected; ok reports acceptance. An undefined end or an empty read
// is rejected.
func (t *Trimmer) TrimEnd(def *SequenceDefinition, end End, read []byte) (match EndMatch, ok bool) {
	match.End = end
	adapter := def.Adapter(end)
	if adapter == nil || len(read) == 0 {
		return match, false
	}

	target, offset := t.window(end, read)
	t.fit(len(adapter.Sequence), len(target))
	aln := t.aligner.Align(adapter.Sequence, target)
	if offset > 0 && !aln.IsEmpty() {
		aln.TargetRange.Start += offset
		aln.TargetRange.End += offset
	}
	aln.TargetLen = len(read)

	match.Alignment = aln
	match.Coverage = adapter.Coverage(aln)
	match.Identity = aln.Identity()
	if !adapter.Accepts(aln) {
		return match, false
	}
	if end.IsFivePrime() {
		match.Cut = aln.TargetRange.End
	} else {
		match.Cut = aln.TargetRange.Start - 1
	}
	return match, true
}

// trimPair accepts an orientation when every defined end of the pair
// accepts.
func (t *Trimmer) trimPair(def *SequenceDefinition, end5, end3 End, read []byte) (Boundary, bool) {
	b := Boundary{End: len(read), ReverseComplement: end5.IsReverse()}
	defined := false
	for _, end := range [2]End{end5, end3} {
		if !def.HasEnd(end) {
			continue
		}
		defined = true
		m, ok := t.TrimEnd(def, end, read)
		if !ok {
			return Boundary{}, false
		}
		if end.IsFivePrime() {
			b.Start, b.Has5 = m.Cut, true
		} else {
			b.End, b.Has3 = m.Cut, true
		}
		b.Matches = append(b.Matches, m)
	}
	return b, defined
}

// TrimRead searches all four ends of def. Forward orientation is tried
// first and wins when both orientations would accept.
func (t *Trimmer) TrimRead(def *SequenceDefinition, read []byte) (Boundary, bool) {
	if b, ok := t.trimPair(def, End5Forward, End3Forward, read); ok {
		return b, true
	}
	return t.trimPair(def, End5RevComp, End3RevComp, read)
}

// BestDefinition tries the definitions in order and returns the first one
// with a boundary in read.
func (t *Trimmer) BestDefinition(defs []*SequenceDefinition, read []byte) (*SequenceDefinition, Boundary, bool) {
	for _, def := range defs {
		if b, ok := t.TrimRead(def, read); ok {
			return def, b, true
		}
	}
	return nil, Boundary{}, false
}
