// Package trim finds adapter, primer and barcode boundaries at the ends of
// nanopore reads.
//
// A SequenceDefinition holds up to four adapter ends. A Trimmer aligns
// each end against a read, accepts or rejects the alignment against the
// thresholds of that end and derives the part of the read to keep together
// with its orientation.
package trim

import (
	"fmt"

	"github.com/aria-lang/nanotrim/internal/alignment"
	"github.com/aria-lang/nanotrim/internal/sequence"
)

// Default acceptance thresholds for catalog entries that do not set them.
const (
	DefaultMinCoverage = 0.5
	DefaultMinIdentity = 0.75
)

// AdapterEnd is the acceptance contract of one adapter end.
type AdapterEnd struct {
	// Length is the expected adapter length coverage is measured against.
	Length      int
	MinCoverage float64
	MinIdentity float64
}

// Coverage returns the number of alignment operations relative to the
// expected length.
func (e AdapterEnd) Coverage(a *alignment.LocalAlignment) float64 {
	return a.AdapterCoverage(e.Length)
}

// Accepts reports whether both coverage and identity of a are strictly
// above the thresholds. An empty alignment is never accepted.
func (e AdapterEnd) Accepts(a *alignment.LocalAlignment) bool {
	if a.IsEmpty() {
		return false
	}
	return e.Coverage(a) > e.MinCoverage && a.Identity() > e.MinIdentity
}

func (e AdapterEnd) validate() *ThresholdError {
	if e.Length <= 0 {
		return &ThresholdError{Field: "length", Value: float64(e.Length)}
	}
	if e.MinCoverage < 0 || e.MinCoverage > 1 {
		return &ThresholdError{Field: "coverage", Value: e.MinCoverage}
	}
	if e.MinIdentity < 0 || e.MinIdentity > 1 {
		return &ThresholdError{Field: "identity", Value: e.MinIdentity}
	}
	return nil
}

// ThresholdError reports an invalid AdapterEnd threshold.
type ThresholdError struct {
	Definition string
	End        End
	Field      string
	Value      float64
}

func (e *ThresholdError) Error() string {
	if e.Definition == "" {
		return fmt.Sprintf("invalid %s threshold %g", e.Field, e.Value)
	}
	return fmt.Sprintf("%s %s: invalid %s threshold %g", e.Definition, e.End, e.Field, e.Value)
}

// Adapter is an adapter sequence with its acceptance thresholds.
type Adapter struct {
	Sequence []byte
	AdapterEnd
}

// SequenceDefinition is a named set of adapter ends. End5Forward is always
// present; the other ends may be nil.
//
// Definitions are built once and shared read-only by all trimmers. Override
// must not be called once trimming has started.
type SequenceDefinition struct {
	Name string
	ends [numEnds]*Adapter
}

// NewDefinition builds a definition from its forward adapters. end3 may be
// nil. The reverse complement ends are derived: End5RevComp is the reverse
// complement of end3 and End3RevComp the reverse complement of end5, each
// with the thresholds of the end it derives from.
func NewDefinition(name string, end5 Adapter, end3 *Adapter) (*SequenceDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("definition name cannot be empty")
	}
	d := &SequenceDefinition{Name: name}

	e5, err := newAdapter(name, End5Forward, end5)
	if err != nil {
		return nil, err
	}
	d.ends[End5Forward] = e5
	d.ends[End3RevComp] = &Adapter{
		Sequence:   sequence.MustReverseComplement(e5.Sequence),
		AdapterEnd: e5.AdapterEnd,
	}

	if end3 != nil {
		e3, err := newAdapter(name, End3Forward, *end3)
		if err != nil {
			return nil, err
		}
		d.ends[End3Forward] = e3
		d.ends[End5RevComp] = &Adapter{
			Sequence:   sequence.MustReverseComplement(e3.Sequence),
			AdapterEnd: e3.AdapterEnd,
		}
	}
	return d, nil
}

func newAdapter(name string, end End, a Adapter) (*Adapter, error) {
	seq, err := sequence.New(a.Sequence)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, end, err)
	}
	if a.Length == 0 {
		a.Length = seq.Len()
	}
	if te := a.validate(); te != nil {
		te.Definition, te.End = name, end
		return nil, te
	}
	return &Adapter{Sequence: seq.Bases, AdapterEnd: a.AdapterEnd}, nil
}

// Adapter returns the adapter of an end, or nil when the end is not
// defined.
func (d *SequenceDefinition) Adapter(end End) *Adapter {
	if end < 0 || end >= numEnds {
		return nil
	}
	return d.ends[end]
}

// HasEnd reports whether end is defined.
func (d *SequenceDefinition) HasEnd(end End) bool {
	return d.Adapter(end) != nil
}

// MaxAdapterLen returns the length of the longest adapter sequence.
func (d *SequenceDefinition) MaxAdapterLen() int {
	n := 0
	for _, a := range d.ends {
		if a != nil && len(a.Sequence) > n {
			n = len(a.Sequence)
		}
	}
	return n
}

// Override replaces thresholds of one end with user supplied values. Nil
// fields keep the current value.
type Override struct {
	Length   *int
	Coverage *float64
	Identity *float64
}

// IsZero reports whether the override changes nothing.
func (o Override) IsZero() bool {
	return o.Length == nil && o.Coverage == nil && o.Identity == nil
}

// Override applies o to end. The definition is unchanged when the result
// would be invalid.
func (d *SequenceDefinition) Override(end End, o Override) error {
	a := d.Adapter(end)
	if a == nil {
		return fmt.Errorf("%s has no %s adapter", d.Name, end)
	}
	next := a.AdapterEnd
	if o.Length != nil {
		next.Length = *o.Length
	}
	if o.Coverage != nil {
		next.MinCoverage = *o.Coverage
	}
	if o.Identity != nil {
		next.MinIdentity = *o.Identity
	}
	if te := next.validate(); te != nil {
		te.Definition, te.End = d.Name, end
		return te
	}
	a.AdapterEnd = next
	return nil
}

// OverrideAll applies o to every defined end.
func (d *SequenceDefinition) OverrideAll(o Override) error {
	for _, end := range Ends {
		if !d.HasEnd(end) {
			continue
		}
		if err := d.Override(end, o); err != nil {
			return err
		}
	}
	return nil
}
