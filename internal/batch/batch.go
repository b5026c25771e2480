// Package batch trims a batch of reads in parallel.
//
// Reads are split into ranges with pargo's parallel.Range. Every range
// borrows a trim.Trimmer from a pool for its whole duration, so an aligner
// matrix is never used by two goroutines at once.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"

	"github.com/aria-lang/nanotrim/internal/alignment"
	"github.com/aria-lang/nanotrim/internal/quality"
	"github.com/aria-lang/nanotrim/internal/sequence"
	"github.com/aria-lang/nanotrim/internal/stats"
	"github.com/aria-lang/nanotrim/internal/trim"
)

// Read is one sequencing read. Quality holds Phred+33 characters and is
// nil for FASTA input.
type Read struct {
	ID          string
	Description string
	Sequence    []byte
	Quality     []byte
}

// Status is the outcome of trimming one read.
type Status int

const (
	// Trimmed reads had an accepted boundary and were written.
	Trimmed Status = iota
	// Untrimmed reads had no boundary and were written unchanged.
	Untrimmed
	// NoBoundary reads had no boundary and were dropped.
	NoBoundary
	// Degenerate reads had a boundary too weak to trust and were dropped.
	Degenerate
	// Filtered reads failed the quality filter after trimming.
	Filtered
	// Invalid reads had malformed bases or qualities.
	Invalid
)

var statusNames = [...]string{"trimmed", "untrimmed", "no_boundary", "degenerate", "filtered", "invalid"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Outcome records what happened to one input read.
type Outcome struct {
	Status     Status
	Definition string
	Boundary   trim.Boundary
	Reason     string
}

// Config controls a batch run.
type Config struct {
	Scores alignment.Scores
	// Window limits the adapter search to the ends of a read; zero searches
	// whole reads.
	Window int
	// RequireBothEnds rejects boundaries without a 5' and a 3' cut. When
	// false, a boundary found by a single-ended definition is applied as
	// long as it keeps at least one base.
	RequireBothEnds bool
	// KeepUntrimmed writes reads without a boundary unchanged.
	KeepUntrimmed bool
	// QualityTrim removes bases below this Phred value from both ends of a
	// trimmed read. Zero disables it.
	QualityTrim int
	// Filter is applied to every written read. Nil disables filtering.
	Filter *quality.Filter
	// Workers is passed to parallel.Range; zero uses GOMAXPROCS.
	Workers int
	// Progress, if set, is called concurrently with the number of reads
	// processed by a finished range.
	Progress func(n int)
}

// DefaultConfig returns a configuration with the default scores, both ends
// required and the default quality filter.
func DefaultConfig() Config {
	return Config{
		Scores:          alignment.DefaultScores(),
		RequireBothEnds: true,
		Filter:          quality.DefaultFilter(),
	}
}

// Result is the outcome of a batch run.
type Result struct {
	RunID uuid.UUID
	// Reads holds the written reads in input order.
	Reads []Read
	// Outcomes has one entry per input read.
	Outcomes []Outcome
	// Trimmed marks the indices of input reads written with a boundary
	// applied.
	Trimmed *bitset.BitSet
	Summary *stats.Summary
}

// Lengths returns the lengths of the written reads.
func (r *Result) Lengths() []int {
	lengths := make([]int, len(r.Reads))
	for i, read := range r.Reads {
		lengths[i] = len(read.Sequence)
	}
	return lengths
}

// SummaryKeys lists the hit counters of defs in catalog order.
func SummaryKeys(defs []*trim.SequenceDefinition) []stats.EndKey {
	keys := make([]stats.EndKey, 0, len(defs)*len(trim.Ends))
	for _, d := range defs {
		for _, end := range trim.Ends {
			if d.HasEnd(end) {
				keys = append(keys, stats.EndKey{Definition: d.Name, End: end.String()})
			}
		}
	}
	return keys
}

// Run trims reads with the first definition of defs that finds a boundary.
// It returns the context error if ctx is cancelled before all reads are
// processed.
func Run(ctx context.Context, cfg Config, defs []*trim.SequenceDefinition, reads []Read) (*Result, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no sequence definitions")
	}
	if err := cfg.Scores.Validate(); err != nil {
		return nil, fmt.Errorf("batch scores: %w", err)
	}

	maxAdapter := 1
	for _, d := range defs {
		if n := d.MaxAdapterLen(); n > maxAdapter {
			maxAdapter = n
		}
	}
	maxRead := 1
	for _, r := range reads {
		if len(r.Sequence) > maxRead {
			maxRead = len(r.Sequence)
		}
	}
	if cfg.Window > 0 && cfg.Window < maxRead {
		maxRead = cfg.Window
	}

	pool := sync.Pool{New: func() interface{} {
		tr, err := trim.NewTrimmer(cfg.Scores, maxAdapter, maxRead)
		if err != nil {
			panic(err)
		}
		tr.Window = cfg.Window
		return tr
	}}

	summary := stats.NewSummary(SummaryKeys(defs))
	outcomes := make([]Outcome, len(reads))
	written := make([]*Read, len(reads))

	if len(reads) > 0 {
		parallel.Range(0, len(reads), cfg.Workers, func(low, high int) {
			tr := pool.Get().(*trim.Trimmer)
			defer pool.Put(tr)
			for i := low; i < high; i++ {
				if ctx.Err() != nil {
					return
				}
				outcomes[i], written[i] = process(&cfg, tr, defs, &reads[i], summary)
			}
			if cfg.Progress != nil {
				cfg.Progress(high - low)
			}
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:    uuid.New(),
		Outcomes: outcomes,
		Trimmed:  bitset.New(uint(len(reads))),
		Summary:  summary,
	}
	for i, r := range written {
		if r == nil {
			continue
		}
		result.Reads = append(result.Reads, *r)
		if outcomes[i].Status == Trimmed {
			result.Trimmed.Set(uint(i))
		}
	}
	return result, nil
}

func process(cfg *Config, tr *trim.Trimmer, defs []*trim.SequenceDefinition, read *Read, summary *stats.Summary) (Outcome, *Read) {
	summary.Reads.Add(1)
	summary.InputBases.Add(int64(len(read.Sequence)))

	if read.Quality != nil && len(read.Quality) != len(read.Sequence) {
		return Outcome{Status: Invalid, Reason: fmt.Sprintf("%d bases but %d qualities", len(read.Sequence), len(read.Quality))}, nil
	}

	def, b, ok := tr.BestDefinition(defs, read.Sequence)
	if !ok {
		summary.NoBoundary.Add(1)
		if !cfg.KeepUntrimmed {
			return Outcome{Status: NoBoundary}, nil
		}
		out := Outcome{Status: Untrimmed}
		return finish(cfg, out, read, read.Sequence, read.Quality, summary)
	}

	for _, m := range b.Matches {
		summary.Hit(def.Name, m.End.String())
	}
	out := Outcome{Status: Trimmed, Definition: def.Name, Boundary: b}

	weak := b.Empty()
	if cfg.RequireBothEnds {
		weak = b.Degenerate(len(read.Sequence))
	}
	if weak {
		summary.Degenerate.Add(1)
		out.Status = Degenerate
		return out, nil
	}

	seq := read.Sequence[b.Start:b.End]
	var qual []byte
	if read.Quality != nil {
		qual = read.Quality[b.Start:b.End]
	}
	if b.ReverseComplement {
		rc, err := sequence.ReverseComplement(seq)
		if err != nil {
			out.Status, out.Reason = Invalid, err.Error()
			return out, nil
		}
		seq = rc
		if qual != nil {
			qual = sequence.Reverse(qual)
		}
		summary.Reverse.Add(1)
	} else {
		seq = append([]byte(nil), seq...)
		if qual != nil {
			qual = append([]byte(nil), qual...)
		}
		summary.Forward.Add(1)
	}
	return finish(cfg, out, read, seq, qual, summary)
}

func finish(cfg *Config, out Outcome, read *Read, seq, qual []byte, summary *stats.Summary) (Outcome, *Read) {
	var scores *quality.Scores
	if len(qual) > 0 {
		s, err := quality.FromPhred33(qual)
		if err != nil {
			out.Status, out.Reason = Invalid, err.Error()
			return out, nil
		}
		scores = s
	}

	if cfg.QualityTrim > 0 && scores != nil && out.Status == Trimmed {
		start, end := (&quality.EndTrimmer{Threshold: cfg.QualityTrim}).Trim(scores)
		seq, qual = seq[start:end], qual[start:end]
		scores = &quality.Scores{Values: scores.Values[start:end]}
	}

	if cfg.Filter != nil {
		res, err := cfg.Filter.Check(seq, scores)
		if err != nil {
			out.Status, out.Reason = Invalid, err.Error()
			return out, nil
		}
		if !res.Passed {
			summary.Filtered.Add(1)
			out.Status, out.Reason = Filtered, res.Reason
			return out, nil
		}
	}

	summary.Written.Add(1)
	summary.OutputBases.Add(int64(len(seq)))
	return out, &Read{
		ID:          read.ID,
		Description: read.Description,
		Sequence:    seq,
		Quality:     qual,
	}
}
