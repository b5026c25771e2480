// Package nanotrim provides a high-level API for finding and trimming
// adapter sequences in nanopore reads.
//
// This package exposes the core nanotrim functionality through a small API
// for the common operations.
//
// Example usage:
//
//	reads, _, err := nanotrim.ReadFile("reads.fastq.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := nanotrim.DefaultConfig()
//	result, err := nanotrim.Trim(ctx, cfg, nanotrim.BuiltinCatalog(), reads)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Summary)
package nanotrim

import (
	"context"
	"fmt"
	"os"

	"github.com/aria-lang/nanotrim/internal/alignment"
	"github.com/aria-lang/nanotrim/internal/batch"
	"github.com/aria-lang/nanotrim/internal/sequence"
	"github.com/aria-lang/nanotrim/internal/stats"
	"github.com/aria-lang/nanotrim/internal/trim"
)

// Re-export types for convenience
type (
	Scores             = alignment.Scores
	LocalAlignment     = alignment.LocalAlignment
	Adapter            = trim.Adapter
	AdapterEnd         = trim.AdapterEnd
	SequenceDefinition = trim.SequenceDefinition
	Override           = trim.Override
	End                = trim.End
	Boundary           = trim.Boundary
	Read               = batch.Read
	Config             = batch.Config
	Result             = batch.Result
	Status             = batch.Status
	LengthStats        = stats.LengthStats
)

// Adapter ends
const (
	End5Forward = trim.End5Forward
	End3Forward = trim.End3Forward
	End5RevComp = trim.End5RevComp
	End3RevComp = trim.End3RevComp
)

// DefaultScores returns the default adapter search scores.
func DefaultScores() Scores {
	return alignment.DefaultScores()
}

// NanoporeScores returns scores tuned for nanopore errors.
func NanoporeScores() Scores {
	return alignment.NanoporeScores()
}

// BuildScores creates validated scores.
func BuildScores(match, mismatch, gapOpen, gapExtend int) (Scores, error) {
	return alignment.BuildScores(match, mismatch, gapOpen, gapExtend)
}

// Align finds the best local alignment of query within target. Both
// sequences are validated first; an aligner sized for them is allocated per
// call, so prefer a trim.Trimmer for repeated searches.
func Align(query, target []byte, scores Scores) (*LocalAlignment, error) {
	if err := sequence.Validate(query); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if err := sequence.Validate(target); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	a, err := alignment.NewAligner(scores, len(query), len(target))
	if err != nil {
		return nil, err
	}
	return a.Align(query, target), nil
}

// ReverseComplement returns the reverse complement of an IUPAC sequence.
func ReverseComplement(bases []byte) ([]byte, error) {
	return sequence.ReverseComplement(bases)
}

// NewDefinition creates a sequence definition from its 5' adapter and
// optional 3' adapter.
func NewDefinition(name string, end5 Adapter, end3 *Adapter) (*SequenceDefinition, error) {
	return trim.NewDefinition(name, end5, end3)
}

// BuiltinCatalog returns the compiled-in adapter definitions.
func BuiltinCatalog() []*SequenceDefinition {
	return trim.BuiltinCatalog()
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) ([]*SequenceDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	defs, err := trim.LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// FindDefinition returns the definition named name.
func FindDefinition(defs []*SequenceDefinition, name string) (*SequenceDefinition, bool) {
	return trim.Find(defs, name)
}

// TrimRead searches one read for the first definition of defs with a
// boundary. ok is false when no definition matched.
func TrimRead(defs []*SequenceDefinition, read []byte, scores Scores) (def *SequenceDefinition, b Boundary, ok bool, err error) {
	if len(defs) == 0 {
		return nil, Boundary{}, false, fmt.Errorf("no sequence definitions")
	}
	if err := sequence.Validate(read); err != nil {
		return nil, Boundary{}, false, fmt.Errorf("read: %w", err)
	}
	maxAdapter := 1
	for _, d := range defs {
		if n := d.MaxAdapterLen(); n > maxAdapter {
			maxAdapter = n
		}
	}
	t, err := trim.NewTrimmer(scores, maxAdapter, len(read))
	if err != nil {
		return nil, Boundary{}, false, err
	}
	def, b, ok = t.BestDefinition(defs, read)
	return def, b, ok, nil
}

// DefaultConfig returns the default batch settings.
func DefaultConfig() Config {
	return batch.DefaultConfig()
}

// Trim trims a batch of reads in parallel.
func Trim(ctx context.Context, cfg Config, defs []*SequenceDefinition, reads []Read) (*Result, error) {
	return batch.Run(ctx, cfg, defs, reads)
}

// ReadLengthStats summarizes the lengths of reads.
func ReadLengthStats(reads []Read) (*LengthStats, error) {
	lengths := make([]int, len(reads))
	for i, r := range reads {
		lengths[i] = len(r.Sequence)
	}
	return stats.FromLengths(lengths)
}

// Version returns the nanotrim version.
func Version() string {
	return "0.4.0"
}

// Info returns information about nanotrim.
func Info() string {
	return fmt.Sprintf(`nanotrim v%s - Nanopore Adapter Trimming

Features:
  - Smith-Waterman local alignment with affine gaps and IUPAC matching
  - 5' and 3' adapter search in both read orientations
  - Built-in ligation, rapid and native barcode adapters
  - YAML adapter catalogs with per-end thresholds
  - Parallel batch trimming of FASTQ/FASTA reads
  - Quality end trimming and read filtering
`, Version())
}
