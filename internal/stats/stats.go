// Package stats collects run summaries of adapter trimming.
//
// Counters of a Summary are updated concurrently by trimming workers.
// Length statistics are computed once over the lengths of the reads that
// were written.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	psync "github.com/exascience/pargo/sync"
)

// EndKey identifies the hit counter of one adapter end of a definition.
type EndKey struct {
	Definition string
	End        string
}

// Hash implements the hasher interface of pargo's sync.Map (DJBX33A).
func (k EndKey) Hash() (hash uint64) {
	hash = 5381
	for _, s := range [2]string{k.Definition, k.End} {
		for i := 0; i < len(s); i++ {
			hash = ((hash << 5) + hash) + uint64(s[i])
		}
		hash = ((hash << 5) + hash) + '/'
	}
	return
}

func (k EndKey) String() string {
	return k.Definition + "/" + k.End
}

// Summary counts the outcome of a trimming run. All methods are safe for
// concurrent use.
type Summary struct {
	Reads       atomic.Int64
	InputBases  atomic.Int64
	Forward     atomic.Int64
	Reverse     atomic.Int64
	NoBoundary  atomic.Int64
	Degenerate  atomic.Int64
	Filtered    atomic.Int64
	Written     atomic.Int64
	OutputBases atomic.Int64

	hits *psync.Map

	mu   sync.Mutex
	keys []EndKey
}

// NewSummary creates a summary with a hit counter for each key. Hits on
// unknown keys are counted too but are listed after the registered ones.
func NewSummary(keys []EndKey) *Summary {
	s := &Summary{hits: psync.NewMap(0)}
	for _, k := range keys {
		s.counter(k)
	}
	return s
}

func (s *Summary) counter(k EndKey) *atomic.Int64 {
	if c, ok := s.hits.Load(k); ok {
		return c.(*atomic.Int64)
	}
	c, loaded := s.hits.LoadOrStore(k, new(atomic.Int64))
	if !loaded {
		s.register(k)
	}
	return c.(*atomic.Int64)
}

// register is only reached by the goroutine that stored the counter, so
// keys never holds duplicates.
func (s *Summary) register(k EndKey) {
	s.mu.Lock()
	s.keys = append(s.keys, k)
	s.mu.Unlock()
}

// Hit records an accepted adapter end.
func (s *Summary) Hit(definition, end string) {
	s.counter(EndKey{Definition: definition, End: end}).Add(1)
}

// Hits returns the hit count of a key.
func (s *Summary) Hits(definition, end string) int64 {
	c, ok := s.hits.Load(EndKey{Definition: definition, End: end})
	if !ok {
		return 0
	}
	return c.(*atomic.Int64).Load()
}

// EndHits returns all counters in registration order.
func (s *Summary) EndHits() []EndHit {
	s.mu.Lock()
	keys := append([]EndKey(nil), s.keys...)
	s.mu.Unlock()

	result := make([]EndHit, 0, len(keys))
	for _, k := range keys {
		c, _ := s.hits.Load(k)
		result = append(result, EndHit{Key: k, Count: c.(*atomic.Int64).Load()})
	}
	return result
}

// EndHit is the count of one adapter end.
type EndHit struct {
	Key   EndKey
	Count int64
}

// Trimmed returns the number of reads with an accepted boundary.
func (s *Summary) Trimmed() int64 {
	return s.Forward.Load() + s.Reverse.Load()
}

func (s *Summary) String() string {
	var sb strings.Builder
	reads := s.Reads.Load()
	fmt.Fprintf(&sb, "reads:        %s (%s bases)\n", humanize.Comma(reads), humanize.Comma(s.InputBases.Load()))
	fmt.Fprintf(&sb, "trimmed:      %s (%s)\n", humanize.Comma(s.Trimmed()), percent(s.Trimmed(), reads))
	fmt.Fprintf(&sb, "  forward:    %s\n", humanize.Comma(s.Forward.Load()))
	fmt.Fprintf(&sb, "  reverse:    %s\n", humanize.Comma(s.Reverse.Load()))
	fmt.Fprintf(&sb, "no boundary:  %s\n", humanize.Comma(s.NoBoundary.Load()))
	fmt.Fprintf(&sb, "degenerate:   %s\n", humanize.Comma(s.Degenerate.Load()))
	fmt.Fprintf(&sb, "filtered:     %s\n", humanize.Comma(s.Filtered.Load()))
	fmt.Fprintf(&sb, "written:      %s (%s bases)\n", humanize.Comma(s.Written.Load()), humanize.Comma(s.OutputBases.Load()))
	for _, h := range s.EndHits() {
		if h.Count > 0 {
			fmt.Fprintf(&sb, "  %-28s %s\n", h.Key, humanize.Comma(h.Count))
		}
	}
	return sb.String()
}

func percent(n, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}

// LengthStats summarizes read lengths.
type LengthStats struct {
	Count        int
	TotalBases   int
	MinLength    int
	MaxLength    int
	MeanLength   float64
	MedianLength int
	N50          int
}

// FromLengths computes length statistics.
func FromLengths(lengths []int) (*LengthStats, error) {
	if len(lengths) == 0 {
		return nil, fmt.Errorf("length list cannot be empty")
	}

	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	total := 0
	for _, l := range sorted {
		total += l
	}

	count := len(sorted)
	mid := count / 2
	median := sorted[mid]
	if count%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	// N50: length at which the longest reads cover half of the bases
	n50 := sorted[count-1]
	running := 0
	for i := count - 1; i >= 0; i-- {
		running += sorted[i]
		if running*2 >= total {
			n50 = sorted[i]
			break
		}
	}

	return &LengthStats{
		Count:        count,
		TotalBases:   total,
		MinLength:    sorted[0],
		MaxLength:    sorted[count-1],
		MeanLength:   float64(total) / float64(count),
		MedianLength: median,
		N50:          n50,
	}, nil
}

func (s *LengthStats) String() string {
	return fmt.Sprintf("lengths: %s reads, %s bases, range %s - %s, mean %.1f, median %s, N50 %s",
		humanize.Comma(int64(s.Count)), humanize.Comma(int64(s.TotalBases)),
		humanize.Comma(int64(s.MinLength)), humanize.Comma(int64(s.MaxLength)),
		s.MeanLength, humanize.Comma(int64(s.MedianLength)), humanize.Comma(int64(s.N50)))
}

// LengthHistogram bins read lengths into equal width bins.
type LengthHistogram struct {
	Bins      []int
	MinLength int
	MaxLength int
	BinWidth  int
}

// NewLengthHistogram creates a length histogram.
func NewLengthHistogram(lengths []int, numBins int) (*LengthHistogram, error) {
	if len(lengths) == 0 {
		return nil, fmt.Errorf("length list cannot be empty")
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("numBins must be positive")
	}

	minLen, maxLen := lengths[0], lengths[0]
	for _, l := range lengths {
		if l < minLen {
			minLen = l
		}
		if l > maxLen {
			maxLen = l
		}
	}

	binWidth := (maxLen - minLen + numBins) / numBins
	if binWidth < 1 {
		binWidth = 1
	}

	bins := make([]int, numBins)
	for _, l := range lengths {
		i := (l - minLen) / binWidth
		if i >= numBins {
			i = numBins - 1
		}
		bins[i]++
	}

	return &LengthHistogram{
		Bins:      bins,
		MinLength: minLen,
		MaxLength: maxLen,
		BinWidth:  binWidth,
	}, nil
}

func (h *LengthHistogram) String() string {
	maxCount := 0
	for _, c := range h.Bins {
		if c > maxCount {
			maxCount = c
		}
	}

	var sb strings.Builder
	for i, c := range h.Bins {
		start := h.MinLength + i*h.BinWidth
		bar := 0
		if maxCount > 0 {
			bar = c * 40 / maxCount
		}
		fmt.Fprintf(&sb, "%8s-%-8s %s %s\n",
			humanize.Comma(int64(start)), humanize.Comma(int64(start+h.BinWidth-1)),
			strings.Repeat("#", bar), humanize.Comma(int64(c)))
	}
	return sb.String()
}
