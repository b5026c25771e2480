package quality

import "fmt"

// Filter decides whether a trimmed read is kept.
type Filter struct {
	// MinLength is the minimum number of bases left after trimming.
	MinLength int
	// MinMeanQuality is compared against Scores.Mean. It is ignored for
	// reads without qualities.
	MinMeanQuality float64
	// MaxDegenerate is the maximum number of bases other than A, C, G and
	// T. A negative value disables the check.
	MaxDegenerate int
}

// DefaultFilter keeps reads of at least 100 bases and mean quality Q7.
func DefaultFilter() *Filter {
	return &Filter{
		MinLength:      100,
		MinMeanQuality: QFail,
		MaxDegenerate:  -1,
	}
}

// FilterResult reports the decision of a Filter.
type FilterResult struct {
	Passed      bool
	Reason      string
	MeanQuality float64
}

// Check applies the filter to read bases and their optional scores.
func (f *Filter) Check(bases []byte, scores *Scores) (*FilterResult, error) {
	if scores != nil && scores.Len() != len(bases) {
		return nil, fmt.Errorf("sequence has %d bases but %d quality scores", len(bases), scores.Len())
	}

	result := &FilterResult{Passed: true}
	if len(bases) < f.MinLength {
		result.Passed = false
		result.Reason = fmt.Sprintf("read too short: %d (min: %d)", len(bases), f.MinLength)
		return result, nil
	}

	if scores != nil {
		result.MeanQuality = scores.Mean()
		if result.MeanQuality < f.MinMeanQuality {
			result.Passed = false
			result.Reason = fmt.Sprintf("mean quality %.2f below minimum %.2f", result.MeanQuality, f.MinMeanQuality)
			return result, nil
		}
	}

	if f.MaxDegenerate >= 0 {
		degenerate := 0
		for _, b := range bases {
			switch b {
			case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
			default:
				degenerate++
			}
		}
		if degenerate > f.MaxDegenerate {
			result.Passed = false
			result.Reason = fmt.Sprintf("too many degenerate bases: %d (max: %d)", degenerate, f.MaxDegenerate)
			return result, nil
		}
	}
	return result, nil
}

// EndTrimmer removes low quality bases from both ends of a read.
type EndTrimmer struct {
	Threshold int
}

// Trim returns the range [start, end) of scores starting and ending with a
// base at or above the threshold. start == end when no base qualifies.
func (t *EndTrimmer) Trim(scores *Scores) (int, int) {
	n := scores.Len()
	start := 0
	for start < n && int(scores.Values[start]) < t.Threshold {
		start++
	}
	end := n
	for end > start && int(scores.Values[end-1]) < t.Threshold {
		end--
	}
	return start, end
}
