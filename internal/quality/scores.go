// Package quality provides Phred quality scores of nanopore reads.
//
// Phred quality scores are logarithmically related to base-calling error
// probabilities:
//
//	Q = -10 * log10(P_error)
//
// Nanopore basecallers emit Phred+33 strings well above Q40, so the full
// printable range Q0..Q93 is accepted. The mean quality of a read is
// computed in error probability space: averaging Phred values directly
// overstates the quality of reads with a few bad stretches.
package quality

import (
	"fmt"
	"math"
	"sort"
)

// Phred+33 limits.
const (
	PhredMin    = 0
	PhredMax    = 93
	PhredOffset = 33
)

// Quality thresholds commonly used for nanopore reads.
const (
	QFail      = 7
	QPass      = 10
	QHigh      = 20
	QExcellent = 30
)

// Category represents the quality category of a read.
type Category int

const (
	// Fail is a mean quality below Q7, the basecaller fail threshold.
	Fail Category = iota
	// Low is Q7 to Q10.
	Low
	// Pass is Q10 to Q20.
	Pass
	// High is Q20 to Q30.
	High
	// Excellent is Q30 and above.
	Excellent
)

func (c Category) String() string {
	switch c {
	case Fail:
		return "Fail"
	case Low:
		return "Low"
	case Pass:
		return "Pass"
	case High:
		return "High"
	case Excellent:
		return "Excellent"
	default:
		return "Unknown"
	}
}

// QualityError is implemented by every error of this package.
type QualityError interface {
	error
	IsQualityError()
}

// EmptyScoresError is returned when quality scores are empty.
type EmptyScoresError struct{}

func (e *EmptyScoresError) Error() string {
	return "quality scores cannot be empty"
}
func (e *EmptyScoresError) IsQualityError() {}

// ScoreOutOfRangeError is returned when a score is out of valid range.
type ScoreOutOfRangeError struct {
	Position int
	Score    int
}

func (e *ScoreOutOfRangeError) Error() string {
	return fmt.Sprintf("score %d at position %d is out of range [%d, %d]", e.Score, e.Position, PhredMin, PhredMax)
}
func (e *ScoreOutOfRangeError) IsQualityError() {}

// InvalidEncodingError is returned when a quality encoding character is invalid.
type InvalidEncodingError struct {
	Position int
	Char     byte
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid Phred+33 character %q at position %d", e.Char, e.Position)
}
func (e *InvalidEncodingError) IsQualityError() {}

// errorProbability[q] is 10^(-q/10).
var errorProbability [PhredMax + 1]float64

func init() {
	for q := range errorProbability {
		errorProbability[q] = math.Pow(10, -float64(q)/10)
	}
}

// Scores holds the Phred values of a read, one per base.
type Scores struct {
	Values []byte
}

// New creates quality scores from Phred values.
func New(scores []int) (*Scores, error) {
	if len(scores) == 0 {
		return nil, &EmptyScoresError{}
	}
	values := make([]byte, len(scores))
	for i, score := range scores {
		if score < PhredMin || score > PhredMax {
			return nil, &ScoreOutOfRangeError{Position: i, Score: score}
		}
		values[i] = byte(score)
	}
	return &Scores{Values: values}, nil
}

// FromPhred33 decodes a Phred+33 quality string.
func FromPhred33(encoded []byte) (*Scores, error) {
	if len(encoded) == 0 {
		return nil, &EmptyScoresError{}
	}
	values := make([]byte, len(encoded))
	for i, c := range encoded {
		if c < PhredOffset || c > PhredOffset+PhredMax {
			return nil, &InvalidEncodingError{Position: i, Char: c}
		}
		values[i] = c - PhredOffset
	}
	return &Scores{Values: values}, nil
}

// ToPhred33 encodes the scores as a Phred+33 string.
func (s *Scores) ToPhred33() []byte {
	result := make([]byte, len(s.Values))
	for i, q := range s.Values {
		result[i] = q + PhredOffset
	}
	return result
}

// Len returns the number of quality scores.
func (s *Scores) Len() int {
	return len(s.Values)
}

// Mean returns the Phred value of the mean error probability.
func (s *Scores) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	var sum float64
	for _, q := range s.Values {
		sum += errorProbability[q]
	}
	return -10 * math.Log10(sum/float64(len(s.Values)))
}

// Average returns the arithmetic mean of the Phred values.
func (s *Scores) Average() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0
	for _, q := range s.Values {
		sum += int(q)
	}
	return float64(sum) / float64(len(s.Values))
}

// Median returns the median Phred value.
func (s *Scores) Median() int {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]byte, len(s.Values))
	copy(sorted, s.Values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (int(sorted[mid-1]) + int(sorted[mid])) / 2
	}
	return int(sorted[mid])
}

// Min returns the lowest Phred value.
func (s *Scores) Min() int {
	if len(s.Values) == 0 {
		return 0
	}
	min := s.Values[0]
	for _, q := range s.Values[1:] {
		if q < min {
			min = q
		}
	}
	return int(min)
}

// Max returns the highest Phred value.
func (s *Scores) Max() int {
	max := byte(0)
	for _, q := range s.Values {
		if q > max {
			max = q
		}
	}
	return int(max)
}

// CountAtOrAbove counts scores at or above a threshold.
func (s *Scores) CountAtOrAbove(threshold int) int {
	count := 0
	for _, q := range s.Values {
		if int(q) >= threshold {
			count++
		}
	}
	return count
}

// Categorize returns the category of the mean quality.
func (s *Scores) Categorize() Category {
	mean := s.Mean()
	switch {
	case mean >= QExcellent:
		return Excellent
	case mean >= QHigh:
		return High
	case mean >= QPass:
		return Pass
	case mean >= QFail:
		return Low
	}
	return Fail
}

// ScoreToProbability converts a Phred score to its error probability.
func ScoreToProbability(score int) (float64, error) {
	if score < PhredMin || score > PhredMax {
		return 0, fmt.Errorf("score %d out of range [%d, %d]", score, PhredMin, PhredMax)
	}
	return errorProbability[score], nil
}

// ProbabilityToScore converts an error probability to the nearest Phred
// score, clamped to the Phred+33 range.
func ProbabilityToScore(prob float64) (int, error) {
	if prob <= 0 || prob > 1 {
		return 0, fmt.Errorf("probability %f must be in (0, 1]", prob)
	}
	q := int(math.Round(-10 * math.Log10(prob)))
	if q > PhredMax {
		return PhredMax, nil
	}
	return q, nil
}

// Slice returns scores [start, end) as a copy.
func (s *Scores) Slice(start, end int) (*Scores, error) {
	if start < 0 || end < start || end > len(s.Values) {
		return nil, fmt.Errorf("slice [%d, %d) out of range for %d scores", start, end, len(s.Values))
	}
	values := make([]byte, end-start)
	copy(values, s.Values[start:end])
	return &Scores{Values: values}, nil
}

// Reverse returns the scores in reverse order, matching a reverse
// complemented read.
func (s *Scores) Reverse() *Scores {
	n := len(s.Values)
	values := make([]byte, n)
	for i, q := range s.Values {
		values[n-1-i] = q
	}
	return &Scores{Values: values}
}

// Statistics summarizes the scores.
func (s *Scores) Statistics() *Stats {
	return &Stats{
		Count:    len(s.Values),
		MinScore: s.Min(),
		MaxScore: s.Max(),
		Mean:     s.Mean(),
		Average:  s.Average(),
		Median:   s.Median(),
		Category: s.Categorize(),
	}
}

func (s *Scores) String() string {
	return fmt.Sprintf("QualityScores { len: %d, mean: %.1f }", len(s.Values), s.Mean())
}

// Stats is a summary of the quality scores of one read.
type Stats struct {
	Count    int
	MinScore int
	MaxScore int
	Mean     float64
	Average  float64
	Median   int
	Category Category
}

func (s *Stats) String() string {
	return fmt.Sprintf("QualityStats { count: %d, min: %d, max: %d, mean: %.2f, median: %d, category: %s }",
		s.Count, s.MinScore, s.MaxScore, s.Mean, s.Median, s.Category)
}
