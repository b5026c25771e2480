package alignment

import "fmt"

// CapacityError reports a sequence that does not fit a Matrix. It is raised
// as a panic value: callers must size the matrix for their longest inputs.
type CapacityError struct {
	Sequence string
	Length   int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s length %d exceeds matrix capacity %d", e.Sequence, e.Length, e.Capacity)
}

// EmptyInputError reports a zero-length query or target. Like
// CapacityError it is a contract violation and raised as a panic value.
type EmptyInputError struct {
	Sequence string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s sequence is empty", e.Sequence)
}

// Matrix is the reusable score and provenance buffer of the aligner.
//
// A Matrix is allocated once for the largest expected query and target and
// then overwritten by every alignment. Each call only touches the first
// len(query)+1 rows and len(target)+1 columns; cells left over from earlier
// calls outside that region are never read. A Matrix must not be shared
// between concurrent alignments.
type Matrix struct {
	maxQuery  int
	maxTarget int

	// logical shape of the current alignment
	rows, cols int

	scores []int32
	ops    []Operation
}

// NewMatrix allocates a matrix for queries up to maxQuery bases and targets
// up to maxTarget bases.
func NewMatrix(maxQuery, maxTarget int) (*Matrix, error) {
	m := &Matrix{}
	if err := m.Resize(maxQuery, maxTarget); err != nil {
		return nil, err
	}
	return m, nil
}

// Resize reallocates the buffers for a new capacity. Existing buffers are
// kept when they are already large enough.
func (m *Matrix) Resize(maxQuery, maxTarget int) error {
	if maxQuery <= 0 || maxTarget <= 0 {
		return fmt.Errorf("matrix capacity must be positive, got %dx%d", maxQuery, maxTarget)
	}
	total := (maxQuery + 1) * (maxTarget + 1)
	if total <= cap(m.scores) {
		m.scores = m.scores[:total]
		m.ops = m.ops[:total]
	} else {
		m.scores = make([]int32, total)
		m.ops = make([]Operation, total)
	}
	m.maxQuery, m.maxTarget = maxQuery, maxTarget
	m.rows, m.cols = 0, 0
	return nil
}

// Capacity returns the maximum query and target lengths.
func (m *Matrix) Capacity() (maxQuery, maxTarget int) {
	return m.maxQuery, m.maxTarget
}

// Fits reports whether a query/target pair fits the matrix.
func (m *Matrix) Fits(queryLen, targetLen int) bool {
	return queryLen <= m.maxQuery && targetLen <= m.maxTarget
}

// shape restricts the matrix to a logical region and resets the boundary
// row. Column 0 is reset row by row during the fill.
func (m *Matrix) shape(queryLen, targetLen int) {
	if queryLen == 0 {
		panic(&EmptyInputError{Sequence: "query"})
	}
	if targetLen == 0 {
		panic(&EmptyInputError{Sequence: "target"})
	}
	if queryLen > m.maxQuery {
		panic(&CapacityError{Sequence: "query", Length: queryLen, Capacity: m.maxQuery})
	}
	if targetLen > m.maxTarget {
		panic(&CapacityError{Sequence: "target", Length: targetLen, Capacity: m.maxTarget})
	}
	m.rows, m.cols = queryLen+1, targetLen+1

	scores, ops := m.row(0)
	for j := range scores {
		scores[j] = 0
		ops[j] = Insertion
	}
}

func (m *Matrix) row(i int) ([]int32, []Operation) {
	offset := i * m.cols
	return m.scores[offset : offset+m.cols], m.ops[offset : offset+m.cols]
}

func (m *Matrix) at(i, j int) (int32, Operation) {
	k := i*m.cols + j
	return m.scores[k], m.ops[k]
}
