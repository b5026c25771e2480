package alignment

import "context"

// Aligner performs Smith-Waterman local alignments with affine gap
// penalties on a Matrix it owns exclusively.
//
// An Aligner is not safe for concurrent use. Give every worker its own.
type Aligner struct {
	scores Scores
	matrix *Matrix
}

// NewAligner creates an aligner for queries up to maxQuery bases and targets
// up to maxTarget bases.
func NewAligner(scores Scores, maxQuery, maxTarget int) (*Aligner, error) {
	a := &Aligner{}
	if err := a.Resize(maxQuery, maxTarget, scores); err != nil {
		return nil, err
	}
	return a, nil
}

// Resize changes the capacity and scores of the aligner. Only the goroutine
// owning the aligner may call it.
func (a *Aligner) Resize(maxQuery, maxTarget int, scores Scores) error {
	if err := scores.Validate(); err != nil {
		return err
	}
	if a.matrix == nil {
		m, err := NewMatrix(maxQuery, maxTarget)
		if err != nil {
			return err
		}
		a.matrix = m
	} else if err := a.matrix.Resize(maxQuery, maxTarget); err != nil {
		return err
	}
	a.scores = scores
	return nil
}

// Scores returns the scoring parameters of the aligner.
func (a *Aligner) Scores() Scores {
	return a.scores
}

// Capacity returns the maximum query and target lengths.
func (a *Aligner) Capacity() (maxQuery, maxTarget int) {
	return a.matrix.Capacity()
}

// Align finds the best local alignment of query within target.
//
// It panics with *EmptyInputError or *CapacityError when a sequence is
// empty or longer than the aligner capacity.
func (a *Aligner) Align(query, target []byte) *LocalAlignment {
	return Align(a.matrix, a.scores, query, target)
}

// AlignContext is Align with a cancellation check between matrix rows.
func (a *Aligner) AlignContext(ctx context.Context, query, target []byte) (*LocalAlignment, error) {
	return fill(ctx, a.matrix, a.scores, query, target)
}

// Align aligns query against target using m as scratch space.
func Align(m *Matrix, scores Scores, query, target []byte) *LocalAlignment {
	result, _ := fill(context.Background(), m, scores, query, target)
	return result
}

func fill(ctx context.Context, m *Matrix, s Scores, query, target []byte) (*LocalAlignment, error) {
	m.shape(len(query), len(target))

	match, mismatch := int32(s.Match), int32(s.Mismatch)
	gapOpen, gapExtend := int32(s.GapOpen), int32(s.GapExtend)

	var best int32
	bestI, bestJ := 0, 0

	prevScores, prevOps := m.row(0)
	for i := 1; i < m.rows; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		curScores, curOps := m.row(i)
		curScores[0], curOps[0] = 0, Deletion

		q := query[i-1]
		for j := 1; j < m.cols; j++ {
			diag, diagOp := prevScores[j-1]+mismatch, Substitution
			if Matches(q, target[j-1]) {
				diag, diagOp = prevScores[j-1]+match, Match
			}

			// A Deletion consumes a target base: horizontal move.
			left := curScores[j-1] + gapOpen
			if curOps[j-1] == Deletion {
				left = curScores[j-1] + gapExtend
			}

			// An Insertion consumes a query base: vertical move.
			up := prevScores[j] + gapOpen
			if prevOps[j] == Insertion {
				up = prevScores[j] + gapExtend
			}

			// Ties resolve diagonal, then left, then up.
			score, op := int32(0), None
			if diag > score {
				score, op = diag, diagOp
			}
			if left > score {
				score, op = left, Deletion
			}
			if up > score {
				score, op = up, Insertion
			}
			curScores[j], curOps[j] = score, op

			if score > best {
				best, bestI, bestJ = score, i, j
			}
		}
		prevScores, prevOps = curScores, curOps
	}

	return traceback(m, best, bestI, bestJ, len(query), len(target)), nil
}

func traceback(m *Matrix, best int32, bestI, bestJ, queryLen, targetLen int) *LocalAlignment {
	result := &LocalAlignment{
		Score:     int(best),
		QueryLen:  queryLen,
		TargetLen: targetLen,
	}
	if best == 0 {
		return result
	}

	ops := make([]Operation, 0, bestI+bestJ)
	i, j := bestI, bestJ
	for i > 0 && j > 0 {
		score, op := m.at(i, j)
		if score == 0 {
			break
		}
		ops = append(ops, op)
		switch op {
		case Match, Substitution:
			i--
			j--
		case Deletion:
			j--
		case Insertion:
			i--
		default:
			panic("alignment: unvisited cell on traceback path")
		}
	}

	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}

	result.Operations = ops
	result.QueryRange = Range{Start: i + 1, End: bestI}
	result.TargetRange = Range{Start: j + 1, End: bestJ}
	return result
}
