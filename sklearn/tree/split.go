package tree

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Split is one (feature, threshold) partition of a node's rows together with
// the data it produces. Rows with x[Feature] <= Threshold go left, the rest
// go right; both sides are non-empty and together hold every parent row
// exactly once.
type Split struct {
	Feature   int
	Threshold float64
	Gain      float64

	// LeftRows and RightRows index rows of the parent matrix, ascending.
	LeftRows  []int
	RightRows []int

	XLeft  *mat.Dense
	YLeft  []float64
	XRight *mat.Dense
	YRight []float64
}

// BestSplit searches columns for the split with the largest variance
// reduction. Each column is split at its mean. Columns whose mean leaves one
// side empty are skipped; if every column is skipped BestSplit returns
// (nil, false) and the caller should emit a leaf.
//
// Ties keep the earliest column in iteration order. The winning split is
// returned even when its gain is zero or negative.
func BestSplit(x *mat.Dense, y []float64, columns []int) (*Split, bool) {
	rows, _ := x.Dims()
	parentVariance := SampleVariance(y)

	var (
		best     *Split
		bestGain = math.Inf(-1)
		col      = make([]float64, rows)
	)
	for _, c := range columns {
		mat.Col(col, c, x)
		threshold := stat.Mean(col, nil)

		left, right := partitionRows(col, threshold)
		if len(left) == 0 || len(right) == 0 {
			continue
		}

		yLeft, yRight := gather(y, left), gather(y, right)
		gain := VarianceReduction(rows, parentVariance, yLeft, yRight)
		if gain > bestGain {
			bestGain = gain
			best = &Split{
				Feature:   c,
				Threshold: threshold,
				Gain:      gain,
				LeftRows:  left,
				RightRows: right,
				YLeft:     yLeft,
				YRight:    yRight,
			}
		}
	}
	if best == nil {
		return nil, false
	}

	best.XLeft = takeRows(x, best.LeftRows)
	best.XRight = takeRows(x, best.RightRows)
	return best, true
}

// partitionRows returns the indices with values <= threshold and those above it.
func partitionRows(values []float64, threshold float64) (left, right []int) {
	for i, v := range values {
		if v <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func gather(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// takeRows copies the given rows of x into a new matrix. rows must be non-empty.
func takeRows(x *mat.Dense, rows []int) *mat.Dense {
	_, c := x.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		out.SetRow(i, x.RawRowView(r))
	}
	return out
}
