package tree

import (
	"gonum.org/v1/gonum/stat"
)

// SampleVariance returns the unbiased sample variance Σ(x−mean)²/(n−1).
//
// Slices shorter than two elements have no defined sample variance; they
// report 0 so that single-row partitions score like perfectly pure ones.
// The result is never negative.
func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	v := stat.Variance(values, nil)
	if v < 0 {
		// compensated summation can leave -ε for constant input
		return 0
	}
	return v
}

// VarianceReduction is the gain of splitting a node of parentCount rows and
// sample variance parentVariance into left and right:
//
//	parentVariance − (|left|·var(left) + |right|·var(right)) / parentCount
//
// The result may be zero or negative.
func VarianceReduction(parentCount int, parentVariance float64, left, right []float64) float64 {
	weighted := float64(len(left))*SampleVariance(left) + float64(len(right))*SampleVariance(right)
	return parentVariance - weighted/float64(parentCount)
}
