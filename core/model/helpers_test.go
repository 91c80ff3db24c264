package model

import "gonum.org/v1/gonum/mat"

func newColumn(values []float64) mat.Matrix {
	return mat.NewDense(len(values), 1, values)
}
