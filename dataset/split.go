package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/varforest/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ShuffleRows returns a copy of data with its rows permuted by rng.
func ShuffleRows(data *mat.Dense, rng *rand.Rand) *mat.Dense {
	rows, cols := data.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i, src := range rng.Perm(rows) {
		out.SetRow(i, data.RawRowView(src))
	}
	return out
}

// TrainTestSplit cuts data into its first round(trainFrac·rows) rows and the
// remainder, keeping row order. Both parts are copies and must be non-empty.
func TrainTestSplit(data *mat.Dense, trainFrac float64) (train, test *mat.Dense, err error) {
	if !(trainFrac > 0 && trainFrac < 1) {
		return nil, nil, errors.NewValidationError("train_frac", "must be in (0, 1)", trainFrac)
	}

	rows, cols := data.Dims()
	trainRows := int(math.Round(trainFrac * float64(rows)))
	if trainRows == 0 || trainRows == rows {
		return nil, nil, errors.NewValueError("dataset.TrainTestSplit",
			"split leaves one side empty; use more rows or a different fraction")
	}

	train = mat.DenseCopyOf(data.Slice(0, trainRows, 0, cols))
	test = mat.DenseCopyOf(data.Slice(trainRows, rows, 0, cols))
	return train, test, nil
}

// XYSplit separates the feature columns from the target in the last column.
func XYSplit(data *mat.Dense) (*mat.Dense, *mat.VecDense, error) {
	rows, cols := data.Dims()
	if cols < 2 {
		return nil, nil, errors.NewDimensionError("dataset.XYSplit", 2, cols, 1)
	}

	x := mat.DenseCopyOf(data.Slice(0, rows, 0, cols-1))
	y := mat.NewVecDense(rows, mat.Col(nil, cols-1, data))
	return x, y, nil
}
