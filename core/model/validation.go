package model

import (
	"github.com/YuminosukeSato/varforest/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CheckTrainingData は学習データを検証し、計算用の形式に変換する。
//
// X が *mat.Dense の場合はコピーせずにそのまま返す。それ以外の mat.Matrix は
// 密行列にコピーされる。y は n×1 の列ベクトルでなければならない。
// 空のデータ、行数の不一致、NaN/Inf はすべて ErrInvalidInput となる。
func CheckTrainingData(op string, X, y mat.Matrix) (*mat.Dense, []float64, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}

	ry, cy := y.Dims()
	if ry != r {
		return nil, nil, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return nil, nil, errors.NewValueError(op, "y must be a column vector")
	}

	if err := errors.CheckMatrix(op, X, r, c); err != nil {
		return nil, nil, err
	}
	yv := ColumnToSlice(y)
	if err := errors.CheckNumericalStability(op, yv); err != nil {
		return nil, nil, err
	}

	x, ok := X.(*mat.Dense)
	if !ok {
		x = mat.DenseCopyOf(X)
	}
	return x, yv, nil
}

// CheckPredictData は予測入力の形状を検証する。
func CheckPredictData(op string, X mat.Matrix, nFeatures int) error {
	r, c := X.Dims()
	if r == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c != nFeatures {
		return errors.NewDimensionError(op, nFeatures, c, 1)
	}
	return nil
}
