// Package varforest is a regression random forest for Go.
//
// Trees are grown by recursive variance reduction: at every node a random
// subset of the feature columns is drawn, each candidate column is split at
// its mean, and the column whose split most reduces the sample variance of
// the target wins. The forest averages the predictions of its trees. Every
// tree sees the whole training set; there is no bootstrap resampling.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/varforest/sklearn/ensemble"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//
//	    rf := ensemble.NewRandomForestRegressor(
//	        ensemble.WithNEstimators(10),
//	        ensemble.WithMaxDepth(1),
//	        ensemble.WithRandomState(42),
//	    )
//	    if err := rf.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    predictions, err := rf.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(predictions)) // 1.5 1.5 3.5 3.5
//	}
//
// # Packages
//
//   - sklearn/tree: DecisionTreeRegressor, BestSplit and SampleVariance
//   - sklearn/ensemble: RandomForestRegressor
//   - metrics: MSE, RMSE, NRMSE, MAE, R²
//   - dataset: CSV loading and train/test/target splits
//   - core/model: estimator state and shared interfaces
//   - core/parallel: chunked goroutine fan-out
//   - pkg/errors: error kinds (invalid input, not fitted) on cockroachdb/errors
//   - pkg/log: structured logging on zerolog
//
// The varforest command (cmd/varforest) trains forests of increasing size on
// a CSV file and reports the size with the lowest validation error.
//
// # Errors
//
// Every failure is returned as an error, never a panic. Use
// errors.IsInvalidInput and errors.IsNotFitted from pkg/errors to tell the
// two kinds apart, and errors.As for the concrete types.
package varforest
