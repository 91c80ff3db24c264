package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "tree construction failed",
			err:      fmt.Errorf("test error"),
			wantMsg:  "varforest: Fit: tree construction failed: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "varforest: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 3, 2, 1)

	want := "varforest: Predict: dimension mismatch on axis 1 (features). Expected 3, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}

	if !IsInvalidInput(err) {
		t.Error("DimensionError should carry the ErrInvalidInput kind")
	}
	if IsNotFitted(err) {
		t.Error("DimensionError should not carry the ErrNotFitted kind")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("DecisionTreeRegressor", "Predict")

	want := "varforest: DecisionTreeRegressor: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}

	if !Is(err, ErrNotFitted) {
		t.Error("NotFittedError should carry the ErrNotFitted kind")
	}
	if IsInvalidInput(err) {
		t.Error("NotFittedError should not carry the ErrInvalidInput kind")
	}
}

func TestInvalidInputKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"value error", NewValueError("Fit", "empty matrix")},
		{"validation error", NewValidationError("max_features", "must be positive", 0)},
		{"numerical error", NewNumericalInstabilityError("Fit", []float64{math.NaN()}, 4)},
		{"wrapped value error", Wrap(NewValueError("Fit", "bad"), "fitting tree 3")},
		{"model error around empty data", NewModelError("ReadCSV", "empty data", ErrEmptyData)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsInvalidInput(tt.err) {
				t.Errorf("expected %v to carry ErrInvalidInput", tt.err)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("min_samples_split", "must be at least 1", -2)

	want := "varforest: validation failed for parameter 'min_samples_split': must be at least 1 (got: -2)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if valErr.ParamName != "min_samples_split" {
		t.Errorf("ParamName = %q", valErr.ParamName)
	}
}

func TestNumericalInstabilityError_Message(t *testing.T) {
	err := NewNumericalInstabilityError("Fit", []float64{math.Inf(1), 1, 2, 3, 4, 5, 6}, 7)

	msg := err.Error()
	if !strings.Contains(msg, "at row 7") {
		t.Errorf("message should name the row: %s", msg)
	}
	if !strings.Contains(msg, "...") {
		t.Errorf("message should truncate long value lists: %s", msg)
	}
}

func TestUndefinedMetricWarning(t *testing.T) {
	w := NewUndefinedMetricWarning("NRMSE", "zero mean of y_true", math.Inf(1))

	if !strings.Contains(w.Error(), "'NRMSE' is ill-defined") {
		t.Errorf("unexpected warning message: %s", w.Error())
	}
}

func TestWarn_Routing(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(error) {})

	Warn(NewUndefinedMetricWarning("NRMSE", "zero mean", 0))
	if len(got) != 1 {
		t.Fatalf("expected 1 warning through the fallback handler, got %d", len(got))
	}

	var viaZerolog int
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	defer SetZerologWarnFunc(nil)

	Warn(NewUndefinedMetricWarning("NRMSE", "zero mean", 0))
	if viaZerolog != 1 || len(got) != 1 {
		t.Errorf("zerolog func should take precedence: zerolog=%d fallback=%d", viaZerolog, len(got))
	}
}

func TestWarn_HandlerMayWarnAgain(t *testing.T) {
	var got []string
	SetWarningHandler(func(w error) {
		got = append(got, w.Error())
		if len(got) == 1 {
			// 入れ子の警告とハンドラの差し替え
			Warn(NewUndefinedMetricWarning("R2", "constant y_true", 0))
			SetWarningHandler(func(w error) { got = append(got, "replaced") })
		}
	})
	defer SetWarningHandler(func(error) {})

	done := make(chan struct{})
	go func() {
		defer close(done)
		Warn(NewUndefinedMetricWarning("NRMSE", "zero mean of y_true", math.Inf(1)))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Warn deadlocked when the handler warned again")
	}

	if len(got) != 2 || !strings.Contains(got[1], "'R2'") {
		t.Errorf("expected the nested warning to reach the handler, got %v", got)
	}

	Warn(NewUndefinedMetricWarning("NRMSE", "zero mean of y_true", 0))
	if got[len(got)-1] != "replaced" {
		t.Errorf("handler installed from inside a handler was not used: %v", got)
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Predict", 10, 5)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in Predict: expected 10, got 5"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestErrorChaining(t *testing.T) {
	err1 := fmt.Errorf("base error")
	err2 := Wrap(err1, "wrapped once")
	err3 := NewModelError("Operation", "failed", err2)

	if !strings.Contains(err3.Error(), "base error") {
		t.Error("Expected error chain to contain base error")
	}

	formatted := fmt.Sprintf("%+v", err3)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected detailed error to contain stack trace")
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("op", []float64{1, 2, 3}); err != nil {
		t.Errorf("finite values should pass, got %v", err)
	}

	err := CheckNumericalStability("op", []float64{1, math.NaN(), 3})
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Index != 1 {
		t.Errorf("expected index 1, got %d", numErr.Index)
	}
}

type grid [][]float64

func (g grid) At(i, j int) float64 { return g[i][j] }

func TestCheckMatrix(t *testing.T) {
	ok := grid{{1, 2}, {3, 4}}
	if err := CheckMatrix("op", ok, 2, 2); err != nil {
		t.Errorf("finite matrix should pass, got %v", err)
	}

	bad := grid{{1, 2}, {3, 4}, {math.Inf(-1), 6}}
	err := CheckMatrix("op", bad, 3, 2)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Index != 2 || len(numErr.Values) != 1 {
		t.Errorf("unexpected error contents: %+v", numErr)
	}
}
