package dataset

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/YuminosukeSato/varforest/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// sequential は i 行目が (i, 10*i) の行列を作る
func sequential(rows int) *mat.Dense {
	data := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		data.SetRow(i, []float64{float64(i), float64(10 * i)})
	}
	return data
}

func TestShuffleRows(t *testing.T) {
	data := sequential(20)

	a := ShuffleRows(data, rand.New(rand.NewPCG(1, 2)))
	b := ShuffleRows(data, rand.New(rand.NewPCG(1, 2)))
	assert.True(t, mat.Equal(a, b))
	assert.False(t, mat.Equal(a, data))

	// rows move intact
	var firsts []float64
	for i := 0; i < 20; i++ {
		assert.Equal(t, 10*a.At(i, 0), a.At(i, 1))
		firsts = append(firsts, a.At(i, 0))
	}
	sort.Float64s(firsts)
	assert.Equal(t, mat.Col(nil, 0, data), firsts)

	// input untouched
	assert.Equal(t, 3.0, data.At(3, 0))
}

func TestTrainTestSplit(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		frac      float64
		wantTrain int
	}{
		{"sixty percent", 10, 0.6, 6},
		{"rounds half up", 10, 0.05, 1},
		{"rounds half away from zero", 7, 0.5, 4},
		{"half of remainder", 5, 0.5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			train, test, err := TrainTestSplit(sequential(tt.rows), tt.frac)
			require.NoError(t, err)

			tr, _ := train.Dims()
			te, _ := test.Dims()
			assert.Equal(t, tt.wantTrain, tr)
			assert.Equal(t, tt.rows-tt.wantTrain, te)

			// contiguous, order preserved
			assert.Equal(t, 0.0, train.At(0, 0))
			assert.Equal(t, float64(tt.wantTrain), test.At(0, 0))
		})
	}
}

func TestTrainTestSplit_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rows int
		frac float64
	}{
		{"zero fraction", 10, 0},
		{"whole set", 10, 1},
		{"negative", 10, -0.2},
		{"rounds to empty train", 10, 0.04},
		{"rounds to empty test", 10, 0.96},
		{"single row", 1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := TrainTestSplit(sequential(tt.rows), tt.frac)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err))
		})
	}
}

func TestXYSplit(t *testing.T) {
	data := mat.NewDense(3, 3, []float64{
		1, 2, 10,
		3, 4, 20,
		5, 6, 30,
	})

	x, y, err := XYSplit(data)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}), x))
	assert.Equal(t, []float64{10, 20, 30}, y.RawVector().Data)

	// copies, not views
	x.Set(0, 0, -1)
	assert.Equal(t, 1.0, data.At(0, 0))

	_, _, err = XYSplit(mat.NewDense(2, 1, []float64{1, 2}))
	assert.True(t, errors.IsInvalidInput(err))
}
