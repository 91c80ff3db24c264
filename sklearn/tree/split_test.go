package tree

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBestSplit_MeanThreshold(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := []float64{1, 2, 3, 4}

	split, ok := BestSplit(x, y, []int{0})
	require.True(t, ok)

	assert.Equal(t, 0, split.Feature)
	assert.Equal(t, 2.5, split.Threshold)
	assert.InDelta(t, 5.0/3.0-0.5, split.Gain, 1e-12)
	assert.Equal(t, []int{0, 1}, split.LeftRows)
	assert.Equal(t, []int{2, 3}, split.RightRows)
	assert.Equal(t, []float64{1, 2}, split.YLeft)
	assert.Equal(t, []float64{3, 4}, split.YRight)
	assert.True(t, mat.Equal(mat.NewDense(2, 1, []float64{1, 2}), split.XLeft))
	assert.True(t, mat.Equal(mat.NewDense(2, 1, []float64{3, 4}), split.XRight))
}

func TestBestSplit_PicksLargestGain(t *testing.T) {
	// column 0 is noise, column 1 separates the targets
	x := mat.NewDense(4, 2, []float64{
		1, 0,
		4, 0,
		1, 10,
		4, 10,
	})
	y := []float64{0, 0, 5, 5}

	split, ok := BestSplit(x, y, []int{0, 1})
	require.True(t, ok)
	assert.Equal(t, 1, split.Feature)
	assert.Equal(t, 5.0, split.Threshold)
	assert.Equal(t, []float64{0, 0}, split.YLeft)
}

func TestBestSplit_TieKeepsFirstCandidate(t *testing.T) {
	// identical columns give identical gains
	x := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := []float64{1, 2, 3, 4}

	split, ok := BestSplit(x, y, []int{1, 0})
	require.True(t, ok)
	assert.Equal(t, 1, split.Feature)

	split, ok = BestSplit(x, y, []int{0, 1})
	require.True(t, ok)
	assert.Equal(t, 0, split.Feature)
}

func TestBestSplit_NonPositiveGainAccepted(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	t.Run("zero gain", func(t *testing.T) {
		split, ok := BestSplit(x, []float64{2, 2, 2, 2}, []int{0})
		require.True(t, ok)
		assert.Equal(t, 0.0, split.Gain)
	})

	t.Run("negative gain", func(t *testing.T) {
		split, ok := BestSplit(x, []float64{0, 1, 0, 1}, []int{0})
		require.True(t, ok)
		assert.Less(t, split.Gain, 0.0)
	})
}

func TestBestSplit_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		x       *mat.Dense
		columns []int
	}{
		{
			name:    "constant column",
			x:       mat.NewDense(3, 1, []float64{7, 7, 7}),
			columns: []int{0},
		},
		{
			name:    "single row",
			x:       mat.NewDense(1, 2, []float64{1, 2}),
			columns: []int{0, 1},
		},
		{
			name:    "no candidate columns",
			x:       mat.NewDense(2, 1, []float64{1, 2}),
			columns: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := tt.x.Dims()
			split, ok := BestSplit(tt.x, make([]float64, r), tt.columns)
			assert.False(t, ok)
			assert.Nil(t, split)
		})
	}
}

func TestBestSplit_PartitionInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 7))
	const rows, cols = 50, 4

	x := mat.NewDense(rows, cols, nil)
	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
		y[i] = rng.Float64() * 10
	}

	split, ok := BestSplit(x, y, []int{0, 1, 2, 3})
	require.True(t, ok)

	require.NotEmpty(t, split.LeftRows)
	require.NotEmpty(t, split.RightRows)
	assert.Equal(t, rows, len(split.LeftRows)+len(split.RightRows))

	seen := make(map[int]bool, rows)
	for i, r := range split.LeftRows {
		assert.LessOrEqual(t, x.At(r, split.Feature), split.Threshold)
		assert.Equal(t, y[r], split.YLeft[i])
		assert.Equal(t, mat.Row(nil, r, x), mat.Row(nil, i, split.XLeft))
		seen[r] = true
	}
	for i, r := range split.RightRows {
		assert.Greater(t, x.At(r, split.Feature), split.Threshold)
		assert.Equal(t, y[r], split.YRight[i])
		assert.Equal(t, mat.Row(nil, r, x), mat.Row(nil, i, split.XRight))
		assert.False(t, seen[r], "row %d on both sides", r)
		seen[r] = true
	}
	assert.Len(t, seen, rows)
}
