package ensemble

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/varforest/pkg/errors"
	"github.com/YuminosukeSato/varforest/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// friedman は Friedman #1 に似た非線形の回帰データを作る
func friedman(seed uint64, rows int) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, 99))
	X := mat.NewDense(rows, 5, nil)
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < 5; j++ {
			X.Set(i, j, rng.Float64())
		}
		v := 10*math.Sin(math.Pi*X.At(i, 0)*X.At(i, 1)) +
			20*(X.At(i, 2)-0.5)*(X.At(i, 2)-0.5) +
			10*X.At(i, 3) + 5*X.At(i, 4) + rng.NormFloat64()
		y.Set(i, 0, v)
	}
	return X, y
}

func TestRandomForestRegressor_FitPredict(t *testing.T) {
	X, y := friedman(1, 300)

	rf := NewRandomForestRegressor(
		WithNEstimators(20),
		WithMinSamplesSplit(5),
		WithMaxDepth(10),
		WithMaxFeatures(3),
		WithRandomState(42),
	)
	require.NoError(t, rf.Fit(X, y))
	assert.True(t, rf.IsFitted())
	assert.Len(t, rf.Estimators(), 20)

	pred, err := rf.Predict(X)
	require.NoError(t, err)
	r, c := pred.Dims()
	assert.Equal(t, 300, r)
	assert.Equal(t, 1, c)

	score, err := rf.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.8)
}

func TestRandomForestRegressor_PredictIsTreeMean(t *testing.T) {
	X, y := friedman(2, 120)

	rf := NewRandomForestRegressor(WithNEstimators(7), WithMaxFeatures(2), WithRandomState(3))
	require.NoError(t, rf.Fit(X, y))

	pred, err := rf.Predict(X)
	require.NoError(t, err)

	trees := rf.Estimators()
	for i := 0; i < 120; i++ {
		row := mat.Row(nil, i, X)
		sum := 0.0
		for _, tr := range trees {
			v, err := tr.PredictOne(row)
			require.NoError(t, err)
			sum += v
		}
		assert.Equal(t, sum/float64(len(trees)), pred.At(i, 0), "row %d", i)
	}
}

func TestRandomForestRegressor_SingleTreeEqualsTree(t *testing.T) {
	X, y := friedman(3, 80)

	rf := NewRandomForestRegressor(WithNEstimators(1), WithRandomState(8))
	require.NoError(t, rf.Fit(X, y))

	pred, err := rf.Predict(X)
	require.NoError(t, err)
	treePred, err := rf.Estimators()[0].Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(treePred, pred))
}

func TestRandomForestRegressor_DeterministicAcrossWorkers(t *testing.T) {
	X, y := friedman(4, 150)

	var preds []mat.Matrix
	for _, jobs := range []int{1, 2, 4, 0} {
		rf := NewRandomForestRegressor(
			WithNEstimators(12),
			WithMaxFeatures(2),
			WithRandomState(17),
			WithNJobs(jobs),
		)
		require.NoError(t, rf.Fit(X, y))
		p, err := rf.Predict(X)
		require.NoError(t, err)
		preds = append(preds, p)
	}
	for i := 1; i < len(preds); i++ {
		assert.True(t, mat.Equal(preds[0], preds[i]), "run %d differs", i)
	}
}

func TestRandomForestRegressor_TreesDiffer(t *testing.T) {
	X, y := friedman(5, 100)

	rf := NewRandomForestRegressor(WithNEstimators(2), WithMaxFeatures(1), WithRandomState(1))
	require.NoError(t, rf.Fit(X, y))

	trees := rf.Estimators()
	assert.NotEqual(t, trees[0].Nodes(), trees[1].Nodes())
}

func TestRandomForestRegressor_RefitClearsTrees(t *testing.T) {
	X, y := friedman(6, 60)

	rf := NewRandomForestRegressor(WithNEstimators(5), WithRandomState(2))
	require.NoError(t, rf.Fit(X, y))
	require.Len(t, rf.Estimators(), 5)

	require.NoError(t, rf.SetParams(map[string]interface{}{"n_estimators": 2}))
	require.NoError(t, rf.Fit(X, y))
	assert.Len(t, rf.Estimators(), 2)
}

func TestRandomForestRegressor_Errors(t *testing.T) {
	X, y := friedman(7, 30)

	t.Run("untrained", func(t *testing.T) {
		rf := NewRandomForestRegressor()
		_, err := rf.Predict(X)
		assert.True(t, errors.IsNotFitted(err))
		assert.False(t, errors.IsInvalidInput(err))
	})

	invalid := []struct {
		name string
		rf   *RandomForestRegressor
		X, y mat.Matrix
	}{
		{"zero trees", NewRandomForestRegressor(WithNEstimators(0)), X, y},
		{"max features above columns", NewRandomForestRegressor(WithMaxFeatures(6)), X, y},
		{"max features zero", NewRandomForestRegressor(WithMaxFeatures(0)), X, y},
		{"min samples split zero", NewRandomForestRegressor(WithMinSamplesSplit(0)), X, y},
		{"negative depth", NewRandomForestRegressor(WithMaxDepth(-2)), X, y},
		{"row mismatch", NewRandomForestRegressor(), X, mat.NewDense(29, 1, nil)},
		{"NaN target", NewRandomForestRegressor(), mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 1, []float64{math.NaN(), 1})},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rf.Fit(tt.X, tt.y)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err), "got %v", err)
			assert.False(t, tt.rf.IsFitted())
			assert.Empty(t, tt.rf.Estimators())
		})
	}

	t.Run("prediction width", func(t *testing.T) {
		rf := NewRandomForestRegressor(WithNEstimators(3))
		require.NoError(t, rf.Fit(X, y))
		_, err := rf.Predict(mat.NewDense(1, 4, nil))
		var de *errors.DimensionError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, 5, de.Expected)
		assert.Equal(t, 4, de.Got)

		_, err = rf.Predict(&mat.Dense{})
		assert.True(t, errors.IsInvalidInput(err))
	})
}

func TestRandomForestRegressor_Params(t *testing.T) {
	rf := NewRandomForestRegressor(WithNEstimators(8), WithMaxFeatures(3), WithRandomState(4), WithNJobs(2))

	params := rf.GetParams()
	assert.Equal(t, 8, params["n_estimators"])
	assert.Equal(t, 3, params["max_features"])
	assert.Equal(t, uint64(4), params["random_state"])
	assert.Equal(t, 2, params["n_jobs"])
	assert.Equal(t, 8, rf.NEstimators())

	other := NewRandomForestRegressor()
	require.NoError(t, other.SetParams(params))
	assert.Equal(t, params, other.GetParams())

	assert.True(t, errors.IsInvalidInput(rf.SetParams(map[string]interface{}{"bootstrap": true})))
	assert.True(t, errors.IsInvalidInput(rf.SetParams(map[string]interface{}{"n_estimators": 1.5})))
}

func TestRandomForestRegressor_Logging(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	X, y := friedman(8, 40)

	rf := NewRandomForestRegressor(
		WithNEstimators(3),
		WithRandomState(1),
		WithLogger(logger),
		WithVerbose(true),
	)
	require.NoError(t, rf.Fit(X, y))

	assert.True(t, logger.ContainsMessage("Fitting forest"))

	fitted := logger.FindEntries("Forest fitted")
	require.Len(t, fitted, 1)
	assert.Equal(t, float64(3), fitted[0][log.TreesKey])
	assert.Contains(t, fitted[0], log.DurationMsKey)

	// 各木のログには木の番号が付く
	trees := logger.FindEntries("Tree fitted")
	require.Len(t, trees, 3)
	for _, e := range trees {
		assert.Contains(t, e, log.TreeIndexKey)
	}
}
