// Package ensemble provides a regression random forest built from the
// variance-reduction trees of package tree.
//
// Every tree is trained on the full training set; the ensemble's diversity
// comes only from the random column draw at each split. Predictions are the
// arithmetic mean of the per-tree predictions.
package ensemble

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/YuminosukeSato/varforest/core/model"
	"github.com/YuminosukeSato/varforest/core/parallel"
	"github.com/YuminosukeSato/varforest/metrics"
	"github.com/YuminosukeSato/varforest/pkg/errors"
	"github.com/YuminosukeSato/varforest/pkg/log"
	"github.com/YuminosukeSato/varforest/sklearn/tree"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var _ model.Regressor = (*RandomForestRegressor)(nil)

// RandomForestRegressor は回帰木のアンサンブル
//
// Predict は複数のゴルーチンから同時に呼び出せる。Fit は同時に呼び出してはならない。
type RandomForestRegressor struct {
	state *model.StateManager

	nEstimators     int
	minSamplesSplit int
	maxDepth        int
	maxFeatures     int
	maxFeaturesSet  bool
	randomState     *uint64
	nJobs           int
	verbose         bool

	logger log.Logger

	mu         sync.RWMutex
	estimators []*tree.DecisionTreeRegressor
}

// NewRandomForestRegressor は新しいランダムフォレストを作成する
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{state: model.NewStateManager()}
	defaultOptions(rf)
	for _, opt := range opts {
		opt(rf)
	}
	if rf.logger == nil {
		rf.logger = log.GetLoggerWithName("RandomForestRegressor")
	}
	return rf
}

func (rf *RandomForestRegressor) validateParams(nCols int) error {
	if rf.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", rf.nEstimators)
	}
	if rf.minSamplesSplit < 1 {
		return errors.NewValidationError("min_samples_split", "must be at least 1", rf.minSamplesSplit)
	}
	if rf.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be non-negative", rf.maxDepth)
	}
	if rf.maxFeaturesSet && (rf.maxFeatures <= 0 || rf.maxFeatures > nCols) {
		return errors.NewValidationError("max_features", "must be in [1, n_features]", rf.maxFeatures)
	}
	return nil
}

// newTree は i 番目の木を作成する。乱数列は (seed, i) で決まる
func (rf *RandomForestRegressor) newTree(seed uint64, i int) *tree.DecisionTreeRegressor {
	opts := []tree.Option{
		tree.WithMinSamplesSplit(rf.minSamplesSplit),
		tree.WithMaxDepth(rf.maxDepth),
		tree.WithRandSource(rand.NewPCG(seed, uint64(i))),
		tree.WithLogger(rf.logger.With(log.TreeIndexKey, i)),
	}
	if rf.maxFeaturesSet {
		opts = append(opts, tree.WithMaxFeatures(rf.maxFeatures))
	}
	return tree.NewDecisionTreeRegressor(opts...)
}

// Fit は nEstimators 本の木を学習データ全体で構築する。以前の木はすべて破棄される。
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Fit")
	start := time.Now()

	x, yv, err := model.CheckTrainingData("RandomForestRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	r, c := x.Dims()
	if err := rf.validateParams(c); err != nil {
		return err
	}

	rf.logger.Debug("Fitting forest",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.TreesKey, rf.nEstimators,
		log.WorkersKey, parallel.Workers(rf.nJobs),
	)

	rf.mu.Lock()
	rf.estimators = nil
	rf.mu.Unlock()
	rf.state.Reset()

	seed := rand.Uint64()
	if rf.randomState != nil {
		seed = *rf.randomState
	}

	trees := make([]*tree.DecisionTreeRegressor, rf.nEstimators)
	errs := make([]error, rf.nEstimators)
	parallel.ParallelizeN(rf.nEstimators, rf.nJobs, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			errs[i] = errors.SafeExecute("RandomForestRegressor.Fit", func() error {
				t := rf.newTree(seed, i)
				if err := t.FitDense(x, yv); err != nil {
					return err
				}
				trees[i] = t
				return nil
			})
		}
	})
	for i, e := range errs {
		if e != nil {
			return errors.Wrapf(e, "tree %d", i)
		}
	}

	rf.mu.Lock()
	rf.estimators = trees
	rf.mu.Unlock()
	rf.state.SetFitted(c, r)

	if rf.verbose {
		rf.logger.Info("Forest fitted",
			log.OperationKey, log.OperationFit,
			log.TreesKey, len(trees),
			log.SamplesKey, r,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return nil
}

// Predict は全ての木の予測の平均を n×1 の行列で返す。
// 木の順に足し合わせてから本数で割るので、結果はワーカー数に依存しない。
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Predict")

	if err := rf.state.RequireFitted("RandomForestRegressor", "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if r == 0 {
		return nil, errors.NewModelError("RandomForestRegressor.Predict", "empty data", errors.ErrEmptyData)
	}
	if err := rf.state.CheckFeatures("RandomForestRegressor.Predict", c); err != nil {
		return nil, err
	}

	trees := rf.Estimators()

	perTree := make([][]float64, len(trees))
	errs := make([]error, len(trees))
	parallel.ParallelizeN(len(trees), rf.nJobs, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			errs[i] = errors.SafeExecute("RandomForestRegressor.Predict", func() error {
				p, err := trees[i].Predict(X)
				if err != nil {
					return err
				}
				perTree[i] = mat.Col(nil, 0, p)
				return nil
			})
		}
	})
	for i, e := range errs {
		if e != nil {
			return nil, errors.Wrapf(e, "tree %d", i)
		}
	}

	sum := make([]float64, r)
	for _, p := range perTree {
		floats.Add(sum, p)
	}
	n := float64(len(trees))
	for i := range sum {
		sum[i] /= n
	}

	if rf.logger.Enabled(context.Background(), log.LevelDebug) {
		rf.logger.Debug("Forest predicted",
			log.OperationKey, log.OperationPredict,
			log.PredsKey, r,
			log.TreesKey, len(trees),
		)
	}
	return mat.NewDense(r, 1, sum), nil
}

// Score は決定係数 R² を返す
func (rf *RandomForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(model.ColumnToVec(y), model.ColumnToVec(pred))
}

// IsFitted はモデルが学習済みかどうかを返す
func (rf *RandomForestRegressor) IsFitted() bool {
	return rf.state.IsFitted()
}

// Estimators は学習済みの木を学習順に返す
func (rf *RandomForestRegressor) Estimators() []*tree.DecisionTreeRegressor {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	out := make([]*tree.DecisionTreeRegressor, len(rf.estimators))
	copy(out, rf.estimators)
	return out
}

// NEstimators は設定された木の本数を返す
func (rf *RandomForestRegressor) NEstimators() int {
	return rf.nEstimators
}

// GetParams はハイパーパラメータを返す
func (rf *RandomForestRegressor) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"n_estimators":      rf.nEstimators,
		"min_samples_split": rf.minSamplesSplit,
		"max_depth":         rf.maxDepth,
		"max_features":      nil,
		"random_state":      nil,
		"n_jobs":            rf.nJobs,
	}
	if rf.maxFeaturesSet {
		params["max_features"] = rf.maxFeatures
	}
	if rf.randomState != nil {
		params["random_state"] = *rf.randomState
	}
	return params
}

// SetParams はハイパーパラメータを設定する。値の範囲は次の Fit で検証される
func (rf *RandomForestRegressor) SetParams(params map[string]interface{}) error {
	ints := map[string]*int{
		"n_estimators":      &rf.nEstimators,
		"min_samples_split": &rf.minSamplesSplit,
		"max_depth":         &rf.maxDepth,
		"n_jobs":            &rf.nJobs,
	}
	for key, value := range params {
		if dst, ok := ints[key]; ok {
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			*dst = v
			continue
		}
		switch key {
		case "max_features":
			if value == nil {
				rf.maxFeatures, rf.maxFeaturesSet = 0, false
				continue
			}
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int or nil", value)
			}
			rf.maxFeatures, rf.maxFeaturesSet = v, true
		case "random_state":
			switch v := value.(type) {
			case nil:
				rf.randomState = nil
			case uint64:
				rf.randomState = &v
			case int:
				if v < 0 {
					return errors.NewValidationError(key, "must be non-negative", v)
				}
				s := uint64(v)
				rf.randomState = &s
			default:
				return errors.NewValidationError(key, "must be an int, uint64 or nil", value)
			}
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
