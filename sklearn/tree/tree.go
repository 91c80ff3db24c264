// Package tree implements a binary regression tree grown by variance
// reduction. Split thresholds are column means and the candidate columns at
// each node are drawn at random, which makes the tree the base learner of
// the ensemble package.
package tree

import (
	"context"
	"math/rand/v2"

	"github.com/YuminosukeSato/varforest/core/model"
	"github.com/YuminosukeSato/varforest/core/parallel"
	"github.com/YuminosukeSato/varforest/metrics"
	"github.com/YuminosukeSato/varforest/pkg/errors"
	"github.com/YuminosukeSato/varforest/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// 予測を並列化する行数の閾値
const parallelThreshold = 1000

var _ model.Regressor = (*DecisionTreeRegressor)(nil)

// DecisionTreeRegressor は分散減少で分割する回帰木
//
// 学習後のノードは不変であり、Predict 系のメソッドは複数のゴルーチンから
// 同時に呼び出せる。Fit は同時に呼び出してはならない。
type DecisionTreeRegressor struct {
	model.BaseEstimator

	// ハイパーパラメータ
	minSamplesSplit int
	maxDepth        int
	maxFeatures     int
	maxFeaturesSet  bool
	randomState     *uint64
	src             rand.Source

	logger log.Logger

	// 学習結果。nodes[0] が根
	nodes     []Node
	nFeatures int
}

// NewDecisionTreeRegressor は新しい回帰木を作成する
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{
		minSamplesSplit: DefaultMinSamplesSplit,
		maxDepth:        DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(dt)
	}
	if dt.logger == nil {
		dt.logger = log.GetLoggerWithName("DecisionTreeRegressor")
	}
	return dt
}

// validateParams はハイパーパラメータを列数 nCols に対して検証し、
// 分割ごとに抽出する列数を返す
func (dt *DecisionTreeRegressor) validateParams(nCols int) (int, error) {
	if dt.minSamplesSplit < 1 {
		return 0, errors.NewValidationError("min_samples_split", "must be at least 1", dt.minSamplesSplit)
	}
	if dt.maxDepth < 0 {
		return 0, errors.NewValidationError("max_depth", "must be non-negative", dt.maxDepth)
	}
	if !dt.maxFeaturesSet {
		return nCols, nil
	}
	if dt.maxFeatures <= 0 {
		return 0, errors.NewValidationError("max_features", "must be positive", dt.maxFeatures)
	}
	if dt.maxFeatures > nCols {
		return 0, errors.NewValidationError("max_features", "exceeds the number of features", dt.maxFeatures)
	}
	return dt.maxFeatures, nil
}

// randSource は今回の学習で使う乱数源を返す
func (dt *DecisionTreeRegressor) randSource() rand.Source {
	switch {
	case dt.src != nil:
		return dt.src
	case dt.randomState != nil:
		return rand.NewPCG(*dt.randomState, *dt.randomState)
	default:
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
}

// Fit は X (n×d) と y (n×1) から木を構築する。以前の学習結果は破棄される。
//
// 入力が不正な場合は ErrInvalidInput でマークされたエラーを返し、
// 以前の学習結果はそのまま残る。
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	x, yv, err := model.CheckTrainingData("DecisionTreeRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	return dt.fit(x, yv)
}

// FitDense は model.CheckTrainingData で検証済みのデータから木を構築する。
// NaN/Inf の走査を省くので、同じデータで多数の木を学習するアンサンブル向け。
// ハイパーパラメータと行数は検証される。
func (dt *DecisionTreeRegressor) FitDense(x *mat.Dense, y []float64) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.FitDense")

	r, _ := x.Dims()
	if r == 0 {
		return errors.NewModelError("DecisionTreeRegressor.FitDense", "empty data", errors.ErrEmptyData)
	}
	if r != len(y) {
		return errors.NewDimensionError("DecisionTreeRegressor.FitDense", r, len(y), 0)
	}
	return dt.fit(x, y)
}

func (dt *DecisionTreeRegressor) fit(x *mat.Dense, yv []float64) error {
	_, c := x.Dims()
	k, err := dt.validateParams(c)
	if err != nil {
		return err
	}

	dt.BeginFit()
	dt.nodes = nil

	b := &treeBuilder{
		minSamplesSplit: dt.minSamplesSplit,
		maxDepth:        dt.maxDepth,
		maxFeatures:     k,
		nFeatures:       c,
		rng:             rand.New(dt.randSource()),
	}
	b.build(x, yv, 0)

	dt.nodes = b.nodes
	dt.nFeatures = c
	dt.SetFitted()

	if dt.logger.Enabled(context.Background(), log.LevelDebug) {
		dt.logger.Debug("Tree fitted",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, len(yv),
			log.FeaturesKey, c,
			log.NodesKey, len(dt.nodes),
			log.LeavesKey, dt.GetNLeaves(),
			log.DepthKey, dt.GetDepth(),
		)
	}
	return nil
}

// leafIndex は row が到達する葉のノード番号を返す
func (dt *DecisionTreeRegressor) leafIndex(row []float64) int {
	i := 0
	for {
		n := &dt.nodes[i]
		if n.IsLeaf() {
			return i
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (dt *DecisionTreeRegressor) requireFitted(method string) error {
	if !dt.IsFitted() || len(dt.nodes) == 0 {
		return errors.NewNotFittedError("DecisionTreeRegressor", method)
	}
	return nil
}

// Predict は各行の予測値を n×1 の行列で返す
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	leaves, err := dt.apply("Predict", X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(leaves), 1, nil)
	for i, leaf := range leaves {
		out.Set(i, 0, dt.nodes[leaf].Value)
	}
	return out, nil
}

// PredictOne は1行分の予測値を返す
func (dt *DecisionTreeRegressor) PredictOne(row []float64) (float64, error) {
	if err := dt.requireFitted("PredictOne"); err != nil {
		return 0, err
	}
	if len(row) != dt.nFeatures {
		return 0, errors.NewDimensionError("DecisionTreeRegressor.PredictOne", dt.nFeatures, len(row), 1)
	}
	return dt.nodes[dt.leafIndex(row)].Value, nil
}

// Apply は各行が到達する葉のノード番号を返す
func (dt *DecisionTreeRegressor) Apply(X mat.Matrix) ([]int, error) {
	return dt.apply("Apply", X)
}

func (dt *DecisionTreeRegressor) apply(method string, X mat.Matrix) ([]int, error) {
	if err := dt.requireFitted(method); err != nil {
		return nil, err
	}
	if err := model.CheckPredictData("DecisionTreeRegressor."+method, X, dt.nFeatures); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	leaves := make([]int, r)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		row := make([]float64, c)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			leaves[i] = dt.leafIndex(row)
		}
	})
	return leaves, nil
}

// DecisionPath は row が根から葉までにたどるノード番号を返す
func (dt *DecisionTreeRegressor) DecisionPath(row []float64) ([]int, error) {
	if err := dt.requireFitted("DecisionPath"); err != nil {
		return nil, err
	}
	if len(row) != dt.nFeatures {
		return nil, errors.NewDimensionError("DecisionTreeRegressor.DecisionPath", dt.nFeatures, len(row), 1)
	}

	path := []int{0}
	for i := 0; !dt.nodes[i].IsLeaf(); {
		if row[dt.nodes[i].Feature] <= dt.nodes[i].Threshold {
			i = dt.nodes[i].Left
		} else {
			i = dt.nodes[i].Right
		}
		path = append(path, i)
	}
	return path, nil
}

// Score は決定係数 R² を返す
func (dt *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(model.ColumnToVec(y), model.ColumnToVec(pred))
}

// GetDepth は葉の最大深さを返す。根だけの木は 0
func (dt *DecisionTreeRegressor) GetDepth() int {
	depth := 0
	for _, n := range dt.nodes {
		if n.Depth > depth {
			depth = n.Depth
		}
	}
	return depth
}

// GetNLeaves は葉の数を返す
func (dt *DecisionTreeRegressor) GetNLeaves() int {
	leaves := 0
	for _, n := range dt.nodes {
		if n.IsLeaf() {
			leaves++
		}
	}
	return leaves
}

// NodeCount はノードの総数を返す
func (dt *DecisionTreeRegressor) NodeCount() int {
	return len(dt.nodes)
}

// Nodes はノード配列のコピーを返す。添字がノード番号
func (dt *DecisionTreeRegressor) Nodes() []Node {
	out := make([]Node, len(dt.nodes))
	copy(out, dt.nodes)
	return out
}

// NFeatures は学習時の特徴量数を返す
func (dt *DecisionTreeRegressor) NFeatures() int {
	return dt.nFeatures
}

// GetParams はハイパーパラメータを返す
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"min_samples_split": dt.minSamplesSplit,
		"max_depth":         dt.maxDepth,
		"max_features":      nil,
		"random_state":      nil,
	}
	if dt.maxFeaturesSet {
		params["max_features"] = dt.maxFeatures
	}
	if dt.randomState != nil {
		params["random_state"] = *dt.randomState
	}
	return params
}

// SetParams はハイパーパラメータを設定する。値の範囲は次の Fit で検証される
func (dt *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "min_samples_split":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			dt.minSamplesSplit = v
		case "max_depth":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			dt.maxDepth = v
		case "max_features":
			if value == nil {
				dt.maxFeatures, dt.maxFeaturesSet = 0, false
				continue
			}
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int or nil", value)
			}
			dt.maxFeatures, dt.maxFeaturesSet = v, true
		case "random_state":
			seed, err := toSeed(value)
			if err != nil {
				return err
			}
			dt.randomState = seed
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// toSeed は random_state パラメータの値を変換する。nil は非決定的な乱数を意味する
func toSeed(value interface{}) (*uint64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case uint64:
		return &v, nil
	case int:
		if v < 0 {
			return nil, errors.NewValidationError("random_state", "must be non-negative", v)
		}
		s := uint64(v)
		return &s, nil
	default:
		return nil, errors.NewValidationError("random_state", "must be an int, uint64 or nil", value)
	}
}
