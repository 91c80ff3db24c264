package ensemble

import (
	"github.com/YuminosukeSato/varforest/pkg/log"
	"github.com/YuminosukeSato/varforest/sklearn/tree"
)

// DefaultNEstimators is the number of trees grown when WithNEstimators is not given.
const DefaultNEstimators = 100

// Option configures a RandomForestRegressor.
type Option func(*RandomForestRegressor)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.nEstimators = n
	}
}

// WithMinSamplesSplit sets the per-tree minimum node size for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.minSamplesSplit = n
	}
}

// WithMaxDepth sets the per-tree depth limit.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestRegressor) {
		rf.maxDepth = depth
	}
}

// WithMaxFeatures sets how many columns each split considers.
func WithMaxFeatures(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.maxFeatures = n
		rf.maxFeaturesSet = true
	}
}

// WithRandomState makes Fit deterministic. Tree i samples features from
// a PCG stream seeded with (seed, i).
func WithRandomState(seed uint64) Option {
	return func(rf *RandomForestRegressor) {
		s := seed
		rf.randomState = &s
	}
}

// WithNJobs bounds the number of goroutines used by Fit and Predict.
// n <= 0 uses every CPU.
func WithNJobs(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.nJobs = n
	}
}

// WithLogger sets the logger shared by the forest and its trees.
func WithLogger(logger log.Logger) Option {
	return func(rf *RandomForestRegressor) {
		rf.logger = logger
	}
}

// WithVerbose enables an info record per Fit.
func WithVerbose(verbose bool) Option {
	return func(rf *RandomForestRegressor) {
		rf.verbose = verbose
	}
}

func defaultOptions(rf *RandomForestRegressor) {
	rf.nEstimators = DefaultNEstimators
	rf.minSamplesSplit = tree.DefaultMinSamplesSplit
	rf.maxDepth = tree.DefaultMaxDepth
}
