package tree

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/varforest/pkg/log"
)

const (
	// DefaultMinSamplesSplit is the smallest node that may still be split.
	DefaultMinSamplesSplit = 2
	// DefaultMaxDepth bounds the depth of a tree; the root has depth 0.
	DefaultMaxDepth = 10
)

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMinSamplesSplit sets the minimum number of rows a node needs to be split.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.minSamplesSplit = n
	}
}

// WithMaxDepth sets the maximum depth. A node at this depth is always a leaf.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.maxDepth = depth
	}
}

// WithMaxFeatures sets how many distinct columns are drawn at every split.
// Without this option every column is considered.
func WithMaxFeatures(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.maxFeatures = n
		dt.maxFeaturesSet = true
	}
}

// WithRandomState seeds the feature sampler for reproducible trees.
func WithRandomState(seed uint64) Option {
	return func(dt *DecisionTreeRegressor) {
		s := seed
		dt.randomState = &s
	}
}

// WithRandSource injects the random source used for feature sampling.
// It takes precedence over WithRandomState.
func WithRandSource(src rand.Source) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.src = src
	}
}

// WithLogger sets the logger. Defaults to the "DecisionTreeRegressor" logger
// of the global provider.
func WithLogger(logger log.Logger) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.logger = logger
	}
}
