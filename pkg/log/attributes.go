// Standard attribute keys for forest training and prediction records.
//
// Keys follow a dotted hierarchy ("model.name", "data.samples") so records
// from the tree builder, the ensemble and the sweep command can be filtered
// with the same queries.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of estimator.
	// Examples: "DecisionTreeRegressor", "RandomForestRegressor"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the experiment.
	// Examples: "training", "validation", "testing"
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// DataPathKey names the file a dataset was read from.
	DataPathKey = "data.path"
)

// Tree and Ensemble Shape
const (
	// TreesKey is the number of trees in an ensemble.
	TreesKey = "ensemble.trees"

	// TreeIndexKey is the position of a tree inside its ensemble.
	TreeIndexKey = "ensemble.tree_index"

	// DepthKey is the depth of a fitted tree (edges from root to deepest leaf).
	DepthKey = "tree.depth"

	// LeavesKey is the number of leaves of a fitted tree.
	LeavesKey = "tree.leaves"

	// NodesKey is the total number of nodes of a fitted tree.
	NodesKey = "tree.nodes"

	// WorkersKey is the number of goroutines used for a parallel operation.
	WorkersKey = "infra.workers"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RMSEKey records root mean squared error.
	RMSEKey = "metrics.rmse"

	// NRMSEKey records RMSE normalised by the mean of the true values.
	NRMSEKey = "metrics.nrmse"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"
)

// Prediction Context
const (
	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and Configuration
const (
	// HyperParamsKey contains model hyperparameters as a structured object.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"

	ErrorNotFitted     = "NOT_FITTED"
	ErrorInvalidInput  = "INVALID_INPUT"
	ErrorInternalPanic = "INTERNAL_PANIC"
)
