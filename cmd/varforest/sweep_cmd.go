package main

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/varforest/core/model"
	"github.com/YuminosukeSato/varforest/dataset"
	"github.com/YuminosukeSato/varforest/metrics"
	"github.com/YuminosukeSato/varforest/pkg/errors"
	"github.com/YuminosukeSato/varforest/pkg/log"
	"github.com/YuminosukeSato/varforest/sklearn/ensemble"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

type sweepCmdConfig struct {
	dataPath        string
	header          bool
	trainFrac       float64
	valFrac         float64
	trees           []int
	minSamplesSplit int
	maxDepth        int
	maxFeatures     int
	seed            uint64
	seedSet         bool
	jobs            int
	shuffle         bool
	plotPath        string
	logLevel        string
	configPath      string
}

func sweepCmd() *cobra.Command {
	config := &sweepCmdConfig{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Train forests of increasing size and report their errors",
		Long: `Split a dataset into train, validation and test sets, train one forest per
ensemble size, and report the size with the lowest validation NRMSE together
with its test NRMSE. The target is the last column of the data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.seedSet = cmd.Flags().Changed("seed")
			if config.configPath != "" {
				f, err := readSweepFile(config.configPath)
				if err != nil {
					return err
				}
				config.applyFile(f, cmd.Flags().Changed)
			}
			if err := config.Validate(); err != nil {
				return err
			}
			if err := log.SetupLogger(cmd.ErrOrStderr(), config.logLevel); err != nil {
				return err
			}
			res, err := runSweep(config, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if config.plotPath != "" {
				return savePlot(res, config.plotPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&config.dataPath, "data", "d", "", "path to the CSV dataset (required)")
	cmd.Flags().BoolVar(&config.header, "header", false, "the first line of the dataset holds column names")
	cmd.Flags().Float64Var(&config.trainFrac, "train-frac", 0.6, "fraction of rows used for training")
	cmd.Flags().Float64Var(&config.valFrac, "val-frac", 0.5, "fraction of the remaining rows used for validation")
	cmd.Flags().IntSliceVar(&config.trees, "trees", []int{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}, "ensemble sizes to try")
	cmd.Flags().IntVar(&config.minSamplesSplit, "min-samples-split", 5, "minimum rows for a node to be split")
	cmd.Flags().IntVar(&config.maxDepth, "max-depth", 10, "maximum tree depth")
	cmd.Flags().IntVar(&config.maxFeatures, "max-features", 3, "features drawn at every split (0 uses all)")
	cmd.Flags().Uint64Var(&config.seed, "seed", 0, "random seed (random if unset)")
	cmd.Flags().IntVarP(&config.jobs, "jobs", "j", 0, "worker goroutines (0 uses every CPU)")
	cmd.Flags().BoolVar(&config.shuffle, "shuffle", false, "shuffle rows before splitting")
	cmd.Flags().StringVar(&config.plotPath, "plot", "", "write a PNG chart of the errors to this path")
	cmd.Flags().StringVar(&config.logLevel, "log-level", "warn", "debug, info, warn or error")
	cmd.Flags().StringVarP(&config.configPath, "config", "c", "", "YAML file with defaults for these flags")
	return cmd
}

// Validate checks the flag values before any data is read.
func (c *sweepCmdConfig) Validate() error {
	if c.dataPath == "" {
		return errors.NewValidationError("data", "a dataset path is required", c.dataPath)
	}
	if !(c.trainFrac > 0 && c.trainFrac < 1) {
		return errors.NewValidationError("train-frac", "must be in (0, 1)", c.trainFrac)
	}
	if !(c.valFrac > 0 && c.valFrac < 1) {
		return errors.NewValidationError("val-frac", "must be in (0, 1)", c.valFrac)
	}
	if len(c.trees) == 0 {
		return errors.NewValidationError("trees", "at least one ensemble size is required", c.trees)
	}
	for _, n := range c.trees {
		if n < 1 {
			return errors.NewValidationError("trees", "ensemble sizes must be positive", n)
		}
	}
	if c.maxFeatures < 0 {
		return errors.NewValidationError("max-features", "must be non-negative", c.maxFeatures)
	}
	return nil
}

type sweepRow struct {
	trees      int
	duration   time.Duration
	trainNRMSE float64
	valNRMSE   float64
}

type sweepResult struct {
	rows      []sweepRow
	bestTrees int
	testNRMSE float64
}

type split struct {
	x *mat.Dense
	y *mat.VecDense
}

func (c *sweepCmdConfig) rng() *rand.Rand {
	if c.seedSet {
		return rand.New(rand.NewPCG(c.seed, c.seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// loadSplits reads the dataset and cuts it into train, validation and test sets.
func (c *sweepCmdConfig) loadSplits() (train, val, test split, err error) {
	data, err := dataset.LoadCSV(c.dataPath, dataset.WithHeader(c.header))
	if err != nil {
		return train, val, test, err
	}
	if c.shuffle {
		data = dataset.ShuffleRows(data, c.rng())
	}

	trainData, rest, err := dataset.TrainTestSplit(data, c.trainFrac)
	if err != nil {
		return train, val, test, errors.Wrap(err, "train split")
	}
	valData, testData, err := dataset.TrainTestSplit(rest, c.valFrac)
	if err != nil {
		return train, val, test, errors.Wrap(err, "validation split")
	}

	for _, p := range []struct {
		data *mat.Dense
		dst  *split
	}{{trainData, &train}, {valData, &val}, {testData, &test}} {
		p.dst.x, p.dst.y, err = dataset.XYSplit(p.data)
		if err != nil {
			return train, val, test, err
		}
	}
	return train, val, test, nil
}

func (c *sweepCmdConfig) forest(trees int) *ensemble.RandomForestRegressor {
	opts := []ensemble.Option{
		ensemble.WithNEstimators(trees),
		ensemble.WithMinSamplesSplit(c.minSamplesSplit),
		ensemble.WithMaxDepth(c.maxDepth),
		ensemble.WithNJobs(c.jobs),
	}
	if c.maxFeatures > 0 {
		opts = append(opts, ensemble.WithMaxFeatures(c.maxFeatures))
	}
	if c.seedSet {
		opts = append(opts, ensemble.WithRandomState(c.seed))
	}
	return ensemble.NewRandomForestRegressor(opts...)
}

func nrmse(rf *ensemble.RandomForestRegressor, s split) (float64, *mat.VecDense, error) {
	pred, err := rf.Predict(s.x)
	if err != nil {
		return 0, nil, err
	}
	p := model.ColumnToVec(pred)
	e, err := metrics.NRMSE(s.y, p)
	return e, p, err
}

// runSweep trains one forest per ensemble size and writes a report to w.
func runSweep(c *sweepCmdConfig, w io.Writer) (*sweepResult, error) {
	logger := log.GetLoggerWithName("varforest")

	train, val, test, err := c.loadSplits()
	if err != nil {
		return nil, err
	}
	logger.Info("Dataset split",
		log.DataPathKey, c.dataPath,
		log.SamplesKey, train.y.Len()+val.y.Len()+test.y.Len(),
		log.FeaturesKey, train.x.RawMatrix().Cols,
	)

	res := &sweepResult{testNRMSE: math.Inf(1)}
	bestVal := math.Inf(1)
	for _, n := range c.trees {
		rf := c.forest(n)

		start := time.Now()
		if err := rf.Fit(train.x, train.y); err != nil {
			return nil, errors.Wrapf(err, "fit %d trees", n)
		}
		row := sweepRow{trees: n, duration: time.Since(start)}
		fmt.Fprintf(w, "*** Training duration for %d trees: %d milliseconds\n", n, row.duration.Milliseconds())

		if row.trainNRMSE, _, err = nrmse(rf, train); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "Training set Normalized RMSE:   %.2f%%\n", 100*row.trainNRMSE)

		var valPreds *mat.VecDense
		if row.valNRMSE, valPreds, err = nrmse(rf, val); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "Validation set Normalized RMSE: %.2f%%\n", 100*row.valNRMSE)
		fmt.Fprintf(w, "Validation predictions (first 5): %s\n", head(valPreds, 5))

		logger.Info("Ensemble evaluated",
			log.TreesKey, n,
			log.PhaseKey, log.PhaseValidation,
			log.NRMSEKey, row.valNRMSE,
			log.DurationMsKey, row.duration.Milliseconds(),
		)

		if row.valNRMSE < bestVal {
			bestVal = row.valNRMSE
			res.bestTrees = n
			if res.testNRMSE, _, err = nrmse(rf, test); err != nil {
				return nil, err
			}
		}
		res.rows = append(res.rows, row)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Best number of trees: %d\n", res.bestTrees)
	fmt.Fprintf(w, "Test set Normalized RMSE: %.2f%%\n", 100*res.testNRMSE)
	return res, nil
}

func head(v *mat.VecDense, n int) string {
	if v.Len() < n {
		n = v.Len()
	}
	return fmt.Sprintf("%.4f", v.RawVector().Data[:n])
}
