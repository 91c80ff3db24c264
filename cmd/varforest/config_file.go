package main

import (
	"os"

	"github.com/YuminosukeSato/varforest/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// sweepFile mirrors the sweep flags. Absent keys leave the flag value alone.
type sweepFile struct {
	Data            *string  `yaml:"data"`
	Header          *bool    `yaml:"header"`
	TrainFrac       *float64 `yaml:"train_frac"`
	ValFrac         *float64 `yaml:"val_frac"`
	Trees           []int    `yaml:"trees"`
	MinSamplesSplit *int     `yaml:"min_samples_split"`
	MaxDepth        *int     `yaml:"max_depth"`
	MaxFeatures     *int     `yaml:"max_features"`
	Seed            *uint64  `yaml:"seed"`
	Jobs            *int     `yaml:"jobs"`
	Shuffle         *bool    `yaml:"shuffle"`
	Plot            *string  `yaml:"plot"`
	LogLevel        *string  `yaml:"log_level"`
}

func readSweepFile(path string) (*sweepFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	f := &sweepFile{}
	if err := yaml.UnmarshalStrict(raw, f); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parsing config %s", path), errors.ErrInvalidInput)
	}
	return f, nil
}

// applyFile copies the values of the config file into c. Flags set on the
// command line (changed reports true) keep their value.
func (c *sweepCmdConfig) applyFile(f *sweepFile, changed func(flag string) bool) {
	setString := func(flag string, dst *string, v *string) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}
	setInt := func(flag string, dst *int, v *int) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}
	setBool := func(flag string, dst *bool, v *bool) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}
	setFloat := func(flag string, dst *float64, v *float64) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}

	setString("data", &c.dataPath, f.Data)
	setBool("header", &c.header, f.Header)
	setFloat("train-frac", &c.trainFrac, f.TrainFrac)
	setFloat("val-frac", &c.valFrac, f.ValFrac)
	if f.Trees != nil && !changed("trees") {
		c.trees = f.Trees
	}
	setInt("min-samples-split", &c.minSamplesSplit, f.MinSamplesSplit)
	setInt("max-depth", &c.maxDepth, f.MaxDepth)
	setInt("max-features", &c.maxFeatures, f.MaxFeatures)
	if f.Seed != nil && !changed("seed") {
		c.seed, c.seedSet = *f.Seed, true
	}
	setInt("jobs", &c.jobs, f.Jobs)
	setBool("shuffle", &c.shuffle, f.Shuffle)
	setString("plot", &c.plotPath, f.Plot)
	setString("log-level", &c.logLevel, f.LogLevel)
}
