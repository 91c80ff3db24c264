// Package dataset loads numeric tables and cuts them into the train,
// validation and test matrices the estimators consume. The target is always
// the last column.
package dataset

import (
	"io"
	"os"

	"github.com/YuminosukeSato/varforest/pkg/errors"
	"github.com/YuminosukeSato/varforest/pkg/log"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

type csvConfig struct {
	header    bool
	delimiter rune
}

// CSVOption configures ReadCSV and LoadCSV.
type CSVOption func(*csvConfig)

// WithHeader tells the reader that the first line holds column names.
func WithHeader(header bool) CSVOption {
	return func(c *csvConfig) {
		c.header = header
	}
}

// WithDelimiter sets the field separator. Defaults to ','.
func WithDelimiter(d rune) CSVOption {
	return func(c *csvConfig) {
		c.delimiter = d
	}
}

// ReadCSV parses a numeric delimited table into a dense matrix.
// Every cell must parse as a finite float64.
func ReadCSV(r io.Reader, opts ...CSVOption) (*mat.Dense, error) {
	cfg := csvConfig{delimiter: ','}
	for _, opt := range opts {
		opt(&cfg)
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(cfg.header),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
		dataframe.WithDelimiter(cfg.delimiter),
	)
	if df.Err != nil {
		return nil, errors.NewModelError("dataset.ReadCSV", "parse", errors.Mark(df.Err, errors.ErrInvalidInput))
	}

	rows, cols := df.Nrow(), df.Ncol()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "empty data", errors.ErrEmptyData)
	}

	data := mat.NewDense(rows, cols, nil)
	for j, name := range df.Names() {
		// 数値に変換できないセルは NaN になる
		data.SetCol(j, df.Col(name).Float())
	}
	if err := errors.CheckMatrix("dataset.ReadCSV", data, rows, cols); err != nil {
		return nil, err
	}
	return data, nil
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path string, opts ...CSVOption) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	data, err := ReadCSV(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: load %s", path)
	}

	rows, cols := data.Dims()
	log.GetLoggerWithName("dataset").Debug("Loaded dataset",
		log.DataPathKey, path,
		log.SamplesKey, rows,
		log.FeaturesKey, cols-1,
	)
	return data, nil
}
