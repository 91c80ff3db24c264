package main

import (
	"github.com/YuminosukeSato/varforest/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// savePlot draws training and validation NRMSE against ensemble size.
func savePlot(res *sweepResult, path string) error {
	p := plot.New()
	p.Title.Text = "NRMSE by ensemble size"
	p.X.Label.Text = "trees"
	p.Y.Label.Text = "NRMSE (%)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	trainPts := make(plotter.XYs, len(res.rows))
	valPts := make(plotter.XYs, len(res.rows))
	for i, r := range res.rows {
		trainPts[i].X, trainPts[i].Y = float64(r.trees), 100*r.trainNRMSE
		valPts[i].X, valPts[i].Y = float64(r.trees), 100*r.valNRMSE
	}

	if err := plotutil.AddLinePoints(p, "train", trainPts, "validation", valPts); err != nil {
		return errors.Wrap(err, "plot")
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
