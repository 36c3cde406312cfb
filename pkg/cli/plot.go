package cli

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/minwls/pkg/errors"
)

// SaveResidualPlot writes a residual-vs-fitted scatter with a zero line to
// path. The image format follows the file extension.
func SaveResidualPlot(path, title string, fitted, resid mat.Vector) error {
	n := fitted.Len()
	if n == 0 || resid.Len() != n {
		return errors.NewDimensionError("SaveResidualPlot", n, resid.Len(), 0)
	}

	pts := make(plotter.XYs, n)
	minX, maxX := math.Inf(1), math.Inf(-1)
	for i := range pts {
		pts[i].X = fitted.AtVec(i)
		pts[i].Y = resid.AtVec(i)
		minX = math.Min(minX, pts[i].X)
		maxX = math.Max(maxX, pts[i].X)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Fitted values"
	p.Y.Label.Text = "Residuals"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "failed to create scatter plot")
	}
	scatter.Color = plotter.DefaultLineStyle.Color
	p.Add(scatter)

	zero, err := plotter.NewLine(plotter.XYs{{X: minX, Y: 0}, {X: maxX, Y: 0}})
	if err != nil {
		return errors.Wrap(err, "failed to create zero line")
	}
	zero.Width = vg.Points(1)
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(zero)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot: %s", path)
	}
	return nil
}
