package cli

import (
	"context"
	"math"

	urfave "github.com/urfave/cli/v3"

	"github.com/ezoic/minwls/linear"
	"github.com/ezoic/minwls/pkg/config"
	"github.com/ezoic/minwls/pkg/errors"
	"github.com/ezoic/minwls/pkg/log"
	"github.com/ezoic/minwls/robust"
)

func runFit(_ context.Context, cmd *urfave.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := LoadCSV(cmd.String(dataFlag), cfg.WeightColumn)
	if err != nil {
		return err
	}
	report, err := fitReport(cfg, ds)
	if err != nil {
		return err
	}
	return encode(cmd.Root().Writer, cfg.Output.Format, report)
}

// fitReport fits ds by weighted least squares as configured by cfg.
func fitReport(cfg *config.Config, ds *Dataset) (*Report, error) {
	names, design := ds.Design(cfg.Intercept)

	weights := linear.UniformWeights(cfg.Weight)
	var metricWeights []float64
	if ds.Weights != nil {
		for i, w := range ds.Weights {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, errors.NewValidationError(cfg.WeightColumn, "weights must be finite and nonnegative",
					map[string]interface{}{"row": i, "weight": w})
			}
		}
		weights = linear.ObservationWeights(ds.Weights)
		metricWeights = ds.Weights
	}

	opts, err := cfg.FitOptions()
	if err != nil {
		return nil, err
	}
	wls, err := linear.NewMinimalWLS(ds.Y, design, weights)
	if err != nil {
		return nil, err
	}
	res, err := wls.Fit(opts...)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Command:      "fit",
		Method:       res.Method.String(),
		Observations: ds.Y.Len(),
		DfResid:      res.DfResid,
		Names:        names,
		Params:       res.Params.RawVector().Data,
	}
	report.fillStats(ds.Y, res.FittedValues, res.NormalizedCovParams, res.Scale, metricWeights)

	if cfg.Output.Plot != "" {
		if err := SaveResidualPlot(cfg.Output.Plot, "WLS residuals ("+report.Method+")",
			res.FittedValues, res.Resid); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func runRobust(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := LoadCSV(cmd.String(dataFlag), cfg.WeightColumn)
	if err != nil {
		return err
	}
	report, err := robustReport(ctx, cfg, ds)
	if err != nil {
		return err
	}
	return encode(cmd.Root().Writer, cfg.Output.Format, report)
}

// robustReport fits ds by IRLS as configured by cfg. Observation weights
// from the data are not used; IRLS derives its own.
func robustReport(ctx context.Context, cfg *config.Config, ds *Dataset) (*Report, error) {
	if ds.Weights != nil {
		log.GetLoggerWithName("cli").Warn("Ignoring the weight column for a robust fit",
			"weight_column", cfg.WeightColumn)
	}
	names, design := ds.Design(cfg.Intercept)

	opts, err := cfg.RobustOptions()
	if err != nil {
		return nil, err
	}
	res, err := robust.NewRLM(ds.Y, design, opts...).Fit(ctx)
	if err != nil {
		return nil, err
	}

	n, k := design.Dims()
	converged := res.Converged
	report := &Report{
		Command:      "robust",
		Method:       cfg.Method,
		Norm:         res.Norm,
		Observations: n,
		DfResid:      n - k,
		Names:        names,
		Params:       res.Params.RawVector().Data,
		Iterations:   res.Iterations,
		Converged:    &converged,
		Weights:      res.Weights,
	}
	// Standard errors use scale² as the error variance.
	report.fillStats(ds.Y, res.FittedValues, res.NormalizedCovParams, res.Scale*res.Scale, nil)
	report.Scale = finite(res.Scale)

	if cfg.Output.Plot != "" {
		if err := SaveResidualPlot(cfg.Output.Plot, "Robust residuals ("+res.Norm+")",
			res.FittedValues, res.Resid); err != nil {
			return nil, err
		}
	}
	return report, nil
}
