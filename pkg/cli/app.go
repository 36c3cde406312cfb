// Package cli implements the wlsfit command line: it reads a CSV problem,
// fits it with the weighted least squares kernel or the robust IRLS
// estimator and prints a JSON or YAML report.
package cli

import (
	"context"
	"fmt"
	"os"

	urfave "github.com/urfave/cli/v3"

	"github.com/ezoic/minwls/pkg/config"
	"github.com/ezoic/minwls/pkg/log"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

// Flag names.
const (
	configFlag     = "config"
	logLevelFlag   = "log-level"
	dataFlag       = "data"
	methodFlag     = "method"
	noCovFlag      = "no-cov"
	weightsColFlag = "weights-col"
	weightFlag     = "weight"
	interceptFlag  = "intercept"
	formatFlag     = "format"
	plotFlag       = "plot"
	normFlag       = "norm"
	tuningFlag     = "tuning"
	maxIterFlag    = "maxiter"
	tolFlag        = "tol"
	convFlag       = "conv"
)

// fitFlags returns the flags shared by fit and robust. Flags hold parse
// state, so every command tree gets its own.
func fitFlags() []urfave.Flag {
	return []urfave.Flag{
		&urfave.StringFlag{
			Name:     dataFlag,
			Usage:    "CSV file with a header; first column is the response",
			Required: true,
		},
		&urfave.StringFlag{
			Name:  methodFlag,
			Usage: "Solve method [pinv, qr, lstsq]",
		},
		&urfave.BoolFlag{
			Name:  noCovFlag,
			Usage: "Skip the parameter covariance",
		},
		&urfave.StringFlag{
			Name:  weightsColFlag,
			Usage: "Name of the CSV column holding observation weights",
		},
		&urfave.FloatFlag{
			Name:  weightFlag,
			Usage: "Scalar weight applied to every observation",
		},
		&urfave.BoolFlag{
			Name:  interceptFlag,
			Usage: "Prepend a constant column to the design",
		},
		&urfave.StringFlag{
			Name:  formatFlag,
			Usage: "Output format [json, yaml]",
		},
		&urfave.StringFlag{
			Name:  plotFlag,
			Usage: "Write a residual-vs-fitted plot to this file (png, svg, pdf)",
		},
	}
}

func robustFlags() []urfave.Flag {
	return append(fitFlags(),
		&urfave.StringFlag{
			Name:  normFlag,
			Usage: "Robust norm [huber, tukey, ls]",
		},
		&urfave.FloatFlag{
			Name:  tuningFlag,
			Usage: "Tuning constant of the norm (default depends on the norm)",
		},
		&urfave.IntFlag{
			Name:  maxIterFlag,
			Usage: "Maximum number of fits, the initial OLS fit included",
		},
		&urfave.FloatFlag{
			Name:  tolFlag,
			Usage: "Convergence tolerance",
		},
		&urfave.StringFlag{
			Name:  convFlag,
			Usage: "Convergence criterion [dev, sresid, weights, coefs]",
		},
	)
}

// Execute runs the wlsfit application and exits non-zero on failure.
func Execute() {
	log.SetupLogger("info")
	if err := NewApp().Run(context.Background(), os.Args); err != nil {
		log.LogError(err, "wlsfit failed")
		os.Exit(1)
	}
}

// NewApp returns the wlsfit command tree.
func NewApp() *urfave.Command {
	return &urfave.Command{
		Name:    "wlsfit",
		Version: fmt.Sprintf("%s - (commit: %s)", version, commit),
		Usage:   "Weighted and robust least squares fits of CSV data",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  configFlag,
				Usage: "Path to a YAML config file (optional)",
			},
			&urfave.StringFlag{
				Name:  logLevelFlag,
				Usage: "Log level [debug, info, warn, error, off]",
			},
		},
		Commands: []*urfave.Command{
			{
				Name:   "fit",
				Usage:  "Fit weighted least squares",
				Flags:  fitFlags(),
				Action: runFit,
			},
			{
				Name:   "robust",
				Usage:  "Fit a robust linear model by IRLS",
				Flags:  robustFlags(),
				Action: runRobust,
			},
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			if lvl := cmd.String(logLevelFlag); lvl != "" {
				log.SetupLogger(lvl)
			}
			return ctx, nil
		},
	}
}

// loadConfig reads --config (or the defaults) and applies explicitly set
// flags on top.
func loadConfig(cmd *urfave.Command) (*config.Config, error) {
	cfg := config.Default()
	if path := cmd.String(configFlag); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
		if !cmd.IsSet(logLevelFlag) {
			log.SetupLogger(cfg.LogLevel)
		}
	}

	if cmd.IsSet(methodFlag) {
		cfg.Method = cmd.String(methodFlag)
	}
	if cmd.IsSet(noCovFlag) {
		cfg.Covariance = !cmd.Bool(noCovFlag)
	}
	if cmd.IsSet(weightsColFlag) {
		cfg.WeightColumn = cmd.String(weightsColFlag)
	}
	if cmd.IsSet(weightFlag) {
		cfg.Weight = cmd.Float(weightFlag)
	}
	if cmd.IsSet(interceptFlag) {
		cfg.Intercept = cmd.Bool(interceptFlag)
	}
	if cmd.IsSet(formatFlag) {
		cfg.Output.Format = cmd.String(formatFlag)
	}
	if cmd.IsSet(plotFlag) {
		cfg.Output.Plot = cmd.String(plotFlag)
	}
	if cmd.IsSet(normFlag) {
		cfg.Robust.Norm = cmd.String(normFlag)
	}
	if cmd.IsSet(tuningFlag) {
		cfg.Robust.Tuning = cmd.Float(tuningFlag)
	}
	if cmd.IsSet(maxIterFlag) {
		cfg.Robust.MaxIter = int(cmd.Int(maxIterFlag))
	}
	if cmd.IsSet(tolFlag) {
		cfg.Robust.Tol = cmd.Float(tolFlag)
	}
	if cmd.IsSet(convFlag) {
		cfg.Robust.Convergence = cmd.String(convFlag)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
