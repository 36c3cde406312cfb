// Package config loads the YAML run configuration of the wlsfit command.
//
// A config file only needs the keys it changes; everything else keeps the
// value from Default:
//
//	method: qr
//	weight_column: w
//	robust:
//	  norm: tukey
//	  max_iter: 100
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ezoic/minwls/linear"
	"github.com/ezoic/minwls/pkg/errors"
	"github.com/ezoic/minwls/robust"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is a wlsfit run configuration.
type Config struct {
	Method       string  `yaml:"method"`
	Covariance   bool    `yaml:"covariance"`
	Rcond        float64 `yaml:"rcond"` // < 0 keeps the method default
	Weight       float64 `yaml:"weight"`
	WeightColumn string  `yaml:"weight_column"`
	Intercept    bool    `yaml:"intercept"`
	LogLevel     string  `yaml:"log_level"`
	Robust       Robust  `yaml:"robust"`
	Output       Output  `yaml:"output"`
}

// Robust configures the IRLS estimator.
type Robust struct {
	Norm        string  `yaml:"norm"`
	Tuning      float64 `yaml:"tuning"` // <= 0 keeps the norm default
	MaxIter     int     `yaml:"max_iter"`
	Tol         float64 `yaml:"tol"`
	Convergence string  `yaml:"convergence"`
}

// Output configures how results are written.
type Output struct {
	Format string `yaml:"format"`
	Plot   string `yaml:"plot"` // residual plot path, empty for none
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Method:     linear.MethodPinv.String(),
		Covariance: true,
		Rcond:      -1,
		Weight:     1.0,
		LogLevel:   "info",
		Robust: Robust{
			Norm:        "huber",
			MaxIter:     50,
			Tol:         1e-8,
			Convergence: robust.ConvDev.String(),
		},
		Output: Output{Format: FormatJSON},
	}
}

// Load reads path on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}
	return Parse(b)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every enumerated and numeric field.
func (c *Config) Validate() error {
	if _, err := c.SolveMethod(); err != nil {
		return err
	}
	if _, err := c.RobustNorm(); err != nil {
		return err
	}
	if _, err := robust.ParseCriterion(c.Robust.Convergence); err != nil {
		return err
	}
	if c.Weight < 0 {
		return errors.NewValidationError("weight", "must be nonnegative", c.Weight)
	}
	if c.Robust.MaxIter < 1 {
		return errors.NewValidationError("robust.max_iter", "must be at least 1", c.Robust.MaxIter)
	}
	if c.Robust.Tol <= 0 {
		return errors.NewValidationError("robust.tol", "must be positive", c.Robust.Tol)
	}
	switch c.Output.Format {
	case FormatJSON, FormatYAML:
	default:
		return errors.NewValidationError("output.format", "must be json or yaml", c.Output.Format)
	}
	return nil
}

// SolveMethod returns the parsed solve method.
func (c *Config) SolveMethod() (linear.Method, error) {
	return linear.ParseMethod(c.Method)
}

// RobustNorm returns the parsed robust norm with its tuning constant.
func (c *Config) RobustNorm() (robust.Norm, error) {
	return robust.ParseNorm(c.Robust.Norm, c.Robust.Tuning)
}

// FitOptions returns the MinimalWLS options described by c.
func (c *Config) FitOptions() ([]linear.FitOption, error) {
	m, err := c.SolveMethod()
	if err != nil {
		return nil, err
	}
	opts := []linear.FitOption{linear.WithMethod(m), linear.WithCovariance(c.Covariance)}
	if c.Rcond >= 0 {
		opts = append(opts, linear.WithRcond(c.Rcond))
	}
	return opts, nil
}

// RobustOptions returns the RLM options described by c.
func (c *Config) RobustOptions() ([]robust.Option, error) {
	m, err := c.SolveMethod()
	if err != nil {
		return nil, err
	}
	norm, err := c.RobustNorm()
	if err != nil {
		return nil, err
	}
	conv, err := robust.ParseCriterion(c.Robust.Convergence)
	if err != nil {
		return nil, err
	}
	return []robust.Option{
		robust.WithSolverMethod(m),
		robust.WithNorm(norm),
		robust.WithConvergence(conv),
		robust.WithMaxIter(c.Robust.MaxIter),
		robust.WithTol(c.Robust.Tol),
	}, nil
}
