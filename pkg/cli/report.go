package cli

import (
	"encoding/json"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/ezoic/minwls/metrics"
	"github.com/ezoic/minwls/pkg/config"
	"github.com/ezoic/minwls/pkg/errors"
	"github.com/ezoic/minwls/pkg/log"
)

// Report is the rendered outcome of a fit or robust run. Non-finite
// statistics are left out.
type Report struct {
	Command      string    `json:"command" yaml:"command"`
	Method       string    `json:"method" yaml:"method"`
	Norm         string    `json:"norm,omitempty" yaml:"norm,omitempty"`
	Observations int       `json:"n_obs" yaml:"n_obs"`
	DfResid      int       `json:"df_resid" yaml:"df_resid"`
	Names        []string  `json:"names" yaml:"names"`
	Params       []float64 `json:"params" yaml:"params"`
	StdErr       []float64 `json:"std_err,omitempty" yaml:"std_err,omitempty"`
	Scale        *float64  `json:"scale,omitempty" yaml:"scale,omitempty"`
	R2           *float64  `json:"r2,omitempty" yaml:"r2,omitempty"`
	RMSE         *float64  `json:"rmse,omitempty" yaml:"rmse,omitempty"`

	Iterations int       `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Converged  *bool     `json:"converged,omitempty" yaml:"converged,omitempty"`
	Weights    []float64 `json:"irls_weights,omitempty" yaml:"irls_weights,omitempty"`
}

// fillStats sets the scale, standard errors and goodness of fit from a
// fitted model. weights may be nil for an unweighted fit.
func (r *Report) fillStats(y, fitted mat.Vector, cov *mat.Dense, scale float64, weights []float64) {
	r.Scale = finite(scale)

	if cov != nil {
		k, _ := cov.Dims()
		se := make([]float64, k)
		ok := true
		for i := range se {
			se[i] = math.Sqrt(scale * cov.At(i, i))
			if math.IsNaN(se[i]) || math.IsInf(se[i], 0) {
				ok = false
			}
		}
		if ok {
			r.StdErr = se
		}
	}

	if v, err := metrics.R2Score(y, fitted, weights); err == nil {
		r.R2 = finite(v)
	} else {
		log.GetLoggerWithName("cli").Debug("R² unavailable", "error", err)
	}
	if v, err := metrics.RMSE(y, fitted, weights); err == nil {
		r.RMSE = finite(v)
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// encode writes v to w as indented JSON or as YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case config.FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "error encoding YAML report")
		}
		return enc.Close()
	default:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		if err := e.Encode(v); err != nil {
			return errors.Wrap(err, "error encoding JSON report")
		}
		return nil
	}
}
