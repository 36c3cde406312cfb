// Package robust fits robust linear models by iteratively reweighted least
// squares (IRLS) on top of linear.MinimalWLS.
//
// Each round turns the current residuals into weights through a Norm,
// builds a fresh MinimalWLS with those weights and fits it. The loop stops
// when the chosen convergence criterion changes by at most Tol between
// rounds or MaxIter is reached:
//
//	rlm := robust.NewRLM(y, X, robust.WithNorm(robust.HuberT{T: 1.345}))
//	res, err := rlm.Fit(ctx)
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Params, res.Scale, res.Converged)
package robust

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/minwls/linear"
	scigoErrors "github.com/ezoic/minwls/pkg/errors"
	"github.com/ezoic/minwls/pkg/log"
)

// Criterion selects the quantity whose change decides convergence.
type Criterion int

const (
	// ConvDev tracks the deviance Σρ((y-ŷ)/scale).
	ConvDev Criterion = iota
	// ConvSResid tracks the standardized residuals resid/scale of each fit.
	ConvSResid
	// ConvWeights tracks the weights each fit was computed with.
	ConvWeights
	// ConvCoefs tracks the parameters.
	ConvCoefs
)

var criterionNames = [...]string{
	ConvDev:     "dev",
	ConvSResid:  "sresid",
	ConvWeights: "weights",
	ConvCoefs:   "coefs",
}

func (c Criterion) String() string {
	if c < 0 || int(c) >= len(criterionNames) {
		return fmt.Sprintf("Criterion(%d)", int(c))
	}
	return criterionNames[c]
}

// ParseCriterion parses "dev", "sresid", "weights" or "coefs".
func ParseCriterion(s string) (Criterion, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, n := range criterionNames {
		if n == name {
			return Criterion(c), nil
		}
	}
	return 0, scigoErrors.NewValueError("ParseCriterion",
		fmt.Sprintf("unknown convergence criterion %q, want dev, sresid, weights or coefs", s))
}

// RLM is a robust linear model estimated by IRLS.
type RLM struct {
	endog mat.Vector
	exog  mat.Matrix

	norm        Norm
	maxIter     int
	tol         float64
	conv        Criterion
	method      linear.Method
	updateScale bool
	logger      log.Logger
}

// Option configures an RLM.
type Option func(*RLM)

// WithNorm sets the robust norm. The default is HuberT{T: 1.345}.
func WithNorm(norm Norm) Option {
	return func(r *RLM) { r.norm = norm }
}

// WithMaxIter caps the number of fits, the initial OLS fit included. The
// default is 50; values below 2 stop after the OLS fit.
func WithMaxIter(n int) Option {
	return func(r *RLM) { r.maxIter = n }
}

// WithTol sets the convergence tolerance. The default is 1e-8.
func WithTol(tol float64) Option {
	return func(r *RLM) { r.tol = tol }
}

// WithConvergence sets the convergence criterion. The default is ConvDev.
func WithConvergence(c Criterion) Option {
	return func(r *RLM) { r.conv = c }
}

// WithSolverMethod sets the MinimalWLS method used each round. The default
// is linear.MethodPinv.
func WithSolverMethod(m linear.Method) Option {
	return func(r *RLM) { r.method = m }
}

// WithUpdateScale sets whether the scale is re-estimated after every round.
// The default is true; false keeps the scale of the initial OLS fit.
func WithUpdateScale(update bool) Option {
	return func(r *RLM) { r.updateScale = update }
}

// WithLogger replaces the default "robust" logger.
func WithLogger(l log.Logger) Option {
	return func(r *RLM) { r.logger = l }
}

// NewRLM creates a robust model for endog (n) on exog (n×k). The inputs are
// referenced, not copied.
func NewRLM(endog mat.Vector, exog mat.Matrix, opts ...Option) *RLM {
	r := &RLM{
		endog:       endog,
		exog:        exog,
		norm:        HuberT{T: DefaultHuberT},
		maxIter:     50,
		tol:         1e-8,
		conv:        ConvDev,
		method:      linear.MethodPinv,
		updateScale: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.GetLoggerWithName("robust")
	}
	return r
}

// History records the per-round quantities of an IRLS run. Index 0 is the
// initial OLS fit.
type History struct {
	Params    [][]float64
	Scale     []float64 // Scale reported by each WLS fit
	Criterion [][]float64
}

// RLMResults is the outcome of RLM.Fit.
type RLMResults struct {
	Params       *mat.VecDense
	FittedValues *mat.VecDense
	Resid        *mat.VecDense
	// Weights are the IRLS weights of the final round.
	Weights []float64
	// Scale is the robust (MAD) scale estimate.
	Scale float64
	// NormalizedCovParams comes from the final weighted fit.
	NormalizedCovParams *mat.Dense

	Norm       string
	Criterion  Criterion
	Iterations int
	Converged  bool
	History    History
}

// Fit runs IRLS. Errors from MinimalWLS are returned wrapped with the round
// they occurred in; hitting MaxIter is not an error and is reported through
// Converged. A zero scale means the weighted data are fitted exactly and
// ends the loop early.
func (r *RLM) Fit(ctx context.Context) (*RLMResults, error) {
	startTime := time.Now()
	n, k := r.exog.Dims()

	r.logger.Info("IRLS started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, k,
		log.MethodKey, r.method.String(),
		"norm", r.norm.Name(),
		log.CriterionKey, r.conv.String(),
	)

	wls, err := linear.NewMinimalWLS(r.endog, r.exog, linear.DefaultWeights())
	if err != nil {
		return nil, scigoErrors.Wrap(err, "initial OLS")
	}
	res, err := wls.Fit(linear.WithMethod(r.method))
	if err != nil {
		return nil, scigoErrors.Wrap(err, "initial OLS")
	}

	scale := MAD(res.Resid)
	var weights []float64
	history := History{}
	r.record(&history, res, scale)

	iteration := 1
	converged := false
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if scale == 0 {
			r.logger.Warn("Estimated scale is 0, the last round fitted the weighted data exactly",
				log.IterationKey, iteration)
			converged = true
			break
		}
		if iteration >= r.maxIter {
			break
		}

		weights = r.weights(res.Resid, scale)
		wls, err = linear.NewMinimalWLS(r.endog, r.exog, linear.ObservationWeights(weights))
		if err != nil {
			return nil, scigoErrors.Wrapf(err, "IRLS round %d", iteration)
		}
		res, err = wls.Fit(linear.WithMethod(r.method))
		if err != nil {
			return nil, scigoErrors.Wrapf(err, "IRLS round %d", iteration)
		}
		if r.updateScale {
			scale = MAD(res.Resid)
		}
		r.record(&history, res, scale)
		iteration++

		r.logger.Debug("IRLS round completed",
			log.PhaseKey, log.PhaseIteration,
			log.IterationKey, iteration,
			log.ScaleKey, scale,
		)

		if r.changeWithinTol(history.Criterion) {
			converged = true
			break
		}
	}

	if !converged {
		r.logger.Warn("IRLS stopped before convergence",
			log.IterationKey, iteration,
			"max_iter", r.maxIter,
		)
	}

	if weights == nil {
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1
		}
	}

	r.logger.Info("IRLS completed",
		log.OperationKey, log.OperationFit,
		log.IterationKey, iteration,
		log.ConvergedKey, converged,
		log.ScaleKey, scale,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)

	return &RLMResults{
		Params:              res.Params,
		FittedValues:        res.FittedValues,
		Resid:               res.Resid,
		Weights:             weights,
		Scale:               scale,
		NormalizedCovParams: res.NormalizedCovParams,
		Norm:                r.norm.Name(),
		Criterion:           r.conv,
		Iterations:          iteration,
		Converged:           converged,
		History:             history,
	}, nil
}

func (r *RLM) weights(resid *mat.VecDense, scale float64) []float64 {
	w := make([]float64, resid.Len())
	for i := range w {
		w[i] = r.norm.Weight(resid.AtVec(i) / scale)
	}
	return w
}

// record appends the round's parameters, WLS scale and criterion value.
func (r *RLM) record(h *History, res *linear.WLSResults, scale float64) {
	h.Params = append(h.Params, mat.Col(nil, 0, res.Params))
	h.Scale = append(h.Scale, res.Scale)

	var crit []float64
	switch r.conv {
	case ConvCoefs:
		crit = mat.Col(nil, 0, res.Params)
	case ConvSResid:
		crit = mat.Col(nil, 0, res.StandardizedResid())
	case ConvWeights:
		// A scalar weight is broadcast to every observation.
		w := res.Model.Weights
		crit = make([]float64, res.Resid.Len())
		for i := range crit {
			crit[i] = w.At(i)
		}
	default:
		crit = []float64{r.deviance(res, scale)}
	}
	h.Criterion = append(h.Criterion, crit)
}

// deviance is Σρ((y - ŷ)/scale) under the model's norm.
func (r *RLM) deviance(res *linear.WLSResults, scale float64) float64 {
	var dev float64
	for i := 0; i < r.endog.Len(); i++ {
		dev += r.norm.Rho((r.endog.AtVec(i) - res.FittedValues.AtVec(i)) / scale)
	}
	return dev
}

// changeWithinTol reports whether the last criterion value moved by at most
// tol in every component.
func (r *RLM) changeWithinTol(criterion [][]float64) bool {
	if len(criterion) < 2 {
		return false
	}
	cur, prev := criterion[len(criterion)-1], criterion[len(criterion)-2]
	for i := range cur {
		if math.Abs(cur[i]-prev[i]) > r.tol {
			return false
		}
	}
	return true
}
