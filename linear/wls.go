// Package linear provides the weighted least squares kernel of minwls and
// the estimators built on it.
//
// The core type is MinimalWLS, a deliberately small WLS solver meant to be
// called over and over by iterative procedures such as iteratively
// reweighted least squares:
//
//   - construction scales the response and the design by sqrt(weights) once
//   - Fit solves the scaled problem with one of three methods (pinv, qr,
//     lstsq) and returns parameters, fitted values and residuals on the
//     original scale, the weighted-residual scale and optionally the
//     normalized parameter covariance
//   - nothing is validated and nothing is mutated after construction, so a
//     solver can be fitted repeatedly and concurrently
//
// Example usage:
//
//	wls, err := linear.NewMinimalWLS(y, X, linear.ObservationWeights(w))
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := wls.Fit(linear.WithMethod(linear.MethodQR))
//	fmt.Println(res.Params, res.Scale)
//
// LinearRegression wraps the kernel behind input validation, an intercept
// and the usual Fit/Predict/Score estimator methods.
package linear

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/minwls/core/parallel"
	scigoErrors "github.com/ezoic/minwls/pkg/errors"
	"github.com/ezoic/minwls/pkg/log"
)

// Rows above this count are scaled in parallel at construction.
const parallelThreshold = 4096

// solverLogger is shared by every MinimalWLS. It is taken from the global
// provider on first use, so logging must be configured before fitting.
var solverLogger = sync.OnceValue(func() log.Logger {
	return log.GetLoggerWithName("wls")
})

// MinimalWLS is a weighted least squares problem with its weight-scaled
// response and design precomputed.
//
// Inputs are not checked. Negative weights, non-finite values or
// mismatched shapes give undefined numbers or a *errors.LinAlgError from
// the first primitive that notices; validating them is the caller's job.
type MinimalWLS struct {
	endog   mat.Vector
	exog    mat.Matrix
	weights Weights

	wendog *mat.VecDense
	wexog  *mat.Dense

	logger log.Logger
}

// NewMinimalWLS builds the solver for endog (n) on exog (n×k) with weights.
// endog and exog are referenced, never modified.
func NewMinimalWLS(endog mat.Vector, exog mat.Matrix, weights Weights) (_ *MinimalWLS, err error) {
	defer scigoErrors.Recover(&err, "NewMinimalWLS")

	n, k := exog.Dims()
	wexog := mat.NewDense(n, k, nil)
	wendog := mat.NewVecDense(endog.Len(), nil)

	if weights.IsScalar() {
		half := math.Sqrt(weights.Scalar())
		wexog.Scale(half, exog)
		wendog.ScaleVec(half, endog)
	} else {
		parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				half := weights.sqrtAt(i)
				for j := 0; j < k; j++ {
					wexog.Set(i, j, half*exog.At(i, j))
				}
			}
		})
		for i := 0; i < endog.Len(); i++ {
			wendog.SetVec(i, weights.sqrtAt(i)*endog.AtVec(i))
		}
	}

	return &MinimalWLS{
		endog:   endog,
		exog:    exog,
		weights: weights,
		wendog:  wendog,
		wexog:   wexog,
		logger:  solverLogger(),
	}, nil
}

// Weights returns the weight specification the solver was built with.
func (m *MinimalWLS) Weights() Weights {
	return m.weights
}

// Dims returns the number of observations and regressors.
func (m *MinimalWLS) Dims() (n, k int) {
	return m.wexog.Dims()
}

type fitConfig struct {
	method Method
	cov    bool
	rcond  float64 // < 0 selects the method default
}

// FitOption configures a single Fit call.
type FitOption func(*fitConfig)

// WithMethod selects the solve method. The default is MethodPinv.
func WithMethod(method Method) FitOption {
	return func(c *fitConfig) { c.method = method }
}

// WithCovariance sets whether the normalized covariance is computed. The
// default is true.
func WithCovariance(cov bool) FitOption {
	return func(c *fitConfig) { c.cov = cov }
}

// WithRcond sets the relative singular value cutoff used by MethodPinv
// (default 1e-15) and MethodLstsq (default machine epsilon times max(n, k)).
// MethodQR ignores it.
func WithRcond(rcond float64) FitOption {
	return func(c *fitConfig) { c.rcond = rcond }
}

// Fit solves the weighted problem and returns a fresh result.
//
// Failures of the underlying factorizations (a singular triangular factor
// under MethodQR, a non-invertible Gram matrix when covariance is requested,
// shape mismatches) are returned as *errors.LinAlgError. No fallback to
// another method is attempted.
//
// The residual degrees of freedom are n-k. With n <= k the scale is
// Inf, NaN or negative; callers that care must check it.
func (m *MinimalWLS) Fit(opts ...FitOption) (_ *WLSResults, err error) {
	defer scigoErrors.Recover(&err, "MinimalWLS.Fit")

	cfg := fitConfig{method: MethodPinv, cov: true, rcond: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.method.valid() {
		return nil, scigoErrors.NewValueError("MinimalWLS.Fit", "unknown method "+cfg.method.String())
	}

	startTime := time.Now()

	params, normCov, err := solvers[cfg.method](m.wexog, m.wendog, cfg)
	if err != nil {
		return nil, err
	}

	n, k := m.wexog.Dims()

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(m.exog, params)
	resid := mat.NewVecDense(n, nil)
	resid.SubVec(m.endog, fitted)

	wfitted := mat.NewVecDense(n, nil)
	wfitted.MulVec(m.wexog, params)
	wresid := mat.NewVecDense(n, nil)
	wresid.SubVec(m.wendog, wfitted)

	dfResid := n - k
	scale := mat.Dot(wresid, wresid) / float64(dfResid)

	m.logger.Debug("WLS fit completed",
		log.OperationKey, log.OperationSolve,
		log.MethodKey, cfg.method.String(),
		log.SamplesKey, n,
		log.FeaturesKey, k,
		log.ScaleKey, scale,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)

	return &WLSResults{
		Params:              params,
		FittedValues:        fitted,
		Resid:               resid,
		NormalizedCovParams: normCov,
		Scale:               scale,
		Model:               WLSModel{Weights: m.weights},
		Method:              cfg.method,
		DfResid:             dfResid,
	}, nil
}

// solveFunc solves wexog·params ≈ wendog, returning the normalized
// covariance when cfg.cov is set.
type solveFunc func(wexog *mat.Dense, wendog *mat.VecDense, cfg fitConfig) (*mat.VecDense, *mat.Dense, error)

var solvers = [...]solveFunc{
	MethodPinv:  solvePinv,
	MethodQR:    solveQR,
	MethodLstsq: solveLstsq,
}
