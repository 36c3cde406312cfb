package linear

import "gonum.org/v1/gonum/mat"

// WLSModel records the model side of a fit that iterative callers need
// afterwards.
type WLSModel struct {
	Weights Weights
}

// WLSResults is the outcome of one MinimalWLS.Fit call. It owns all of its
// memory and is never touched by the solver again.
type WLSResults struct {
	// Params are the estimated coefficients (k).
	Params *mat.VecDense
	// FittedValues is X·Params on the unscaled design (n).
	FittedValues *mat.VecDense
	// Resid is y - FittedValues on the unscaled response (n).
	Resid *mat.VecDense
	// NormalizedCovParams is the k×k covariance of Params divided by the
	// error variance. nil when covariance was not requested.
	NormalizedCovParams *mat.Dense
	// Scale is the weighted residual sum of squares over DfResid.
	Scale float64
	// Model carries the weights the fit was computed with.
	Model WLSModel

	Method  Method
	DfResid int
}

// StandardizedResid returns Resid / Scale.
func (r *WLSResults) StandardizedResid() *mat.VecDense {
	out := mat.NewVecDense(r.Resid.Len(), nil)
	out.ScaleVec(1/r.Scale, r.Resid)
	return out
}

// CovParams returns Scale·NormalizedCovParams, or nil when the normalized
// covariance is absent.
func (r *WLSResults) CovParams() *mat.Dense {
	if r.NormalizedCovParams == nil {
		return nil
	}
	var cov mat.Dense
	cov.Scale(r.Scale, r.NormalizedCovParams)
	return &cov
}
