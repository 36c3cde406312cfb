package linear

import "math"

// Weights is the weight specification of a weighted least squares problem:
// either one scalar applied to every observation or one nonnegative weight
// per observation. The zero value is not useful; use UniformWeights,
// DefaultWeights or ObservationWeights.
//
// Weights is immutable. ObservationWeights copies its argument and the
// accessors never expose the backing slice.
type Weights struct {
	scalar float64
	vec    []float64
}

// DefaultWeights returns the scalar weight 1, under which WLS is OLS.
func DefaultWeights() Weights {
	return UniformWeights(1.0)
}

// UniformWeights returns a scalar weight applied to every observation.
func UniformWeights(w float64) Weights {
	return Weights{scalar: w}
}

// ObservationWeights returns per-observation weights. w is copied.
func ObservationWeights(w []float64) Weights {
	vec := make([]float64, len(w))
	copy(vec, w)
	return Weights{vec: vec}
}

// IsScalar reports whether the weights are a single scalar.
func (w Weights) IsScalar() bool {
	return w.vec == nil
}

// Scalar returns the scalar weight. It is 0 for vector weights.
func (w Weights) Scalar() float64 {
	if w.vec != nil {
		return 0
	}
	return w.scalar
}

// Len returns the number of per-observation weights, 0 for a scalar.
func (w Weights) Len() int {
	return len(w.vec)
}

// At returns the weight of observation i.
func (w Weights) At(i int) float64 {
	if w.vec == nil {
		return w.scalar
	}
	return w.vec[i]
}

// RawVector returns a copy of the per-observation weights, nil for a scalar.
func (w Weights) RawVector() []float64 {
	if w.vec == nil {
		return nil
	}
	out := make([]float64, len(w.vec))
	copy(out, w.vec)
	return out
}

// sqrtAt returns sqrt(w_i).
func (w Weights) sqrtAt(i int) float64 {
	return math.Sqrt(w.At(i))
}
