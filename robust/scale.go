package robust

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// madNormalizer is Φ⁻¹(3/4), making MAD consistent for the standard
// deviation of normal data.
const madNormalizer = 0.6744897501960817

// MAD returns the median absolute deviation of r about zero divided by
// Φ⁻¹(3/4). Residuals are already centred, so no median is subtracted.
func MAD(r mat.Vector) float64 {
	n := r.Len()
	if n == 0 {
		return math.NaN()
	}
	abs := make([]float64, n)
	for i := range abs {
		abs[i] = math.Abs(r.AtVec(i))
	}
	return median(abs) / madNormalizer
}

// median sorts x in place.
func median(x []float64) float64 {
	sort.Float64s(x)
	n := len(x)
	if n%2 == 1 {
		return x[n/2]
	}
	return (x[n/2-1] + x[n/2]) / 2
}
