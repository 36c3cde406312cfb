// Package metrics provides regression metrics for evaluating weighted fits.
//
// Every metric takes the observed and predicted values plus optional
// per-observation weights. A nil weight slice means every observation counts
// once, so the unweighted and weighted forms share one implementation:
//
//	mse, err := metrics.MSE(y, res.FittedValues, nil)
//	wr2, err := metrics.R2Score(y, res.FittedValues, weights)
//
// Weighted means follow gonum/stat: Σwᵢxᵢ / Σwᵢ.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	scigoErrors "github.com/ezoic/minwls/pkg/errors"
)

// residuals checks the inputs of op and returns yTrue - yPred.
func residuals(op string, yTrue, yPred mat.Vector, weights []float64) ([]float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, scigoErrors.NewModelError(op, "empty vector", scigoErrors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return nil, scigoErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	if weights != nil && len(weights) != n {
		return nil, scigoErrors.NewDimensionError(op, n, len(weights), 0)
	}
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return diff, nil
}

func values(v mat.Vector) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// MSE returns the (weighted) mean squared error.
//
// Errors:
//   - ErrEmptyData: if yTrue is empty
//   - DimensionError: if yPred or weights have a different length
func MSE(yTrue, yPred mat.Vector, weights []float64) (float64, error) {
	diff, err := residuals("MSE", yTrue, yPred, weights)
	if err != nil {
		return 0, err
	}
	for i, d := range diff {
		diff[i] = d * d
	}
	return stat.Mean(diff, weights), nil
}

// RMSE returns the square root of MSE, in the units of the response.
func RMSE(yTrue, yPred mat.Vector, weights []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred, weights)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the (weighted) mean absolute error. It is less sensitive to
// outliers than MSE.
func MAE(yTrue, yPred mat.Vector, weights []float64) (float64, error) {
	diff, err := residuals("MAE", yTrue, yPred, weights)
	if err != nil {
		return 0, err
	}
	for i, d := range diff {
		diff[i] = math.Abs(d)
	}
	return stat.Mean(diff, weights), nil
}

// R2Score returns the (weighted) coefficient of determination
// 1 - Σw(y-ŷ)² / Σw(y-ȳ)². The best score is 1; it is negative for fits
// worse than the weighted mean.
//
// Errors:
//   - ErrEmptyData: if yTrue is empty
//   - DimensionError: if yPred or weights have a different length
//   - ValueError: if yTrue has no variance
func R2Score(yTrue, yPred mat.Vector, weights []float64) (float64, error) {
	diff, err := residuals("R2Score", yTrue, yPred, weights)
	if err != nil {
		return 0, err
	}
	y := values(yTrue)
	mean := stat.Mean(y, weights)

	var tss, rss float64
	for i := range y {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		tss += w * (y[i] - mean) * (y[i] - mean)
		rss += w * diff[i] * diff[i]
	}
	if tss == 0 {
		return 0, scigoErrors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// ExplainedVarianceScore returns 1 - Var(y-ŷ)/Var(y) with weighted
// population variances. Unlike R2Score it ignores a constant offset in the
// predictions.
func ExplainedVarianceScore(yTrue, yPred mat.Vector, weights []float64) (float64, error) {
	diff, err := residuals("ExplainedVarianceScore", yTrue, yPred, weights)
	if err != nil {
		return 0, err
	}
	y := values(yTrue)
	_, varY := stat.PopMeanVariance(y, weights)
	_, varDiff := stat.PopMeanVariance(diff, weights)
	if varY == 0 {
		return 0, scigoErrors.NewValueError("ExplainedVarianceScore", fmt.Sprintf("no variance in yTrue (n=%d)", len(y)))
	}
	return 1 - varDiff/varY, nil
}
