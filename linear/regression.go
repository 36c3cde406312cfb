package linear

import (
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/minwls/core/model"
	"github.com/ezoic/minwls/core/parallel"
	"github.com/ezoic/minwls/metrics"
	scigoErrors "github.com/ezoic/minwls/pkg/errors"
	"github.com/ezoic/minwls/pkg/log"
)

const modelName = "LinearRegression"

// LinearRegression is a (weighted) least squares estimator. Unlike
// MinimalWLS it validates its inputs, adds an intercept and keeps the fitted
// coefficients for prediction.
type LinearRegression struct {
	State     *model.StateManager // State manager (composition instead of embedding)
	Coef      *mat.VecDense       // Coefficients, intercept excluded
	Intercept float64             // Intercept, 0 without fitIntercept
	NFeatures int                 // Number of features
	Scale     float64             // Residual variance of the last fit

	normCov      *mat.Dense
	fitIntercept bool
	method       Method
	logger       log.Logger
}

// LinearRegressionOption is a functional option for LinearRegression.
type LinearRegressionOption func(*LinearRegression)

// WithFitIntercept sets whether a constant column is prepended to the
// design. The default is true.
func WithFitIntercept(fit bool) LinearRegressionOption {
	return func(lr *LinearRegression) { lr.fitIntercept = fit }
}

// WithSolver selects the MinimalWLS method. The default is MethodPinv.
func WithSolver(method Method) LinearRegressionOption {
	return func(lr *LinearRegression) { lr.method = method }
}

// NewLinearRegression creates an untrained linear regression model.
//
// Example:
//
//	lr := linear.NewLinearRegression(linear.WithSolver(linear.MethodQR))
//	err := lr.FitWeighted(X, y, w)
//	predictions, err := lr.Predict(XTest)
func NewLinearRegression(opts ...LinearRegressionOption) *LinearRegression {
	lr := &LinearRegression{
		State:        model.NewStateManager(),
		fitIntercept: true,
		method:       MethodPinv,
	}
	for _, opt := range opts {
		opt(lr)
	}

	lr.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, modelName,
		log.ComponentKey, "linear",
	)

	return lr
}

// Fit trains the model by ordinary least squares.
//
// Errors:
//   - ErrEmptyData: if X or y are empty
//   - DimensionError: if X and y have different numbers of rows
//   - ValueError: if y is not a column vector
//   - LinAlgError (wrapped): if the solve fails, e.g. ErrSingularMatrix
//     under MethodQR
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	return lr.FitWeighted(X, y, nil)
}

// FitWeighted trains the model by weighted least squares with one
// nonnegative weight per sample. nil weights fit by ordinary least squares.
func (lr *LinearRegression) FitWeighted(X, y mat.Matrix, sampleWeight []float64) (err error) {
	defer scigoErrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	lr.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.MethodKey, lr.method.String(),
	)

	if r == 0 || c == 0 {
		return scigoErrors.NewModelError("LinearRegression.Fit", "empty data", scigoErrors.ErrEmptyData)
	}
	if ry != r {
		return scigoErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return scigoErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	weights := DefaultWeights()
	if sampleWeight != nil {
		if len(sampleWeight) != r {
			return scigoErrors.NewDimensionError("LinearRegression.Fit", r, len(sampleWeight), 0)
		}
		for i, w := range sampleWeight {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return scigoErrors.NewValidationError("sample_weight",
					"must be finite and nonnegative", fmt.Sprintf("[%d]=%v", i, w))
			}
		}
		weights = ObservationWeights(sampleWeight)
	}

	design := lr.design(X)
	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	wls, err := NewMinimalWLS(yVec, design, weights)
	if err != nil {
		return scigoErrors.NewModelError("LinearRegression.Fit", "weighting failed", err)
	}
	res, err := wls.Fit(WithMethod(lr.method))
	if err != nil {
		return scigoErrors.NewModelError("LinearRegression.Fit", "solve failed", err)
	}

	offset := 0
	lr.Intercept = 0
	if lr.fitIntercept {
		lr.Intercept = res.Params.AtVec(0)
		offset = 1
	}
	lr.Coef = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Coef.SetVec(j, res.Params.AtVec(j+offset))
	}
	lr.NFeatures = c
	lr.Scale = res.Scale
	lr.normCov = res.NormalizedCovParams

	lr.State.SetFitted()
	lr.State.SetDimensions(lr.NFeatures, r)

	lr.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.ScaleKey, res.Scale,
	)

	return nil
}

// design returns X with a leading column of ones when fitting an intercept.
func (lr *LinearRegression) design(X mat.Matrix) mat.Matrix {
	if !lr.fitIntercept {
		return X
	}
	r, c := X.Dims()
	withIntercept := mat.NewDense(r, c+1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			withIntercept.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				withIntercept.Set(i, j+1, X.At(i, j))
			}
		}
	})
	return withIntercept
}

// Predict returns X·Coef + Intercept as an (n_samples, 1) matrix.
//
// Errors:
//   - NotFittedError: if the model hasn't been trained yet
//   - DimensionError: if X has a different number of features
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.State.IsFitted() {
		return nil, scigoErrors.NewNotFittedError(modelName, "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, scigoErrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	lr.logger.Debug("Prediction started",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, r,
	)

	pred := mat.NewVecDense(r, nil)
	pred.MulVec(X, lr.Coef)
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, pred.AtVec(i)+lr.Intercept)
	}

	return predictions, nil
}

// Score returns the coefficient of determination R² of the predictions on X.
func (lr *LinearRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer scigoErrors.Recover(&err, "LinearRegression.Score")
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	yCol, predCol := mat.Col(nil, 0, y), mat.Col(nil, 0, pred)
	return metrics.R2Score(mat.NewVecDense(len(yCol), yCol), mat.NewVecDense(len(predCol), predCol), nil)
}

// NormalizedCovParams returns the normalized covariance of the last fit,
// intercept first, or nil when unfitted.
func (lr *LinearRegression) NormalizedCovParams() *mat.Dense {
	if lr.normCov == nil {
		return nil
	}
	return mat.DenseCopyOf(lr.normCov)
}

// GetWeights returns the learned coefficients.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Coef == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.Coef)
}

// GetIntercept returns the learned intercept.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.State.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// IsFitted returns whether the model has been fitted.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State.IsFitted()
}

// GetParams returns the model's hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"solver":        lr.method.String(),
		"n_features":    lr.NFeatures,
		"fitted":        lr.State.IsFitted(),
	}
}

// SetParams sets "fit_intercept" (bool) and "solver" (string). Unknown keys
// are rejected.
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return scigoErrors.NewValidationError(key, "must be a bool", value)
			}
			lr.fitIntercept = v
		case "solver":
			s, ok := value.(string)
			if !ok {
				return scigoErrors.NewValidationError(key, "must be a string", value)
			}
			m, err := ParseMethod(s)
			if err != nil {
				return err
			}
			lr.method = m
		default:
			return scigoErrors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// LinearRegressionParams is the exported form of a fitted LinearRegression.
type LinearRegressionParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	NFeatures    int       `json:"n_features"`
	Scale        float64   `json:"scale"`
	Solver       Method    `json:"solver"`
}

// ExportJSON writes the fitted model as a JSON envelope.
func (lr *LinearRegression) ExportJSON(w io.Writer) error {
	if !lr.State.IsFitted() {
		return scigoErrors.NewNotFittedError(modelName, "ExportJSON")
	}
	return model.Export(modelName, LinearRegressionParams{
		Coefficients: lr.GetWeights(),
		Intercept:    lr.Intercept,
		NFeatures:    lr.NFeatures,
		Scale:        lr.Scale,
		Solver:       lr.method,
	}, w)
}

// LoadJSON restores a model written by ExportJSON. The covariance is not
// part of the export and stays nil.
func (lr *LinearRegression) LoadJSON(r io.Reader) error {
	env, err := model.LoadFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	var params LinearRegressionParams
	if err := model.DecodeParams(env, modelName, &params); err != nil {
		return err
	}
	if len(params.Coefficients) == 0 {
		return scigoErrors.NewValueError("LinearRegression.LoadJSON", "coefficients cannot be empty")
	}
	if params.NFeatures != len(params.Coefficients) {
		return scigoErrors.NewValueError("LinearRegression.LoadJSON",
			fmt.Sprintf("n_features (%d) does not match coefficients length (%d)",
				params.NFeatures, len(params.Coefficients)))
	}

	lr.Coef = mat.NewVecDense(len(params.Coefficients), params.Coefficients)
	lr.Intercept = params.Intercept
	lr.NFeatures = params.NFeatures
	lr.Scale = params.Scale
	lr.method = params.Solver
	lr.normCov = nil

	lr.State.SetFitted()
	lr.State.SetDimensions(lr.NFeatures, 0)
	return nil
}
