package errors_test

import (
	"errors"
	"fmt"

	scigoErrors "github.com/ezoic/minwls/pkg/errors"
)

// Example demonstrates Go 1.13+ error wrapping
func Example() {
	// Create a base error
	baseErr := fmt.Errorf("invalid input value")

	// Wrap the error with context using Go 1.13+ syntax
	wrappedErr := fmt.Errorf("model validation failed: %w", baseErr)

	// Further wrap with operation context
	opErr := fmt.Errorf("LinearRegression.Fit: %w", wrappedErr)

	// Use errors.Is to check for specific error types
	if errors.Is(opErr, baseErr) {
		fmt.Println("Found base error in chain")
	}

	// Unwrap errors to get the underlying cause
	unwrapped := errors.Unwrap(opErr)
	fmt.Printf("Unwrapped: %v\n", unwrapped)

	// Output: Found base error in chain
	// Unwrapped: model validation failed: invalid input value
}

// Example_customErrorTypes demonstrates custom error type handling
func Example_customErrorTypes() {
	// Create a custom error using our error constructors
	dimErr := scigoErrors.NewDimensionError("LinearRegression.Predict", 5, 3, 1)

	// Wrap it with additional context
	wrappedErr := fmt.Errorf("scoring failed: %w", dimErr)

	// Check if error is of specific type using errors.As
	var dimensionErr *scigoErrors.DimensionError
	if errors.As(wrappedErr, &dimensionErr) {
		fmt.Printf("Dimension error: expected %d, got %d\n",
			dimensionErr.Expected, dimensionErr.Got)
	}

	// Output: Dimension error: expected 5, got 3
}

// Example_errorComparison demonstrates error comparison patterns
func Example_errorComparison() {
	// Create different types of errors
	notFittedErr := scigoErrors.NewNotFittedError("LinearRegression", "Predict")
	valueErr := scigoErrors.NewValueError("ParseMethod", "unknown method \"svd\"")

	// Create a sentinel error for comparison
	customErr := errors.New("custom processing error")
	wrappedCustom := fmt.Errorf("operation failed: %w", customErr)

	// Use errors.Is for sentinel error checking
	if errors.Is(wrappedCustom, customErr) {
		fmt.Println("Custom error detected")
	}

	// Use errors.As for type assertions
	var notFitted *scigoErrors.NotFittedError
	if errors.As(notFittedErr, &notFitted) {
		fmt.Printf("Model %s is not fitted for %s\n",
			notFitted.ModelName, notFitted.Method)
	}

	var valErr *scigoErrors.ValueError
	if errors.As(valueErr, &valErr) {
		fmt.Printf("Value error in %s: %s\n", valErr.Op, valErr.Message)
	}

	// Output: Custom error detected
	// Model LinearRegression is not fitted for Predict
	// Value error in ParseMethod: unknown method "svd"
}

// Example_linAlgError demonstrates how solver failures are classified
func Example_linAlgError() {
	err := scigoErrors.NewLinAlgError("qr", scigoErrors.ErrSingularMatrix)
	err = scigoErrors.Wrapf(err, "IRLS round %d", 3)

	if errors.Is(err, scigoErrors.ErrSingularMatrix) {
		fmt.Println("Singular design, retry with pinv")
	}
	var la *scigoErrors.LinAlgError
	if errors.As(err, &la) {
		fmt.Printf("Failed in %s\n", la.Op)
	}
	fmt.Println(err)

	// Output: Singular design, retry with pinv
	// Failed in qr
	// IRLS round 3: minwls: qr: linear algebra failure: singular matrix
}

// Example_errorLogging demonstrates structured error logging
func Example_errorLogging() {
	baseErr := scigoErrors.NewModelError("RLM.Fit", "convergence failure",
		scigoErrors.ErrNotConverged)

	opErr := fmt.Errorf("robust fit of column 2: %w", baseErr)

	// In production the error goes through log.LogError, which adds the
	// stack-carrying %+v detail.
	fmt.Printf("Error occurred in robust fitting: %v\n", opErr)

	// Output: Error occurred in robust fitting: robust fit of column 2: minwls: RLM.Fit: convergence failure: not converged
}
