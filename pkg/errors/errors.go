// Package errors defines the error taxonomy shared by every minwls package.
//
// It is a thin layer over github.com/cockroachdb/errors: sentinel values for
// the conditions callers branch on, small typed errors carrying the context
// needed to act on them, and re-exports of the wrapping helpers so packages
// only import one errors package.
//
// All typed errors support the Go 1.13 wrapping protocol:
//
//	if errors.Is(err, errors.ErrSingularMatrix) {
//		// try another solve method
//	}
//
//	var la *errors.LinAlgError
//	if errors.As(err, &la) {
//		fmt.Println(la.Op)
//	}
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const prefix = "minwls"

// Sentinel errors.
var (
	// ErrEmptyData is returned when an estimator receives no rows or columns.
	ErrEmptyData = errors.New("empty data")
	// ErrSingularMatrix marks a factor or Gram matrix that cannot be inverted.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrNotFitted is the sentinel behind NotFittedError.
	ErrNotFitted = errors.New("not fitted")
	// ErrNotImplemented marks a requested feature that does not exist.
	ErrNotImplemented = errors.New("not implemented")
	// ErrNotConverged marks an iterative procedure that hit its iteration cap.
	ErrNotConverged = errors.New("not converged")
)

// Re-exported helpers from github.com/cockroachdb/errors.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ModelError reports a failure inside a model operation, wrapping its cause.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

// NewModelError returns a *ModelError for op.
func NewModelError(op, kind string, err error) error {
	return &ModelError{Op: op, Kind: kind, Err: err}
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// DimensionError reports a shape disagreement along Axis (0 rows, 1 columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError returns a *DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("%s: %s: dimension mismatch on %s: expected %d, got %d",
		prefix, e.Op, axis, e.Expected, e.Got)
}

// ValueError reports an argument with an unusable value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError returns a *ValueError.
func NewValueError(op, message string) error {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// NotFittedError is returned when a method needs a fitted model.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError returns a *NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return &NotFittedError{ModelName: modelName, Method: method}
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: %s: call Fit before %s", prefix, e.ModelName, e.Method)
}

// Is reports ErrNotFitted as a match.
func (e *NotFittedError) Is(target error) bool { return target == ErrNotFitted }

// ValidationError reports a parameter that failed validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

// NewValidationError returns a *ValidationError.
func NewValidationError(param, reason string, value interface{}) error {
	return &ValidationError{ParamName: param, Reason: reason, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s (%v): %s", prefix, e.ParamName, e.Value, e.Reason)
}

// LinAlgError is a failure signalled by a linear algebra primitive: a
// singular factor, an ill-conditioned inverse or a shape mismatch. The
// underlying error is kept as-is.
type LinAlgError struct {
	Op  string
	Err error
}

// NewLinAlgError wraps err, attaching a stack trace.
func NewLinAlgError(op string, err error) error {
	return errors.WithStack(&LinAlgError{Op: op, Err: err})
}

func (e *LinAlgError) Error() string {
	return fmt.Sprintf("%s: %s: linear algebra failure: %v", prefix, e.Op, e.Err)
}

func (e *LinAlgError) Unwrap() error { return e.Err }

// Recover converts a panic raised below op into a *LinAlgError stored in
// *err. It must be deferred directly:
//
//	func (m *MinimalWLS) Fit() (res *WLSResults, err error) {
//		defer errors.Recover(&err, "MinimalWLS.Fit")
//		...
//	}
//
// gonum reports shape mismatches by panicking, so this is where they become
// ordinary errors.
func Recover(err *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	cause, ok := r.(error)
	if !ok {
		cause = errors.Newf("panic: %v", r)
	}
	*err = NewLinAlgError(op, cause)
}
