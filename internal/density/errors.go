package density

import (
	"errors"
	"fmt"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Sentinel errors. Match with errors.Is.
var (
	// ErrShapeMismatch reports an input or raw parameter batch of the wrong
	// shape, or a saved model whose architecture differs.
	ErrShapeMismatch = errors.New("density: shape mismatch")

	// ErrInvalidDimension reports a non-positive input_dim, dim or hidden width.
	ErrInvalidDimension = errors.New("density: dimension must be positive")

	// ErrDegenerateTrace reports tr(L·Lᴴ) equal to zero, or within Epsilon of
	// zero when Epsilon is set.
	ErrDegenerateTrace = errors.New("density: degenerate trace")

	// ErrInvalidConfig reports a configuration value outside its domain.
	ErrInvalidConfig = errors.New("density: invalid config")

	// ErrDeviceMismatch reports a backend on a different device than configured.
	ErrDeviceMismatch = errors.New("density: device mismatch")

	// ErrPrecisionMismatch reports saved weights of a different dtype.
	ErrPrecisionMismatch = errors.New("density: precision mismatch")

	// Check failures.
	ErrNotHermitian = errors.New("density: matrix is not Hermitian")
	ErrNotPositive  = errors.New("density: matrix is not positive semidefinite")
	ErrTraceNotOne  = errors.New("density: trace is not one")
)

// ShapeError carries the expected and actual shapes of a rejected tensor.
// Expected uses -1 for dimensions that may take any size.
type ShapeError struct {
	What     string
	Expected tensor.Shape
	Actual   tensor.Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: %s expected %v, got %v", ErrShapeMismatch, e.What, e.Expected, e.Actual)
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// TraceError identifies the batch element whose trace was degenerate.
type TraceError struct {
	Index int
	Trace float64
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("%v: batch element %d has trace %g", ErrDegenerateTrace, e.Index, e.Trace)
}

// Unwrap returns ErrDegenerateTrace.
func (e *TraceError) Unwrap() error {
	return ErrDegenerateTrace
}

// CheckError identifies the batch element that failed a validity check.
type CheckError struct {
	Index int
	Err   error
	Value float64
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%v: batch element %d (%g)", e.Err, e.Index, e.Value)
}

// Unwrap returns the sentinel for the failed check.
func (e *CheckError) Unwrap() error {
	return e.Err
}
