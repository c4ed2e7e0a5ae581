// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package density

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/qdensity/internal/density"
	"github.com/born-ml/qdensity/internal/tensor"
)

// DensityMatrixMLP maps [batch, input_dim] inputs to [batch, dim, dim]
// density matrices.
type DensityMatrixMLP[T tensor.Float, B tensor.Backend] = density.DensityMatrixMLP[T, B]

// Config holds construction parameters for a DensityMatrixMLP.
type Config = density.Config

// TracePolicy selects what happens when tr(L·Lᴴ) is degenerate.
type TracePolicy = density.TracePolicy

// Trace policies.
const (
	TraceStrict    TracePolicy = density.TraceStrict
	TracePropagate TracePolicy = density.TracePropagate
	TraceClamp     TracePolicy = density.TraceClamp
)

// Defaults used by DefaultConfig.
const (
	DefaultHiddenDim = density.DefaultHiddenDim
	DefaultEpsilon   = density.DefaultEpsilon
)

// DefaultConfig returns a Config with a 128-wide hidden layer, the TraceStrict
// policy, seed 1 and a no-op logger.
func DefaultConfig(inputDim, dim int) Config {
	return density.DefaultConfig(inputDim, dim)
}

// New builds a parameterizer on backend.
//
// Example:
//
//	backend := cpu.New()
//	model, err := density.New[float32](density.DefaultConfig(16, 3), backend)
func New[T tensor.Float, B tensor.Backend](cfg Config, backend B) (*DensityMatrixMLP[T, B], error) {
	return density.New[T](cfg, backend)
}

// FromRaw builds density matrices from an externally produced raw parameter
// batch [batch, dim(dim+1)/2], using cfg's Dim, TracePolicy and Epsilon.
func FromRaw[T tensor.Float, B tensor.Backend](raw *tensor.Tensor[T, B], cfg Config) (*tensor.Tensor[T, B], error) {
	return density.FromRaw(raw, cfg)
}

// NumParams returns dim(dim+1)/2, the width of the raw parameter vector.
func NumParams(dim int) int {
	return density.NumParams(dim)
}

// TrilIndices returns the (row, col) positions the raw parameters fill.
func TrilIndices(dim int) [][2]int {
	return density.TrilIndices(dim)
}

// Check verifies every matrix in rho is Hermitian, positive semidefinite and
// of unit trace within tol.
func Check[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B], tol float64) error {
	return density.Check(rho, tol)
}

// Eigenvalues returns the ascending eigenvalues of each matrix in rho.
func Eigenvalues[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) ([][]float64, error) {
	return density.Eigenvalues(rho)
}

// Purity returns tr(ρ²) for each matrix.
func Purity[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) ([]float64, error) {
	return density.Purity(rho)
}

// Entropy returns the von Neumann entropy of each matrix in nats.
func Entropy[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) ([]float64, error) {
	return density.Entropy(rho)
}

// ToCDense exports each matrix as a complex gonum matrix.
func ToCDense[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) ([]*mat.CDense, error) {
	return density.ToCDense(rho)
}

// Error types.
type (
	// ShapeError carries the expected and actual shapes of a rejected tensor.
	ShapeError = density.ShapeError
	// TraceError identifies the batch element whose trace was degenerate.
	TraceError = density.TraceError
	// CheckError identifies the batch element that failed a validity check.
	CheckError = density.CheckError
)

// Sentinel errors. Match with errors.Is.
var (
	ErrShapeMismatch     = density.ErrShapeMismatch
	ErrInvalidDimension  = density.ErrInvalidDimension
	ErrDegenerateTrace   = density.ErrDegenerateTrace
	ErrInvalidConfig     = density.ErrInvalidConfig
	ErrDeviceMismatch    = density.ErrDeviceMismatch
	ErrPrecisionMismatch = density.ErrPrecisionMismatch
	ErrNotHermitian      = density.ErrNotHermitian
	ErrNotPositive       = density.ErrNotPositive
	ErrTraceNotOne       = density.ErrTraceNotOne
)
