package density

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/born-ml/qdensity/internal/tensor"
)

// DefaultHiddenDim is the width of the hidden layer.
const DefaultHiddenDim = 128

// DefaultEpsilon is the default degenerate-trace threshold. Only an exactly
// zero trace is degenerate; any positive trace, however small, normalizes.
const DefaultEpsilon = 0.0

// TracePolicy selects what happens when tr(L·Lᴴ) is degenerate.
type TracePolicy int

const (
	// TraceStrict fails the call with ErrDegenerateTrace.
	TraceStrict TracePolicy = iota
	// TracePropagate divides anyway; NaN or Inf reach the output.
	TracePropagate
	// TraceClamp divides by Epsilon instead of the degenerate trace.
	// Requires Epsilon > 0.
	TraceClamp
)

// String returns the policy name.
func (p TracePolicy) String() string {
	switch p {
	case TraceStrict:
		return "strict"
	case TracePropagate:
		return "propagate"
	case TraceClamp:
		return "clamp"
	default:
		return fmt.Sprintf("TracePolicy(%d)", int(p))
	}
}

// Config holds construction parameters for a DensityMatrixMLP.
type Config struct {
	InputDim    int           // Input feature width (> 0)
	Dim         int           // Output matrix size (> 0)
	HiddenDim   int           // Hidden layer width (default 128)
	Device      tensor.Device // Device the backend must run on
	TracePolicy TracePolicy   // Degenerate trace handling
	Epsilon     float64       // Traces with |tr| <= Epsilon are degenerate (>= 0)
	Seed        int64         // Weight initialization seed
	Logger      zerolog.Logger
}

// DefaultConfig returns a Config for the given input and matrix dimensions
// with all other fields at their defaults.
func DefaultConfig(inputDim, dim int) Config {
	return Config{
		InputDim:    inputDim,
		Dim:         dim,
		HiddenDim:   DefaultHiddenDim,
		Device:      tensor.CPU,
		TracePolicy: TraceStrict,
		Epsilon:     DefaultEpsilon,
		Seed:        1,
		Logger:      zerolog.Nop(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.InputDim <= 0 {
		return fmt.Errorf("%w: input_dim=%d", ErrInvalidDimension, c.InputDim)
	}
	if c.HiddenDim <= 0 {
		return fmt.Errorf("%w: hidden_dim=%d", ErrInvalidDimension, c.HiddenDim)
	}
	return c.validateConstruction()
}

// validateConstruction checks the fields FromRaw uses: Dim, Epsilon and
// TracePolicy.
func (c Config) validateConstruction() error {
	if c.Dim <= 0 {
		return fmt.Errorf("%w: dim=%d", ErrInvalidDimension, c.Dim)
	}
	if c.Epsilon < 0 || math.IsNaN(c.Epsilon) || math.IsInf(c.Epsilon, 0) {
		return fmt.Errorf("%w: epsilon=%g", ErrInvalidConfig, c.Epsilon)
	}
	if c.TracePolicy == TraceClamp && c.Epsilon == 0 {
		return fmt.Errorf("%w: clamp policy needs epsilon > 0", ErrInvalidConfig)
	}
	switch c.TracePolicy {
	case TraceStrict, TracePropagate, TraceClamp:
	default:
		return fmt.Errorf("%w: trace policy %v", ErrInvalidConfig, c.TracePolicy)
	}
	return nil
}

// NumParams returns the raw parameter count dim*(dim+1)/2.
func NumParams(dim int) int {
	return tensor.TrilSize(dim)
}

// TrilIndices returns the (row, col) pairs receiving the raw parameters, in
// order: (0,0), (1,0), (1,1), (2,0), (2,1), (2,2), ...
func TrilIndices(dim int) [][2]int {
	return tensor.TrilIndex(dim)
}
