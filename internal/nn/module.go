// Package nn implements the neural network building blocks used by the
// density-matrix parameterizer.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Linear: Fully connected layer
//   - ReLU: Rectified linear activation
//   - Sequential: Container for stacking layers
//
// Every type is generic over the element type T (float32 or float64) and the
// backend B, so precision is chosen once at construction.
package nn

import (
	"github.com/born-ml/qdensity/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential[float64, Backend](
//	    nn.NewLinear[float64](4, 128, backend, rng),
//	    nn.NewReLU[float64, Backend](),
//	    nn.NewLinear[float64](128, 3, backend, rng),
//	)
//
// Forward panics on inputs of the wrong shape. Callers accepting untrusted
// input validate shapes first.
type Module[T tensor.Float, B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[T, B]

	// Parameters returns all trainable parameters of this module.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[T, B]

	// StateDict returns the module's parameters keyed by name.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies parameter values from a state dictionary.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
