package nn

import (
	"fmt"

	"github.com/born-ml/qdensity/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// Example:
//
//	relu := nn.NewReLU[float64, Backend]()
//	output := relu.Forward(input) // All negative values become 0
type ReLU[T tensor.Float, B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[T tensor.Float, B tensor.Backend]() *ReLU[T, B] {
	return &ReLU[T, B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[T, B]) Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	return input.ReLU()
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU[T, B]) Parameters() []*Parameter[T, B] {
	return nil
}

// StateDict returns an empty map.
func (r *ReLU[T, B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict accepts only an empty state dictionary; ReLU has nothing to
// load.
func (r *ReLU[T, B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if len(stateDict) != 0 {
		return fmt.Errorf("%w: relu has no parameters, got %d entries", ErrUnexpectedParameter, len(stateDict))
	}
	return nil
}
