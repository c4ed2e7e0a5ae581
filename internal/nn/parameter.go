package nn

import (
	"github.com/born-ml/qdensity/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad() // nil until gradients are assigned
type Parameter[T tensor.Float, B tensor.Backend] struct {
	name   string               // e.g. "weight", "bias"
	tensor *tensor.Tensor[T, B] // the parameter tensor
	grad   *tensor.Tensor[T, B] // assigned after a backward pass
}

// NewParameter creates a new trainable parameter.
func NewParameter[T tensor.Float, B tensor.Backend](name string, t *tensor.Tensor[T, B]) *Parameter[T, B] {
	return &Parameter[T, B]{
		name:   name,
		tensor: t.RequireGrad(),
	}
}

// Name returns the parameter name.
func (p *Parameter[T, B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[T, B]) Tensor() *tensor.Tensor[T, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil if none has been assigned.
func (p *Parameter[T, B]) Grad() *tensor.Tensor[T, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[T, B]) SetGrad(grad *tensor.Tensor[T, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[T, B]) ZeroGrad() {
	p.grad = nil
}

// CollectGrads assigns gradients from a backward pass to each parameter.
// Parameters that did not contribute to the output keep a nil gradient.
func CollectGrads[T tensor.Float, B tensor.Backend](params []*Parameter[T, B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range params {
		raw, ok := grads[p.tensor.Raw()]
		if !ok {
			p.grad = nil
			continue
		}
		p.grad = tensor.New[T, B](raw, p.tensor.Backend())
	}
}
