// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/qdensity/internal/nn"
	"github.com/born-ml/qdensity/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[T tensor.Float, B tensor.Backend] = nn.Module[T, B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[T tensor.Float, B tensor.Backend] = nn.Parameter[T, B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[T tensor.Float, B tensor.Backend](name string, t *tensor.Tensor[T, B]) *Parameter[T, B] {
	return nn.NewParameter(name, t)
}

// CollectGrads copies gradients from an autodiff.Backward result onto params.
func CollectGrads[T tensor.Float, B tensor.Backend](params []*Parameter[T, B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.CollectGrads(params, grads)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[T tensor.Float, B tensor.Backend] = nn.Linear[T, B]

// NewLinear creates a new linear layer with Xavier-uniform weights drawn
// from rng and zero bias.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear[float32](784, 128, backend, rand.New(rand.NewSource(1)))
func NewLinear[T tensor.Float, B tensor.Backend](inFeatures, outFeatures int, backend B, rng *rand.Rand) *Linear[T, B] {
	return nn.NewLinear[T](inFeatures, outFeatures, backend, rng)
}

// Activations

// ReLU applies max(0, x) element-wise.
type ReLU[T tensor.Float, B tensor.Backend] = nn.ReLU[T, B]

// NewReLU creates a ReLU activation.
func NewReLU[T tensor.Float, B tensor.Backend]() *ReLU[T, B] {
	return nn.NewReLU[T, B]()
}

// Containers

// Sequential chains modules, feeding each output to the next.
type Sequential[T tensor.Float, B tensor.Backend] = nn.Sequential[T, B]

// NewSequential creates a container running modules in order.
func NewSequential[T tensor.Float, B tensor.Backend](modules ...Module[T, B]) *Sequential[T, B] {
	return nn.NewSequential(modules...)
}

// Initialization

// Xavier draws a tensor from U(-a, a) with a = sqrt(6 / (fanIn + fanOut)).
func Xavier[T tensor.Float, B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B, rng *rand.Rand) *tensor.Tensor[T, B] {
	return nn.Xavier[T](fanIn, fanOut, shape, backend, rng)
}

// Zeros creates a zero-filled tensor.
func Zeros[T tensor.Float, B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[T, B] {
	return nn.Zeros[T](shape, backend)
}

// Errors returned by LoadStateDict.
var (
	ErrMissingParameter    = nn.ErrMissingParameter
	ErrUnexpectedParameter = nn.ErrUnexpectedParameter
	ErrParameterShape      = nn.ErrParameterShape
	ErrParameterDType      = nn.ErrParameterDType
)
