// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape. It wraps any backend to add autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/born-ml/qdensity/autodiff"
//	    "github.com/born-ml/qdensity/backend/cpu"
//	    "github.com/born-ml/qdensity/density"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    model, _ := density.New[float64](density.DefaultConfig(4, 2), backend)
//
//	    backend.Tape().StartRecording()
//	    rho, _ := model.Forward(x)
//	    loss := rho.Sum()
//
//	    grads := autodiff.Backward(loss, backend)
//	    wGrad := grads[model.Output().Weight().Tensor().Raw()]
//	}
package autodiff

import (
	"github.com/born-ml/qdensity/internal/autodiff"
	"github.com/born-ml/qdensity/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients via backpropagation.
//
// The result maps each input RawTensor recorded on the tape to its gradient.
func Backward[T tensor.Float, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
