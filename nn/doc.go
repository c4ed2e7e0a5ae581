// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network layers the density parameterizer
// is built from.
//
// # Overview
//
// This package contains:
//   - Layers: Linear
//   - Activations: ReLU
//   - Utilities: Sequential, Module interface, Parameter
//   - Initialization: Xavier, Zeros
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/qdensity/backend/cpu"
//	    "github.com/born-ml/qdensity/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    rng := rand.New(rand.NewSource(1))
//
//	    model := nn.NewSequential[float64, *cpu.Backend](
//	        nn.NewLinear[float64](16, 128, backend, rng),
//	        nn.NewReLU[float64, *cpu.Backend](),
//	        nn.NewLinear[float64](128, 10, backend, rng),
//	    )
//	    y := model.Forward(x)
//	}
//
// # State Dictionaries
//
// Sequential prefixes each child's keys with its index: "0.weight",
// "0.bias", "2.weight", "2.bias". LoadStateDict rejects missing, unexpected
// and mis-shaped entries.
package nn
