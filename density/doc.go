// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package density turns batches of real feature vectors into valid density
// matrices.
//
// # Overview
//
// A DensityMatrixMLP is a two-layer perceptron
//
//	Linear(input_dim→128) → ReLU → Linear(128→dim(dim+1)/2)
//
// whose output fills the lower triangle of a dim×dim matrix L in row-major
// order (see TrilIndices). The result is
//
//	ρ = L·Lᴴ / tr(L·Lᴴ)
//
// which is Hermitian, positive semidefinite and has unit trace for every
// input that does not drive L to zero.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/qdensity/backend/cpu"
//	    "github.com/born-ml/qdensity/density"
//	    "github.com/born-ml/qdensity/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := density.New[float64](density.DefaultConfig(8, 4), backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    x, _ := tensor.FromSlice(features, tensor.Shape{batch, 8}, backend)
//	    rho, err := model.Forward(x) // [batch, 4, 4]
//	}
//
// # Degenerate Trace
//
// tr(L·Lᴴ) is the squared Frobenius norm of L, so it is zero only when every
// raw parameter is zero. By default only an exactly zero trace is
// degenerate; a positive Config.Epsilon widens that to |tr| <= Epsilon.
// Config.TracePolicy chooses the outcome: TraceStrict (default) returns a
// *TraceError, TracePropagate lets NaN through and TraceClamp divides by
// Config.Epsilon, which must then be positive.
//
// # Training
//
// Wrap the backend with autodiff.New to record Forward and backpropagate a
// loss to the weights; see the autodiff package.
//
// # Persistence
//
// Save and Load store weights in SafeTensors format together with the
// architecture, and Load refuses weights saved for another architecture or
// precision.
package density
