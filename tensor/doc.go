// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for qdensity.
//
// # Overview
//
// This package provides:
//   - Generic type-safe tensors (Tensor[T, B]) over float32 and float64
//   - NumPy-style broadcasting for element-wise operations
//   - Batched matrix products and lower-triangular scatter (FillTril)
//   - Device abstraction through the Backend interface
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/qdensity/tensor"
//	    "github.com/born-ml/qdensity/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    z := x.Add(y)
//	    result := x.MatMul(y.T())
//	}
//
// # Broadcasting
//
// Tensor operations follow NumPy broadcasting rules:
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)     // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)      // (3, 4)
//	c := a.Add(b)                                                // (3, 4)
//
// # Density Matrix Building Blocks
//
//	l := raw.FillTril(dim)        // [batch, n] -> [batch, dim, dim] lower triangles
//	mm := l.BatchMatMul(l.H())    // L·Lᴴ
//	tr := mm.Trace()              // [batch]
//
// # Memory
//
// Operations never modify their operands. Each result owns a fresh buffer,
// so tensors may be shared between goroutines for reading.
package tensor
