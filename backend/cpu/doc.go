// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS (blas32/blas64 Gemm) for MatMul and BatchMatMul
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/qdensity/backend/cpu"
//	    "github.com/born-ml/qdensity/density"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := density.New[float64](density.DefaultConfig(8, 4), backend)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// allocates its own output and does not share mutable state. Batch elements
// of stacked operations run on separate goroutines per ParallelConfig; the
// results do not depend on the worker count.
package cpu
