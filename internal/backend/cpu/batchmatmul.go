package cpu

import (
	"fmt"

	"github.com/born-ml/qdensity/internal/parallel"
	"github.com/born-ml/qdensity/internal/tensor"
)

// BatchMatMul performs batched matrix multiplication on 3D tensors:
// [B, M, K] @ [B, K, N] -> [B, M, N].
//
// Batch elements are multiplied independently (one GEMM each) and may run
// on separate goroutines; element i of the result depends only on element i
// of each operand.
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireSameDType("BatchMatMul", a, b)

	aShape := a.Shape()
	bShape := b.Shape()
	if len(aShape) != 3 || len(bShape) != 3 {
		panic(fmt.Sprintf("BatchMatMul: inputs must be 3D, got %dD and %dD", len(aShape), len(bShape)))
	}
	if aShape[0] != bShape[0] {
		panic(fmt.Sprintf("BatchMatMul: batch dimension mismatch: %d vs %d", aShape[0], bShape[0]))
	}

	batch, m, k := aShape[0], aShape[1], aShape[2]
	kAlt, n := bShape[1], bShape[2]
	if k != kAlt {
		panic(fmt.Sprintf("BatchMatMul: inner dimension mismatch: %d vs %d", k, kAlt))
	}

	result := cpu.alloc("BatchMatMul", tensor.Shape{batch, m, n}, a.DType())

	switch a.DType() {
	case tensor.Float32:
		batchGemm(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), batch, m, k, n, gemm32, cpu.par)
	case tensor.Float64:
		batchGemm(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), batch, m, k, n, gemm64, cpu.par)
	default:
		panic(fmt.Sprintf("BatchMatMul: unsupported dtype %s", a.DType()))
	}

	return result
}

func batchGemm[T tensor.Float](c, a, b []T, batch, m, k, n int, gemm func(c, a, b []T, m, k, n int), cfg parallel.Config) {
	sizeA, sizeB, sizeC := m*k, k*n, m*n
	parallel.For(batch, func(i int) {
		gemm(
			c[i*sizeC:(i+1)*sizeC],
			a[i*sizeA:(i+1)*sizeA],
			b[i*sizeB:(i+1)*sizeB],
			m, k, n,
		)
	}, cfg)
}
