// Package autodiff implements reverse-mode automatic differentiation as a
// backend decorator.
//
// AutodiffBackend wraps any Backend (CPU today) and records every operation
// on a GradientTape while recording is enabled. The forward arithmetic is
// delegated unchanged to the wrapped backend, so results are bit-identical
// with and without gradient tracking.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	x, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)
//	y := x.Mul(x) // y = x²
//
//	grads := autodiff.Backward(y, backend)
//	fmt.Println(grads[x.Raw()].AsFloat32()) // [4]
package autodiff

import (
	"github.com/born-ml/qdensity/internal/autodiff/ops"
	"github.com/born-ml/qdensity/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
//
// Type parameter B must satisfy the tensor.Backend interface.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device of the wrapped backend.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

func (b *AutodiffBackend[B]) record(op ops.Operation) {
	if b.tape.IsRecording() {
		b.tape.Record(op)
	}
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(a, c)
	b.record(ops.NewAddOp(a, c, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(a, c)
	b.record(ops.NewSubOp(a, c, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(a, c)
	b.record(ops.NewMulOp(a, c, result))
	return result
}

// Div performs element-wise division and records the operation.
func (b *AutodiffBackend[B]) Div(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Div(a, c)
	b.record(ops.NewDivOp(a, c, result))
	return result
}

// MulScalar scales a tensor and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, scalar)
	b.record(ops.NewMulScalarOp(x, result, scalar))
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) MatMul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.MatMul(a, c)
	b.record(ops.NewMatMulOp(a, c, result))
	return result
}

// BatchMatMul performs batched matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) BatchMatMul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.BatchMatMul(a, c)
	b.record(ops.NewBatchMatMulOp(a, c, result))
	return result
}

// Reshape reshapes a tensor and records the operation.
//
// Reshape copies data into a new tensor, so it must be on the tape for the
// gradient to reach the original (e.g. a bias reshaped to [1, out]).
func (b *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(t, newShape)
	b.record(ops.NewReshapeOp(t, result))
	return result
}

// Transpose permutes a tensor's axes and records the operation.
//
// Like Reshape this produces a new tensor. Without the TransposeOp the
// gradient of Linear's Wᵀ would never flow back to W.
func (b *AutodiffBackend[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	ndim := len(t.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	result := b.inner.Transpose(t, axes...)
	b.record(ops.NewTransposeOp(t, result, axes))
	return result
}

// ReLU applies max(0, x) and records the operation.
func (b *AutodiffBackend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.ReLU(x)
	b.record(ops.NewReLUOp(x, result))
	return result
}

// Sum reduces to a scalar and records the operation.
func (b *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sum(x)
	b.record(ops.NewSumOp(x, result))
	return result
}

// SumDim sums along a dimension and records the operation.
func (b *AutodiffBackend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	result := b.inner.SumDim(x, dim, keepDim)
	if norm, err := x.Shape().NormalizeDim(dim); err == nil {
		b.record(ops.NewSumDimOp(x, result, norm, keepDim))
	}
	return result
}

// Diagonal extracts matrix diagonals and records the operation.
func (b *AutodiffBackend[B]) Diagonal(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Diagonal(x)
	b.record(ops.NewDiagonalOp(x, result))
	return result
}

// DiagEmbed builds diagonal matrices and records the operation.
func (b *AutodiffBackend[B]) DiagEmbed(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.DiagEmbed(x)
	b.record(ops.NewDiagEmbedOp(x, result))
	return result
}

// FillTril scatters parameters into lower triangles and records the operation.
func (b *AutodiffBackend[B]) FillTril(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	result := b.inner.FillTril(x, dim)
	b.record(ops.NewFillTrilOp(x, result))
	return result
}

// TrilGather reads lower triangles and records the operation.
func (b *AutodiffBackend[B]) TrilGather(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.TrilGather(x)
	b.record(ops.NewTrilGatherOp(x, result))
	return result
}
