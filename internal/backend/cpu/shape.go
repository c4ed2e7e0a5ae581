package cpu

import (
	"fmt"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Reshape returns a copy of t with a new shape and the same element order.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	result, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes the dimensions of t.
// With no axes, all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := cpu.alloc("transpose", newShape, t.DType())

	switch t.DType() {
	case tensor.Float32:
		permute(result.AsFloat32(), t.AsFloat32(), shape, newShape, axes)
	case tensor.Float64:
		permute(result.AsFloat64(), t.AsFloat64(), shape, newShape, axes)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}

// permute writes src (shape srcShape) into dst (shape dstShape) such that
// dst axis i is src axis axes[i].
func permute[T tensor.Float](dst, src []T, srcShape, dstShape tensor.Shape, axes []int) {
	srcStrides := srcShape.ComputeStrides()
	dstStrides := dstShape.ComputeStrides()

	// Stride in src for a unit step along each dst axis.
	step := make([]int, len(axes))
	for i, ax := range axes {
		step[i] = srcStrides[ax]
	}

	for i := range dst {
		rem := i
		srcIdx := 0
		for d := range dstStrides {
			coord := rem / dstStrides[d]
			rem %= dstStrides[d]
			srcIdx += coord * step[d]
		}
		dst[i] = src[srcIdx]
	}
}
