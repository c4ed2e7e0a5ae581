package cpu

import (
	"fmt"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Sum reduces every element to a scalar (shape []).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.alloc("sum", tensor.Shape{}, x.DType())
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = sumAll(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = sumAll(x.AsFloat64())
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}
	return result
}

func sumAll[T tensor.Float](x []T) T {
	var s T
	for _, v := range x {
		s += v
	}
	return s
}

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	y := backend.SumDim(x, -1, true)  // [2, 3, 4] -> [2, 3, 1]
//	z := backend.SumDim(x, -1, false) // [2, 3, 4] -> [2, 3]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("sumdim: %v", err))
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, len(shape)-1)
		outShape = append(outShape, shape[:dim]...)
		outShape = append(outShape, shape[dim+1:]...)
	}

	result := cpu.alloc("sumdim", outShape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		sumAlong(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumAlong(result.AsFloat64(), x.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s", x.DType()))
	}

	return result
}

// sumAlong views src as [outer, size, inner] and writes the [outer, inner] sums.
func sumAlong[T tensor.Float](dst, src []T, shape tensor.Shape, dim int) {
	outer := shape[:dim].NumElements()
	size := shape[dim]
	inner := shape[dim+1:].NumElements()

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			var s T
			base := o*size*inner + in
			for j := 0; j < size; j++ {
				s += src[base+j*inner]
			}
			dst[o*inner+in] = s
		}
	}
}
