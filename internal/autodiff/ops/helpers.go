package ops

import (
	"github.com/born-ml/qdensity/internal/tensor"
)

// reduceBroadcast sums a gradient back down to the shape of an operand that
// was broadcast in the forward pass.
//
//	Forward:  m[4,2,2] / tr[4,1,1] -> rho[4,2,2]
//	Backward: grad[4,2,2] -> grad_tr[4,1,1] (summed over the matrix axes)
func reduceBroadcast(grad *tensor.RawTensor, target tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}
	if len(target) == 0 {
		return backend.Sum(grad)
	}

	result := grad
	for lead := len(grad.Shape()) - len(target); lead > 0; lead-- {
		result = backend.SumDim(result, 0, false)
	}
	for i, d := range target {
		if d == 1 && result.Shape()[i] != 1 {
			result = backend.SumDim(result, i, true)
		}
	}
	if !result.Shape().Equal(target) {
		result = backend.Reshape(result, target)
	}
	return result
}

// broadcastTo expands grad to shape by adding it onto zeros.
func broadcastTo(grad *tensor.RawTensor, shape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(shape) {
		return grad
	}
	zeros := tensor.MustNewRaw(shape, grad.DType(), backend.Device())
	return backend.Add(zeros, grad)
}

// keepDimShape returns shape with dim set to 1.
func keepDimShape(shape tensor.Shape, dim int) tensor.Shape {
	out := shape.Clone()
	out[dim] = 1
	return out
}
