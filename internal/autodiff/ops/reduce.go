package ops

import "github.com/born-ml/qdensity/internal/tensor"

// SumOp represents a total reduction to a scalar.
type SumOp struct{ base }

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{newBase(output, x)}
}

// Backward broadcasts the scalar gradient to every input element.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{broadcastTo(outputGrad, op.inputs[0].Shape(), backend)}
}

// SumDimOp represents a sum along one dimension.
//
// Each input element contributes once to its output slot, so the gradient is
// the output gradient broadcast back along the reduced dimension.
type SumDimOp struct {
	base
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp. dim must already be normalized.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{base: newBase(output, x), dim: dim, keepDim: keepDim}
}

// Backward computes the input gradient for the reduction.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inShape := op.inputs[0].Shape()
	grad := outputGrad
	if !op.keepDim {
		grad = backend.Reshape(grad, keepDimShape(inShape, op.dim))
	}
	return []*tensor.RawTensor{broadcastTo(grad, inShape, backend)}
}
