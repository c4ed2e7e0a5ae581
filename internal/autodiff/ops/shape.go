package ops

import "github.com/born-ml/qdensity/internal/tensor"

// TransposeOp represents an axis permutation.
// The gradient is permuted back with the inverse permutation.
type TransposeOp struct {
	base
	axes []int
}

// NewTransposeOp creates a new TransposeOp. axes must be the explicit
// permutation used in the forward pass.
func NewTransposeOp(x, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{base: newBase(output, x), axes: append([]int(nil), axes...)}
}

// Backward applies the inverse permutation to the gradient.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

// ReshapeOp represents a reshape; the gradient is reshaped to the input shape.
type ReshapeOp struct{ base }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{newBase(output, x)}
}

// Backward reshapes the gradient back.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.inputs[0].Shape())}
}
