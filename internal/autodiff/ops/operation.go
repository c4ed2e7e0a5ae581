// Package ops defines differentiable operations recorded on a gradient tape.
//
// Each operation keeps references to its inputs and output from the forward
// pass and computes input gradients from the output gradient:
//   - AddOp, SubOp, MulOp, DivOp: element-wise with broadcast reduction
//   - MulScalarOp: scaling by a constant
//   - MatMulOp, BatchMatMulOp: d(A@B)/dA = grad@Bᵀ, d(A@B)/dB = Aᵀ@grad
//   - TransposeOp, ReshapeOp: gradients are permuted or reshaped back
//   - ReLUOp: gradient masked where the input was not positive
//   - SumOp, SumDimOp: gradient broadcast back over the reduced axes
//   - FillTrilOp, TrilGatherOp, DiagonalOp, DiagEmbedOp: adjoint pairs
package ops

import "github.com/born-ml/qdensity/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// The result is aligned with Inputs(); a nil entry means no gradient.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// base stores the tensors shared by every operation.
type base struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func newBase(output *tensor.RawTensor, inputs ...*tensor.RawTensor) base {
	return base{inputs: inputs, output: output}
}

// Inputs returns the input tensors.
func (b *base) Inputs() []*tensor.RawTensor {
	return b.inputs
}

// Output returns the output tensor.
func (b *base) Output() *tensor.RawTensor {
	return b.output
}
