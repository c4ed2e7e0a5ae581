package ops

import "github.com/born-ml/qdensity/internal/tensor"

// FillTrilOp scatters [B, D(D+1)/2] parameters into [B, D, D] lower triangles.
// Its adjoint reads the lower triangle of the gradient back out; gradient on
// the strict upper triangle is discarded because those entries are constant.
type FillTrilOp struct{ base }

// NewFillTrilOp creates a new FillTrilOp.
func NewFillTrilOp(x, output *tensor.RawTensor) *FillTrilOp {
	return &FillTrilOp{newBase(output, x)}
}

// Backward gathers the lower-triangle gradient.
func (op *FillTrilOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.TrilGather(outputGrad)}
}

// TrilGatherOp reads lower triangles into vectors; its adjoint is FillTril.
type TrilGatherOp struct{ base }

// NewTrilGatherOp creates a new TrilGatherOp.
func NewTrilGatherOp(x, output *tensor.RawTensor) *TrilGatherOp {
	return &TrilGatherOp{newBase(output, x)}
}

// Backward scatters the gradient back into the lower triangle.
func (op *TrilGatherOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.FillTril(outputGrad, op.inputs[0].Shape()[1])}
}

// DiagonalOp extracts matrix diagonals; its adjoint is DiagEmbed.
type DiagonalOp struct{ base }

// NewDiagonalOp creates a new DiagonalOp.
func NewDiagonalOp(x, output *tensor.RawTensor) *DiagonalOp {
	return &DiagonalOp{newBase(output, x)}
}

// Backward places the gradient on the diagonal of zero matrices.
func (op *DiagonalOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.DiagEmbed(outputGrad)}
}

// DiagEmbedOp builds diagonal matrices; its adjoint is Diagonal.
type DiagEmbedOp struct{ base }

// NewDiagEmbedOp creates a new DiagEmbedOp.
func NewDiagEmbedOp(x, output *tensor.RawTensor) *DiagEmbedOp {
	return &DiagEmbedOp{newBase(output, x)}
}

// Backward reads the diagonal of the gradient.
func (op *DiagEmbedOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Diagonal(outputGrad)}
}
