package ops

import "github.com/born-ml/qdensity/internal/tensor"

// MatMulOp represents a 2D matrix product: output = a @ b.
//
// Backward pass:
//   - d(A@B)/dA = outputGrad @ Bᵀ
//   - d(A@B)/dB = Aᵀ @ outputGrad
type MatMulOp struct{ base }

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{newBase(output, a, b)}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]

	gradA := backend.MatMul(outputGrad, backend.Transpose(b, 1, 0))
	gradB := backend.MatMul(backend.Transpose(a, 1, 0), outputGrad)

	return []*tensor.RawTensor{gradA, gradB}
}

// BatchMatMulOp represents a batched product: output = a @ b over [B, M, K] @ [B, K, N].
//
// The same rule as MatMulOp applies per batch element, with the transpose
// taken over the matrix axes only.
type BatchMatMulOp struct{ base }

// NewBatchMatMulOp creates a new BatchMatMulOp.
func NewBatchMatMulOp(a, b, output *tensor.RawTensor) *BatchMatMulOp {
	return &BatchMatMulOp{newBase(output, a, b)}
}

// Backward computes gradients for batch matmul.
func (op *BatchMatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]

	aT := backend.Transpose(a, 0, 2, 1)
	bT := backend.Transpose(b, 0, 2, 1)

	gradA := backend.BatchMatMul(outputGrad, bT)
	gradB := backend.BatchMatMul(aT, outputGrad)

	return []*tensor.RawTensor{gradA, gradB}
}
