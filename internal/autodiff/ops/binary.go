package ops

import "github.com/born-ml/qdensity/internal/tensor"

// AddOp represents output = a + b with broadcasting.
type AddOp struct{ base }

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{newBase(output, a, b)}
}

// Backward passes the gradient through to both operands.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape(), backend),
		reduceBroadcast(outputGrad, b.Shape(), backend),
	}
}

// SubOp represents output = a - b with broadcasting.
type SubOp struct{ base }

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{newBase(output, a, b)}
}

// Backward computes grad_a = grad, grad_b = -grad.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape(), backend),
		reduceBroadcast(backend.MulScalar(outputGrad, -1), b.Shape(), backend),
	}
}

// MulOp represents output = a * b with broadcasting.
type MulOp struct{ base }

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{newBase(output, a, b)}
}

// Backward computes grad_a = grad * b, grad_b = grad * a.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(backend.Mul(outputGrad, b), a.Shape(), backend),
		reduceBroadcast(backend.Mul(outputGrad, a), b.Shape(), backend),
	}
}

// DivOp represents output = a / b with broadcasting.
//
// Backward pass:
//   - d(a/b)/da = 1/b
//   - d(a/b)/db = -a/b²
type DivOp struct{ base }

// NewDivOp creates a new DivOp.
func NewDivOp(a, b, output *tensor.RawTensor) *DivOp {
	return &DivOp{newBase(output, a, b)}
}

// Backward computes input gradients for division.
func (op *DivOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]

	gradA := backend.Div(outputGrad, b)

	bSquared := backend.Mul(b, b)
	gradB := backend.Div(backend.Mul(outputGrad, a), bSquared)
	gradB = backend.MulScalar(gradB, -1)

	return []*tensor.RawTensor{
		reduceBroadcast(gradA, a.Shape(), backend),
		reduceBroadcast(gradB, b.Shape(), backend),
	}
}

// MulScalarOp represents output = x * scalar.
type MulScalarOp struct {
	base
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{base: newBase(output, x), scalar: scalar}
}

// Backward computes grad_x = grad * scalar.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}
