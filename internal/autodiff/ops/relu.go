package ops

import (
	"fmt"

	"github.com/born-ml/qdensity/internal/tensor"
)

// ReLUOp represents output = max(0, x).
//
// Backward pass: d(ReLU(x))/dx = 1 if x > 0, else 0.
type ReLUOp struct{ base }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{newBase(output, x)}
}

// Backward multiplies the gradient by the positivity mask of the input.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask := reluMask(op.inputs[0], backend)
	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

func reluMask(input *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	mask := tensor.MustNewRaw(input.Shape(), input.DType(), backend.Device())

	switch input.DType() {
	case tensor.Float32:
		fillMask(mask.AsFloat32(), input.AsFloat32())
	case tensor.Float64:
		fillMask(mask.AsFloat64(), input.AsFloat64())
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", input.DType()))
	}
	return mask
}

func fillMask[T tensor.Float](mask, input []T) {
	for i, v := range input {
		if v > 0 {
			mask[i] = 1
		}
	}
}
