package autodiff

import (
	"fmt"

	"github.com/born-ml/qdensity/internal/tensor"
)

// BackwardCapable is implemented by backends that own a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t with respect to everything recorded on
// the backend's tape, seeding dt with ones.
//
// t must be the output of the last recorded operation. For a scalar loss
// this is the usual backpropagation; for a tensor output it yields the
// gradient of the sum of its elements.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	rho, _ := model.Forward(x)
//	loss := rho.Sum()
//	grads := autodiff.Backward(loss, backend)
//	gw := grads[model.Parameters()[0].Tensor().Raw()]
func Backward[T tensor.Float, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	outputGrad, err := tensor.NewRaw(t.Shape(), t.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}
	seed := tensor.New[T, B](outputGrad, backend).Data()
	for i := range seed {
		seed[i] = 1
	}

	return tape.Backward(outputGrad, backend)
}
