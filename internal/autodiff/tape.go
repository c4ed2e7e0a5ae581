package autodiff

import (
	"sync"

	"github.com/born-ml/qdensity/internal/autodiff/ops"
	"github.com/born-ml/qdensity/internal/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode differentiation.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... perform operations ...
//	gradients := tape.Backward(outputGrad, backend)
type GradientTape struct {
	mu         sync.Mutex
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 32),
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recording
}

// Record appends an operation if the tape is recording.
func (t *GradientTape) Record(op ops.Operation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear removes all recorded operations. Recording state is preserved.
func (t *GradientTape) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.operations)
}

// Backward walks the tape in reverse, seeding the last operation's output
// with outputGrad, and accumulates gradients for every tensor that
// contributed to it.
//
// Returns a map from RawTensor to its accumulated gradient. Recording is
// suspended for the duration so gradient arithmetic is not itself recorded.
func (t *GradientTape) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	t.mu.Lock()
	recorded := append([]ops.Operation(nil), t.operations...)
	wasRecording := t.recording
	t.recording = false
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.recording = wasRecording
		t.mu.Unlock()
	}()

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(recorded) == 0 {
		return grads
	}

	grads[recorded[len(recorded)-1].Output()] = outputGrad

	for i := len(recorded) - 1; i >= 0; i-- {
		op := recorded[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(outGrad, backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}

	return grads
}
