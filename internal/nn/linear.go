package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(1))
//	layer := nn.NewLinear[float64](4, 128, backend, rng)
//	output := layer.Forward(input) // [batch, 4] -> [batch, 128]
type Linear[T tensor.Float, B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[T, B] // [out_features, in_features]
	bias        *Parameter[T, B] // [out_features]
}

// NewLinear creates a new Linear layer with weights drawn from rng.
func NewLinear[T tensor.Float, B tensor.Backend](inFeatures, outFeatures int, backend B, rng *rand.Rand) *Linear[T, B] {
	weightTensor := Xavier[T](inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend, rng)
	biasTensor := Zeros[T](tensor.Shape{outFeatures}, backend)

	return &Linear[T, B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weightTensor),
		bias:        NewParameter("bias", biasTensor),
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear[T, B]) Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	output := input.MatMul(l.weight.Tensor().T())

	// Bias [out] is reshaped to [1, out] to broadcast over the batch.
	b := l.bias.Tensor().Reshape(1, l.outFeatures)
	return output.Add(b)
}

// Parameters returns [weight, bias].
func (l *Linear[T, B]) Parameters() []*Parameter[T, B] {
	return []*Parameter[T, B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[T, B]) Weight() *Parameter[T, B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[T, B]) Bias() *Parameter[T, B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[T, B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[T, B]) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear[T, B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.weight.Tensor().Raw(),
		"bias":   l.bias.Tensor().Raw(),
	}
}

// LoadStateDict copies weight and bias from a state dictionary.
// Shapes and dtype must match exactly; nothing is modified on error.
func (l *Linear[T, B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for name := range stateDict {
		if name != "weight" && name != "bias" {
			return fmt.Errorf("%w: %s", ErrUnexpectedParameter, name)
		}
	}

	weightRaw, err := lookupParam(stateDict, "weight", tensor.Shape{l.outFeatures, l.inFeatures}, l.weight.Tensor().DType())
	if err != nil {
		return err
	}
	biasRaw, err := lookupParam(stateDict, "bias", tensor.Shape{l.outFeatures}, l.bias.Tensor().DType())
	if err != nil {
		return err
	}

	copy(l.weight.Tensor().Raw().Data(), weightRaw.Data())
	copy(l.bias.Tensor().Raw().Data(), biasRaw.Data())
	return nil
}

func lookupParam(stateDict map[string]*tensor.RawTensor, name string, shape tensor.Shape, dtype tensor.DataType) (*tensor.RawTensor, error) {
	raw, ok := stateDict[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	if !raw.Shape().Equal(shape) {
		return nil, fmt.Errorf("%w: %s expected %v, got %v", ErrParameterShape, name, shape, raw.Shape())
	}
	if raw.DType() != dtype {
		return nil, fmt.Errorf("%w: %s expected %s, got %s", ErrParameterDType, name, dtype, raw.DType())
	}
	return raw, nil
}
