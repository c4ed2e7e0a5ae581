package nn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	model := nn.NewSequential[float64, Backend](
//	    nn.NewLinear[float64](4, 128, backend, rng),
//	    nn.NewReLU[float64, Backend](),
//	    nn.NewLinear[float64](128, 3, backend, rng),
//	)
//
//	output := model.Forward(input)
type Sequential[T tensor.Float, B tensor.Backend] struct {
	modules []Module[T, B]
}

// NewSequential creates a new Sequential container.
func NewSequential[T tensor.Float, B tensor.Backend](modules ...Module[T, B]) *Sequential[T, B] {
	return &Sequential[T, B]{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential[T, B]) Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential[T, B]) Parameters() []*Parameter[T, B] {
	var params []*Parameter[T, B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential[T, B]) Add(module Module[T, B]) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential[T, B]) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential[T, B]) Module(index int) Module[T, B] {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// StateDict returns a map of parameter names to raw tensors.
//
// Parameters are prefixed with their module index ("0.weight", "0.bias",
// "2.weight", ...) to avoid name collisions.
func (s *Sequential[T, B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, module := range s.modules {
		for name, raw := range module.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// Keys returns the sorted state dict keys.
func (s *Sequential[T, B]) Keys() []string {
	sd := s.StateDict()
	keys := make([]string, 0, len(sd))
	for k := range sd {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadStateDict loads parameters from an index-prefixed state dictionary.
//
// Every module that owns parameters must find them; keys that belong to no
// module are rejected.
func (s *Sequential[T, B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	perModule := make([]map[string]*tensor.RawTensor, len(s.modules))
	for i := range perModule {
		perModule[i] = make(map[string]*tensor.RawTensor)
	}

	for key, raw := range stateDict {
		idx, name, ok := strings.Cut(key, ".")
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnexpectedParameter, key)
		}
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 || i >= len(s.modules) {
			return fmt.Errorf("%w: %q", ErrUnexpectedParameter, key)
		}
		perModule[i][name] = raw
	}

	for i, module := range s.modules {
		if len(module.Parameters()) == 0 && len(perModule[i]) == 0 {
			continue
		}
		if err := module.LoadStateDict(perModule[i]); err != nil {
			return fmt.Errorf("failed to load module %d: %w", i, err)
		}
	}

	return nil
}
