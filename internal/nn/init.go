package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// The generator is explicit; the same seed gives the same weights.
func Xavier[T tensor.Float, B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B, rng *rand.Rand) *tensor.Tensor[T, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform[T](shape, -bound, bound, backend, rng)
}

// Zeros creates a zero-filled tensor, used for bias initialization.
func Zeros[T tensor.Float, B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[T, B] {
	return tensor.Zeros[T](shape, backend)
}
