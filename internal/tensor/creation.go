package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T Float, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T Float, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float64](Shape{3, 3}, 0.5, backend)
func Full[T Float, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, 1).
//
// The generator is explicit so that weight initialization and test inputs
// are reproducible from a seed.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	x := tensor.Randn[float32](Shape{8, 4}, backend, rng)
func Randn[T Float, B Backend](shape Shape, b B, rng *rand.Rand) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(rng.NormFloat64())
	}
	return t
}

// Uniform creates a tensor with values drawn from U(low, high).
func Uniform[T Float, B Backend](shape Shape, low, high float64, b B, rng *rand.Rand) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	span := high - low
	for i := range data {
		data[i] = T(low + rng.Float64()*span)
	}
	return t
}

// Eye creates a 2D identity matrix of size n x n.
func Eye[T Float, B Backend](n int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, n}, b)
	data := t.Data()
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	return t
}
