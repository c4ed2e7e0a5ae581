package tensor

import "fmt"

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	a := tensor.Ones[float32](Shape{3, 1}, backend)
//	b := tensor.Ones[float32](Shape{3, 5}, backend)
//	c := a.Add(b) // Shape: [3, 5]
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
//
// Example:
//
//	m := ...                  // [batch, d, d]
//	tr := ...                 // [batch, 1, 1]
//	rho := m.Div(tr)          // every matrix divided by its own trace
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Div(t.raw, other.raw), t.backend)
}

// MulScalar multiplies every element by s.
func (t *Tensor[T, B]) MulScalar(s T) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, float64(s)), t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// BatchMatMul multiplies matching stacks of matrices:
// (B, M, K) @ (B, K, N) → (B, M, N). Each batch element is independent.
func (t *Tensor[T, B]) BatchMatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.BatchMatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but different shape.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the tensor's dimensions.
// With no axes, all dimensions are reversed.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T is a shortcut for 2D transpose.
// Panics if the tensor is not 2D.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return t.Transpose(1, 0)
}

// ConjTranspose returns the conjugate transpose over the last two axes,
// leaving leading (batch) axes in place.
//
// Elements are real, so conjugation is the identity and only the matrix axes
// are swapped.
func (t *Tensor[T, B]) ConjTranspose() *Tensor[T, B] {
	ndim := len(t.Shape())
	if ndim < 2 {
		panic(fmt.Sprintf("ConjTranspose: need at least 2 dimensions, got shape %v", t.Shape()))
	}
	axes := make([]int, ndim)
	for i := range axes {
		axes[i] = i
	}
	axes[ndim-2], axes[ndim-1] = ndim-1, ndim-2
	return t.Transpose(axes...)
}

// H is an alias for ConjTranspose.
func (t *Tensor[T, B]) H() *Tensor[T, B] {
	return t.ConjTranspose()
}

// ReLU applies max(0, x) element-wise.
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return New[T, B](t.backend.ReLU(t.raw), t.backend)
}

// Sum reduces all elements to a scalar tensor.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return New[T, B](t.backend.Sum(t.raw), t.backend)
}

// SumDim sums along dim (negative values count from the end).
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}

// Diagonal extracts the main diagonal of each matrix in a [B, D, D] stack,
// producing [B, D].
func (t *Tensor[T, B]) Diagonal() *Tensor[T, B] {
	return New[T, B](t.backend.Diagonal(t.raw), t.backend)
}

// Trace returns the per-matrix trace of a [B, D, D] stack as [B].
func (t *Tensor[T, B]) Trace() *Tensor[T, B] {
	return t.Diagonal().SumDim(-1, false)
}

// FillTril scatters a [B, D(D+1)/2] batch of vectors into the lower
// triangles of a zero [B, D, D] stack, in TrilIndex order.
//
// Example:
//
//	raw := ... // [1, 3] = [[1, 0, 1]]
//	l := raw.FillTril(2) // [[[1, 0], [0, 1]]]
func (t *Tensor[T, B]) FillTril(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.FillTril(t.raw, dim), t.backend)
}
