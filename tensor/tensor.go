// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Float is the constraint for tensor element types: float32 or float64.
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// DataTypeOf returns the DataType tag for T.
func DataTypeOf[T Float]() DataType {
	return tensor.DataTypeOf[T]()
}

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the low-level, untyped tensor representation: a byte buffer
// with shape, dtype and device.
//
// Most users should use the high-level Tensor[T, B] type instead.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()
//	clone := raw.Clone() // deep copy
type RawTensor = tensor.RawTensor

// Tensor is a generic type-safe tensor.
//
// T is the element type (float32 or float64).
// B is the backend implementation.
//
// Every operation returns a new tensor; operands are never modified.
// Wrapping the backend with autodiff.New records operations for
// backpropagation.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
type Tensor[T Float, B Backend] = tensor.Tensor[T, B]

// Creation functions

// Zeros creates a tensor filled with zeros.
func Zeros[T Float, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T Float, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Full[float32](tensor.Shape{2, 3}, 3.14, backend)
func Full[T Float, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn creates a tensor with values drawn from N(0, 1) using rng.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	x := tensor.Randn[float32](tensor.Shape{2, 3}, backend, rng)
func Randn[T Float, B Backend](shape Shape, b B, rng *rand.Rand) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, b, rng)
}

// Uniform creates a tensor with values drawn from U(low, high) using rng.
func Uniform[T Float, B Backend](shape Shape, low, high float64, b B, rng *rand.Rand) *Tensor[T, B] {
	return tensor.Uniform[T, B](shape, low, high, b, rng)
}

// Eye creates a 2D identity matrix.
func Eye[T Float, B Backend](n int, b B) *Tensor[T, B] {
	return tensor.Eye[T, B](n, b)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	backend := cpu.New()
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
func FromSlice[T Float, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New creates a tensor from a raw tensor.
//
// This is a low-level function. Most users should use creation functions like
// Zeros, Ones, or FromSlice instead.
func New[T Float, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw creates a new zeroed raw tensor with the given shape, dtype, and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Utility functions

// BroadcastShapes computes the broadcast shape for two shapes following NumPy broadcasting rules.
// Returns the resulting shape and a flag indicating if either operand needs broadcasting.
//
// Example:
//
//	resultShape, needsBroadcast, err := tensor.BroadcastShapes(
//	    tensor.Shape{3, 1},
//	    tensor.Shape{3, 4},
//	)
//	// resultShape = [3, 4], needsBroadcast = true
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// TrilIndex returns the (row, col) pairs of a dim×dim lower triangle in
// row-major order, the order FillTril consumes a parameter vector.
func TrilIndex(dim int) [][2]int {
	return tensor.TrilIndex(dim)
}

// TrilSize returns dim(dim+1)/2.
func TrilSize(dim int) int {
	return tensor.TrilSize(dim)
}
