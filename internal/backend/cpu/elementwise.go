package cpu

import (
	"fmt"

	"github.com/born-ml/qdensity/internal/tensor"
)

type binaryKind int

const (
	opAdd binaryKind = iota
	opSub
	opMul
	opDiv
)

func (k binaryKind) String() string {
	switch k {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	case opMul:
		return "mul"
	case opDiv:
		return "div"
	default:
		return "unknown"
	}
}

func binaryFunc[T tensor.Float](k binaryKind) func(x, y T) T {
	switch k {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	case opMul:
		return func(x, y T) T { return x * y }
	case opDiv:
		return func(x, y T) T { return x / y }
	default:
		panic(fmt.Sprintf("unknown binary op %d", k))
	}
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opAdd, a, b)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opSub, a, b)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opMul, a, b)
}

// Div performs element-wise division with broadcasting.
// Division by zero follows IEEE 754 (Inf or NaN); callers that need a
// different policy check the divisor first.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opDiv, a, b)
}

func (cpu *CPUBackend) binary(k binaryKind, a, b *tensor.RawTensor) *tensor.RawTensor {
	requireSameDType(k.String(), a, b)

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", k, err))
	}
	result := cpu.alloc(k.String(), outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		applyBinary(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(),
			a.Shape(), b.Shape(), outShape, needsBroadcast, binaryFunc[float32](k))
	case tensor.Float64:
		applyBinary(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(),
			a.Shape(), b.Shape(), outShape, needsBroadcast, binaryFunc[float64](k))
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", k, a.DType()))
	}

	return result
}

func applyBinary[T tensor.Float](out, a, b []T, aShape, bShape, outShape tensor.Shape, broadcast bool, fn func(x, y T) T) {
	if !broadcast {
		for i := range out {
			out[i] = fn(a[i], b[i])
		}
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)
	for i := range out {
		out[i] = fn(a[computeFlatIndex(i, outStrides, aStrides)], b[computeFlatIndex(i, outStrides, bStrides)])
	}
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := cpu.alloc("mulscalar", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		scaleInto(result.AsFloat32(), x.AsFloat32(), float32(scalar))
	case tensor.Float64:
		scaleInto(result.AsFloat64(), x.AsFloat64(), scalar)
	default:
		panic(fmt.Sprintf("mulscalar: unsupported dtype %s", x.DType()))
	}
	return result
}

func scaleInto[T tensor.Float](out, x []T, s T) {
	for i, v := range x {
		out[i] = v * s
	}
}

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.alloc("relu", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		reluInto(result.AsFloat32(), x.AsFloat32())
	case tensor.Float64:
		reluInto(result.AsFloat64(), x.AsFloat64())
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}
	return result
}

func reluInto[T tensor.Float](out, x []T) {
	for i, v := range x {
		if v > 0 {
			out[i] = v
		} else {
			out[i] = 0
		}
	}
}
