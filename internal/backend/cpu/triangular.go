package cpu

import (
	"fmt"

	"github.com/born-ml/qdensity/internal/tensor"
)

// FillTril scatters each row of x [B, D(D+1)/2] into the lower triangle of a
// zero D x D matrix, producing [B, D, D]. Entries are assigned in
// tensor.TrilIndex order; the strict upper triangle stays zero.
func (cpu *CPUBackend) FillTril(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("filltril: expected 2D input [batch, params], got shape %v", shape))
	}
	if dim <= 0 {
		panic(fmt.Sprintf("filltril: invalid matrix dimension %d", dim))
	}
	if want := tensor.TrilSize(dim); shape[1] != want {
		panic(fmt.Sprintf("filltril: %d parameters cannot fill a %dx%d lower triangle (need %d)", shape[1], dim, dim, want))
	}

	result := cpu.alloc("filltril", tensor.Shape{shape[0], dim, dim}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		scatterTril(result.AsFloat32(), x.AsFloat32(), shape[0], dim)
	case tensor.Float64:
		scatterTril(result.AsFloat64(), x.AsFloat64(), shape[0], dim)
	default:
		panic(fmt.Sprintf("filltril: unsupported dtype %s", x.DType()))
	}
	return result
}

// TrilGather is the adjoint of FillTril: it reads the lower triangle of each
// matrix in a [B, D, D] stack back into [B, D(D+1)/2].
func (cpu *CPUBackend) TrilGather(x *tensor.RawTensor) *tensor.RawTensor {
	batch, dim := squareStack("trilgather", x)

	result := cpu.alloc("trilgather", tensor.Shape{batch, tensor.TrilSize(dim)}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		gatherTril(result.AsFloat32(), x.AsFloat32(), batch, dim)
	case tensor.Float64:
		gatherTril(result.AsFloat64(), x.AsFloat64(), batch, dim)
	default:
		panic(fmt.Sprintf("trilgather: unsupported dtype %s", x.DType()))
	}
	return result
}

// Diagonal extracts the main diagonal of each matrix: [B, D, D] -> [B, D].
func (cpu *CPUBackend) Diagonal(x *tensor.RawTensor) *tensor.RawTensor {
	batch, dim := squareStack("diagonal", x)

	result := cpu.alloc("diagonal", tensor.Shape{batch, dim}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		extractDiag(result.AsFloat32(), x.AsFloat32(), batch, dim)
	case tensor.Float64:
		extractDiag(result.AsFloat64(), x.AsFloat64(), batch, dim)
	default:
		panic(fmt.Sprintf("diagonal: unsupported dtype %s", x.DType()))
	}
	return result
}

// DiagEmbed is the adjoint of Diagonal: [B, D] -> [B, D, D] with the input on
// the main diagonal and zeros elsewhere.
func (cpu *CPUBackend) DiagEmbed(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("diagembed: expected 2D input [batch, dim], got shape %v", shape))
	}
	batch, dim := shape[0], shape[1]

	result := cpu.alloc("diagembed", tensor.Shape{batch, dim, dim}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		embedDiag(result.AsFloat32(), x.AsFloat32(), batch, dim)
	case tensor.Float64:
		embedDiag(result.AsFloat64(), x.AsFloat64(), batch, dim)
	default:
		panic(fmt.Sprintf("diagembed: unsupported dtype %s", x.DType()))
	}
	return result
}

func squareStack(op string, x *tensor.RawTensor) (batch, dim int) {
	shape := x.Shape()
	if len(shape) != 3 || shape[1] != shape[2] {
		panic(fmt.Sprintf("%s: expected [batch, dim, dim], got shape %v", op, shape))
	}
	return shape[0], shape[1]
}

func scatterTril[T tensor.Float](dst, src []T, batch, dim int) {
	n := tensor.TrilSize(dim)
	for b := 0; b < batch; b++ {
		k := b * n
		base := b * dim * dim
		for row := 0; row < dim; row++ {
			for col := 0; col <= row; col++ {
				dst[base+row*dim+col] = src[k]
				k++
			}
		}
	}
}

func gatherTril[T tensor.Float](dst, src []T, batch, dim int) {
	n := tensor.TrilSize(dim)
	for b := 0; b < batch; b++ {
		k := b * n
		base := b * dim * dim
		for row := 0; row < dim; row++ {
			for col := 0; col <= row; col++ {
				dst[k] = src[base+row*dim+col]
				k++
			}
		}
	}
}

func extractDiag[T tensor.Float](dst, src []T, batch, dim int) {
	for b := 0; b < batch; b++ {
		for i := 0; i < dim; i++ {
			dst[b*dim+i] = src[b*dim*dim+i*dim+i]
		}
	}
}

func embedDiag[T tensor.Float](dst, src []T, batch, dim int) {
	for b := 0; b < batch; b++ {
		for i := 0; i < dim; i++ {
			dst[b*dim*dim+i*dim+i] = src[b*dim+i]
		}
	}
}
