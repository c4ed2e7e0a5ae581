package tensor

// Backend defines the interface that compute backends implement.
// Backends perform the actual arithmetic; Tensor only routes calls.
//
// Implementations:
//   - cpu.CPUBackend: pure Go with gonum BLAS for matrix products
//   - autodiff.AutodiffBackend: decorator recording operations for backprop
//
// Backends panic on malformed operands. Callers that accept user input
// (density.DensityMatrixMLP) validate shapes before dispatching.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by a scalar of the tensor's dtype.
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// MatMul multiplies 2D matrices: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul multiplies 3D stacks: [B, M, K] @ [B, K, N] -> [B, M, N].
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// ReLU computes max(0, x) element-wise.
	ReLU(x *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor                           // total sum, scalar result
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along dimension

	// Triangular and diagonal operations on [B, D, D] stacks.
	Diagonal(x *RawTensor) *RawTensor          // [B, D, D] -> [B, D]
	DiagEmbed(x *RawTensor) *RawTensor         // [B, D] -> [B, D, D], zero off-diagonal
	FillTril(x *RawTensor, dim int) *RawTensor // [B, D(D+1)/2] -> [B, D, D]
	TrilGather(x *RawTensor) *RawTensor        // [B, D, D] -> [B, D(D+1)/2]

	// Metadata.
	Name() string
	Device() Device
}

// TrilIndex enumerates the lower triangle of a dim x dim matrix in row-major
// order: (0,0), (1,0), (1,1), (2,0), ... The k-th pair receives the k-th raw
// parameter. Every backend fills and gathers in exactly this order.
func TrilIndex(dim int) [][2]int {
	idx := make([][2]int, 0, dim*(dim+1)/2)
	for row := 0; row < dim; row++ {
		for col := 0; col <= row; col++ {
			idx = append(idx, [2]int{row, col})
		}
	}
	return idx
}

// TrilSize returns the number of entries in the lower triangle of a
// dim x dim matrix, diagonal included.
func TrilSize(dim int) int {
	return dim * (dim + 1) / 2
}
