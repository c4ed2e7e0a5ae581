package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/qdensity/internal/parallel"
	"github.com/born-ml/qdensity/internal/tensor"
)

func raw32(t *testing.T, shape tensor.Shape, data ...float32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func raw64(t *testing.T, shape tensor.Shape, data ...float64) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat64(), data)
	return r
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Elementwise(t *testing.T) {
	backend := New()

	tests := []struct {
		name string
		fn   func(a, b *tensor.RawTensor) *tensor.RawTensor
		want []float64
	}{
		{"add", backend.Add, []float64{11, 13, 15, 17}},
		{"sub", backend.Sub, []float64{-9, -9, -9, -9}},
		{"mul", backend.Mul, []float64{10, 22, 36, 52}},
		{"div", backend.Div, []float64{0.1, 2.0 / 11, 0.25, 4.0 / 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := raw64(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
			b := raw64(t, tensor.Shape{2, 2}, 10, 11, 12, 13)
			got := tt.fn(a, b)
			assert.Equal(t, tensor.Shape{2, 2}, got.Shape())
			assert.InDeltaSlice(t, tt.want, got.AsFloat64(), 1e-12)
			// Operands are never modified.
			assert.Equal(t, []float64{1, 2, 3, 4}, a.AsFloat64())
		})
	}
}

func TestCPUBackend_DivBroadcastPerMatrix(t *testing.T) {
	backend := New()

	m := raw32(t, tensor.Shape{2, 2, 2},
		2, 4, 6, 8,
		1, 1, 1, 1,
	)
	d := raw32(t, tensor.Shape{2, 1, 1}, 2, 4)

	got := backend.Div(m, d)
	assert.Equal(t, tensor.Shape{2, 2, 2}, got.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 0.25, 0.25, 0.25, 0.25}, got.AsFloat32())
}

func TestCPUBackend_AddBiasBroadcast(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	bias := raw32(t, tensor.Shape{1, 3}, 10, 20, 30)

	got := backend.Add(x, bias)
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, got.AsFloat32())
}

func TestCPUBackend_IncompatibleBroadcastPanics(t *testing.T) {
	backend := New()
	a := raw32(t, tensor.Shape{3, 4})
	b := raw32(t, tensor.Shape{3, 5})
	assert.Panics(t, func() { backend.Add(a, b) })
}

func TestCPUBackend_DTypeMismatchPanics(t *testing.T) {
	backend := New()
	a := raw32(t, tensor.Shape{2})
	b := raw64(t, tensor.Shape{2})
	assert.Panics(t, func() { backend.Mul(a, b) })
}

func TestCPUBackend_MulScalarAndReLU(t *testing.T) {
	backend := New()
	x := raw64(t, tensor.Shape{4}, -2, -0.5, 0, 3)

	assert.Equal(t, []float64{-4, -1, 0, 6}, backend.MulScalar(x, 2).AsFloat64())
	assert.Equal(t, []float64{0, 0, 0, 3}, backend.ReLU(x).AsFloat64())
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()

	t.Run("float32", func(t *testing.T) {
		a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		b := raw32(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)
		got := backend.MatMul(a, b)
		assert.Equal(t, tensor.Shape{2, 2}, got.Shape())
		assert.Equal(t, []float32{58, 64, 139, 154}, got.AsFloat32())
	})

	t.Run("float64", func(t *testing.T) {
		a := raw64(t, tensor.Shape{1, 2}, 0.5, -1)
		b := raw64(t, tensor.Shape{2, 3}, 2, 4, 6, 1, 1, 1)
		got := backend.MatMul(a, b)
		assert.Equal(t, []float64{0, 1, 2}, got.AsFloat64())
	})

	t.Run("mismatch", func(t *testing.T) {
		a := raw32(t, tensor.Shape{2, 3})
		b := raw32(t, tensor.Shape{2, 3})
		assert.Panics(t, func() { backend.MatMul(a, b) })
	})
}

func TestCPUBackend_BatchMatMul(t *testing.T) {
	a := raw64(t, tensor.Shape{2, 2, 2},
		1, 2, 3, 4,
		0, 1, 1, 0,
	)
	b := raw64(t, tensor.Shape{2, 2, 2},
		5, 6, 7, 8,
		2, 3, 4, 5,
	)
	want := []float64{
		19, 22, 43, 50,
		4, 5, 2, 3,
	}

	for name, cfg := range map[string]parallel.Config{
		"sequential": parallel.Sequential(),
		"parallel":   {Enabled: true, NumWorkers: 2, MinChunkSize: 1},
	} {
		t.Run(name, func(t *testing.T) {
			got := NewWithConfig(cfg).BatchMatMul(a, b)
			assert.Equal(t, tensor.Shape{2, 2, 2}, got.Shape())
			assert.Equal(t, want, got.AsFloat64())
		})
	}
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := New()

	t.Run("2D", func(t *testing.T) {
		x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		got := backend.Transpose(x)
		assert.Equal(t, tensor.Shape{3, 2}, got.Shape())
		assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, got.AsFloat32())
	})

	t.Run("batched matrix axes", func(t *testing.T) {
		x := raw32(t, tensor.Shape{2, 2, 2},
			1, 2, 3, 4,
			5, 6, 7, 8,
		)
		got := backend.Transpose(x, 0, 2, 1)
		assert.Equal(t, []float32{1, 3, 2, 4, 5, 7, 6, 8}, got.AsFloat32())
	})

	t.Run("duplicate axis", func(t *testing.T) {
		x := raw32(t, tensor.Shape{2, 2})
		assert.Panics(t, func() { backend.Transpose(x, 0, 0) })
	})
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := New()
	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	got := backend.Reshape(x, tensor.Shape{3, 1, 2})
	assert.Equal(t, tensor.Shape{3, 1, 2}, got.Shape())
	assert.Equal(t, x.AsFloat32(), got.AsFloat32())

	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4, 2}) })
}

func TestCPUBackend_SumDim(t *testing.T) {
	backend := New()
	x := raw64(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	rows := backend.SumDim(x, -1, false)
	assert.Equal(t, tensor.Shape{2}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.AsFloat64())

	cols := backend.SumDim(x, 0, true)
	assert.Equal(t, tensor.Shape{1, 3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.AsFloat64())

	total := backend.Sum(x)
	assert.Equal(t, 0, len(total.Shape()))
	assert.Equal(t, 21.0, total.AsFloat64()[0])
}

func TestCPUBackend_FillTril(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{2, 6},
		1, 2, 3, 4, 5, 6,
		-1, -2, -3, -4, -5, -6,
	)
	got := backend.FillTril(x, 3)

	assert.Equal(t, tensor.Shape{2, 3, 3}, got.Shape())
	assert.Equal(t, []float32{
		1, 0, 0,
		2, 3, 0,
		4, 5, 6,

		-1, 0, 0,
		-2, -3, 0,
		-4, -5, -6,
	}, got.AsFloat32())

	back := backend.TrilGather(got)
	assert.Equal(t, x.AsFloat32(), back.AsFloat32())
}

func TestCPUBackend_FillTrilWrongLength(t *testing.T) {
	backend := New()
	x := raw32(t, tensor.Shape{1, 4})
	assert.Panics(t, func() { backend.FillTril(x, 2) })
}

func TestCPUBackend_DiagonalAndEmbed(t *testing.T) {
	backend := New()
	x := raw64(t, tensor.Shape{2, 2, 2},
		1, 2, 3, 4,
		5, 6, 7, 8,
	)

	diag := backend.Diagonal(x)
	assert.Equal(t, tensor.Shape{2, 2}, diag.Shape())
	assert.Equal(t, []float64{1, 4, 5, 8}, diag.AsFloat64())

	embedded := backend.DiagEmbed(diag)
	assert.Equal(t, []float64{1, 0, 0, 4, 5, 0, 0, 8}, embedded.AsFloat64())

	assert.Panics(t, func() { backend.Diagonal(raw64(t, tensor.Shape{1, 2, 3})) })
}

func BenchmarkBatchMatMul(b *testing.B) {
	backend := New()
	x, _ := tensor.NewRaw(tensor.Shape{256, 8, 8}, tensor.Float32, tensor.CPU)
	y, _ := tensor.NewRaw(tensor.Shape{256, 8, 8}, tensor.Float32, tensor.CPU)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.BatchMatMul(x, y)
	}
}
