package density_test

import (
	"bytes"
	"math"
	"math/cmplx"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/qdensity/internal/autodiff"
	"github.com/born-ml/qdensity/internal/backend/cpu"
	"github.com/born-ml/qdensity/internal/density"
	"github.com/born-ml/qdensity/internal/tensor"
)

func newModel[T tensor.Float](t *testing.T, cfg density.Config) *density.DensityMatrixMLP[T, *cpu.CPUBackend] {
	t.Helper()
	m, err := density.New[T](cfg, cpu.New())
	require.NoError(t, err)
	return m
}

func randInput[T tensor.Float](batch, width int, seed int64) *tensor.Tensor[T, *cpu.CPUBackend] {
	return tensor.Randn[T](tensor.Shape{batch, width}, cpu.New(), rand.New(rand.NewSource(seed)))
}

func rawBatch(t *testing.T, width int, data ...float64) *tensor.Tensor[float64, *cpu.CPUBackend] {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape{len(data) / width, width}, cpu.New())
	require.NoError(t, err)
	return x
}

// setRaw makes the model emit raw regardless of input: zero output weights
// and bias = raw.
func setRaw[T tensor.Float](m *density.DensityMatrixMLP[T, *cpu.CPUBackend], raw ...T) {
	w := m.Output().Weight().Tensor().Data()
	for i := range w {
		w[i] = 0
	}
	copy(m.Output().Bias().Tensor().Data(), raw)
}

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name     string
		inputDim int
		dim      int
	}{
		{"zero input_dim", 0, 2},
		{"negative input_dim", -3, 2},
		{"zero dim", 4, 0},
		{"negative dim", 4, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := density.New[float64](density.DefaultConfig(tt.inputDim, tt.dim), cpu.New())
			require.ErrorIs(t, err, density.ErrInvalidDimension)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, density.DefaultConfig(4, 2).Validate())

	cfg := density.DefaultConfig(4, 2)
	cfg.HiddenDim = 0
	assert.ErrorIs(t, cfg.Validate(), density.ErrInvalidDimension)

	cfg = density.DefaultConfig(4, 2)
	cfg.Epsilon = -1
	assert.ErrorIs(t, cfg.Validate(), density.ErrInvalidConfig)

	cfg = density.DefaultConfig(4, 2)
	cfg.TracePolicy = density.TraceClamp
	cfg.Epsilon = 0
	assert.ErrorIs(t, cfg.Validate(), density.ErrInvalidConfig)

	cfg = density.DefaultConfig(4, 2)
	cfg.TracePolicy = density.TracePolicy(9)
	assert.ErrorIs(t, cfg.Validate(), density.ErrInvalidConfig)
	assert.Equal(t, "TracePolicy(9)", cfg.TracePolicy.String())
	assert.Equal(t, "strict", density.TraceStrict.String())
}

func TestNew_DeviceMismatch(t *testing.T) {
	cfg := density.DefaultConfig(4, 2)
	cfg.Device = tensor.CUDA
	_, err := density.New[float32](cfg, cpu.New())
	require.ErrorIs(t, err, density.ErrDeviceMismatch)
}

func TestNew_Architecture(t *testing.T) {
	m := newModel[float64](t, density.DefaultConfig(4, 3))

	assert.Equal(t, 4, m.InputDim())
	assert.Equal(t, 3, m.Dim())
	assert.Equal(t, 6, density.NumParams(3))
	assert.Equal(t, tensor.Shape{128, 4}, m.Hidden().Weight().Tensor().Shape())
	assert.Equal(t, tensor.Shape{6, 128}, m.Output().Weight().Tensor().Shape())
	assert.Equal(t, 4*128+128+128*6+6, m.NumParameters())
	assert.Len(t, m.StateDict(), 4)
	assert.Contains(t, m.StateDict(), "2.bias")
}

func TestTrilIndices(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 0}}, density.TrilIndices(1))
	assert.Equal(t, [][2]int{{0, 0}, {1, 0}, {1, 1}, {2, 0}, {2, 1}, {2, 2}}, density.TrilIndices(3))
	for dim := 1; dim <= 6; dim++ {
		assert.Len(t, density.TrilIndices(dim), density.NumParams(dim))
	}
}

func TestForward_ValidDensityMatrices(t *testing.T) {
	for dim := 1; dim <= 5; dim++ {
		cfg := density.DefaultConfig(6, dim)
		cfg.Seed = int64(dim)

		t.Run("float64", func(t *testing.T) {
			m := newModel[float64](t, cfg)
			rho, err := m.Forward(randInput[float64](8, 6, 11))
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{8, dim, dim}, rho.Shape())
			assert.NoError(t, density.Check(rho, 1e-6))
		})

		t.Run("float32", func(t *testing.T) {
			m := newModel[float32](t, cfg)
			rho, err := m.Forward(randInput[float32](8, 6, 11))
			require.NoError(t, err)
			assert.Equal(t, tensor.Float32, rho.DType())
			assert.NoError(t, density.Check(rho, 1e-5))
		})
	}
}

func TestForward_Deterministic(t *testing.T) {
	cfg := density.DefaultConfig(4, 3)
	a := newModel[float64](t, cfg)
	b := newModel[float64](t, cfg)
	x := randInput[float64](5, 4, 3)

	r1, err := a.Forward(x)
	require.NoError(t, err)
	r2, err := a.Forward(x)
	require.NoError(t, err)
	r3, err := b.Forward(x)
	require.NoError(t, err)

	assert.Equal(t, r1.Data(), r2.Data())
	assert.Equal(t, r1.Data(), r3.Data(), "same seed must give same weights")
}

func TestForward_BatchIndependence(t *testing.T) {
	const batch, inputDim, dim = 6, 5, 3
	m := newModel[float64](t, density.DefaultConfig(inputDim, dim))
	x := randInput[float64](batch, inputDim, 21)

	full, err := m.Forward(x)
	require.NoError(t, err)

	per := dim * dim
	for i := 0; i < batch; i++ {
		row, err := tensor.FromSlice(x.Data()[i*inputDim:(i+1)*inputDim], tensor.Shape{1, inputDim}, cpu.New())
		require.NoError(t, err)

		single, err := m.Forward(row)
		require.NoError(t, err)
		assert.InDeltaSlice(t, full.Data()[i*per:(i+1)*per], single.Data(), 1e-12, "batch element %d", i)
	}
}

func TestForward_ShapeMismatch(t *testing.T) {
	m := newModel[float64](t, density.DefaultConfig(4, 2))

	tests := []struct {
		name  string
		shape tensor.Shape
	}{
		{"narrow", tensor.Shape{2, 3}},
		{"wide", tensor.Shape{2, 5}},
		{"vector", tensor.Shape{4}},
		{"3D", tensor.Shape{1, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Forward(tensor.Zeros[float64](tt.shape, cpu.New()))
			require.ErrorIs(t, err, density.ErrShapeMismatch)

			var se *density.ShapeError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.shape, se.Actual)
		})
	}
}

func TestForward_ConcreteScenario(t *testing.T) {
	m := newModel[float64](t, density.DefaultConfig(4, 2))
	setRaw(m, 1, 0, 1)

	rho, err := m.Forward(randInput[float64](1, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0, 0, 0.5}, rho.Data())
}

func TestFromRaw_FillOrder(t *testing.T) {
	// L = [[1,0],[2,3]] -> L·Lᵀ = [[1,2],[2,13]], trace 14.
	rho, err := density.FromRaw(rawBatch(t, 3, 1, 2, 3), density.DefaultConfig(1, 2))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.0 / 14, 2.0 / 14, 2.0 / 14, 13.0 / 14}, rho.Data(), 1e-15)
}

func TestFromRaw_DimOne(t *testing.T) {
	cfg := density.DefaultConfig(1, 1)

	rho, err := density.FromRaw(rawBatch(t, 1, 2.5, -0.3, 1e-5, 1e-7, -1e-150), cfg)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, rho.Data())

	small, err := tensor.FromSlice([]float32{1e-7, -3e-15}, tensor.Shape{2, 1}, cpu.New())
	require.NoError(t, err)
	rho32, err := density.FromRaw(small, cfg)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1}, rho32.Data())

	_, err = density.FromRaw(rawBatch(t, 1, 0.7, 0), cfg)
	require.ErrorIs(t, err, density.ErrDegenerateTrace)

	var te *density.TraceError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Index)
	assert.Zero(t, te.Trace)
}

func TestFromRaw_ScaleInvariant(t *testing.T) {
	cfg := density.DefaultConfig(1, 2)

	tiny, err := density.FromRaw(rawBatch(t, 3, 1e-7, 0, 1e-7), cfg)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0, 0, 0.5}, tiny.Data())

	want, err := density.FromRaw(rawBatch(t, 3, 1, 2, 3), cfg)
	require.NoError(t, err)
	got, err := density.FromRaw(rawBatch(t, 3, 1e-9, 2e-9, 3e-9), cfg)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-15)
}

func TestFromRaw_ValidatesConfig(t *testing.T) {
	raw := rawBatch(t, 3, 0, 0, 0)

	tests := []struct {
		name string
		cfg  density.Config
		want error
	}{
		{"clamp without epsilon", density.Config{Dim: 2, TracePolicy: density.TraceClamp}, density.ErrInvalidConfig},
		{"negative epsilon", density.Config{Dim: 2, Epsilon: -1}, density.ErrInvalidConfig},
		{"NaN epsilon", density.Config{Dim: 2, Epsilon: math.NaN()}, density.ErrInvalidConfig},
		{"unknown policy", density.Config{Dim: 2, TracePolicy: density.TracePolicy(7)}, density.ErrInvalidConfig},
		{"zero dim", density.Config{Dim: 0}, density.ErrInvalidDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rho, err := density.FromRaw(raw, tt.cfg)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, rho)
		})
	}
}

func TestFromRaw_TracePolicies(t *testing.T) {
	raw := rawBatch(t, 3,
		0, 0, 0,
		1, 0, 1,
	)

	t.Run("strict", func(t *testing.T) {
		_, err := density.FromRaw(raw, density.DefaultConfig(1, 2))
		require.ErrorIs(t, err, density.ErrDegenerateTrace)
	})

	t.Run("propagate", func(t *testing.T) {
		cfg := density.DefaultConfig(1, 2)
		cfg.TracePolicy = density.TracePropagate
		rho, err := density.FromRaw(raw, cfg)
		require.NoError(t, err)
		for _, v := range rho.Data()[:4] {
			assert.True(t, math.IsNaN(v))
		}
		assert.Equal(t, []float64{0.5, 0, 0, 0.5}, rho.Data()[4:])
	})

	t.Run("clamp", func(t *testing.T) {
		cfg := density.DefaultConfig(1, 2)
		cfg.TracePolicy = density.TraceClamp
		cfg.Epsilon = 1e-8
		rho, err := density.FromRaw(raw, cfg)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0, 0}, rho.Data()[:4])
		assert.Equal(t, []float64{0.5, 0, 0, 0.5}, rho.Data()[4:])
	})

	t.Run("epsilon threshold", func(t *testing.T) {
		cfg := density.DefaultConfig(1, 1)
		cfg.Epsilon = 1e-4
		// trace = 1e-6 <= epsilon
		_, err := density.FromRaw(rawBatch(t, 1, 1e-3), cfg)
		require.ErrorIs(t, err, density.ErrDegenerateTrace)
	})
}

func TestFromRaw_WrongWidth(t *testing.T) {
	_, err := density.FromRaw(rawBatch(t, 4, 1, 0, 1, 0), density.DefaultConfig(1, 2))
	require.ErrorIs(t, err, density.ErrShapeMismatch)

	_, err = density.FromRaw(rawBatch(t, 1, 1), density.Config{Dim: 0})
	require.ErrorIs(t, err, density.ErrInvalidDimension)
}

func TestForward_DegenerateTraceIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := density.DefaultConfig(4, 2)
	cfg.Logger = zerolog.New(&buf)

	m := newModel[float64](t, cfg)
	setRaw(m, 0, 0, 0)

	_, err := m.Forward(randInput[float64](2, 4, 1))
	require.ErrorIs(t, err, density.ErrDegenerateTrace)
	assert.Contains(t, buf.String(), `"message":"degenerate trace"`)
	assert.Contains(t, buf.String(), `"component":"density_mlp"`)
}

func TestForward_ConcurrentCalls(t *testing.T) {
	m := newModel[float64](t, density.DefaultConfig(4, 3))
	x := randInput[float64](4, 4, 8)
	want, err := m.Forward(x)
	require.NoError(t, err)

	var g errgroup.Group
	results := make([][]float64, 8)
	for i := range results {
		g.Go(func() error {
			rho, err := m.Forward(x)
			if err != nil {
				return err
			}
			results[i] = rho.Data()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, r := range results {
		assert.Equal(t, want.Data(), r)
	}
}

func TestForward_GradientsMatchFiniteDifferences(t *testing.T) {
	backend := autodiff.New(cpu.New())
	m, err := density.New[float64](density.DefaultConfig(3, 2), backend)
	require.NoError(t, err)

	x := tensor.Randn[float64](tensor.Shape{2, 3}, backend, rand.New(rand.NewSource(4)))
	w, err := tensor.FromSlice([]float64{
		1, -2, 0.5, 3,
		-1, 0.25, 2, 1,
	}, tensor.Shape{2, 2, 2}, backend)
	require.NoError(t, err)

	loss := func() *tensor.Tensor[float64, *autodiff.AutodiffBackend[*cpu.CPUBackend]] {
		rho, err := m.Forward(x)
		require.NoError(t, err)
		return rho.Mul(w).Sum()
	}

	backend.Tape().StartRecording()
	grads := autodiff.Backward(loss(), backend)
	backend.Tape().StopRecording()
	backend.Tape().Clear()

	bias := m.Output().Bias().Tensor()
	got := grads[bias.Raw()]
	require.NotNil(t, got)

	b0 := append([]float64(nil), bias.Data()...)
	f := func(p []float64) float64 {
		copy(bias.Data(), p)
		return loss().Item()
	}
	want := fd.Gradient(nil, f, b0, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	copy(bias.Data(), b0)

	assert.InDeltaSlice(t, want, got.AsFloat64(), 1e-6)
}

func TestCheck_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want error
	}{
		{"not hermitian", []float64{0.5, 0.1, 0, 0.5}, density.ErrNotHermitian},
		{"trace two", []float64{1, 0, 0, 1}, density.ErrTraceNotOne},
		{"negative eigenvalue", []float64{1.5, 0, 0, -0.5}, density.ErrNotPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rho, err := tensor.FromSlice(tt.data, tensor.Shape{1, 2, 2}, cpu.New())
			require.NoError(t, err)

			err = density.Check(rho, 1e-9)
			require.ErrorIs(t, err, tt.want)

			var ce *density.CheckError
			require.ErrorAs(t, err, &ce)
			assert.Zero(t, ce.Index)
		})
	}

	require.ErrorIs(t, density.Check(tensor.Zeros[float64](tensor.Shape{2, 2}, cpu.New()), 1e-9), density.ErrShapeMismatch)
}

func TestPurityAndEntropy(t *testing.T) {
	// Pure state diag(1, 0) and the maximally mixed state I/2.
	rho, err := density.FromRaw(rawBatch(t, 3,
		1, 0, 0,
		1, 0, 1,
	), density.DefaultConfig(1, 2))
	require.NoError(t, err)

	purity, err := density.Purity(rho)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0.5}, purity, 1e-12)

	entropy, err := density.Entropy(rho)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, math.Ln2}, entropy, 1e-12)

	eig, err := density.Eigenvalues(rho)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1}, eig[0], 1e-12)
}

func TestToCDense(t *testing.T) {
	m := newModel[float64](t, density.DefaultConfig(4, 3))
	rho, err := m.Forward(randInput[float64](2, 4, 9))
	require.NoError(t, err)

	mats, err := density.ToCDense(rho)
	require.NoError(t, err)
	require.Len(t, mats, 2)

	for b, c := range mats {
		r, cols := c.Dims()
		require.Equal(t, 3, r)
		require.Equal(t, 3, cols)

		var tr complex128
		for i := 0; i < 3; i++ {
			tr += c.At(i, i)
			for j := 0; j < 3; j++ {
				assert.InDelta(t, rho.At(b, i, j), real(c.At(i, j)), 0)
				assert.InDelta(t, 0, cmplx.Abs(c.At(i, j)-cmplx.Conj(c.At(j, i))), 1e-12)
			}
		}
		assert.InDelta(t, 1, real(tr), 1e-12)
	}
}

func TestSave_LogsTensorNames(t *testing.T) {
	var buf bytes.Buffer
	cfg := density.DefaultConfig(4, 2)
	cfg.Logger = zerolog.New(&buf)

	m := newModel[float64](t, cfg)
	require.NoError(t, m.Save(filepath.Join(t.TempDir(), "rho.safetensors")))

	assert.Contains(t, buf.String(), `"message":"weights saved"`)
	assert.Contains(t, buf.String(), `"tensors":["0.bias","0.weight","2.bias","2.weight"]`)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rho.safetensors")
	x := randInput[float64](3, 4, 2)

	src := newModel[float64](t, density.DefaultConfig(4, 2))
	require.NoError(t, src.Save(path))

	cfg := density.DefaultConfig(4, 2)
	cfg.Seed = 99
	dst := newModel[float64](t, cfg)

	before, err := dst.Forward(x)
	require.NoError(t, err)
	want, err := src.Forward(x)
	require.NoError(t, err)
	require.NotEqual(t, want.Data(), before.Data())

	require.NoError(t, dst.Load(path))
	got, err := dst.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, want.Data(), got.Data())
}

func TestLoad_Mismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rho.safetensors")
	require.NoError(t, newModel[float64](t, density.DefaultConfig(4, 2)).Save(path))

	t.Run("dim", func(t *testing.T) {
		m := newModel[float64](t, density.DefaultConfig(4, 3))
		before := append([]float64(nil), m.Output().Bias().Tensor().Data()...)

		require.ErrorIs(t, m.Load(path), density.ErrShapeMismatch)
		assert.Equal(t, before, m.Output().Bias().Tensor().Data())
	})

	t.Run("input_dim", func(t *testing.T) {
		m := newModel[float64](t, density.DefaultConfig(5, 2))
		require.ErrorIs(t, m.Load(path), density.ErrShapeMismatch)
	})

	t.Run("precision", func(t *testing.T) {
		m := newModel[float32](t, density.DefaultConfig(4, 2))
		require.ErrorIs(t, m.Load(path), density.ErrPrecisionMismatch)
	})
}

func TestLoadStateDict_KeepsWeightsOnError(t *testing.T) {
	m := newModel[float64](t, density.DefaultConfig(4, 2))
	other := newModel[float64](t, density.Config{
		InputDim: 4, Dim: 2, HiddenDim: 128, Epsilon: density.DefaultEpsilon, Seed: 5,
	})

	before := append([]float64(nil), m.Hidden().Weight().Tensor().Data()...)

	// Hidden layer loads, output layer is missing its weight.
	sd := other.StateDict()
	delete(sd, "2.weight")

	require.ErrorIs(t, m.LoadStateDict(sd), density.ErrShapeMismatch)
	assert.Equal(t, before, m.Hidden().Weight().Tensor().Data())
}
