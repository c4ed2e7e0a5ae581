// Package density maps batches of real feature vectors to valid density
// matrices.
//
// A DensityMatrixMLP runs each input through Linear(input_dim→hidden) → ReLU →
// Linear(hidden→dim(dim+1)/2), scatters the result into the lower triangle of
// L in TrilIndices order and returns
//
//	ρ = L·Lᴴ / tr(L·Lᴴ)
//
// which is Hermitian and positive semidefinite by construction and has unit
// trace by normalization. Entries of L are real, so Lᴴ = Lᵀ.
//
// Example:
//
//	backend := cpu.New()
//	model, err := density.New[float64](density.DefaultConfig(4, 2), backend)
//	if err != nil {
//	    return err
//	}
//	rho, err := model.Forward(x) // [batch, 4] -> [batch, 2, 2]
package density

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/born-ml/qdensity/internal/nn"
	"github.com/born-ml/qdensity/internal/tensor"
)

// DensityMatrixMLP is the density-matrix parameterizer.
//
// Weights are owned by the value and only read by Forward, so concurrent
// Forward calls are safe on a backend that is not recording a gradient tape.
type DensityMatrixMLP[T tensor.Float, B tensor.Backend] struct {
	cfg     Config
	backend B
	hidden  *nn.Linear[T, B]
	out     *nn.Linear[T, B]
	net     *nn.Sequential[T, B]
	log     zerolog.Logger
}

// New builds a parameterizer on backend with weights drawn from cfg.Seed.
//
// Returns ErrInvalidDimension or ErrInvalidConfig for a bad cfg and
// ErrDeviceMismatch if backend does not run on cfg.Device.
func New[T tensor.Float, B tensor.Backend](cfg Config, backend B) (*DensityMatrixMLP[T, B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend.Device() != cfg.Device {
		return nil, fmt.Errorf("%w: backend %s runs on %s, config wants %s",
			ErrDeviceMismatch, backend.Name(), backend.Device(), cfg.Device)
	}

	//nolint:gosec // G404: weight initialization is not security-sensitive
	rng := rand.New(rand.NewSource(cfg.Seed))
	hidden := nn.NewLinear[T](cfg.InputDim, cfg.HiddenDim, backend, rng)
	out := nn.NewLinear[T](cfg.HiddenDim, NumParams(cfg.Dim), backend, rng)

	m := &DensityMatrixMLP[T, B]{
		cfg:     cfg,
		backend: backend,
		hidden:  hidden,
		out:     out,
		net:     nn.NewSequential[T, B](hidden, nn.NewReLU[T, B](), out),
		log:     cfg.Logger.With().Str("component", "density_mlp").Logger(),
	}

	m.log.Debug().
		Int("input_dim", cfg.InputDim).
		Int("dim", cfg.Dim).
		Int("hidden_dim", cfg.HiddenDim).
		Int("num_params", NumParams(cfg.Dim)).
		Str("dtype", tensor.DataTypeOf[T]().String()).
		Str("backend", backend.Name()).
		Stringer("trace_policy", cfg.TracePolicy).
		Msg("density parameterizer created")

	return m, nil
}

// Forward maps x [batch, input_dim] to density matrices [batch, dim, dim].
//
// Returns a *ShapeError (ErrShapeMismatch) if x is not 2-D with input_dim
// columns, and a *TraceError (ErrDegenerateTrace) under the TraceStrict policy
// when some batch element has a degenerate trace.
func (m *DensityMatrixMLP[T, B]) Forward(x *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	raw, err := m.RawParams(x)
	if err != nil {
		return nil, err
	}
	return m.FromRaw(raw)
}

// RawParams returns the feed-forward output [batch, dim(dim+1)/2] without
// building density matrices.
func (m *DensityMatrixMLP[T, B]) RawParams(x *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != m.cfg.InputDim {
		return nil, &ShapeError{
			What:     "input",
			Expected: tensor.Shape{-1, m.cfg.InputDim},
			Actual:   shape.Clone(),
		}
	}
	return m.net.Forward(x), nil
}

// FromRaw builds density matrices from a raw parameter batch using this
// model's dim and trace policy.
func (m *DensityMatrixMLP[T, B]) FromRaw(raw *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	return fromRaw(raw, m.cfg.Dim, m.cfg.TracePolicy, m.cfg.Epsilon, m.log)
}

// FromRaw builds density matrices [batch, dim, dim] from raw parameters
// [batch, dim(dim+1)/2] under cfg's dim, trace policy and epsilon. It is the
// construction Forward applies after the feed-forward network.
//
// Returns ErrInvalidDimension or ErrInvalidConfig if cfg's Dim, Epsilon or
// TracePolicy is invalid; InputDim and HiddenDim are not consulted.
func FromRaw[T tensor.Float, B tensor.Backend](raw *tensor.Tensor[T, B], cfg Config) (*tensor.Tensor[T, B], error) {
	if err := cfg.validateConstruction(); err != nil {
		return nil, err
	}
	return fromRaw(raw, cfg.Dim, cfg.TracePolicy, cfg.Epsilon, cfg.Logger)
}

func fromRaw[T tensor.Float, B tensor.Backend](raw *tensor.Tensor[T, B], dim int, policy TracePolicy, eps float64, log zerolog.Logger) (*tensor.Tensor[T, B], error) {
	shape := raw.Shape()
	if len(shape) != 2 || shape[1] != NumParams(dim) {
		return nil, &ShapeError{
			What:     "raw parameters",
			Expected: tensor.Shape{-1, NumParams(dim)},
			Actual:   shape.Clone(),
		}
	}
	batch := shape[0]

	l := raw.FillTril(dim)     // [batch, dim, dim]
	mm := l.BatchMatMul(l.H()) // L·Lᴴ
	tr := mm.Trace()           // [batch]
	den, err := denominator(tr, policy, eps, log)
	if err != nil {
		return nil, err
	}

	return mm.Div(den.Reshape(batch, 1, 1)), nil
}

// denominator applies the trace policy to the per-matrix traces.
func denominator[T tensor.Float, B tensor.Backend](tr *tensor.Tensor[T, B], policy TracePolicy, eps float64, log zerolog.Logger) (*tensor.Tensor[T, B], error) {
	traces := tr.Data()

	var correction []T
	for i, v := range traces {
		t := float64(v)
		if math.Abs(t) > eps {
			continue
		}

		log.Warn().
			Int("index", i).
			Float64("trace", t).
			Stringer("policy", policy).
			Msg("degenerate trace")

		switch policy {
		case TraceStrict:
			return nil, &TraceError{Index: i, Trace: t}
		case TraceClamp:
			if correction == nil {
				correction = make([]T, len(traces))
			}
			// tr + (eps - tr) == eps, with tr kept on the tape.
			correction[i] = T(eps) - v
		}
	}

	if correction == nil {
		return tr, nil
	}
	c, err := tensor.FromSlice(correction, tr.Shape(), tr.Backend())
	if err != nil {
		return nil, err
	}
	return tr.Add(c), nil
}

// Config returns the configuration the model was built with.
func (m *DensityMatrixMLP[T, B]) Config() Config {
	return m.cfg
}

// InputDim returns the input feature width.
func (m *DensityMatrixMLP[T, B]) InputDim() int {
	return m.cfg.InputDim
}

// Dim returns the output matrix size.
func (m *DensityMatrixMLP[T, B]) Dim() int {
	return m.cfg.Dim
}

// Backend returns the backend the weights live on.
func (m *DensityMatrixMLP[T, B]) Backend() B {
	return m.backend
}

// Hidden returns the first linear layer.
func (m *DensityMatrixMLP[T, B]) Hidden() *nn.Linear[T, B] {
	return m.hidden
}

// Output returns the projection to raw parameters.
func (m *DensityMatrixMLP[T, B]) Output() *nn.Linear[T, B] {
	return m.out
}

// Parameters returns [hidden.weight, hidden.bias, out.weight, out.bias].
func (m *DensityMatrixMLP[T, B]) Parameters() []*nn.Parameter[T, B] {
	return m.net.Parameters()
}

// NumParameters returns the total count of trainable scalars.
func (m *DensityMatrixMLP[T, B]) NumParameters() int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.Tensor().NumElements()
	}
	return n
}

// StateDict returns the weights keyed "0.weight", "0.bias", "2.weight",
// "2.bias". The tensors are the live weights, not copies.
func (m *DensityMatrixMLP[T, B]) StateDict() map[string]*tensor.RawTensor {
	return m.net.StateDict()
}

// LoadStateDict copies weights from a state dictionary with the keys and
// shapes StateDict produces. On error the current weights are kept.
func (m *DensityMatrixMLP[T, B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	backup := make(map[string]*tensor.RawTensor)
	for k, v := range m.net.StateDict() {
		backup[k] = v.Clone()
	}

	if err := m.net.LoadStateDict(stateDict); err != nil {
		if rerr := m.net.LoadStateDict(backup); rerr != nil {
			panic(fmt.Sprintf("density: restoring weights failed: %v", rerr))
		}
		return fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	return nil
}
