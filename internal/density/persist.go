package density

import (
	"fmt"
	"strconv"

	"github.com/born-ml/qdensity/internal/serialization"
	"github.com/born-ml/qdensity/internal/tensor"
)

// Metadata keys written next to the weights.
const (
	MetaInputDim  = "input_dim"
	MetaDim       = "dim"
	MetaHiddenDim = "hidden_dim"
	MetaDType     = "dtype"
	MetaFormat    = "format"

	formatName = "qdensity.DensityMatrixMLP"
)

// Metadata returns the architecture description stored with saved weights.
func (m *DensityMatrixMLP[T, B]) Metadata() map[string]string {
	return map[string]string{
		MetaFormat:    formatName,
		MetaInputDim:  strconv.Itoa(m.cfg.InputDim),
		MetaDim:       strconv.Itoa(m.cfg.Dim),
		MetaHiddenDim: strconv.Itoa(m.cfg.HiddenDim),
		MetaDType:     tensor.DataTypeOf[T]().String(),
	}
}

// Save writes the weights and architecture metadata to path in SafeTensors
// format.
func (m *DensityMatrixMLP[T, B]) Save(path string) error {
	if err := serialization.WriteSafeTensors(path, m.StateDict(), m.Metadata()); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	m.log.Info().
		Str("path", path).
		Strs("tensors", m.net.Keys()).
		Int("parameters", m.NumParameters()).
		Msg("weights saved")
	return nil
}

// Load replaces the weights with those saved at path.
//
// The saved input_dim, dim and hidden_dim must equal this model's
// (ErrShapeMismatch) and the saved dtype must equal T (ErrPrecisionMismatch).
// On error the current weights are left unchanged.
func (m *DensityMatrixMLP[T, B]) Load(path string) error {
	stateDict, meta, err := serialization.ReadSafeTensors(path, m.cfg.Device)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	if err := m.checkMetadata(meta); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := m.LoadStateDict(stateDict); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	m.log.Info().
		Str("path", path).
		Int("parameters", m.NumParameters()).
		Msg("weights loaded")
	return nil
}

func (m *DensityMatrixMLP[T, B]) checkMetadata(meta map[string]string) error {
	want := m.Metadata()
	for _, key := range []string{MetaInputDim, MetaDim, MetaHiddenDim} {
		got, ok := meta[key]
		if !ok {
			return fmt.Errorf("%w: metadata %q missing", ErrShapeMismatch, key)
		}
		if got != want[key] {
			return fmt.Errorf("%w: %s is %s, model has %s", ErrShapeMismatch, key, got, want[key])
		}
	}

	if got, ok := meta[MetaDType]; ok {
		dt, known := tensor.ParseDataType(got)
		if !known || dt != tensor.DataTypeOf[T]() {
			return fmt.Errorf("%w: saved %s, model is %s", ErrPrecisionMismatch, got, want[MetaDType])
		}
	}
	return nil
}
