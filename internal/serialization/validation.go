package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict checks names, sizes, bounds and overlaps (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and per-tensor bounds only.
	ValidationNormal
)

type tensorSpan struct {
	name  string
	start int64
	end   int64
}

// ValidateTensorName rejects empty names, path traversal and control bytes.
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{Err: ErrInvalidTensorName, Details: "empty name"}
	}
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Err:     ErrTensorNameTooLong,
			Tensor:  name[:32] + "...",
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}
	if strings.Contains(name, "..") {
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Details: "contains '..'"}
	}
	if strings.ContainsAny(name, "/\\") {
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Details: "contains path separator"}
	}
	if strings.Contains(name, "\x00") {
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Details: "contains null byte"}
	}
	return nil
}

// ValidateHeader checks every tensor entry against a data section of
// dataSize bytes.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Err:     ErrTooManyTensors,
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	spans := make([]tensorSpan, 0, len(h.Tensors))
	for name, info := range h.Tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		start, end := info.DataOffsets[0], info.DataOffsets[1]
		if start < 0 || end < start {
			return &ValidationError{
				Err:     ErrNegativeOffset,
				Tensor:  name,
				Details: fmt.Sprintf("offsets [%d, %d)", start, end),
			}
		}
		if end > dataSize {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  name,
				Details: fmt.Sprintf("end %d > data_size %d", end, dataSize),
			}
		}
		if level == ValidationStrict {
			if err := validateSize(name, info, end-start); err != nil {
				return err
			}
		}
		spans = append(spans, tensorSpan{name: name, start: start, end: end})
	}

	if level == ValidationStrict {
		return validateOverlap(spans)
	}
	return nil
}

func validateSize(name string, info TensorInfo, size int64) error {
	dtype, err := safeTensorsToDType(info.DType)
	if err != nil {
		return &ValidationError{Err: ErrUnsupportedDType, Tensor: name, Details: info.DType}
	}
	shape := tensor.Shape(info.Shape)
	if err := shape.Validate(); err != nil {
		return &ValidationError{Err: ErrSizeMismatch, Tensor: name, Details: err.Error()}
	}
	if want := int64(shape.NumElements() * dtype.Size()); want != size {
		return &ValidationError{
			Err:     ErrSizeMismatch,
			Tensor:  name,
			Details: fmt.Sprintf("shape %v of %s needs %d bytes, offsets span %d", shape, info.DType, want, size),
		}
	}
	return nil
}

// validateOverlap sorts spans by start and checks neighbours.
func validateOverlap(spans []tensorSpan) error {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].name < spans[j].name
	})
	for i := 0; i+1 < len(spans); i++ {
		cur, next := spans[i], spans[i+1]
		if cur.end > next.start {
			return &ValidationError{
				Err:     ErrOffsetOverlap,
				Tensor:  cur.name,
				Tensor2: next.name,
				Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap", cur.start, cur.end, next.start, next.end),
			}
		}
	}
	return nil
}
