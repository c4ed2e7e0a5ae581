package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Format constants.
const (
	HeaderSizeBytes = 8              // uint64 LE header length prefix
	MetadataKey     = "__metadata__" // reserved header key for string metadata
)

// SafeTensors dtype tags.
const (
	DTypeF32 = "F32"
	DTypeF64 = "F64"
)

// TensorInfo describes a tensor in the SafeTensors header.
type TensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end)
}

// Header is the parsed JSON header.
type Header struct {
	Metadata map[string]string
	Tensors  map[string]TensorInfo
}

// MarshalJSON writes tensors and metadata as a single flat object.
func (h Header) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(h.Tensors)+1)
	if len(h.Metadata) > 0 {
		flat[MetadataKey] = h.Metadata
	}
	for name, info := range h.Tensors {
		flat[name] = info
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits the flat header object into metadata and tensors.
func (h *Header) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap[MetadataKey]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]TensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == MetadataKey {
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}

	return nil
}

func dtypeToSafeTensors(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return DTypeF32, nil
	case tensor.Float64:
		return DTypeF64, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}
}

func safeTensorsToDType(s string) (tensor.DataType, error) {
	switch s {
	case DTypeF32:
		return tensor.Float32, nil
	case DTypeF64:
		return tensor.Float64, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
	}
}

// encodeLE appends the little-endian encoding of raw's elements to dst.
func encodeLE(dst []byte, raw *tensor.RawTensor) []byte {
	switch raw.DType() {
	case tensor.Float32:
		for _, v := range raw.AsFloat32() {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	case tensor.Float64:
		for _, v := range raw.AsFloat64() {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
	}
	return dst
}

// decodeLE fills raw from little-endian bytes. len(src) must equal raw.ByteSize().
func decodeLE(raw *tensor.RawTensor, src []byte) {
	switch raw.DType() {
	case tensor.Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
		}
	case tensor.Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
		}
	}
}
