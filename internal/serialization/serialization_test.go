package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/qdensity/internal/tensor"
)

func testStateDict(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()

	weight, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(weight.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})

	bias, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(bias.AsFloat64(), []float64{0.1, -0.2, 0.3})

	return map[string]*tensor.RawTensor{
		"0.weight": weight,
		"0.bias":   bias,
	}
}

// encodeRaw builds a SafeTensors stream from a hand-written header.
func encodeRaw(t *testing.T, header map[string]any, data []byte) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(headerJSON))))
	buf.Write(headerJSON)
	buf.Write(data)
	return buf.Bytes()
}

func TestSafeTensors_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	sd := testStateDict(t)

	require.NoError(t, WriteSafeTensors(path, sd, map[string]string{"dim": "2"}))

	got, meta, err := ReadSafeTensors(path, tensor.CPU)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"dim": "2"}, meta)
	require.Len(t, got, 2)

	assert.Equal(t, tensor.Shape{2, 3}, got["0.weight"].Shape())
	assert.Equal(t, tensor.Float32, got["0.weight"].DType())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got["0.weight"].AsFloat32())

	assert.Equal(t, tensor.Float64, got["0.bias"].DType())
	assert.Equal(t, []float64{0.1, -0.2, 0.3}, got["0.bias"].AsFloat64())
}

func TestSafeTensors_AlphabeticalLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, testStateDict(t), nil))

	raw := buf.Bytes()
	size := binary.LittleEndian.Uint64(raw[:HeaderSizeBytes])

	var header Header
	require.NoError(t, json.Unmarshal(raw[HeaderSizeBytes:HeaderSizeBytes+size], &header))

	// "0.bias" sorts before "0.weight" and therefore comes first.
	assert.Equal(t, [2]int64{0, 24}, header.Tensors["0.bias"].DataOffsets)
	assert.Equal(t, [2]int64{24, 48}, header.Tensors["0.weight"].DataOffsets)
	assert.Equal(t, DTypeF64, header.Tensors["0.bias"].DType)
	assert.Contains(t, header.Metadata, MetadataChecksum)

	// Data is little-endian: first element of 0.bias is 0.1.
	first := raw[HeaderSizeBytes+size : HeaderSizeBytes+size+8]
	assert.Equal(t, uint64(0x3FB999999999999A), binary.LittleEndian.Uint64(first))
}

func TestSafeTensors_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, testStateDict(t), nil))

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	_, _, err := ReadFrom(bytes.NewReader(corrupted), tensor.CPU, ReaderOptions{})
	require.ErrorIs(t, err, ErrChecksumMismatch)

	_, _, err = ReadFrom(bytes.NewReader(corrupted), tensor.CPU, ReaderOptions{SkipChecksum: true})
	require.NoError(t, err)
}

func TestReadFrom_Validation(t *testing.T) {
	data := make([]byte, 16)

	tests := []struct {
		name   string
		header map[string]any
		want   error
	}{
		{
			name: "out of bounds",
			header: map[string]any{
				"w": TensorInfo{DType: DTypeF32, Shape: []int{8}, DataOffsets: [2]int64{0, 32}},
			},
			want: ErrOutOfBounds,
		},
		{
			name: "overlap",
			header: map[string]any{
				"a": TensorInfo{DType: DTypeF32, Shape: []int{2}, DataOffsets: [2]int64{0, 8}},
				"b": TensorInfo{DType: DTypeF32, Shape: []int{2}, DataOffsets: [2]int64{4, 12}},
			},
			want: ErrOffsetOverlap,
		},
		{
			name: "negative offset",
			header: map[string]any{
				"w": TensorInfo{DType: DTypeF32, Shape: []int{1}, DataOffsets: [2]int64{-4, 0}},
			},
			want: ErrNegativeOffset,
		},
		{
			name: "path traversal",
			header: map[string]any{
				"../w": TensorInfo{DType: DTypeF32, Shape: []int{1}, DataOffsets: [2]int64{0, 4}},
			},
			want: ErrInvalidTensorName,
		},
		{
			name: "unsupported dtype",
			header: map[string]any{
				"w": TensorInfo{DType: "BF16", Shape: []int{2}, DataOffsets: [2]int64{0, 4}},
			},
			want: ErrUnsupportedDType,
		},
		{
			name: "size mismatch",
			header: map[string]any{
				"w": TensorInfo{DType: DTypeF64, Shape: []int{3}, DataOffsets: [2]int64{0, 16}},
			},
			want: ErrSizeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := encodeRaw(t, tt.header, data)
			_, _, err := ReadFrom(bytes.NewReader(stream), tensor.CPU, ReaderOptions{})
			require.ErrorIs(t, err, tt.want)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestReadFrom_HeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1)))

	_, _, err := ReadFrom(&buf, tensor.CPU, ReaderOptions{})
	require.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestReadFrom_Truncated(t *testing.T) {
	_, _, err := ReadFrom(bytes.NewReader([]byte{1, 2, 3}), tensor.CPU, ReaderOptions{})
	require.Error(t, err)

	_, _, err = ReadFrom(bytes.NewReader(encodeRaw(t, nil, nil)[:9]), tensor.CPU, ReaderOptions{})
	require.Error(t, err)
}

func TestWriteTo_RejectsBadName(t *testing.T) {
	sd := testStateDict(t)
	sd["a/b"] = sd["0.bias"]

	var buf bytes.Buffer
	require.ErrorIs(t, WriteTo(&buf, sd, nil), ErrInvalidTensorName)
}

func TestValidateTensorName(t *testing.T) {
	assert.NoError(t, ValidateTensorName("2.weight"))
	assert.ErrorIs(t, ValidateTensorName(""), ErrInvalidTensorName)
	assert.ErrorIs(t, ValidateTensorName("a\x00b"), ErrInvalidTensorName)
	assert.ErrorIs(t, ValidateTensorName(`a\b`), ErrInvalidTensorName)
	assert.ErrorIs(t, ValidateTensorName(strings.Repeat("x", MaxTensorNameLen+1)), ErrTensorNameTooLong)
}

func TestReadSafeTensors_MissingFile(t *testing.T) {
	_, _, err := ReadSafeTensors(filepath.Join(t.TempDir(), "missing.safetensors"), tensor.CPU)
	require.ErrorIs(t, err, os.ErrNotExist)
}
