package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/qdensity/internal/tensor"
)

// ReaderOptions configures how SafeTensors files are read.
type ReaderOptions struct {
	// Validation controls header checks. Defaults to ValidationStrict.
	Validation ValidationLevel
	// SkipChecksum disables verification of the stored SHA-256.
	SkipChecksum bool
}

// ReadSafeTensors reads a state dictionary and its metadata from path,
// allocating tensors on device.
func ReadSafeTensors(path string, device tensor.Device) (map[string]*tensor.RawTensor, map[string]string, error) {
	return ReadSafeTensorsWithOptions(path, device, ReaderOptions{})
}

// ReadSafeTensorsWithOptions is ReadSafeTensors with explicit options.
func ReadSafeTensorsWithOptions(path string, device tensor.Device, opts ReaderOptions) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from the caller, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best effort close; the file was only read
	}()

	return ReadFrom(file, device, opts)
}

// ReadFrom decodes a SafeTensors stream.
//
// The header is validated before any tensor is materialized. Metadata is
// returned without the checksum entry.
func ReadFrom(r io.Reader, device tensor.Device, opts ReaderOptions) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if err := ValidateHeader(&header, int64(len(data)), opts.Validation); err != nil {
		return nil, nil, err
	}

	metadata := make(map[string]string, len(header.Metadata))
	for k, v := range header.Metadata {
		metadata[k] = v
	}
	if stored, ok := metadata[MetadataChecksum]; ok {
		if !opts.SkipChecksum {
			if err := ValidateChecksum(data, stored); err != nil {
				return nil, nil, err
			}
		}
		delete(metadata, MetadataChecksum)
	}

	stateDict := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for name, info := range header.Tensors {
		raw, err := loadTensor(name, info, data, device)
		if err != nil {
			return nil, nil, err
		}
		stateDict[name] = raw
	}

	return stateDict, metadata, nil
}

func loadTensor(name string, info TensorInfo, data []byte, device tensor.Device) (*tensor.RawTensor, error) {
	dtype, err := safeTensorsToDType(info.DType)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}

	raw, err := tensor.NewRaw(tensor.Shape(info.Shape), dtype, device)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}

	chunk := data[info.DataOffsets[0]:info.DataOffsets[1]]
	if len(chunk) != raw.ByteSize() {
		return nil, &ValidationError{
			Err:     ErrSizeMismatch,
			Tensor:  name,
			Details: fmt.Sprintf("need %d bytes, have %d", raw.ByteSize(), len(chunk)),
		}
	}
	decodeLE(raw, chunk)

	return raw, nil
}
