package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/qdensity/internal/tensor"
)

// WriteSafeTensors writes a state dictionary to path.
//
// Tensors are written in alphabetical order by name. The SHA-256 of the data
// section is added to the metadata under MetadataChecksum.
func WriteSafeTensors(path string, stateDict map[string]*tensor.RawTensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from the caller, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	buf := bufio.NewWriter(file)
	if err := WriteTo(buf, stateDict, metadata); err != nil {
		return err
	}
	return buf.Flush()
}

// WriteTo encodes a state dictionary in SafeTensors format to w.
func WriteTo(w io.Writer, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		Metadata: make(map[string]string, len(metadata)+1),
		Tensors:  make(map[string]TensorInfo, len(names)),
	}
	for k, v := range metadata {
		header.Metadata[k] = v
	}

	var data []byte
	for _, name := range names {
		raw := stateDict[name]
		dtype, err := dtypeToSafeTensors(raw.DType())
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		start := int64(len(data))
		data = encodeLE(data, raw)
		header.Tensors[name] = TensorInfo{
			DType:       dtype,
			Shape:       raw.Shape().Clone(),
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	sum := ComputeChecksum(data)
	header.Metadata[MetadataChecksum] = hex.EncodeToString(sum[:])

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return nil
}
