package serialization

import (
	"crypto/sha256"
	"encoding/hex"
)

// MetadataChecksum is the metadata key holding the hex SHA-256 of the data
// section.
const MetadataChecksum = "sha256"

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares the checksum of data against a hex-encoded
// stored value. Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(data []byte, stored string) error {
	sum := ComputeChecksum(data)
	if hex.EncodeToString(sum[:]) != stored {
		return ErrChecksumMismatch
	}
	return nil
}
