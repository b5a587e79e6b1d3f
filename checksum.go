package ezfs

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ErrChecksum is returned when stored content fails integrity verification.
var ErrChecksum = errors.New("checksum mismatch")

const checksumSize = 8

// NewChecksumTransform returns a Transform that appends an xxhash64 digest
// to content on write and verifies and strips it on read.
//
// It detects corruption introduced by the storage layer, not tampering by an
// adversary who can also recompute the hash. Chain it before a compression
// stage so the digest covers the logical content:
//
//	ezfs.Chain(ezfs.NewChecksumTransform(), gzipCompressor)
func NewChecksumTransform() Transform {
	return NewTransform("xxhash64",
		func(data []byte) ([]byte, error) {
			sum := xxhash.Sum64(data)
			out := make([]byte, len(data)+checksumSize)
			copy(out, data)
			binary.LittleEndian.PutUint64(out[len(data):], sum)
			return out, nil
		},
		func(data []byte) ([]byte, error) {
			if len(data) < checksumSize {
				return nil, fmt.Errorf("content shorter than digest: %w", ErrChecksum)
			}
			payload := data[:len(data)-checksumSize]
			want := binary.LittleEndian.Uint64(data[len(payload):])
			if got := xxhash.Sum64(payload); got != want {
				return nil, fmt.Errorf("digest %016x does not match stored %016x: %w", got, want, ErrChecksum)
			}
			out := make([]byte, len(payload))
			copy(out, payload)
			return out, nil
		},
	)
}
