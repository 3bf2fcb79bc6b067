package blobsource

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FieldElementCoder implements BlobCoder over raw EIP-4844 blob bytes: each
// 32-byte field element's high byte is always zero (BLS modulus headroom)
// and carries no payload, so it's dropped; the reassembled remainder
// starts with a 4-byte big-endian length prefix followed by the actual
// derivation source bytes, zero-padded out to the blob boundary.
type FieldElementCoder struct{}

// NewFieldElementCoder builds the default blob codec.
func NewFieldElementCoder() FieldElementCoder { return FieldElementCoder{} }

// Decode implements BlobCoder.
func (FieldElementCoder) Decode(blobs [][]byte) ([]byte, error) {
	var buf bytes.Buffer

	for i, blob := range blobs {
		if len(blob)%32 != 0 {
			return nil, fmt.Errorf("blob %d: length %d is not a multiple of 32", i, len(blob))
		}
		for off := 0; off < len(blob); off += 32 {
			buf.Write(blob[off+1 : off+32])
		}
	}

	data := buf.Bytes()
	if len(data) < 4 {
		return nil, fmt.Errorf("decoded blob payload too short: %d bytes", len(data))
	}

	length := binary.BigEndian.Uint32(data[:4])
	payload := data[4:]
	if uint32(len(payload)) < length {
		return nil, fmt.Errorf("decoded blob payload shorter than declared length: have %d, want %d", len(payload), length)
	}

	return payload[:length], nil
}
