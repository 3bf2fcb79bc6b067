// Package blobsource implements the blob data source: given a
// derivation source's blob hashes, offset, and L1 timestamp, it returns the
// raw decoded bytes, fetching from a beacon node first and falling back to
// an archival blob server keyed by versioned hash.
package blobsource

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethlog "github.com/ethereum/go-ethereum/log"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// maxMissedSlotWalkback bounds how far BeaconClient.SlotForTimestamp walks backward
// looking for a slot that actually has an execution payload.
const maxMissedSlotWalkback = 1024

// BlobCoder reconstructs raw bytes from a set of blob sidecars. Treated as
// an opaque codec — callers hand it raw blob bytes in hash order and get
// back the decompressed derivation source bytes.
type BlobCoder interface {
	Decode(blobs [][]byte) ([]byte, error)
}

// Source is the blob data source's external surface.
type Source struct {
	beacon   *BeaconClient
	archival *ArchivalClient
	coder    BlobCoder
	log      gethlog.Logger
}

// NewSource wires a beacon-primary, archival-fallback blob source.
func NewSource(beacon *BeaconClient, archival *ArchivalClient, coder BlobCoder) *Source {
	return &Source{beacon: beacon, archival: archival, coder: coder, log: gethlog.New("module", "blobsource")}
}

// Fetch resolves a derivation source to its raw decoded bytes.
func (s *Source) Fetch(ctx context.Context, slice core.BlobSlice) ([]byte, error) {
	slot, err := s.beacon.SlotForTimestamp(ctx, slice.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("resolve slot for timestamp %d: %w", slice.Timestamp, err)
	}

	blobs, err := s.beacon.FetchSidecars(ctx, slot, slice.BlobHashes)
	if err != nil {
		s.log.Warn("beacon blob fetch failed, falling back to archival server", "slot", slot, "err", err)
		blobs, err = s.archival.FetchByVersionedHash(ctx, slice.BlobHashes)
		if err != nil {
			return nil, fmt.Errorf("archival blob fetch failed: %w", err)
		}
	}

	return s.coder.Decode(blobs)
}

// versionedHashIndex maps each hash to its position in hashes. Neither
// BeaconClient nor ArchivalClient calls it.
func versionedHashIndex(hashes []common.Hash) map[common.Hash]int {
	idx := make(map[common.Hash]int, len(hashes))
	for i, h := range hashes {
		idx[h] = i
	}
	return idx
}
