package indexer

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/taikoxyz/surge-preconf-client/bindings/encoding"
)

func summaryToBlockRecord(summary *BlockSummary) BlockRecord {
	var ts *int64
	if summary.Timestamp != nil {
		t := int64(*summary.Timestamp)
		ts = &t
	}
	return BlockRecord{
		BlockRoot:  summary.BlockRoot.Bytes(),
		Slot:       int64(summary.Slot),
		ParentRoot: summary.ParentRoot.Bytes(),
		Timestamp:  ts,
		Canonical:  true,
	}
}

// buildBlobRecords pairs each sidecar with its block's commitment list by
// index, rejecting a sidecar whose index falls outside the block's
// declared commitment count, and keeps only blobs whose target address
// (when the block carries one) is in watchAddresses. An empty
// watchAddresses set means "watch everything."
func buildBlobRecords(summary *BlockSummary, sidecars []BlobSidecar, watchAddresses map[common.Address]struct{}) ([]BlobRecord, error) {
	seen := make(map[uint64]struct{}, len(sidecars))
	records := make([]BlobRecord, 0, len(sidecars))

	for _, sc := range sidecars {
		if sc.Index >= uint64(len(summary.BlobCommitments)) {
			return nil, fmt.Errorf("sidecar index %d out of range for %d commitments", sc.Index, len(summary.BlobCommitments))
		}
		if _, dup := seen[sc.Index]; dup {
			return nil, fmt.Errorf("duplicate sidecar index %d", sc.Index)
		}
		seen[sc.Index] = struct{}{}

		if len(watchAddresses) > 0 {
			target := summary.BlobTargets[sc.Index]
			if target == nil {
				continue
			}
			if _, ok := watchAddresses[*target]; !ok {
				continue
			}
		}

		commitment := summary.BlobCommitments[sc.Index]
		records = append(records, BlobRecord{
			BlockRoot:     summary.BlockRoot.Bytes(),
			Index:         int32(sc.Index),
			Slot:          int64(summary.Slot),
			VersionedHash: encoding.KZGToVersionedHash(commitment).Bytes(),
			Commitment:    sc.Commitment[:],
			Proof:         sc.Proof[:],
			Blob:          sc.Blob,
			Canonical:     true,
		})
	}

	return records, nil
}
