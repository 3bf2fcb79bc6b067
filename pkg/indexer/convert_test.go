package indexer

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummary(numCommitments int, targets []*common.Address) *BlockSummary {
	commitments := make([]kzg4844.Commitment, numCommitments)
	for i := range commitments {
		commitments[i][0] = byte(i + 1)
	}
	if targets == nil {
		targets = make([]*common.Address, numCommitments)
	}
	return &BlockSummary{
		Slot:            42,
		BlockRoot:       common.HexToHash("0xaa"),
		ParentRoot:      common.HexToHash("0xbb"),
		BlobCommitments: commitments,
		BlobTargets:     targets,
	}
}

func TestBuildBlobRecordsHappyPath(t *testing.T) {
	summary := testSummary(2, nil)
	sidecars := []BlobSidecar{
		{Index: 0, Blob: []byte{1}},
		{Index: 1, Blob: []byte{2}},
	}

	records, err := buildBlobRecords(summary, sidecars, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int32(0), records[0].Index)
	assert.Equal(t, int32(1), records[1].Index)
	assert.Equal(t, summary.BlockRoot.Bytes(), records[0].BlockRoot)
}

func TestBuildBlobRecordsRejectsDuplicateIndex(t *testing.T) {
	summary := testSummary(2, nil)
	sidecars := []BlobSidecar{
		{Index: 0, Blob: []byte{1}},
		{Index: 0, Blob: []byte{2}},
	}

	_, err := buildBlobRecords(summary, sidecars, nil)
	require.Error(t, err)
}

func TestBuildBlobRecordsRejectsOutOfRangeIndex(t *testing.T) {
	summary := testSummary(1, nil)
	sidecars := []BlobSidecar{{Index: 5, Blob: []byte{1}}}

	_, err := buildBlobRecords(summary, sidecars, nil)
	require.Error(t, err)
}

func TestBuildBlobRecordsFiltersByWatchAddress(t *testing.T) {
	watched := common.HexToAddress("0x1")
	other := common.HexToAddress("0x2")
	summary := testSummary(2, []*common.Address{&watched, &other})
	sidecars := []BlobSidecar{
		{Index: 0, Blob: []byte{1}},
		{Index: 1, Blob: []byte{2}},
	}

	watchSet := map[common.Address]struct{}{watched: {}}
	records, err := buildBlobRecords(summary, sidecars, watchSet)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int32(0), records[0].Index)
}

func TestBuildBlobRecordsSkipsNilTargetWhenFiltering(t *testing.T) {
	summary := testSummary(1, []*common.Address{nil})
	sidecars := []BlobSidecar{{Index: 0, Blob: []byte{1}}}

	watchSet := map[common.Address]struct{}{common.HexToAddress("0x1"): {}}
	records, err := buildBlobRecords(summary, sidecars, watchSet)
	require.NoError(t, err)
	assert.Empty(t, records)
}
