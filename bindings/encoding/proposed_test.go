package encoding

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func sampleProposed() *ProposedEventPayload {
	return &ProposedEventPayload{
		ProposalID:        7,
		Proposer:          common.HexToAddress("0x1111111111111111111111111111111111111111"),
		ProposalTimestamp: 1010,
		OriginBlockNumber: 80,
		IsForcedInclusion: false,
		BasefeeSharingPctg: 75,
		Blob: BlobSlice{
			BlobHashes: []common.Hash{
				common.HexToHash("0xaa"),
				common.HexToHash("0xbb"),
			},
			Offset:    128,
			Timestamp: 1000,
		},
		CoreStateHash:           common.HexToHash("0xc0"),
		DerivationHash:          common.HexToHash("0xd0"),
		NextProposalID:          8,
		LastFinalizedProposalID: 6,
		LastFinalizedTransition: common.HexToHash("0xe0"),
		BondInstructionsHash:    common.HexToHash("0xf0"),
	}
}

func TestProposedRoundTrip(t *testing.T) {
	want := sampleProposed()
	data, err := EncodeProposed(want)
	require.NoError(t, err)

	got, err := DecodeProposed(data)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestProposedMaxBlobHashesLenNeedsHashBytes(t *testing.T) {
	p := sampleProposed()
	// Encoding 2^24-1 real hashes is impractical in a test; instead splice
	// the largest length prefix the 3-byte field can hold into an
	// otherwise-valid encoding. That length is within the cap, so the
	// decoder accepts it and then runs out of bytes reading the hashes.
	data, err := EncodeProposed(p)
	require.NoError(t, err)

	// blobHashesLen begins right after id(6)+proposer(20)+timestamp(6)+
	// originBlockNumber(6)+isForcedInclusion(1)+basefeeSharingPctg(1) = 40.
	data[40] = 0xFF
	data[41] = 0xFF
	data[42] = 0xFF

	_, err = DecodeProposed(data)
	require.Error(t, err)
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "blobHashes", insufficient.Field)
}

func TestProposedInsufficientData(t *testing.T) {
	p := sampleProposed()
	data, err := EncodeProposed(p)
	require.NoError(t, err)

	_, err = DecodeProposed(data[:10])
	require.Error(t, err)
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestProvedRoundTrip(t *testing.T) {
	want := &ProvedEventPayload{
		ProposalID:           7,
		ProposalHash:         common.HexToHash("0x1"),
		ParentTransitionHash: common.HexToHash("0x2"),
		EndBlockMiniHeader: EndBlockMiniHeader{
			Number:    9,
			Hash:      common.HexToHash("0x3"),
			StateRoot: common.HexToHash("0x4"),
		},
		DesignatedProver:       common.HexToAddress("0x5"),
		ActualProver:           common.HexToAddress("0x6"),
		Span:                   1,
		TransitionHash:         common.HexToHash("0x7"),
		EndBlockMiniHeaderHash: common.HexToHash("0x8"),
		BondInstructions: []BondInstruction{
			{ProposalID: 7, BondType: 2, Payer: common.HexToAddress("0x9"), Receiver: common.HexToAddress("0xa")},
		},
	}

	data, err := EncodeProved(want)
	require.NoError(t, err)

	got, err := DecodeProved(data)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestProvedRejectsBondTypeOverFour(t *testing.T) {
	p := &ProvedEventPayload{
		BondInstructions: []BondInstruction{{BondType: 5}},
	}
	_, err := EncodeProved(p)
	require.Error(t, err)
}
