package encoding

import (
	"github.com/ethereum/go-ethereum/common"
)

// maxBlobHashesLen is the cap on the blobHashesLen field: lengths up to and
// including it are accepted, anything above it is rejected. The field is a
// 3-byte big-endian integer, so a decoded length can never exceed it; the
// cap matters for EncodeProposed, whose input list can be longer.
const maxBlobHashesLen = 1<<24 - 1

// BlobSlice points into L1 blob data carrying a derivation source.
type BlobSlice struct {
	BlobHashes []common.Hash
	Offset     uint64
	Timestamp  uint64
}

// ProposedEventPayload is the decoded form of the "Proposed" L1 event log,
// : a Proposal plus its Derivation plus the CoreState ring-buffer
// snapshot observed at emission time.
type ProposedEventPayload struct {
	ProposalID              uint64
	Proposer                common.Address
	ProposalTimestamp        uint64
	OriginBlockNumber        uint64
	IsForcedInclusion        bool
	BasefeeSharingPctg       uint8
	Blob                     BlobSlice
	CoreStateHash            common.Hash
	DerivationHash           common.Hash
	NextProposalID           uint64
	LastFinalizedProposalID  uint64
	LastFinalizedTransition  common.Hash
	BondInstructionsHash     common.Hash
}

// DecodeProposed decodes the fixed 192+32k byte "Proposed" event payload.
func DecodeProposed(data []byte) (*ProposedEventPayload, error) {
	r := newByteReader(data)

	id, err := r.uintBE("id", 6)
	if err != nil {
		return nil, err
	}
	proposer, err := r.address("proposer")
	if err != nil {
		return nil, err
	}
	timestamp, err := r.uintBE("timestamp", 6)
	if err != nil {
		return nil, err
	}
	originBlockNumber, err := r.uintBE("originBlockNumber", 6)
	if err != nil {
		return nil, err
	}
	isForcedInclusion, err := r.byteVal("isForcedInclusion")
	if err != nil {
		return nil, err
	}
	basefeeSharingPctg, err := r.byteVal("basefeeSharingPctg")
	if err != nil {
		return nil, err
	}
	blobHashesLen, err := r.uintBE("blobHashesLen", 3)
	if err != nil {
		return nil, err
	}
	if blobHashesLen > maxBlobHashesLen {
		return nil, newInvalidData("blobHashesLen", "exceeds 2^24-1")
	}

	hashes := make([]common.Hash, 0, blobHashesLen)
	for i := uint64(0); i < blobHashesLen; i++ {
		h, err := r.hash("blobHashes")
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}

	blobOffset, err := r.uintBE("blobOffset", 3)
	if err != nil {
		return nil, err
	}
	blobTimestamp, err := r.uintBE("blobTimestamp", 6)
	if err != nil {
		return nil, err
	}
	coreStateHash, err := r.hash("coreStateHash")
	if err != nil {
		return nil, err
	}
	derivationHash, err := r.hash("derivationHash")
	if err != nil {
		return nil, err
	}
	nextProposalID, err := r.uintBE("nextProposalId", 6)
	if err != nil {
		return nil, err
	}
	lastFinalizedProposalID, err := r.uintBE("lastFinalizedProposalId", 6)
	if err != nil {
		return nil, err
	}
	lastFinalizedTransitionHash, err := r.hash("lastFinalizedTransitionHash")
	if err != nil {
		return nil, err
	}
	bondInstructionsHash, err := r.hash("bondInstructionsHash")
	if err != nil {
		return nil, err
	}

	return &ProposedEventPayload{
		ProposalID:               id,
		Proposer:                 proposer,
		ProposalTimestamp:        timestamp,
		OriginBlockNumber:        originBlockNumber,
		IsForcedInclusion:        isForcedInclusion != 0,
		BasefeeSharingPctg:       basefeeSharingPctg,
		Blob: BlobSlice{
			BlobHashes: hashes,
			Offset:     blobOffset,
			Timestamp:  blobTimestamp,
		},
		CoreStateHash:           coreStateHash,
		DerivationHash:          derivationHash,
		NextProposalID:          nextProposalID,
		LastFinalizedProposalID: lastFinalizedProposalID,
		LastFinalizedTransition: lastFinalizedTransitionHash,
		BondInstructionsHash:    bondInstructionsHash,
	}, nil
}

// EncodeProposed is the mirror of DecodeProposed, used by round-trip tests
// and by test fixtures that need to synthesize a log payload.
func EncodeProposed(p *ProposedEventPayload) ([]byte, error) {
	if len(p.Blob.BlobHashes) > maxBlobHashesLen {
		return nil, newInvalidData("blobHashesLen", "exceeds 2^24-1")
	}

	w := &byteWriter{}
	w.putUintBE(p.ProposalID, 6)
	w.putAddress(p.Proposer)
	w.putUintBE(p.ProposalTimestamp, 6)
	w.putUintBE(p.OriginBlockNumber, 6)
	if p.IsForcedInclusion {
		w.putByte(1)
	} else {
		w.putByte(0)
	}
	w.putByte(p.BasefeeSharingPctg)
	w.putUintBE(uint64(len(p.Blob.BlobHashes)), 3)
	for _, h := range p.Blob.BlobHashes {
		w.putHash(h)
	}
	w.putUintBE(p.Blob.Offset, 3)
	w.putUintBE(p.Blob.Timestamp, 6)
	w.putHash(p.CoreStateHash)
	w.putHash(p.DerivationHash)
	w.putUintBE(p.NextProposalID, 6)
	w.putUintBE(p.LastFinalizedProposalID, 6)
	w.putHash(p.LastFinalizedTransition)
	w.putHash(p.BondInstructionsHash)

	return w.buf, nil
}
