package core

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Proposal identifies a block-range batch posted on L1.
type Proposal struct {
	ProposalID        uint64
	Proposer          common.Address
	Timestamp         uint64
	CoreStateHash     common.Hash
	DerivationHash    common.Hash
}

// CoreState is the on-chain ring-buffer state snapshot carried with every
// proposal.
type CoreState struct {
	NextProposalID               uint64
	LastFinalizedProposalID      uint64
	LastFinalizedTransitionHash  common.Hash
	BondInstructionsHash         common.Hash
}

// BlobSlice points into L1 blob data.
type BlobSlice struct {
	BlobHashes []common.Hash
	Offset     uint64
	Timestamp  uint64
}

// Derivation names where a proposal's block data lives.
type Derivation struct {
	OriginBlockNumber  uint64
	IsForcedInclusion  bool
	BasefeeSharingPctg uint8
	Blob               BlobSlice
}

// TxEnvelope is a single decoded L2 transaction within a BlockManifest.
type TxEnvelope struct {
	Raw *types.Transaction
}

// BlockManifest is one block's worth of derivation input, after decoding a
// DerivationSourceManifest / ProposalManifest.
type BlockManifest struct {
	Timestamp         uint64
	Coinbase          common.Address
	AnchorBlockNumber uint64
	GasLimit          uint64
	Transactions      []TxEnvelope
}

// SourceSegment is one decoded derivation source plus its forced-inclusion
// flag, as materialized from a Proposal's Derivation.sources list.
type SourceSegment struct {
	Manifest          *BlockManifest
	IsForcedInclusion bool
}

// ProposalBundle is the materialized form of a Proposal ready to drive
// derivation.
type ProposalBundle struct {
	ProposalID          uint64
	ProposalTimestamp   uint64
	OriginBlockNumber   uint64
	Proposer            common.Address
	BasefeeSharingPctg  uint8
	BondInstructionsHash common.Hash
	ProverAuthBytes     []byte
	Sources             []SourceSegment
}

// Preconfirmation is an off-chain commitment that a specific L2 block will
// exist at a given height before L1 finalization.
type Preconfirmation struct {
	EOP                       bool
	BlockNumber               uint64
	Timestamp                 uint64
	GasLimit                  uint64
	ProposalID                uint64
	Coinbase                  common.Address
	SubmissionWindowEnd       uint64
	RawTxListHash             common.Hash
	ParentPreconfirmationHash common.Hash
}

// Commitment wraps a Preconfirmation with the slasher address bound into it.
type Commitment struct {
	Preconf        Preconfirmation
	SlasherAddress common.Address
}

// SignedCommitment is a Commitment plus its 65-byte signature.
type SignedCommitment struct {
	Commitment Commitment
	Signature  [65]byte
}

// RawTxListGossip carries a preconfirmed block's raw (RLP, zlib-compressed)
// transaction list alongside the hash that identifies it.
type RawTxListGossip struct {
	RawTxListHash common.Hash
	TxList        []byte
}

// PreconfHead is the locally maintained preconfirmation head, served over
// the `head` request/response protocol.
type PreconfHead struct {
	BlockNumber        uint64
	BlockHash          common.Hash
	PreconfirmationHash common.Hash
}

// LookaheadSlot is one entry in the on-L1 lookahead table.
type LookaheadSlot struct {
	Timestamp              uint64
	Committer              common.Address
	RegistrationRoot       common.Hash
	ValidatorLeafIndex     uint64
}

// BlockRecord is the indexer's persisted beacon block summary.
type BlockRecord struct {
	Slot       uint64
	BlockRoot  common.Hash
	ParentRoot common.Hash
	Timestamp  uint64
	Canonical  bool
}

// BlobRecord is the indexer's persisted blob sidecar.
type BlobRecord struct {
	Slot          uint64
	BlockRoot     common.Hash
	Index         uint64
	VersionedHash common.Hash
	Commitment    []byte
	Proof         []byte
	Blob          []byte
	Canonical     bool
}

// Peer is a libp2p peer identity plus the reputation core tracks for it.
type Peer struct {
	ID          string
	Score       float64
	LastUpdated time.Time
}

// CanonicalTipStatus distinguishes "no head origin materialized yet" from a
// known block number ( invariant: monotonically becomes Known, never
// regresses).
type CanonicalTipStatus int

const (
	CanonicalTipUnknown CanonicalTipStatus = iota
	CanonicalTipKnown
)

// CanonicalTip is the canonical-tip watch value published by the event
// syncer and consulted by the production router.
type CanonicalTip struct {
	Status      CanonicalTipStatus
	BlockNumber uint64
}

// Known reports whether the tip has a materialized block number.
func (t CanonicalTip) Known() bool { return t.Status == CanonicalTipKnown }

// BigOrZero returns v, or big.NewInt(0) if v is nil, to keep arithmetic on
// optional *big.Int wire fields total.
func BigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
