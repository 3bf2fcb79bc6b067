// Package derivation turns a decoded L1 "Proposed" event log into the
// ordered sequence of payload attributes the execution engine applies,
// including manifest validation and default-manifest substitution when a
// source's manifest fails validation.
package derivation

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/taikoxyz/surge-preconf-client/bindings/encoding"
	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// BlobFetcher resolves a derivation source's raw decoded bytes, matching
// pkg/blobsource.Source.Fetch's signature.
type BlobFetcher interface {
	Fetch(ctx context.Context, slice core.BlobSlice) ([]byte, error)
}

// Pipeline turns L1 proposal logs into ordered payload attributes.
type Pipeline struct {
	blobs   BlobFetcher
	parents ParentBlockSource
}

func NewPipeline(blobs BlobFetcher, parents ParentBlockSource) *Pipeline {
	return &Pipeline{blobs: blobs, parents: parents}
}

// segment pairs a decoded block-manifest list with its forced-inclusion
// flag, the in-memory analogue of core.SourceSegment before per-block
// derivation runs.
type segment struct {
	blocks            []*core.BlockManifest
	isForcedInclusion bool
}

// Process derives the ordered payload attributes for every block a single
// decoded "Proposed" log produces: it fetches and decodes the final
// source's manifest, fetches and decodes any forced-inclusion sources it
// points to, then walks every source's blocks in order, validating and, on
// rejection, substituting the default manifest.
func (p *Pipeline) Process(ctx context.Context, log *encoding.ProposedEventPayload) ([]*core.TaikoPayloadAttributes, error) {
	raw, err := p.blobs.Fetch(ctx, core.BlobSlice{
		BlobHashes: log.Blob.BlobHashes,
		Offset:     log.Blob.Offset,
		Timestamp:  log.Blob.Timestamp,
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch final source blob")
	}

	finalBlocks, proverAuthBytes, forcedSlices, err := DecodeProposalManifest(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode proposal manifest")
	}

	segments := make([]segment, 0, len(forcedSlices)+1)
	for _, slice := range forcedSlices {
		fraw, err := p.blobs.Fetch(ctx, slice)
		if err != nil {
			return nil, errors.Wrap(err, "fetch forced-inclusion source blob")
		}
		blocks, err := DecodeDerivationSourceManifest(fraw)
		if err != nil {
			return nil, errors.Wrap(err, "decode forced-inclusion manifest")
		}
		segments = append(segments, segment{blocks: blocks, isForcedInclusion: true})
	}
	segments = append(segments, segment{blocks: finalBlocks, isForcedInclusion: log.IsForcedInclusion})

	parent, forkHeight, err := LoadParentState(ctx, p.parents, log.ProposalID)
	if err != nil {
		return nil, errors.Wrap(err, "load parent state")
	}

	var attrs []*core.TaikoPayloadAttributes

	for si, seg := range segments {
		isFinalSeg := si == len(segments)-1

		blocks := seg.blocks
		if err := validateBlockCount(blocks); err != nil {
			blocks = []*core.BlockManifest{defaultManifest(
				parent, log.Proposer, log.ProposalTimestamp, forkHeight, log.OriginBlockNumber,
			)}
		}

		for bi, block := range blocks {
			if verr := validateManifest(block, parent, log.OriginBlockNumber, log.ProposalTimestamp, forkHeight, seg.isForcedInclusion); verr != nil {
				substituted := defaultManifest(parent, log.Proposer, log.ProposalTimestamp, forkHeight, log.OriginBlockNumber)
				if verr2 := validateManifest(substituted, parent, log.OriginBlockNumber, log.ProposalTimestamp, forkHeight, seg.isForcedInclusion); verr2 != nil {
					return nil, &ErrManifestUnrecoverable{Cause: verr2}
				}
				block = substituted
			}

			isFinalBlock := isFinalSeg && bi == len(blocks)-1

			pa, next, err := p.deriveBlock(block, parent, log, forkHeight, proverAuthBytes, isFinalBlock)
			if err != nil {
				return nil, errors.Wrap(err, "derive block")
			}
			attrs = append(attrs, pa)
			parent = next
		}
	}

	return attrs, nil
}

func (p *Pipeline) deriveBlock(
	block *core.BlockManifest,
	parent *ParentState,
	log *encoding.ProposedEventPayload,
	forkHeight uint64,
	proverAuthBytes []byte,
	isFinalBlock bool,
) (*core.TaikoPayloadAttributes, *ParentState, error) {
	blockNumber := parent.BlockNumber + 1

	blockTime := computeBlockTime(parent, block.Timestamp)
	baseFee := computeBaseFee(parent, forkHeight, blockNumber, blockTime)

	difficulty, err := encoding.BlockDifficulty(parent.PrevRandao, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return nil, nil, err
	}

	txs := make(types.Transactions, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		txs = append(txs, tx.Raw)
	}
	txList, err := encoding.CompressTxList(txs)
	if err != nil {
		return nil, nil, err
	}

	const isLowBondProposal = byte(0)
	extraData := make([]byte, 0, 34)
	extraData = append(extraData, log.BasefeeSharingPctg, isLowBondProposal)
	extraData = append(extraData, log.BondInstructionsHash.Bytes()...)

	var buildPayloadArgsID [8]byte
	if isFinalBlock {
		putUint64BE(buildPayloadArgsID[:], log.ProposalID)
	}

	var sig [65]byte
	// prover_auth_bytes is left-aligned into the 65-byte signature field,
	// truncated if longer; not validated by this layer (see DESIGN.md).
	copy(sig[:], proverAuthBytes)

	l1Origin := &core.L1Origin{
		BlockID:            new(big.Int).SetUint64(blockNumber),
		L1BlockHeight:      new(big.Int).SetUint64(log.OriginBlockNumber),
		BuildPayloadArgsID: buildPayloadArgsID,
		IsForcedInclusion:  log.IsForcedInclusion,
		Signature:          sig,
	}

	attrs := &core.TaikoPayloadAttributes{
		PayloadAttributes: core.PayloadAttributes{
			Timestamp:             block.Timestamp,
			PrevRandao:            difficulty,
			SuggestedFeeRecipient: block.Coinbase,
		},
		BaseFeePerGas: baseFee,
		BlockMetadata: core.BlockMetadata{
			Beneficiary: block.Coinbase,
			GasLimit:    block.GasLimit,
			Timestamp:   block.Timestamp,
			MixHash:     difficulty,
			TxList:      txList,
			ExtraData:   extraData,
		},
		L1Origin: l1Origin,
	}

	next := advance(parent, common.Hash{}, block.Timestamp, block.GasLimit, block.AnchorBlockNumber, blockNumber, difficulty, baseFee)

	return attrs, next, nil
}

func putUint64BE(dst []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}
