package derivation

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ParentState is the subset of the parent L2 block's header the pipeline
// needs to derive the next one.
type ParentState struct {
	Header            common.Hash
	Timestamp         uint64
	GasLimit          uint64
	BlockNumber       uint64
	AnchorBlockNumber uint64
	PrevRandao        common.Hash
	BaseFee           *big.Int
}

// ParentBlockSource resolves the parent L2 block a proposal derives from.
// Implementations typically prefer the engine's last-l1-origin-by-batch-id
// lookup, falling back to the latest canonical block.
type ParentBlockSource interface {
	LastL1OriginByBatchID(ctx context.Context, proposalID uint64) (*ParentState, error)
	LatestCanonical(ctx context.Context) (*ParentState, error)
	ShastaForkHeight(ctx context.Context) (uint64, error)
}

// LoadParentState resolves the parent state for a proposal, preferring the
// batch-scoped lookup and falling back to the latest canonical block.
func LoadParentState(ctx context.Context, src ParentBlockSource, proposalID uint64) (*ParentState, uint64, error) {
	forkHeight, err := src.ShastaForkHeight(ctx)
	if err != nil {
		return nil, 0, err
	}

	if state, err := src.LastL1OriginByBatchID(ctx, proposalID); err == nil && state != nil {
		return state, forkHeight, nil
	}

	state, err := src.LatestCanonical(ctx)
	if err != nil {
		return nil, 0, err
	}
	return state, forkHeight, nil
}

// advance returns the ParentState a just-derived block becomes, for the
// next block in the same or a following source segment.
func advance(parent *ParentState, blockHash common.Hash, ts, gasLimit, anchorNumber, blockNumber uint64, prevRandao common.Hash, baseFee *big.Int) *ParentState {
	return &ParentState{
		Header:            blockHash,
		Timestamp:         ts,
		GasLimit:          gasLimit,
		BlockNumber:       blockNumber,
		AnchorBlockNumber: anchorNumber,
		PrevRandao:        prevRandao,
		BaseFee:           baseFee,
	}
}
