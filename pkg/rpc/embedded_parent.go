package rpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/taikoxyz/surge-preconf-client/pkg/derivation"
)

// l1OriginJSON mirrors the embedded execution client's l1Origin RPC
// response: the L2 header fields the derivation pipeline needs to resume
// from, plus the L1 batch that produced it.
type l1OriginJSON struct {
	BlockID           *big.Int    `json:"blockID"`
	L2BlockHash       common.Hash `json:"l2BlockHash"`
	ParentHash        common.Hash `json:"l2ParentHash"`
	Timestamp         uint64      `json:"timestamp"`
	GasLimit          uint64      `json:"gasLimit"`
	AnchorBlockNumber uint64      `json:"anchorBlockNumber"`
	PrevRandao        common.Hash `json:"prevRandao"`
	BaseFee           *big.Int    `json:"baseFeePerGas"`
}

func (o *l1OriginJSON) toParentState() *derivation.ParentState {
	return &derivation.ParentState{
		Header:            o.L2BlockHash,
		Timestamp:         o.Timestamp,
		GasLimit:          o.GasLimit,
		BlockNumber:       o.BlockID.Uint64(),
		AnchorBlockNumber: o.AnchorBlockNumber,
		PrevRandao:        o.PrevRandao,
		BaseFee:           o.BaseFee,
	}
}

// EmbeddedParentBlockSource resolves parent L2 state directly off the
// embedded execution client's custom taikoAuth RPC namespace, the same
// local handle EmbeddedEngine drives the engine API over.
type EmbeddedParentBlockSource struct {
	client     *gethrpc.Client
	forkHeight uint64
}

// NewEmbeddedParentBlockSource wires a ParentBlockSource around an
// already-dialed client. forkHeight is the configured Shasta activation
// height; it's static for a given deployment so there is no RPC round
// trip to fetch it.
func NewEmbeddedParentBlockSource(client *gethrpc.Client, forkHeight uint64) *EmbeddedParentBlockSource {
	return &EmbeddedParentBlockSource{client: client, forkHeight: forkHeight}
}

// LastL1OriginByBatchID resolves the last L2 block produced by a given L1
// batch, for resuming derivation mid-batch after a restart.
func (s *EmbeddedParentBlockSource) LastL1OriginByBatchID(
	ctx context.Context,
	proposalID uint64,
) (*derivation.ParentState, error) {
	var origin l1OriginJSON
	if err := s.client.CallContext(ctx, &origin, "taikoAuth_l1OriginByBatchID", proposalID); err != nil {
		return nil, err
	}
	return origin.toParentState(), nil
}

// LatestCanonical resolves the L2 chain's current head as parent state.
func (s *EmbeddedParentBlockSource) LatestCanonical(ctx context.Context) (*derivation.ParentState, error) {
	var origin l1OriginJSON
	if err := s.client.CallContext(ctx, &origin, "taikoAuth_headL1Origin"); err != nil {
		return nil, err
	}
	return origin.toParentState(), nil
}

// ShastaForkHeight returns the configured fork activation height.
func (s *EmbeddedParentBlockSource) ShastaForkHeight(context.Context) (uint64, error) {
	return s.forkHeight, nil
}
