package bindings

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// WhitelistSnapshotter adapts PreconfWhitelistCaller to
// lookahead.OperatorSnapshotter, pinning the call to the L1 block closest
// to the epoch's start so a later reorg can't change a past resolution.
type WhitelistSnapshotter struct {
	caller        *PreconfWhitelistCaller
	blockByTime   func(ctx context.Context, epochStart uint64) (*big.Int, error)
}

// NewWhitelistSnapshotter wires a WhitelistSnapshotter. blockByTime resolves
// an L1 timestamp to the L1 block number to pin the call at; pass nil to
// always query the latest block instead (acceptable for a live resolver
// that never re-resolves historical epochs).
func NewWhitelistSnapshotter(
	address common.Address,
	backend bind.ContractCaller,
	blockByTime func(ctx context.Context, epochStart uint64) (*big.Int, error),
) (*WhitelistSnapshotter, error) {
	contract, err := NewPreconfWhitelist(address, backend)
	if err != nil {
		return nil, err
	}
	return &WhitelistSnapshotter{caller: &contract.PreconfWhitelistCaller, blockByTime: blockByTime}, nil
}

// GetOperatorForCurrentEpoch implements lookahead.OperatorSnapshotter.
func (s *WhitelistSnapshotter) GetOperatorForCurrentEpoch(
	ctx context.Context,
	epochStart uint64,
) (common.Address, error) {
	opts := &bind.CallOpts{Context: ctx}

	if s.blockByTime != nil {
		blockNumber, err := s.blockByTime(ctx, epochStart)
		if err != nil {
			return common.Address{}, err
		}
		opts.BlockNumber = blockNumber
	}

	return s.caller.GetOperatorForCurrentEpoch(opts)
}
