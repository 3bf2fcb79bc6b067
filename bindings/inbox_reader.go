package bindings

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// InboxReader wraps a read-only Inbox binding, translating its big.Int/bool
// return shapes into the uint64/ok pairs the embedded engine driver expects.
type InboxReader struct {
	caller *InboxCaller
}

// NewInboxReader binds an InboxReader to a deployed inbox contract address
// over the given read-only backend (typically an ethclient.Client).
func NewInboxReader(address common.Address, backend bind.ContractCaller) (*InboxReader, error) {
	contract, err := NewInbox(address, backend)
	if err != nil {
		return nil, err
	}
	return &InboxReader{caller: &contract.InboxCaller}, nil
}

// NextProposalID returns the inbox's next-proposal counter.
func (r *InboxReader) NextProposalID(ctx context.Context) (uint64, error) {
	state, err := r.caller.GetCoreState(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, err
	}
	return state.NextProposalId.Uint64(), nil
}

// LastBlockIDByBatchID returns the last L2 block ID proposed in the given
// batch, or (0, false) if the inbox has no record for it (a returned block
// ID of 0 is the contract's "unset" sentinel).
func (r *InboxReader) LastBlockIDByBatchID(ctx context.Context, proposalID uint64) (uint64, bool, error) {
	blockID, err := r.caller.LastBlockIdByBatchId(&bind.CallOpts{Context: ctx}, new(big.Int).SetUint64(proposalID))
	if err != nil {
		return 0, false, err
	}
	if blockID.Sign() == 0 {
		return 0, false, nil
	}
	return blockID.Uint64(), true, nil
}

// HeadL1Origin returns the confirmed event-sync tip, or (0, false) if the
// inbox has not recorded one yet.
func (r *InboxReader) HeadL1Origin(ctx context.Context) (uint64, bool, error) {
	origin, err := r.caller.HeadL1Origin(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, false, err
	}
	if !origin.Exists {
		return 0, false, nil
	}
	return origin.BlockId.Uint64(), true, nil
}
