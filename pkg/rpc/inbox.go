package rpc

import "context"

// InboxReader reads the on-chain inbox ring-buffer state: the next
// free proposal slot, the mapping from a proposal to its last L2 block id,
// and the engine's recorded head L1 origin.
type InboxReader interface {
	GetNextProposalID(ctx context.Context) (uint64, error)
	GetLastBlockIDByBatchID(ctx context.Context, proposalID uint64) (*uint64, error)
	GetHeadL1OriginBlockID(ctx context.Context) (*uint64, error)
}

// ConfirmedSyncSnapshot is the strict "confirmed sync" snapshot used for
// catch-up boundary computation and the `/status` endpoint.
type ConfirmedSyncSnapshot struct {
	TargetProposalID      uint64
	TargetBlockID         *uint64
	HeadL1OriginBlockID   *uint64
}

// IsReady reports whether the confirmed chain has caught up: true iff the
// target is proposal 0, or the target block id is known and the head
// origin has reached it.
func (s ConfirmedSyncSnapshot) IsReady() bool {
	if s.TargetProposalID == 0 {
		return true
	}
	if s.TargetBlockID == nil || s.HeadL1OriginBlockID == nil {
		return false
	}
	return *s.HeadL1OriginBlockID >= *s.TargetBlockID
}

// NewConfirmedSyncSnapshot builds the snapshot from an InboxReader read:
// target_proposal_id = next_proposal_id - 1.
func NewConfirmedSyncSnapshot(ctx context.Context, inbox InboxReader) (*ConfirmedSyncSnapshot, error) {
	next, err := inbox.GetNextProposalID(ctx)
	if err != nil {
		return nil, err
	}

	var target uint64
	if next > 0 {
		target = next - 1
	}

	targetBlock, err := inbox.GetLastBlockIDByBatchID(ctx, target)
	if err != nil {
		return nil, err
	}

	headOrigin, err := inbox.GetHeadL1OriginBlockID(ctx)
	if err != nil {
		return nil, err
	}

	return &ConfirmedSyncSnapshot{
		TargetProposalID:    target,
		TargetBlockID:       targetBlock,
		HeadL1OriginBlockID: headOrigin,
	}, nil
}
