package lookahead

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// LookaheadPostedEvent is broadcast to the resolver's subscriber (if any)
// whenever a LookaheadPosted log is ingested, after its whitelist snapshot
// has been taken.
type LookaheadPostedEvent struct {
	EpochStart        uint64
	Slots             []core.LookaheadSlot
	FallbackWhitelist common.Address
}

// PostedLog is a decoded LookaheadPosted event: a full epoch's worth of
// slots posted at once.
type PostedLog struct {
	EpochStart  uint64
	Slots       []core.LookaheadSlot
	BlockNumber uint64
}

// BlacklistedLog is a decoded Blacklisted event.
type BlacklistedLog struct {
	RegistrationRoot common.Hash
	At               uint64
}

// UnblacklistedLog is a decoded Unblacklisted event.
type UnblacklistedLog struct {
	RegistrationRoot common.Hash
	At               uint64
}

// IngestLogs applies a batch of already-decoded lookahead-store logs to the
// resolver's cache and blacklist timelines. Logs should be passed in the
// order they were emitted; within that order, the three kinds are
// independent and are applied in the order given.
func (r *Resolver) IngestLogs(ctx context.Context, posted []PostedLog, blacklisted []BlacklistedLog, unblacklisted []UnblacklistedLog) error {
	for _, p := range posted {
		if err := r.ingestPosted(ctx, p); err != nil {
			return err
		}
	}
	for _, b := range blacklisted {
		r.recordBlacklist(b.RegistrationRoot, b.At, Listed)
	}
	for _, u := range unblacklisted {
		r.recordBlacklist(u.RegistrationRoot, u.At, Cleared)
	}
	return nil
}

func (r *Resolver) ingestPosted(ctx context.Context, p PostedLog) error {
	operator, err := r.snapshotter.GetOperatorForCurrentEpoch(ctx, p.EpochStart)
	if err != nil {
		return err
	}

	entry := &epochEntry{slots: p.Slots, fallbackWhitelist: operator}
	r.mu.Lock()
	r.cache.Add(p.EpochStart, entry)
	sub := r.subscriber
	r.mu.Unlock()

	if sub != nil {
		event := LookaheadPostedEvent{EpochStart: p.EpochStart, Slots: p.Slots, FallbackWhitelist: operator}
		select {
		case sub <- event:
		default:
		}
	}
	return nil
}

func (r *Resolver) recordBlacklist(registrationRoot common.Hash, at uint64, flag BlacklistFlag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timeline, ok := r.blacklist[registrationRoot]
	if !ok {
		timeline = &Timeline{}
		r.blacklist[registrationRoot] = timeline
	}
	timeline.Record(at, flag)
}
