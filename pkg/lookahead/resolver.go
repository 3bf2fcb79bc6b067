// Package lookahead resolves, for any L1 timestamp, which operator is
// entitled to produce preconfirmations: the committer named in the on-chain
// lookahead table for that slot, or a whitelist fallback operator when no
// slot applies or the named committer has been blacklisted.
package lookahead

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// SecondsInEpoch is the epoch length the lookahead table is keyed by.
const SecondsInEpoch uint64 = 384

// OperatorSnapshotter resolves the whitelist fallback operator for an epoch
// that has started but has no posted lookahead entries yet.
type OperatorSnapshotter interface {
	GetOperatorForCurrentEpoch(ctx context.Context, epochStart uint64) (common.Address, error)
}

// epochEntry is one cached epoch's lookahead slots plus its fallback
// whitelist operator.
type epochEntry struct {
	slots             []core.LookaheadSlot
	fallbackWhitelist common.Address
}

// Resolver holds the epoch cache and blacklist timelines.
type Resolver struct {
	genesis        uint64
	lookbackWindow uint64
	snapshotter    OperatorSnapshotter

	mu         sync.Mutex
	cache      *lru.Cache[uint64, *epochEntry]
	blacklist  map[common.Hash]*Timeline
	subscriber chan<- LookaheadPostedEvent
}

// NewResolver builds a Resolver whose cache holds capacity epochs
// (typically the on-chain lookaheadBufferSize + 1).
func NewResolver(genesis, lookbackWindow uint64, capacity int, snapshotter OperatorSnapshotter) (*Resolver, error) {
	cache, err := lru.New[uint64, *epochEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		genesis:        genesis,
		lookbackWindow: lookbackWindow,
		snapshotter:    snapshotter,
		cache:          cache,
		blacklist:      make(map[common.Hash]*Timeline),
	}, nil
}

// Subscribe registers a channel to receive LookaheadPosted broadcasts. Only
// one subscriber is supported, matching the single-listener REST/P2P
// broadcast path this core wires it to.
func (r *Resolver) Subscribe(ch chan<- LookaheadPostedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriber = ch
}

// EpochStart floors ts to the start of its containing epoch.
func (r *Resolver) EpochStart(ts uint64) uint64 {
	return r.genesis + ((ts - r.genesis) / SecondsInEpoch) * SecondsInEpoch
}

func (r *Resolver) validate(ts, now uint64) error {
	if ts < r.genesis {
		return &ResolveError{Kind: BeforeGenesis, Timestamp: ts}
	}
	if now > ts && now-ts > r.lookbackWindow {
		return &ResolveError{Kind: TooOld, Timestamp: ts}
	}
	if r.EpochStart(ts) > r.EpochStart(now) {
		return &ResolveError{Kind: TooNew, Timestamp: ts}
	}
	return nil
}

// Resolve returns the operator entitled to produce a preconfirmation at
// timestamp ts, given the caller's view of the current L1 time now.
func (r *Resolver) Resolve(ctx context.Context, ts, now uint64) (common.Address, error) {
	if err := r.validate(ts, now); err != nil {
		return common.Address{}, err
	}

	currentStart := r.EpochStart(ts)

	entry, err := r.epochEntry(ctx, currentStart, now)
	if err != nil {
		return common.Address{}, err
	}

	if slot, ok := firstSlotAtOrAfter(entry.slots, ts); ok {
		if r.isBlacklistedAt(slot.RegistrationRoot, ts) {
			return entry.fallbackWhitelist, nil
		}
		return slot.Committer, nil
	}

	if next, ok := r.cache.Get(currentStart + SecondsInEpoch); ok {
		if slot, ok := firstSlotAtOrAfter(next.slots, ts); ok {
			if r.isBlacklistedAt(slot.RegistrationRoot, ts) {
				return entry.fallbackWhitelist, nil
			}
			return slot.Committer, nil
		}
	}

	return entry.fallbackWhitelist, nil
}

func (r *Resolver) epochEntry(ctx context.Context, epochStart, now uint64) (*epochEntry, error) {
	r.mu.Lock()
	entry, ok := r.cache.Get(epochStart)
	r.mu.Unlock()
	if ok {
		return entry, nil
	}

	if now < epochStart {
		return nil, &ErrEpochNotSynthesizable{EpochStart: epochStart}
	}

	operator, err := r.snapshotter.GetOperatorForCurrentEpoch(ctx, epochStart)
	if err != nil {
		return nil, err
	}

	entry = &epochEntry{fallbackWhitelist: operator}
	r.mu.Lock()
	r.cache.Add(epochStart, entry)
	r.mu.Unlock()
	return entry, nil
}

func (r *Resolver) isBlacklistedAt(registrationRoot common.Hash, ts uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	timeline, ok := r.blacklist[registrationRoot]
	if !ok {
		return false
	}
	return timeline.WasBlacklistedAt(ts) == Listed
}

func firstSlotAtOrAfter(slots []core.LookaheadSlot, ts uint64) (core.LookaheadSlot, bool) {
	for _, s := range slots {
		if s.Timestamp >= ts {
			return s, true
		}
	}
	return core.LookaheadSlot{}, false
}
