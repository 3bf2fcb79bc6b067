package apiserver

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/notifier"
	"github.com/taikoxyz/surge-preconf-client/pkg/restapi"
)

// EOPTracker fans a closed sequencing window out to every `/ws` subscriber
// and, if configured, mirrors it to an external queue. The ingress
// forwarding path itself (commitment -> applied block) stays on Go
// channels/direct calls; this is strictly the notification side effect.
type EOPTracker struct {
	mu   sync.Mutex
	last restapi.EndOfSequencingNotification
	subs map[int]chan restapi.EndOfSequencingNotification
	next int

	mirror notifier.Queue
}

// NewEOPTracker builds a tracker. mirror may be nil to skip the off-box
// mirror entirely.
func NewEOPTracker(mirror notifier.Queue) *EOPTracker {
	return &EOPTracker{
		subs:   make(map[int]chan restapi.EndOfSequencingNotification),
		mirror: mirror,
	}
}

// Publish records head as the latest end-of-sequencing block and delivers
// it to every current subscriber (best-effort: a slow subscriber drops the
// notification rather than blocking the publisher) plus the external
// mirror, if configured.
func (t *EOPTracker) Publish(ctx context.Context, head core.PreconfHead) {
	n := restapi.EndOfSequencingNotification{BlockNumber: head.BlockNumber, BlockHash: head.BlockHash}

	t.mu.Lock()
	t.last = n
	subs := make([]chan restapi.EndOfSequencingNotification, 0, len(t.subs))
	for _, ch := range t.subs {
		subs = append(subs, ch)
	}
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- n:
		default:
		}
	}

	if t.mirror == nil {
		return
	}
	if err := t.mirror.Publish(ctx, notifier.Notification{
		BlockNumber: n.BlockNumber,
		BlockHash:   n.BlockHash.Hex(),
	}); err != nil {
		log.Warn("mirror end-of-sequencing notification", "block", n.BlockNumber, "error", err)
	}
}

// Subscribe registers a new `/ws` listener; the returned func must be
// called once the caller stops reading to release the channel.
func (t *EOPTracker) Subscribe() (<-chan restapi.EndOfSequencingNotification, func()) {
	ch := make(chan restapi.EndOfSequencingNotification, 8)

	t.mu.Lock()
	id := t.next
	t.next++
	t.subs[id] = ch
	t.mu.Unlock()

	unsubscribe := func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
	return ch, unsubscribe
}

// Snapshot returns the most recently published notification, the zero
// value if none has been observed yet.
func (t *EOPTracker) Snapshot() restapi.EndOfSequencingNotification {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
