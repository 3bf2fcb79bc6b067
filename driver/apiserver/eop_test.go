package apiserver

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/notifier"
)

type fakeQueue struct {
	published []notifier.Notification
	closed    bool
}

func (f *fakeQueue) Close() { f.closed = true }

func (f *fakeQueue) Publish(_ context.Context, n notifier.Notification) error {
	f.published = append(f.published, n)
	return nil
}

func TestEOPTrackerPublishDeliversToSubscribers(t *testing.T) {
	tracker := NewEOPTracker(nil)
	ch, unsubscribe := tracker.Subscribe()
	defer unsubscribe()

	head := core.PreconfHead{BlockNumber: 7, BlockHash: common.HexToHash("0x07")}
	tracker.Publish(context.Background(), head)

	select {
	case n := <-ch:
		require.Equal(t, head.BlockNumber, n.BlockNumber)
		require.Equal(t, head.BlockHash, n.BlockHash)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the notification")
	}
}

func TestEOPTrackerSnapshotReturnsLastPublished(t *testing.T) {
	tracker := NewEOPTracker(nil)
	require.Equal(t, common.Hash{}, tracker.Snapshot().BlockHash)

	head := core.PreconfHead{BlockNumber: 3, BlockHash: common.HexToHash("0x03")}
	tracker.Publish(context.Background(), head)
	require.Equal(t, head.BlockHash, tracker.Snapshot().BlockHash)
}

func TestEOPTrackerUnsubscribeStopsDelivery(t *testing.T) {
	tracker := NewEOPTracker(nil)
	ch, unsubscribe := tracker.Subscribe()
	unsubscribe()

	tracker.Publish(context.Background(), core.PreconfHead{BlockNumber: 1})

	select {
	case _, ok := <-ch:
		require.False(t, ok, "channel should not deliver after unsubscribe")
	default:
	}
}

func TestEOPTrackerMirrorsToQueue(t *testing.T) {
	q := &fakeQueue{}
	tracker := NewEOPTracker(q)

	head := core.PreconfHead{BlockNumber: 9, BlockHash: common.HexToHash("0x09")}
	tracker.Publish(context.Background(), head)

	require.Len(t, q.published, 1)
	require.Equal(t, head.BlockNumber, q.published[0].BlockNumber)
	require.Equal(t, head.BlockHash.Hex(), q.published[0].BlockHash)
}

func TestEOPTrackerSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	tracker := NewEOPTracker(nil)
	ch, unsubscribe := tracker.Subscribe()
	defer unsubscribe()

	// Fill the subscriber's buffered channel without draining it, then
	// publish well past its capacity: Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 32; i++ {
			tracker.Publish(context.Background(), core.PreconfHead{BlockNumber: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	<-ch
}
