// Package notifier mirrors end-of-sequencing notifications off-box,
// following the teacher's blob-aggregator queue shape: a small Queue
// interface with a concrete transport (rabbitmq) behind it, so the
// production router's EOP fan-out doesn't need to know which transport is
// listening.
package notifier

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("notifier connection closed")

// Notification is the payload mirrored for every end-of-sequencing event.
type Notification struct {
	BlockNumber uint64 `json:"blockNumber"`
	BlockHash   string `json:"blockHash"`
}

// Queue publishes end-of-sequencing notifications to an external system.
// The ingress forwarding path itself stays on Go channels (see DESIGN.md);
// this is strictly the optional off-box mirror.
type Queue interface {
	Close()
	Publish(ctx context.Context, notification Notification) error
}

// NewQueueOpts configures a transport-backed Queue.
type NewQueueOpts struct {
	Username string
	Password string
	Host     string
	Port     string
}
