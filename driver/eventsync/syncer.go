// Package eventsync implements the event syncer: it subscribes to L1
// proposal logs, drives each one through the derivation pipeline and the
// production router's canonical path, publishes the resulting canonical
// tip, and feeds the preconfirmation production router once that tip has
// materialized a first known block.
package eventsync

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/taikoxyz/surge-preconf-client/bindings/encoding"
	"github.com/taikoxyz/surge-preconf-client/driver/router"
	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/derivation"
	"github.com/taikoxyz/surge-preconf-client/pkg/rpc"
)

// LogSource streams decoded "Proposed" event logs for the inbox address.
type LogSource interface {
	SubscribeProposedLogs(ctx context.Context) (<-chan *encoding.ProposedEventPayload, <-chan error, error)
}

// Syncer owns the confirmed-sync snapshot, the canonical-tip watch, and the
// preconfirmation ingress queue.
type Syncer struct {
	logs    LogSource
	inbox   rpc.InboxReader
	parents derivation.ParentBlockSource
	router  *router.Router

	tip          atomic.Value // core.CanonicalTip
	proposalSeen chan uint64

	ingress    chan router.PreconfirmationInput
	readyOnce  sync.Once
	readyCh    chan struct{}
}

func New(logs LogSource, inbox rpc.InboxReader, parents derivation.ParentBlockSource, rt *router.Router) *Syncer {
	s := &Syncer{
		logs:         logs,
		inbox:        inbox,
		parents:      parents,
		router:       rt,
		proposalSeen: make(chan uint64, 256),
		ingress:      make(chan router.PreconfirmationInput, 1024),
		readyCh:      make(chan struct{}),
	}
	s.tip.Store(core.CanonicalTip{Status: core.CanonicalTipUnknown})
	return s
}

// CanonicalTip implements router.CanonicalTipReader.
func (s *Syncer) CanonicalTip() core.CanonicalTip {
	return s.tip.Load().(core.CanonicalTip)
}

// ProposalSeen returns the channel that is bumped once per successfully
// processed proposal log.
func (s *Syncer) ProposalSeen() <-chan uint64 { return s.proposalSeen }

func (s *Syncer) publishTip(blockNumber uint64) {
	current := s.CanonicalTip()
	if current.Known() && blockNumber <= current.BlockNumber {
		return
	}
	s.tip.Store(core.CanonicalTip{Status: core.CanonicalTipKnown, BlockNumber: blockNumber})
	s.readyOnce.Do(func() { close(s.readyCh) })
}

// ConfirmedSyncSnapshot reports whether the confirmed chain has caught up
// with the inbox's ring-buffer state.
func (s *Syncer) ConfirmedSyncSnapshot(ctx context.Context) (*rpc.ConfirmedSyncSnapshot, error) {
	return rpc.NewConfirmedSyncSnapshot(ctx, s.inbox)
}

// Run subscribes to proposal logs and processes them until ctx is
// cancelled or the subscription errors out.
func (s *Syncer) Run(ctx context.Context) error {
	logCh, errCh, err := s.logs.SubscribeProposedLogs(ctx)
	if err != nil {
		return errors.Wrap(err, "subscribe proposed logs")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return errors.Wrap(err, "proposed log subscription")
		case l, ok := <-logCh:
			if !ok {
				return nil
			}
			if err := s.processLog(ctx, l); err != nil {
				log.Error("failed to process proposal log", "proposalId", l.ProposalID, "err", err)
				continue
			}
			select {
			case s.proposalSeen <- l.ProposalID:
			default:
			}
		}
	}
}

// processLog implements the known-canonical fast path, then falls through
// to the router's canonical path.
func (s *Syncer) processLog(ctx context.Context, l *encoding.ProposedEventPayload) error {
	if existing, err := s.parents.LastL1OriginByBatchID(ctx, l.ProposalID); err == nil && existing != nil {
		s.publishTip(existing.BlockNumber)
		return nil
	}

	outcome, err := s.router.RouteL1Proposal(ctx, router.L1ProposalInput{Log: l})
	if err != nil {
		return err
	}
	if outcome.Applied && len(outcome.Results) > 0 {
		s.publishTip(outcome.Results[len(outcome.Results)-1].BlockNumber)
	}
	return nil
}

// SubmitPreconfirmation enqueues a preconfirmed payload for the ingress
// loop. It does not block on readiness; RunPreconfIngress does.
func (s *Syncer) SubmitPreconfirmation(ctx context.Context, in router.PreconfirmationInput) error {
	select {
	case s.ingress <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPreconfIngress drains the ingress queue, waiting for the canonical
// tip to materialize a first known block before forwarding anything to the
// router (wait_preconf_ingress_ready).
func (s *Syncer) RunPreconfIngress(ctx context.Context) error {
	select {
	case <-s.readyCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-s.ingress:
			if _, err := s.router.RoutePreconfirmation(ctx, in); err != nil {
				log.Error("failed to route preconfirmation", "blockNumber", in.BlockNumber, "err", err)
			}
		}
	}
}
