// Package router implements the preconfirmation production router: the
// single place where a preconfirmed payload and a canonical L1-derived
// payload compete for the same execution engine, arbitrated by the
// canonical tip so a preconfirmation can never overwrite a block the
// canonical path has already finalized.
package router

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taikoxyz/surge-preconf-client/bindings/encoding"
	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/derivation"
	"github.com/taikoxyz/surge-preconf-client/pkg/rpc"
)

// ErrPreconfIngressNotReady is returned when a preconfirmation arrives
// before the canonical tip has materialized a first known block.
var ErrPreconfIngressNotReady = errors.New("preconfirmation ingress not ready: canonical tip unknown")

// CanonicalTipReader exposes the event syncer's published canonical tip to
// the router without coupling it to the syncer's internals.
type CanonicalTipReader interface {
	CanonicalTip() core.CanonicalTip
}

// PreconfirmationInput is a gossip-ingested preconfirmed block, already
// resolved to payload attributes by the caller (commitment store / P2P
// layer) once its raw tx list has been matched against the commitment's
// hash.
type PreconfirmationInput struct {
	BlockNumber uint64
	Attrs       *core.TaikoPayloadAttributes
}

// L1ProposalInput is a decoded "Proposed" log driving the canonical path.
type L1ProposalInput struct {
	Log *encoding.ProposedEventPayload
}

// Outcome is what a single Route call produced. Stale inputs return a
// zero-value Outcome and deferred inputs an Outcome with only Deferred set;
// both have Applied=false and no error.
type Outcome struct {
	Applied bool
	Results []*rpc.ApplyOutcome
	Deferred bool
}

// Router is the preconfirmation production router.
type Router struct {
	engine   rpc.Engine
	tip      CanonicalTipReader
	pipeline *derivation.Pipeline

	staleDropped   prometheus.Counter
	applyFailed    prometheus.Counter
}

func New(engine rpc.Engine, tip CanonicalTipReader, pipeline *derivation.Pipeline) *Router {
	return &Router{
		engine:   engine,
		tip:      tip,
		pipeline: pipeline,
		staleDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "preconf_stale_dropped_total",
			Help: "Preconfirmations dropped because their block number was at or behind the canonical tip.",
		}),
		applyFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "preconf_apply_failed_total",
			Help: "Preconfirmation apply_payload calls that failed with a non-deferrable error.",
		}),
	}
}

// Describe/Collect let callers register the router's counters with a
// prometheus.Registry without exposing the counters directly.
func (r *Router) Describe(ch chan<- *prometheus.Desc) {
	r.staleDropped.Describe(ch)
	r.applyFailed.Describe(ch)
}

func (r *Router) Collect(ch chan<- prometheus.Metric) {
	r.staleDropped.Collect(ch)
	r.applyFailed.Collect(ch)
}

// RoutePreconfirmation implements the preconfirmation path.
func (r *Router) RoutePreconfirmation(ctx context.Context, in PreconfirmationInput) (Outcome, error) {
	tip := r.tip.CanonicalTip()
	if !tip.Known() {
		return Outcome{}, ErrPreconfIngressNotReady
	}
	if in.BlockNumber <= tip.BlockNumber {
		r.staleDropped.Inc()
		return Outcome{}, nil
	}

	parentHash, err := r.engine.BlockHashByNumber(ctx, in.BlockNumber-1)
	if err != nil {
		return Outcome{}, err
	}

	result, err := r.engine.ApplyPayload(ctx, in.Attrs, parentHash, nil)
	if err == nil {
		return Outcome{Applied: true, Results: []*rpc.ApplyOutcome{result}}, nil
	}

	var engineErr *rpc.EngineError
	if errors.As(err, &engineErr) {
		switch engineErr.Kind {
		case rpc.EngineErrorSyncing, rpc.EngineErrorMissingParent:
			return Outcome{Deferred: true}, nil
		case rpc.EngineErrorInvalidBlock:
			r.applyFailed.Inc()
			return Outcome{}, nil
		}
	}
	return Outcome{}, err
}

// RouteL1Proposal implements the canonical path: it runs the derivation
// pipeline for the log and applies every resulting block in order,
// stopping at the first apply failure.
func (r *Router) RouteL1Proposal(ctx context.Context, in L1ProposalInput) (Outcome, error) {
	attrsList, err := r.pipeline.Process(ctx, in.Log)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "derive proposal")
	}

	var results []*rpc.ApplyOutcome
	parentHash := common.Hash{}
	for i, attrs := range attrsList {
		if i == 0 {
			blockNumber := attrs.L1Origin.BlockID.Uint64() - 1
			ph, err := r.engine.BlockHashByNumber(ctx, blockNumber)
			if err != nil {
				return Outcome{}, errors.Wrap(err, "resolve parent hash")
			}
			parentHash = ph
		} else {
			parentHash = results[len(results)-1].BlockHash
		}

		result, err := r.engine.ApplyPayload(ctx, attrs, parentHash, nil)
		if err != nil {
			return Outcome{Applied: len(results) > 0, Results: results}, errors.Wrap(err, "apply canonical payload")
		}
		results = append(results, result)
	}

	return Outcome{Applied: true, Results: results}, nil
}
