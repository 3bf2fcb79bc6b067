// Package p2p implements the preconfirmation gossip/request-response
// network driver: gossip publication of signed commitments and raw tx
// lists, request/response protocols for range and by-hash lookups, and the
// peer reputation and rate-limiting that gate both.
package p2p

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p/ratelimit"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p/reputation"
)

// ResponseValidator checks an outbound response's signature, hash, and
// ordering before it's accepted. Left pluggable so the signing scheme
// (commitment signatures, tx-list hash matching) stays outside this
// package's concerns.
type ResponseValidator interface {
	ValidateCommitments(peerID string, resp []core.SignedCommitment) error
	ValidateRawTxList(peerID string, resp RawTxListResponse) error
	ValidateHead(peerID string, resp core.PreconfHead) error
}

// EventKind discriminates NetworkEvent's payload.
type EventKind int

const (
	EventCommitments EventKind = iota
	EventRawTxList
	EventHead
)

// NetworkEvent is emitted once an outbound response has been validated,
// carrying the correlation id so the original requester can match it up.
type NetworkEvent struct {
	Kind          EventKind
	CorrelationID OutboundRequestID
	Commitments   []core.SignedCommitment
	RawTxList     RawTxListResponse
	Head          core.PreconfHead
}

// Driver ties together outbound tracking, inbound handling, reputation,
// and rate limiting for the preconfirmation P2P network.
type Driver struct {
	Reputation *reputation.Store
	Outbound   *OutboundTracker
	Inbound    *InboundHandler
	Limiter    *ratelimit.Limiter

	validator ResponseValidator
	events    chan NetworkEvent
}

// New wires a Driver around a commitment store and response validator,
// rate-limiting inbound requests to maxRequests per window for each
// (peer, protocol) pair. eventBuffer sizes the NetworkEvent channel.
func New(store CommitmentStore, validator ResponseValidator, window time.Duration, maxRequests uint32, eventBuffer int) *Driver {
	rep := reputation.NewStore(reputation.DefaultConfig())
	limiter := ratelimit.New(window, maxRequests)

	return &Driver{
		Reputation: rep,
		Outbound:   NewOutboundTracker(rep),
		Inbound:    NewInboundHandler(store, rep, limiter),
		Limiter:    limiter,
		validator:  validator,
		events:     make(chan NetworkEvent, eventBuffer),
	}
}

// Events returns the channel NetworkEvents are published on.
func (d *Driver) Events() <-chan NetworkEvent { return d.events }

// Validator exposes the configured ResponseValidator so a synchronous
// caller (the libp2p host wiring's per-peer request handle) can validate a
// response inline rather than waiting on the NetworkEvent stream.
func (d *Driver) Validator() ResponseValidator { return d.validator }

// HandleOutboundCommitmentsResponse validates and completes an outbound
// commitments{} request, emitting a NetworkEvent on success.
func (d *Driver) HandleOutboundCommitmentsResponse(id OutboundRequestID, peerID string, resp []core.SignedCommitment) {
	if err := d.validator.ValidateCommitments(peerID, resp); err != nil {
		d.Outbound.Complete(id, OutcomeError)
		return
	}
	d.Outbound.Complete(id, OutcomeSuccess)
	d.emit(NetworkEvent{Kind: EventCommitments, CorrelationID: id, Commitments: resp})
}

// HandleOutboundRawTxListResponse validates and completes an outbound
// raw_tx_list{} request. An explicit not-found reply is recorded as such,
// without a positive reputation bump.
func (d *Driver) HandleOutboundRawTxListResponse(id OutboundRequestID, peerID string, resp RawTxListResponse) {
	if err := d.validator.ValidateRawTxList(peerID, resp); err != nil {
		d.Outbound.Complete(id, OutcomeError)
		return
	}
	outcome := OutcomeSuccess
	if !resp.Found {
		outcome = OutcomeNotFound
	}
	d.Outbound.Complete(id, outcome)
	d.emit(NetworkEvent{Kind: EventRawTxList, CorrelationID: id, RawTxList: resp})
}

// HandleOutboundHeadResponse validates and completes an outbound head{}
// request.
func (d *Driver) HandleOutboundHeadResponse(id OutboundRequestID, peerID string, resp core.PreconfHead) {
	if err := d.validator.ValidateHead(peerID, resp); err != nil {
		d.Outbound.Complete(id, OutcomeError)
		return
	}
	d.Outbound.Complete(id, OutcomeSuccess)
	d.emit(NetworkEvent{Kind: EventHead, CorrelationID: id, Head: resp})
}

func (d *Driver) emit(event NetworkEvent) {
	select {
	case d.events <- event:
	default:
	}
}

// RequestRawTxListByHash is a convenience wrapper used by callers that
// already know which peer to ask; the actual stream I/O lives in the
// libp2p host wiring outside this package, which calls Begin/Complete
// around its own send/receive.
func (d *Driver) RequestRawTxListByHash(peerID string, hash common.Hash) OutboundRequestID {
	return d.Outbound.Begin(peerID, ProtocolRawTxList)
}
