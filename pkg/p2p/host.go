package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	golibp2p "github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p/reputation"
)

// protocolPrefix namespaces every request/response protocol ID this driver
// registers, the same way topics are namespaced by their bare name.
const protocolPrefix = "/surge/preconf/1.0.0"

// streamDeadline bounds a single request/response exchange's stream I/O,
// both the initial write and the matching read.
const streamDeadline = 10 * time.Second

// Host wires Driver's gossip topics and request/response protocols onto a
// real libp2p transport: gossipsub for the two broadcast topics, and a
// length-delimited JSON stream protocol for each of commitments/
// raw_tx_list/head. Package p2p's own types (Driver, InboundHandler,
// GossipIngress) stay transport-agnostic; this file is the one place that
// actually opens sockets.
type Host struct {
	host    host.Host
	pubsub  *pubsub.PubSub
	driver  *Driver
	ingress *GossipIngress

	commitmentTopic *pubsub.Topic
	rawTxListTopic  *pubsub.Topic
}

// NewHost creates a libp2p host listening on listenAddrs, joins both gossip
// topics, and registers the three request/response protocol handlers
// against driver's InboundHandler. Callers must call Run to begin serving
// gossip and, separately, dial peers to populate PeerHandle targets.
func NewHost(ctx context.Context, listenAddrs []string, driver *Driver, ingress *GossipIngress) (*Host, error) {
	addrs := make([]ma.Multiaddr, 0, len(listenAddrs))
	for _, raw := range listenAddrs {
		addr, err := ma.NewMultiaddr(raw)
		if err != nil {
			return nil, fmt.Errorf("parse listen addr %q: %w", raw, err)
		}
		addrs = append(addrs, addr)
	}

	h, err := golibp2p.New(golibp2p.ListenAddrs(addrs...))
	if err != nil {
		return nil, fmt.Errorf("create libp2p host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("create gossipsub: %w", err)
	}

	commitmentTopic, err := ps.Join(TopicSignedCommitment)
	if err != nil {
		return nil, fmt.Errorf("join %s topic: %w", TopicSignedCommitment, err)
	}

	rawTxListTopic, err := ps.Join(TopicRawTxList)
	if err != nil {
		return nil, fmt.Errorf("join %s topic: %w", TopicRawTxList, err)
	}

	hp := &Host{
		host:            h,
		pubsub:          ps,
		driver:          driver,
		ingress:         ingress,
		commitmentTopic: commitmentTopic,
		rawTxListTopic:  rawTxListTopic,
	}

	hp.registerStreamHandlers()

	return hp, nil
}

// ID returns the host's own peer id.
func (h *Host) ID() peer.ID { return h.host.ID() }

// Addrs returns the host's listen multiaddrs, for advertising to peers out
// of band (bootstrap config, discovery service, etc).
func (h *Host) Addrs() []ma.Multiaddr { return h.host.Addrs() }

// Connect dials a peer by its address info, the prerequisite for both
// opening a PeerHandle's request/response streams and getting subscribed
// to that peer's gossip.
func (h *Host) Connect(ctx context.Context, pi peer.AddrInfo) error {
	return h.host.Connect(ctx, pi)
}

// Close tears down the gossip subscriptions and the underlying host.
func (h *Host) Close() error {
	h.commitmentTopic.Close()
	h.rawTxListTopic.Close()
	return h.host.Close()
}

// Run subscribes to both gossip topics and feeds every message into
// ingress until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	commitSub, err := h.commitmentTopic.Subscribe()
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicSignedCommitment, err)
	}
	defer commitSub.Cancel()

	txlistSub, err := h.rawTxListTopic.Subscribe()
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicRawTxList, err)
	}
	defer txlistSub.Cancel()

	go h.consumeCommitments(ctx, commitSub)
	go h.consumeRawTxLists(ctx, txlistSub)

	<-ctx.Done()
	return ctx.Err()
}

func (h *Host) consumeCommitments(ctx context.Context, sub *pubsub.Subscription) {
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("signed_commitment gossip subscription ended", "error", err)
			}
			return
		}
		if msg.ReceivedFrom == h.host.ID() {
			continue
		}

		var c core.SignedCommitment
		if err := json.Unmarshal(msg.Data, &c); err != nil {
			h.driver.Reputation.Apply(msg.ReceivedFrom.String(), reputation.GossipInvalid)
			continue
		}
		h.ingress.HandleCommitmentGossip(msg.ReceivedFrom.String(), c)
	}
}

func (h *Host) consumeRawTxLists(ctx context.Context, sub *pubsub.Subscription) {
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("raw_tx_list gossip subscription ended", "error", err)
			}
			return
		}
		if msg.ReceivedFrom == h.host.ID() {
			continue
		}

		var t core.RawTxListGossip
		if err := json.Unmarshal(msg.Data, &t); err != nil {
			h.driver.Reputation.Apply(msg.ReceivedFrom.String(), reputation.GossipInvalid)
			continue
		}
		h.ingress.HandleRawTxListGossip(msg.ReceivedFrom.String(), t)
	}
}

// PublishCommitment broadcasts a locally produced commitment on the
// signed_commitment topic.
func (h *Host) PublishCommitment(ctx context.Context, c core.SignedCommitment) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return h.commitmentTopic.Publish(ctx, data)
}

// PublishRawTxList broadcasts a locally produced raw tx list on the
// raw_tx_list topic.
func (h *Host) PublishRawTxList(ctx context.Context, t core.RawTxListGossip) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return h.rawTxListTopic.Publish(ctx, data)
}

func reqRespProtocolID(p ReqRespProtocol) protocol.ID {
	return protocol.ID(protocolPrefix + "/" + string(p))
}

func (h *Host) registerStreamHandlers() {
	h.host.SetStreamHandler(reqRespProtocolID(ProtocolCommitments), h.handleCommitmentsStream)
	h.host.SetStreamHandler(reqRespProtocolID(ProtocolRawTxList), h.handleRawTxListStream)
	h.host.SetStreamHandler(reqRespProtocolID(ProtocolHead), h.handleHeadStream)
}

func (h *Host) handleCommitmentsStream(s network.Stream) {
	defer s.Close()
	_ = s.SetDeadline(time.Now().Add(streamDeadline))

	peerID := s.Conn().RemotePeer().String()

	var req CommitmentsRequest
	if err := readMessage(s, &req); err != nil {
		log.Debug("decode commitments request", "peer", peerID, "error", err)
		return
	}

	resp, ok := h.driver.Inbound.HandleCommitments(peerID, req)
	if !ok {
		s.Reset()
		return
	}
	if err := writeMessage(s, resp); err != nil {
		log.Debug("write commitments response", "peer", peerID, "error", err)
	}
}

func (h *Host) handleRawTxListStream(s network.Stream) {
	defer s.Close()
	_ = s.SetDeadline(time.Now().Add(streamDeadline))

	peerID := s.Conn().RemotePeer().String()

	var req RawTxListRequest
	if err := readMessage(s, &req); err != nil {
		log.Debug("decode raw_tx_list request", "peer", peerID, "error", err)
		return
	}

	resp, ok := h.driver.Inbound.HandleRawTxList(peerID, req)
	if !ok {
		s.Reset()
		return
	}
	if err := writeMessage(s, resp); err != nil {
		log.Debug("write raw_tx_list response", "peer", peerID, "error", err)
	}
}

func (h *Host) handleHeadStream(s network.Stream) {
	defer s.Close()
	_ = s.SetDeadline(time.Now().Add(streamDeadline))

	peerID := s.Conn().RemotePeer().String()

	resp, ok := h.driver.Inbound.HandleHead(peerID)
	if !ok {
		s.Reset()
		return
	}
	if err := writeMessage(s, resp); err != nil {
		log.Debug("write head response", "peer", peerID, "error", err)
	}
}

// PeerHandle adapts a single connected peer's request/response streams to
// catchup.PeerHandle.
type PeerHandle struct {
	host *Host
	peer peer.ID
}

// Peer builds a PeerHandle for an already-connected peer.
func (h *Host) Peer(id peer.ID) *PeerHandle {
	return &PeerHandle{host: h, peer: id}
}

func (p *PeerHandle) openStream(ctx context.Context, proto ReqRespProtocol) (network.Stream, error) {
	s, err := p.host.host.NewStream(ctx, p.peer, reqRespProtocolID(proto))
	if err != nil {
		return nil, err
	}
	_ = s.SetDeadline(time.Now().Add(streamDeadline))
	return s, nil
}

// Head implements catchup.PeerHandle.
func (p *PeerHandle) Head(ctx context.Context) (core.PreconfHead, error) {
	id := p.host.driver.Outbound.Begin(p.peer.String(), ProtocolHead)

	s, err := p.openStream(ctx, ProtocolHead)
	if err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeError)
		return core.PreconfHead{}, err
	}
	defer s.Close()

	var resp core.PreconfHead
	if err := readMessage(s, &resp); err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeTimeout)
		return core.PreconfHead{}, err
	}

	if err := p.host.driver.Validator().ValidateHead(p.peer.String(), resp); err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeError)
		return core.PreconfHead{}, err
	}
	p.host.driver.Outbound.Complete(id, OutcomeSuccess)
	return resp, nil
}

// Commitments implements catchup.PeerHandle.
func (p *PeerHandle) Commitments(ctx context.Context, start uint64, maxCount uint32) ([]core.SignedCommitment, error) {
	id := p.host.driver.Outbound.Begin(p.peer.String(), ProtocolCommitments)

	s, err := p.openStream(ctx, ProtocolCommitments)
	if err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeError)
		return nil, err
	}
	defer s.Close()

	if err := writeMessage(s, CommitmentsRequest{Start: start, MaxCount: maxCount}); err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeError)
		return nil, err
	}

	var resp []core.SignedCommitment
	if err := readMessage(s, &resp); err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeTimeout)
		return nil, err
	}

	if err := p.host.driver.Validator().ValidateCommitments(p.peer.String(), resp); err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeError)
		return nil, err
	}
	p.host.driver.Outbound.Complete(id, OutcomeSuccess)
	return resp, nil
}

// RawTxList implements catchup.PeerHandle.
func (p *PeerHandle) RawTxList(ctx context.Context, hash common.Hash) (RawTxListResponse, error) {
	id := p.host.driver.Outbound.Begin(p.peer.String(), ProtocolRawTxList)

	s, err := p.openStream(ctx, ProtocolRawTxList)
	if err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeError)
		return RawTxListResponse{}, err
	}
	defer s.Close()

	if err := writeMessage(s, RawTxListRequest{Hash: hash}); err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeError)
		return RawTxListResponse{}, err
	}

	var resp RawTxListResponse
	if err := readMessage(s, &resp); err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeTimeout)
		return RawTxListResponse{}, err
	}

	if err := p.host.driver.Validator().ValidateRawTxList(p.peer.String(), resp); err != nil {
		p.host.driver.Outbound.Complete(id, OutcomeError)
		return RawTxListResponse{}, err
	}

	outcome := OutcomeSuccess
	if !resp.Found {
		outcome = OutcomeNotFound
	}
	p.host.driver.Outbound.Complete(id, outcome)
	return resp, nil
}
