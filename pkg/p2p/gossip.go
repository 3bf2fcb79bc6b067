package p2p

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p/reputation"
)

// GossipStore is the subset of the commitment store's read/write surface
// gossip ingress needs: buffer unvalidated entries, promote them once
// validated, and drain commitments that were only waiting on a tx list.
type GossipStore interface {
	InsertCommitment(core.SignedCommitment)
	InsertTxList(hash common.Hash, txlist core.RawTxListGossip)
	RawTxListByHash(hash common.Hash) ([]byte, bool)
	AddAwaitingTxList(txlistHash common.Hash, c core.SignedCommitment)
	TakeAwaitingTxList(txlistHash common.Hash) []core.SignedCommitment
}

// CommitmentApplier is notified once a validated commitment and its raw tx
// list are both available, so it can be routed through the execution
// engine. Declared here rather than imported so this package doesn't need
// to depend on the driver wiring that implements it (driver/apiserver).
type CommitmentApplier interface {
	Apply(ctx context.Context, c core.SignedCommitment)
}

// GossipIngress validates commitments and tx lists arriving over the
// signed_commitment and raw_tx_list gossip topics before they're admitted
// into the commitment store, mirroring the same signer-recovery and
// lookahead check the request/response path and catch-up both apply.
type GossipIngress struct {
	store    GossipStore
	resolver SignerResolver
	rep      *reputation.Store
	applier  CommitmentApplier
}

// NewGossipIngress wires a GossipIngress. applier may be nil, in which case
// validated entries are cached but never routed through the engine (the
// behavior a catch-up-only deployment wants).
func NewGossipIngress(store GossipStore, resolver SignerResolver, rep *reputation.Store, applier CommitmentApplier) *GossipIngress {
	return &GossipIngress{store: store, resolver: resolver, rep: rep, applier: applier}
}

func (g *GossipIngress) tryApply(c core.SignedCommitment) {
	if g.applier == nil {
		return
	}
	if _, ok := g.store.RawTxListByHash(c.Commitment.Preconf.RawTxListHash); !ok {
		return
	}
	go g.applier.Apply(context.Background(), c)
}

// HandleCommitmentGossip validates and, on success, admits a commitment
// received on the signed_commitment topic. Invalid commitments are
// dropped silently; the peer's gossip score is still recorded.
func (g *GossipIngress) HandleCommitmentGossip(peerID string, c core.SignedCommitment) {
	signer, err := c.RecoverSigner()
	if err != nil {
		g.rep.Apply(peerID, reputation.GossipInvalid)
		return
	}

	now := uint64(time.Now().Unix())
	expected, err := g.resolver.Resolve(context.Background(), c.Commitment.Preconf.Timestamp, now)
	if err != nil || signer != expected {
		g.rep.Apply(peerID, reputation.GossipInvalid)
		return
	}

	g.store.InsertCommitment(c)
	g.rep.Apply(peerID, reputation.GossipValid)

	if _, ok := g.store.RawTxListByHash(c.Commitment.Preconf.RawTxListHash); !ok {
		g.store.AddAwaitingTxList(c.Commitment.Preconf.RawTxListHash, c)
		return
	}
	g.tryApply(c)
}

// HandleRawTxListGossip validates and, on success, admits a tx list
// received on the raw_tx_list topic, then promotes any commitments that
// were only waiting on it.
func (g *GossipIngress) HandleRawTxListGossip(peerID string, t core.RawTxListGossip) {
	if crypto.Keccak256Hash(t.TxList) != t.RawTxListHash {
		g.rep.Apply(peerID, reputation.GossipInvalid)
		return
	}

	g.store.InsertTxList(t.RawTxListHash, t)
	g.rep.Apply(peerID, reputation.GossipValid)

	for _, c := range g.store.TakeAwaitingTxList(t.RawTxListHash) {
		g.store.InsertCommitment(c)
		g.tryApply(c)
	}
}
