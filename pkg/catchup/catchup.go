// Package catchup backfills preconfirmation commitments from a connected
// peer after normal L2 sync completes, walking the parent-commitment chain
// from the peer's tip back down to the driver's event-sync boundary.
package catchup

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p"
)

// DefaultBatchSize bounds how many commitments a single commitments{}
// request asks for while paging the catch-up range.
const DefaultBatchSize = 256

// DefaultTxlistFetchConcurrency is the number of raw_tx_list{} requests run
// concurrently when backfilling tx lists for a validated chain.
const DefaultTxlistFetchConcurrency = 4

var (
	ErrNoPeerTipCommitment   = errors.New("peer returned no commitment for its tip")
	ErrEmptyCommitmentBatch  = errors.New("peer returned empty commitment batch")
	ErrBoundaryMismatch      = errors.New("catch-up chain did not reach the sync boundary")
	ErrCommitmentValidation  = errors.New("catch-up commitment failed validation")
	ErrTxListHashMismatch    = errors.New("raw tx list response hash does not match the request")
)

// PeerHandle is the subset of the P2P driver's outbound surface catch-up
// needs: head, ranged commitment fetches, and by-hash tx list fetches.
type PeerHandle interface {
	Head(ctx context.Context) (core.PreconfHead, error)
	Commitments(ctx context.Context, start uint64, maxCount uint32) ([]core.SignedCommitment, error)
	RawTxList(ctx context.Context, hash common.Hash) (p2p.RawTxListResponse, error)
}

// SignerResolver answers who was entitled to sign a commitment at a given
// L2 block timestamp, per the on-L1 lookahead.
type SignerResolver interface {
	Resolve(ctx context.Context, timestamp, now uint64) (common.Address, error)
}

// Store is the subset of the commitment store's write surface catch-up
// needs to persist a validated chain.
type Store interface {
	InsertCommitment(core.SignedCommitment)
	InsertTxList(hash common.Hash, txlist core.RawTxListGossip)
}

// Config tunes catch-up's batching and concurrency.
type Config struct {
	// BatchSize bounds how many commitments are requested per page while
	// walking [stop_block, peer_tip). Defaults to DefaultBatchSize.
	BatchSize uint32
	// TxlistFetchConcurrency bounds the number of concurrent raw_tx_list{}
	// requests. Defaults to DefaultTxlistFetchConcurrency; always clamped
	// to at least 1.
	TxlistFetchConcurrency int
	// ExpectedSlasher, if set, is checked against every commitment's
	// slasher address during validation.
	ExpectedSlasher *common.Address
}

func (c Config) batchSize() uint32 {
	if c.BatchSize == 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

func (c Config) txlistConcurrency() int {
	n := c.TxlistFetchConcurrency
	if n == 0 {
		n = DefaultTxlistFetchConcurrency
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Engine runs the backward chain-walk catch-up algorithm against a single
// connected peer.
type Engine struct {
	peer     PeerHandle
	store    Store
	resolver SignerResolver
	cfg      Config
}

// New builds an Engine. cfg's zero value uses the package defaults.
func New(peer PeerHandle, store Store, resolver SignerResolver, cfg Config) *Engine {
	return &Engine{peer: peer, store: store, resolver: resolver, cfg: cfg}
}
