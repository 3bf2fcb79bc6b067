package apiserver

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/beacon/engine"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/taikoxyz/surge-preconf-client/driver/eventsync"
	"github.com/taikoxyz/surge-preconf-client/driver/router"
	"github.com/taikoxyz/surge-preconf-client/pkg/commitstore"
	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/derivation"
	"github.com/taikoxyz/surge-preconf-client/pkg/restapi"
)

// SignerResolver resolves the operator expected to have produced a
// preconfirmation at a given timestamp. Satisfied by *lookahead.Resolver;
// declared narrowly here so this package doesn't need the whole resolver
// surface (epoch bookkeeping, blacklist ingestion).
type SignerResolver interface {
	Resolve(ctx context.Context, timestamp, now uint64) (common.Address, error)
}

// Config bundles the collaborators an API adapter is built from.
type Config struct {
	Router     *router.Router
	Syncer     *eventsync.Syncer
	Store      *commitstore.Store
	Resolver   SignerResolver
	Parents    derivation.ParentBlockSource
	ForkHeight uint64
	Slasher    common.Address
	EOP        *EOPTracker
}

// API adapts the production driver's router, commitment store, and
// lookahead resolver to the transport-agnostic restapi.API surface, the
// glue `cmd/preconf-driver` hands to restapi.NewServer.
type API struct {
	router     *router.Router
	syncer     *eventsync.Syncer
	store      *commitstore.Store
	resolver   SignerResolver
	parents    derivation.ParentBlockSource
	forkHeight uint64
	slasher    common.Address
	eop        *EOPTracker
}

// New builds an API adapter from cfg.
func New(cfg Config) *API {
	return &API{
		router:     cfg.Router,
		syncer:     cfg.Syncer,
		store:      cfg.Store,
		resolver:   cfg.Resolver,
		parents:    cfg.Parents,
		forkHeight: cfg.ForkHeight,
		slasher:    cfg.Slasher,
		eop:        cfg.EOP,
	}
}

var _ restapi.API = (*API)(nil)

// Status reports ingress readiness and cache depth for the operator
// `/status` endpoint.
func (a *API) Status(ctx context.Context) (restapi.Status, error) {
	tip := a.syncer.CanonicalTip()

	var highest uint64
	if tip.Known() {
		highest = tip.BlockNumber
	}

	return restapi.Status{
		TotalCached:                 uint64(a.store.Len()),
		HighestUnsafeL2PayloadBlock: highest,
		EndOfSequencingBlockHash:    a.eop.Snapshot().BlockHash,
	}, nil
}

// BuildPreconfBlock validates a directly-submitted preconfirmation, applies
// it through the production router, and returns the resulting block's
// header. Unlike gossip-received commitments this bypasses the syncer's
// asynchronous ingress queue: the caller is waiting on an HTTP response, so
// the router is called directly for a synchronous Outcome.
func (a *API) BuildPreconfBlock(ctx context.Context, req restapi.PreconfBlocksRequest) (restapi.PreconfBlocksResponse, error) {
	sig, err := decodeSignature(req.Signature)
	if err != nil {
		return restapi.PreconfBlocksResponse{}, fmt.Errorf("decode signature: %w", err)
	}

	parent, err := a.parents.LatestCanonical(ctx)
	if err != nil {
		return restapi.PreconfBlocksResponse{}, fmt.Errorf("resolve parent state: %w", err)
	}

	commitment := core.Commitment{
		Preconf: core.Preconfirmation{
			BlockNumber:   req.BlockNumber,
			Timestamp:     req.Timestamp,
			GasLimit:      parent.GasLimit,
			Coinbase:      req.Coinbase,
			RawTxListHash: crypto.Keccak256Hash(req.RawTxList),
		},
		SlasherAddress: a.slasher,
	}
	signed := core.SignedCommitment{Commitment: commitment, Signature: sig}

	signer, err := signed.RecoverSigner()
	if err != nil {
		return restapi.PreconfBlocksResponse{}, fmt.Errorf("recover signer: %w", err)
	}

	now := uint64(time.Now().Unix())
	expected, err := a.resolver.Resolve(ctx, commitment.Preconf.Timestamp, now)
	if err != nil {
		return restapi.PreconfBlocksResponse{}, fmt.Errorf("resolve expected operator: %w", err)
	}
	if signer != expected {
		return restapi.PreconfBlocksResponse{}, fmt.Errorf("signer %s is not the scheduled operator %s for this window", signer, expected)
	}

	attrs, err := derivation.BuildPreconfAttrs(commitment, parent, a.forkHeight, req.RawTxList)
	if err != nil {
		return restapi.PreconfBlocksResponse{}, fmt.Errorf("build payload attributes: %w", err)
	}

	outcome, err := a.router.RoutePreconfirmation(ctx, router.PreconfirmationInput{
		BlockNumber: req.BlockNumber,
		Attrs:       attrs,
	})
	if err != nil {
		return restapi.PreconfBlocksResponse{}, err
	}
	if !outcome.Applied || len(outcome.Results) == 0 {
		return restapi.PreconfBlocksResponse{}, fmt.Errorf("block %d was not applied (deferred=%v)", req.BlockNumber, outcome.Deferred)
	}

	result := outcome.Results[len(outcome.Results)-1]
	header := headerFromExecutableData(result.Payload)

	if hash, err := commitment.Hash(); err == nil {
		a.store.InsertCommitment(signed)
		a.store.InsertTxList(commitment.Preconf.RawTxListHash, core.RawTxListGossip{
			RawTxListHash: commitment.Preconf.RawTxListHash,
			TxList:        req.RawTxList,
		})
		a.store.SetHead(core.PreconfHead{
			BlockNumber:         result.BlockNumber,
			BlockHash:           result.BlockHash,
			PreconfirmationHash: hash,
		})
	}

	return restapi.PreconfBlocksResponse{BlockHeader: header}, nil
}

// SubscribeEndOfSequencing implements restapi.API, forwarding to the
// shared EOPTracker every applied EOP commitment publishes to.
func (a *API) SubscribeEndOfSequencing() (<-chan restapi.EndOfSequencingNotification, func()) {
	return a.eop.Subscribe()
}

// decodeSignature parses a 65-byte hex-encoded (optionally 0x-prefixed)
// signature, the wire shape PreconfBlocksRequest.Signature carries it in.
func decodeSignature(s string) ([65]byte, error) {
	var out [65]byte

	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return out, err
	}
	if len(raw) != 65 {
		return out, fmt.Errorf("signature must be 65 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// headerFromExecutableData reconstructs the block header the applied
// payload represents, the same field mapping go-ethereum's own
// ExecutableDataToBlock performs, spelled out directly since no call site
// in the pack pins down that helper's exact signature for this fork
// (withdrawals root, blob versioned hashes, beacon root) to build against.
func headerFromExecutableData(payload *engine.ExecutableData) *types.Header {
	return &types.Header{
		ParentHash:    payload.ParentHash,
		Coinbase:      payload.FeeRecipient,
		Root:          payload.StateRoot,
		ReceiptHash:   payload.ReceiptsRoot,
		Bloom:         types.BytesToBloom(payload.LogsBloom),
		Difficulty:    new(big.Int),
		Number:        new(big.Int).SetUint64(payload.Number),
		GasLimit:      payload.GasLimit,
		GasUsed:       payload.GasUsed,
		Time:          payload.Timestamp,
		Extra:         payload.ExtraData,
		MixDigest:     payload.Random,
		BaseFee:       payload.BaseFeePerGas,
		BlobGasUsed:   payload.BlobGasUsed,
		ExcessBlobGas: payload.ExcessBlobGas,
	}
}
