package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/beacon/engine"
	"github.com/ethereum/go-ethereum/common"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// EmbeddedEngine calls an in-process go-ethereum execution client's
// engine-API namespace directly over its local RPC handle. This is the
// "embedded" driver_interface variant: single binary, no network hop.
type EmbeddedEngine struct {
	client *gethrpc.Client
}

// NewEmbeddedEngine wires an Engine implementation around an already-dialed
// go-ethereum RPC client (typically a local IPC or authenticated HTTP
// engine-API endpoint).
func NewEmbeddedEngine(client *gethrpc.Client) *EmbeddedEngine {
	return &EmbeddedEngine{client: client}
}

func (e *EmbeddedEngine) ApplyPayload(
	ctx context.Context,
	attrs *core.TaikoPayloadAttributes,
	parentHash common.Hash,
	finalizedHash *common.Hash,
) (*ApplyOutcome, error) {
	var fcuResp engine.ForkChoiceResponse

	finalized := parentHash
	if finalizedHash != nil {
		finalized = *finalizedHash
	}

	fcs := engine.ForkchoiceStateV1{
		HeadBlockHash:      parentHash,
		SafeBlockHash:      finalized,
		FinalizedBlockHash: finalized,
	}

	if err := e.client.CallContext(ctx, &fcuResp, "engine_forkchoiceUpdatedV3", fcs, attrs.PayloadAttributes); err != nil {
		return nil, classifyEngineError(err, attrs.BlockMetadata.Timestamp)
	}

	var blockNumber uint64
	if attrs.L1Origin != nil && attrs.L1Origin.BlockID != nil {
		blockNumber = attrs.L1Origin.BlockID.Uint64()
	}

	switch fcuResp.PayloadStatus.Status {
	case engine.SYNCING, engine.ACCEPTED:
		return nil, &EngineError{Kind: EngineErrorSyncing, BlockNumber: blockNumber}
	case engine.INVALID, engine.INVALIDBLOCKHASH:
		msg := ""
		if fcuResp.PayloadStatus.ValidationError != nil {
			msg = *fcuResp.PayloadStatus.ValidationError
		}
		return nil, &EngineError{Kind: EngineErrorInvalidBlock, Msg: msg}
	}

	if fcuResp.PayloadID == nil {
		return nil, &EngineError{Kind: EngineErrorMissingParent}
	}

	var payload engine.ExecutableData
	if err := e.client.CallContext(ctx, &payload, "engine_getPayloadV3", fcuResp.PayloadID); err != nil {
		return nil, classifyEngineError(err, 0)
	}

	return &ApplyOutcome{
		BlockNumber: payload.Number,
		BlockHash:   payload.BlockHash,
		PayloadID:   fcuResp.PayloadID,
		Payload:     &payload,
	}, nil
}

func (e *EmbeddedEngine) BlockHashByNumber(ctx context.Context, blockNumber uint64) (common.Hash, error) {
	var header struct {
		Hash common.Hash `json:"hash"`
	}
	if err := e.client.CallContext(ctx, &header, "eth_getBlockByNumber", gethrpc.BlockNumber(blockNumber), false); err != nil {
		return common.Hash{}, err
	}
	if header.Hash == (common.Hash{}) {
		return common.Hash{}, ErrBlockNotFound
	}
	return header.Hash, nil
}

func classifyEngineError(err error, blockNumber uint64) error {
	if err == nil {
		return nil
	}
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		return &EngineError{Kind: EngineErrorOther, BlockNumber: blockNumber, Cause: err}
	}
	return fmt.Errorf("engine call failed: %w", err)
}

// EmbeddedInboxReader reads ring-buffer state directly off an ABI-bound
// inbox contract client. The ABI decoding itself is opaque to this type;
// it only depends on the three narrow accessor methods below.
type EmbeddedInboxReader struct {
	contract embeddedInboxContract
}

// embeddedInboxContract is the opaque-decoder boundary: whatever
// bindings.Inbox generated-contract-binding type the deployment uses must
// satisfy this.
type embeddedInboxContract interface {
	NextProposalID(ctx context.Context) (uint64, error)
	LastBlockIDByBatchID(ctx context.Context, proposalID uint64) (uint64, bool, error)
	HeadL1Origin(ctx context.Context) (uint64, bool, error)
}

func NewEmbeddedInboxReader(contract embeddedInboxContract) *EmbeddedInboxReader {
	return &EmbeddedInboxReader{contract: contract}
}

func (r *EmbeddedInboxReader) GetNextProposalID(ctx context.Context) (uint64, error) {
	return r.contract.NextProposalID(ctx)
}

func (r *EmbeddedInboxReader) GetLastBlockIDByBatchID(ctx context.Context, proposalID uint64) (*uint64, error) {
	id, ok, err := r.contract.LastBlockIDByBatchID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (r *EmbeddedInboxReader) GetHeadL1OriginBlockID(ctx context.Context) (*uint64, error) {
	id, ok, err := r.contract.HeadL1Origin(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &id, nil
}
