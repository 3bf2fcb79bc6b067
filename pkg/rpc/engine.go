// Package rpc defines the narrow external-collaborator interfaces and
// name (the execution engine applier and the inbox reader), plus two
// concrete wirings for each: an "embedded" implementation that calls
// directly into an in-process go-ethereum engine-API client, and a
// "remote" implementation that calls a sibling driver process over JSON-RPC
// (the split the Rust prototype calls `driver_interface::{embedded,
// event_syncer_client}`).
package rpc

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/beacon/engine"
	"github.com/ethereum/go-ethereum/common"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// EngineErrorKind discriminates the engine applier's failure modes.
type EngineErrorKind int

const (
	EngineErrorOther EngineErrorKind = iota
	EngineErrorSyncing
	EngineErrorMissingParent
	EngineErrorInvalidBlock
)

// EngineError is returned by Engine.ApplyPayload; callers switch on Kind to
// decide whether to defer, drop, or propagate.
type EngineError struct {
	Kind        EngineErrorKind
	BlockNumber uint64
	Msg         string
	Cause       error
}

func (e *EngineError) Error() string {
	switch e.Kind {
	case EngineErrorSyncing:
		return fmt.Sprintf("engine syncing at block %d", e.BlockNumber)
	case EngineErrorMissingParent:
		return "engine missing parent"
	case EngineErrorInvalidBlock:
		return fmt.Sprintf("invalid block %d: %s", e.BlockNumber, e.Msg)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("engine error: %s", e.Cause)
		}
		return "engine error"
	}
}

func (e *EngineError) Unwrap() error { return e.Cause }

// ApplyOutcome is the result of a successful ApplyPayload call.
type ApplyOutcome struct {
	BlockNumber uint64
	BlockHash   common.Hash
	PayloadID   *engine.PayloadID
	Payload     *engine.ExecutableData
}

// Engine is the execution-engine applier the core depends on. Both
// the canonical path and the preconfirmation path call ApplyPayload;
// BlockHashByNumber is used by the router to resolve a preconf's parent
// hash and by the event syncer's known-canonical fast path.
type Engine interface {
	ApplyPayload(
		ctx context.Context,
		attrs *core.TaikoPayloadAttributes,
		parentHash common.Hash,
		finalizedHash *common.Hash,
	) (*ApplyOutcome, error)

	BlockHashByNumber(ctx context.Context, blockNumber uint64) (common.Hash, error)
}

// ErrBlockNotFound is returned by BlockHashByNumber when the engine has no
// block at the requested number.
var ErrBlockNotFound = fmt.Errorf("block not found")
