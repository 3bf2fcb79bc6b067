package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// RemoteDriverClient calls a sibling driver process's operator RPC surface
// instead of owning an in-process engine-API client. This is the
// "event_syncer_client" driver_interface variant: useful when the P2P
// driver and the engine-owning driver run as separate processes.
type RemoteDriverClient struct {
	http       *resty.Client
	maxBackoff time.Duration
}

// NewRemoteDriverClient builds a client against baseURL with the given
// per-call timeout, retrying transport failures with exponential backoff
// up to maxBackoff.
func NewRemoteDriverClient(baseURL string, timeout, maxBackoff time.Duration) *RemoteDriverClient {
	return &RemoteDriverClient{
		http:       resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		maxBackoff: maxBackoff,
	}
}

func (c *RemoteDriverClient) retry(ctx context.Context, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = c.maxBackoff
	b.MaxElapsedTime = 0
	return backoff.Retry(fn, backoff.WithContext(b, ctx))
}

type applyPayloadRequest struct {
	Attrs         *core.TaikoPayloadAttributes `json:"attrs"`
	ParentHash    common.Hash                  `json:"parentHash"`
	FinalizedHash *common.Hash                 `json:"finalizedHash,omitempty"`
}

type applyPayloadResponse struct {
	Outcome *ApplyOutcome `json:"outcome,omitempty"`
	Error   *struct {
		Kind        EngineErrorKind `json:"kind"`
		BlockNumber uint64          `json:"blockNumber"`
		Msg         string          `json:"msg"`
	} `json:"error,omitempty"`
}

func (c *RemoteDriverClient) ApplyPayload(
	ctx context.Context,
	attrs *core.TaikoPayloadAttributes,
	parentHash common.Hash,
	finalizedHash *common.Hash,
) (*ApplyOutcome, error) {
	var out applyPayloadResponse

	// Engine deferrals and invalid blocks are not idempotent reads, so they
	// are never retried here; only transport-level failures are.
	err := c.retry(ctx, func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(applyPayloadRequest{Attrs: attrs, ParentHash: parentHash, FinalizedHash: finalizedHash}).
			SetResult(&out).
			Post("/internal/applyPayload")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return backoff.Permanent(fmt.Errorf("apply payload: remote status %d", resp.StatusCode()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Error != nil {
		return nil, &EngineError{Kind: out.Error.Kind, BlockNumber: out.Error.BlockNumber, Msg: out.Error.Msg}
	}
	return out.Outcome, nil
}

func (c *RemoteDriverClient) BlockHashByNumber(ctx context.Context, blockNumber uint64) (common.Hash, error) {
	var out struct {
		Hash  common.Hash `json:"hash"`
		Found bool        `json:"found"`
	}

	err := c.retry(ctx, func() error {
		resp, err := c.http.R().SetContext(ctx).SetResult(&out).
			Get(fmt.Sprintf("/internal/blockHash/%d", blockNumber))
		if err != nil {
			return err
		}
		if resp.IsError() {
			return backoff.Permanent(fmt.Errorf("block hash by number: remote status %d", resp.StatusCode()))
		}
		return nil
	})
	if err != nil {
		return common.Hash{}, err
	}
	if !out.Found {
		return common.Hash{}, ErrBlockNotFound
	}
	return out.Hash, nil
}

// RemoteInboxReader is the InboxReader side of the same remote driver
// surface.
type RemoteInboxReader struct {
	http       *resty.Client
	maxBackoff time.Duration
}

func NewRemoteInboxReader(baseURL string, timeout, maxBackoff time.Duration) *RemoteInboxReader {
	return &RemoteInboxReader{
		http:       resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		maxBackoff: maxBackoff,
	}
}

func (r *RemoteInboxReader) retry(ctx context.Context, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = r.maxBackoff
	b.MaxElapsedTime = 0
	return backoff.Retry(fn, backoff.WithContext(b, ctx))
}

func (r *RemoteInboxReader) GetNextProposalID(ctx context.Context) (uint64, error) {
	var out struct {
		NextProposalID uint64 `json:"nextProposalId"`
	}
	err := r.retry(ctx, func() error {
		resp, err := r.http.R().SetContext(ctx).SetResult(&out).Get("/internal/nextProposalId")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return backoff.Permanent(fmt.Errorf("next proposal id: remote status %d", resp.StatusCode()))
		}
		return nil
	})
	return out.NextProposalID, err
}

func (r *RemoteInboxReader) GetLastBlockIDByBatchID(ctx context.Context, proposalID uint64) (*uint64, error) {
	var out struct {
		BlockID *uint64 `json:"blockId,omitempty"`
	}
	err := r.retry(ctx, func() error {
		resp, err := r.http.R().SetContext(ctx).SetResult(&out).
			Get(fmt.Sprintf("/internal/lastBlockIdByBatchId/%d", proposalID))
		if err != nil {
			return err
		}
		if resp.IsError() {
			return backoff.Permanent(fmt.Errorf("last block id by batch id: remote status %d", resp.StatusCode()))
		}
		return nil
	})
	return out.BlockID, err
}

func (r *RemoteInboxReader) GetHeadL1OriginBlockID(ctx context.Context) (*uint64, error) {
	var out struct {
		BlockID *uint64 `json:"blockId,omitempty"`
	}
	err := r.retry(ctx, func() error {
		resp, err := r.http.R().SetContext(ctx).SetResult(&out).Get("/internal/headL1OriginBlockId")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return backoff.Permanent(fmt.Errorf("head l1 origin block id: remote status %d", resp.StatusCode()))
		}
		return nil
	})
	return out.BlockID, err
}
