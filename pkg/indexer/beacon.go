package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"
	"github.com/go-resty/resty/v2"
)

// BlockSummary is the subset of a beacon block the indexer persists:
// identity, parent link, timestamp, and the blob commitments (and their
// optional target addresses) carried in its execution payload.
type BlockSummary struct {
	Slot            uint64
	BlockRoot       common.Hash
	ParentRoot      common.Hash
	Timestamp       *uint64
	BlobCommitments []kzg4844.Commitment
	BlobTargets     []*common.Address
}

// BlobSidecar is one blob attached to a beacon block.
type BlobSidecar struct {
	Index      uint64
	Commitment kzg4844.Commitment
	Proof      kzg4844.Proof
	Blob       []byte
}

// BeaconClient is the indexer's read surface against a beacon node: head
// and finalized slot, block summaries by slot or root, and blob sidecars
// for a slot — grounded on the same resty-base-URL shape as
// pkg/blobsource's client, but exposing the different endpoint set the
// indexer's backfill/reorg loop needs.
type BeaconClient struct {
	http *resty.Client
}

// NewBeaconClient dials a beacon node base URL.
func NewBeaconClient(baseURL string, timeout time.Duration) *BeaconClient {
	return &BeaconClient{http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout)}
}

// HeadSlot fetches the current head slot.
func (c *BeaconClient) HeadSlot(ctx context.Context) (uint64, error) {
	return c.slotForBlockID(ctx, "head")
}

// FinalizedSlot fetches the current finalized slot, or 0 if not yet
// available.
func (c *BeaconClient) FinalizedSlot(ctx context.Context) (uint64, error) {
	slot, err := c.slotForBlockID(ctx, "finalized")
	if err != nil {
		return 0, nil
	}
	return slot, nil
}

func (c *BeaconClient) slotForBlockID(ctx context.Context, blockID string) (uint64, error) {
	var body beaconBlockHeaderResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&body).
		Get(fmt.Sprintf("/eth/v1/beacon/headers/%s", blockID))
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("beacon header for %q: status %d", blockID, resp.StatusCode())
	}
	return parseUint(body.Data.Header.Message.Slot)
}

// BlockSummaryBySlot fetches the block at a slot, or nil if the slot was
// missed.
func (c *BeaconClient) BlockSummaryBySlot(ctx context.Context, slot uint64) (*BlockSummary, error) {
	return c.blockSummary(ctx, fmt.Sprintf("%d", slot))
}

// BlockSummaryByRoot fetches the block with a given root, or nil if the
// beacon node no longer has it (pruned).
func (c *BeaconClient) BlockSummaryByRoot(ctx context.Context, root common.Hash) (*BlockSummary, error) {
	return c.blockSummary(ctx, root.Hex())
}

func (c *BeaconClient) blockSummary(ctx context.Context, blockID string) (*BlockSummary, error) {
	var body beaconBlockResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&body).
		Get(fmt.Sprintf("/eth/v2/beacon/blocks/%s", blockID))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("beacon block %q: status %d", blockID, resp.StatusCode())
	}

	msg := body.Data.Message
	slot, err := parseUint(msg.Slot)
	if err != nil {
		return nil, fmt.Errorf("parse slot: %w", err)
	}

	var ts *uint64
	if msg.Body.ExecutionPayload != nil {
		t, err := parseUint(msg.Body.ExecutionPayload.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse execution timestamp: %w", err)
		}
		ts = &t
	}

	commitments := make([]kzg4844.Commitment, 0, len(msg.Body.BlobKZGCommitments))
	for _, hexC := range msg.Body.BlobKZGCommitments {
		b, err := hexToBytes(hexC)
		if err != nil {
			return nil, fmt.Errorf("parse blob commitment: %w", err)
		}
		var commitment kzg4844.Commitment
		if len(b) != len(commitment) {
			return nil, fmt.Errorf("unexpected commitment length %d", len(b))
		}
		copy(commitment[:], b)
		commitments = append(commitments, commitment)
	}

	return &BlockSummary{
		Slot:            slot,
		BlockRoot:       common.HexToHash(body.Data.Root),
		ParentRoot:      common.HexToHash(msg.ParentRoot),
		Timestamp:       ts,
		BlobCommitments: commitments,
		BlobTargets:     make([]*common.Address, len(commitments)),
	}, nil
}

// BlobSidecars fetches every blob sidecar attached to a slot.
func (c *BeaconClient) BlobSidecars(ctx context.Context, slot uint64) ([]BlobSidecar, error) {
	var body beaconBlobSidecarsResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&body).
		Get(fmt.Sprintf("/eth/v1/beacon/blob_sidecars/%d", slot))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("blob sidecars for slot %d: status %d", slot, resp.StatusCode())
	}

	sidecars := make([]BlobSidecar, 0, len(body.Data))
	for _, s := range body.Data {
		index, err := parseUint(s.Index)
		if err != nil {
			return nil, fmt.Errorf("parse sidecar index: %w", err)
		}
		commitmentBytes, err := hexToBytes(s.KZGCommitment)
		if err != nil {
			return nil, err
		}
		proofBytes, err := hexToBytes(s.KZGProof)
		if err != nil {
			return nil, err
		}
		blobBytes, err := hexToBytes(s.Blob)
		if err != nil {
			return nil, err
		}

		var commitment kzg4844.Commitment
		copy(commitment[:], commitmentBytes)
		var proof kzg4844.Proof
		copy(proof[:], proofBytes)

		sidecars = append(sidecars, BlobSidecar{
			Index:      index,
			Commitment: commitment,
			Proof:      proof,
			Blob:       blobBytes,
		})
	}
	return sidecars, nil
}

type beaconBlockHeaderResponse struct {
	Data struct {
		Header struct {
			Message struct {
				Slot string `json:"slot"`
			} `json:"message"`
		} `json:"header"`
	} `json:"data"`
}

type beaconBlockResponse struct {
	Data struct {
		Root    string `json:"root"`
		Message struct {
			Slot       string `json:"slot"`
			ParentRoot string `json:"parent_root"`
			Body       struct {
				BlobKZGCommitments []string `json:"blob_kzg_commitments"`
				ExecutionPayload   *struct {
					Timestamp string `json:"timestamp"`
				} `json:"execution_payload"`
			} `json:"body"`
		} `json:"message"`
	} `json:"data"`
}

type beaconBlobSidecarsResponse struct {
	Data []struct {
		Index         string `json:"index"`
		KZGCommitment string `json:"kzg_commitment"`
		KZGProof      string `json:"kzg_proof"`
		Blob          string `json:"blob"`
	} `json:"data"`
}
