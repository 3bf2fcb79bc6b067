package blobsource

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
)

// ArchivalClient fetches historical blobs by versioned hash from an
// archival blob server, used when the primary beacon node has already
// pruned the slot.
type ArchivalClient struct {
	http *resty.Client
}

func NewArchivalClient(baseURL string, timeout time.Duration) *ArchivalClient {
	return &ArchivalClient{http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout)}
}

// FetchByVersionedHash fetches each requested blob by its EIP-4844
// versioned hash and returns them in request order.
func (c *ArchivalClient) FetchByVersionedHash(ctx context.Context, hashes []common.Hash) ([][]byte, error) {
	out := make([][]byte, 0, len(hashes))
	for _, h := range hashes {
		var body struct {
			Blob string `json:"blob"`
		}
		resp, err := c.http.R().SetContext(ctx).SetResult(&body).
			Get(fmt.Sprintf("/blob/%s", h.Hex()))
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("archival blob %s: status %d", h, resp.StatusCode())
		}
		blob, err := hexToBytes(body.Blob)
		if err != nil {
			return nil, err
		}
		out = append(out, blob)
	}
	return out, nil
}
