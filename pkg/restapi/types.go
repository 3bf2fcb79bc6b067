package restapi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Status mirrors the whitelist driver's `/status` payload: enough for an
// operator to tell whether preconfirmation ingress is ready and how far the
// lookahead/cache have progressed.
type Status struct {
	Lookahead                   *uint64     `json:"lookahead,omitempty"`
	TotalCached                 uint64      `json:"totalCached"`
	HighestUnsafeL2PayloadBlock uint64      `json:"highestUnsafeL2PayloadBlockId"`
	EndOfSequencingBlockHash    common.Hash `json:"endOfSequencingBlockHash"`
}

// PreconfBlocksRequest is the body of `POST /preconfBlocks`: a single
// already-signed preconfirmation and the raw transaction list it commits
// to, submitted directly rather than gossiped over the P2P network.
type PreconfBlocksRequest struct {
	BlockNumber uint64        `json:"blockNumber"`
	Signature   string        `json:"signature"`
	RawTxList   []byte        `json:"rawTxList"`
	Timestamp   uint64        `json:"timestamp"`
	Coinbase    common.Address `json:"coinbase"`
}

// PreconfBlocksResponse echoes the header of the block the request
// produced.
type PreconfBlocksResponse struct {
	BlockHeader *types.Header `json:"blockHeader"`
}

// EndOfSequencingNotification is pushed to `/ws` subscribers and mirrored
// off-box via the external notifier when a sequencing window closes.
type EndOfSequencingNotification struct {
	BlockNumber uint64      `json:"blockNumber"`
	BlockHash   common.Hash `json:"blockHash"`
}
