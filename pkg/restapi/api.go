package restapi

import "context"

// API is what the REST/WS server needs from the running driver. A single
// concrete type (wired in cmd/preconf-driver) adapts the commitment store,
// lookahead resolver, and router to this shape; restapi itself never
// touches their concrete types.
type API interface {
	// Status reports current readiness and progress for operators.
	Status(ctx context.Context) (Status, error)

	// BuildPreconfBlock builds and applies a single preconfirmation block
	// submitted directly over REST rather than gossiped over P2P.
	BuildPreconfBlock(ctx context.Context, req PreconfBlocksRequest) (PreconfBlocksResponse, error)

	// SubscribeEndOfSequencing registers a new `/ws` subscriber and returns
	// its notification channel plus an unsubscribe func. The channel is
	// closed by the API once unsubscribe is called or the connection ends.
	SubscribeEndOfSequencing() (<-chan EndOfSequencingNotification, func())
}
