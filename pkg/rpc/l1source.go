package rpc

import (
	"context"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"

	"github.com/taikoxyz/surge-preconf-client/bindings/encoding"
)

// ProposedEventSignature is the inbox's "Proposed" event signature. Computed
// at init rather than hardcoded so it always matches the string below,
// following go-ethereum's own convention for topic0 constants.
var ProposedEventSignature = crypto.Keccak256Hash([]byte("Proposed(uint48,address,uint48,uint48,bool,uint8,bytes)"))

// logFilterer is the subset of ethclient.Client this source needs: filter
// subscription over L1 logs.
type logFilterer interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// L1EventSource streams decoded "Proposed" logs for a single inbox address,
// satisfying eventsync.LogSource.
type L1EventSource struct {
	client logFilterer
	inbox  common.Address
	topic  common.Hash
}

// NewL1EventSource wires an L1EventSource around an already-dialed L1
// client. topic defaults to ProposedEventSignature when the zero hash.
func NewL1EventSource(client logFilterer, inbox common.Address, topic common.Hash) *L1EventSource {
	if topic == (common.Hash{}) {
		topic = ProposedEventSignature
	}
	return &L1EventSource{client: client, inbox: inbox, topic: topic}
}

// SubscribeProposedLogs subscribes to the inbox's Proposed event and
// decodes each log's payload, forwarding decode failures on the error
// channel without tearing down the subscription.
func (s *L1EventSource) SubscribeProposedLogs(
	ctx context.Context,
) (<-chan *encoding.ProposedEventPayload, <-chan error, error) {
	rawLogs := make(chan types.Log, 256)
	sub, err := s.client.SubscribeFilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{s.inbox},
		Topics:    [][]common.Hash{{s.topic}},
	}, rawLogs)
	if err != nil {
		return nil, nil, err
	}

	payloads := make(chan *encoding.ProposedEventPayload, 256)
	errs := make(chan error, 16)

	go func() {
		defer sub.Unsubscribe()
		defer close(payloads)
		defer close(errs)

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					errs <- err
				}
				return
			case vLog := <-rawLogs:
				payload, err := encoding.DecodeProposed(vLog.Data)
				if err != nil {
					log.Error("decode Proposed log", "block", vLog.BlockNumber, "error", err)
					errs <- err
					continue
				}
				payloads <- payload
			}
		}
	}()

	return payloads, errs, nil
}
