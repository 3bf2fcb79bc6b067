package commitstore

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// awaitingTxList buffers commitments that arrived (or were produced) before
// their referenced raw tx list did, keyed by the tx-list hash they're
// waiting on. Retention mirrors the pending buffers: oldest entries are
// evicted once the total buffered commitment count exceeds the limit.
type awaitingTxList struct {
	retentionLimit int

	mu      sync.Mutex
	waiting map[common.Hash][]core.SignedCommitment
	order   []common.Hash
}

func newAwaitingTxList(retentionLimit int) *awaitingTxList {
	return &awaitingTxList{
		retentionLimit: retentionLimit,
		waiting:        make(map[common.Hash][]core.SignedCommitment),
	}
}

// add buffers a commitment under the tx-list hash it's waiting on.
func (a *awaitingTxList) add(txlistHash common.Hash, c core.SignedCommitment) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.waiting[txlistHash]; !ok {
		a.order = append(a.order, txlistHash)
	}
	a.waiting[txlistHash] = append(a.waiting[txlistHash], c)
	a.pruneLocked()
}

// takeWaiting removes and returns every commitment buffered under
// txlistHash.
func (a *awaitingTxList) takeWaiting(txlistHash common.Hash) []core.SignedCommitment {
	a.mu.Lock()
	defer a.mu.Unlock()

	result, ok := a.waiting[txlistHash]
	if !ok {
		return nil
	}
	delete(a.waiting, txlistHash)
	a.order = removeHash(a.order, txlistHash)
	return result
}

// len reports the number of commitments currently buffered, summed across
// all waited-on hashes.
func (a *awaitingTxList) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := 0
	for _, c := range a.waiting {
		total += len(c)
	}
	return total
}

// pruneLocked evicts the oldest waited-on hash (and every commitment
// buffered under it) until the total buffered count is within the
// retention limit. Called with mu held.
func (a *awaitingTxList) pruneLocked() {
	total := 0
	for _, c := range a.waiting {
		total += len(c)
	}
	for total > a.retentionLimit && len(a.order) > 0 {
		oldest := a.order[0]
		a.order = a.order[1:]
		total -= len(a.waiting[oldest])
		delete(a.waiting, oldest)
	}
}

func removeHash(hashes []common.Hash, target common.Hash) []common.Hash {
	for i, h := range hashes {
		if h == target {
			return append(hashes[:i], hashes[i+1:]...)
		}
	}
	return hashes
}
