package commitstore

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultDedupCapacity bounds how many distinct keys a dedup cache
// remembers regardless of TTL, matching the retention limit's order of
// magnitude so a burst of gossip can't out-grow the commitment store it's
// deduplicating against.
const DefaultDedupCapacity = 8192

// DefaultDedupTTL is how long a seen key is remembered before it may be
// reprocessed again, absent an explicit eviction for capacity.
const DefaultDedupTTL = 2 * time.Minute

// dedupCache remembers whether a key has been seen recently, bounded by
// both a capacity (LRU, via golang-lru) and a TTL (via go-cache) — no
// single cache in the pack gives both eviction policies at once, so the
// two are composed: the LRU's eviction callback clears the TTL entry, and
// the TTL cache's expiry callback clears the LRU entry, so the two never
// drift out of sync with each other.
type dedupCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, struct{}]
	ttl *gocache.Cache
}

func newDedupCache(capacity int, ttl time.Duration) *dedupCache {
	d := &dedupCache{}

	d.ttl = gocache.New(ttl, ttl/2)
	l, err := lru.NewWithEvict[string, struct{}](capacity, func(key string, _ struct{}) {
		d.ttl.Delete(key)
	})
	if err != nil {
		// Only returned for a non-positive capacity, which never happens
		// with the package's constant defaults.
		l, _ = lru.New[string, struct{}](1)
	}
	d.lru = l
	d.ttl.OnEvicted(func(key string, _ interface{}) {
		d.lru.Remove(key)
	})

	return d
}

// SeenOrRemember reports whether key has already been remembered within its
// TTL. If not, it records the key (bounded by capacity) and returns false.
func (d *dedupCache) SeenOrRemember(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, found := d.ttl.Get(key); found {
		return true
	}
	d.ttl.SetDefault(key, struct{}{})
	d.lru.Add(key, struct{}{})
	return false
}

// cleanupExpired opportunistically sweeps TTL-expired entries rather than
// waiting for the next SeenOrRemember call to notice them lazily.
func (d *dedupCache) cleanupExpired() {
	d.ttl.DeleteExpired()
}

// Dedup bundles the three gossip dedup caches: message ids, one
// commitment per (block_number, signer), and one tx list per
// (block_number, tx_hash).
type Dedup struct {
	messageIDs    *dedupCache
	blockSigners  *dedupCache
	blockTxHashes *dedupCache
}

// NewDedup builds a Dedup with the package's default capacity and TTL for
// each of the three caches.
func NewDedup() *Dedup {
	return &Dedup{
		messageIDs:    newDedupCache(DefaultDedupCapacity, DefaultDedupTTL),
		blockSigners:  newDedupCache(DefaultDedupCapacity, DefaultDedupTTL),
		blockTxHashes: newDedupCache(DefaultDedupCapacity, DefaultDedupTTL),
	}
}

// SeenMessageID reports whether a gossip message id has already been
// processed, remembering it if not.
func (d *Dedup) SeenMessageID(id string) bool {
	return d.messageIDs.SeenOrRemember(id)
}

// SeenCommitment reports whether a commitment for (blockNumber, signer) has
// already been processed, remembering it if not.
func (d *Dedup) SeenCommitment(blockNumber uint64, signer common.Address) bool {
	return d.blockSigners.SeenOrRemember(blockSignerKey(blockNumber, signer))
}

// SeenTxList reports whether a tx list for (blockNumber, txHash) has already
// been processed, remembering it if not.
func (d *Dedup) SeenTxList(blockNumber uint64, txHash common.Hash) bool {
	return d.blockTxHashes.SeenOrRemember(blockTxHashKey(blockNumber, txHash))
}

// CleanupExpired opportunistically sweeps TTL-expired entries from all
// three caches.
func (d *Dedup) CleanupExpired() {
	d.messageIDs.cleanupExpired()
	d.blockSigners.cleanupExpired()
	d.blockTxHashes.cleanupExpired()
}

func blockSignerKey(blockNumber uint64, signer common.Address) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], blockNumber)
	return string(buf[:]) + string(signer.Bytes())
}

func blockTxHashKey(blockNumber uint64, txHash common.Hash) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], blockNumber)
	return string(buf[:]) + string(txHash.Bytes())
}
