// Package commitstore holds the locally produced and gossip-received
// preconfirmation commitments and raw tx lists that back the commitments{}
// and raw_tx_list{} request/response protocols.
package commitstore

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// DefaultRetentionLimit bounds how many commitments (and, transitively,
// their associated tx lists) the store keeps before evicting the oldest.
const DefaultRetentionLimit = 8192

// Store holds validated commitments and tx lists, plus the pending buffers
// gossip delivers entries into before local validation admits them.
//
// commitments and pending_commitments are protected by mu; txlists,
// pending_txlists, and awaiting_txlist each have their own lock. Writes
// across structures never hold more than one lock at a time, so no
// cross-lock ordering discipline is needed: a writer updating commitments
// and, as a consequence, pruning txlists always releases the commitments
// lock before taking the txlists one.
type Store struct {
	retentionLimit int

	mu              sync.RWMutex
	commitments     map[uint64]core.SignedCommitment
	pendingCommits  map[uint64]core.SignedCommitment

	txlistsMu      sync.RWMutex
	txlists        map[common.Hash]core.RawTxListGossip
	pendingTxlists map[common.Hash]core.RawTxListGossip

	awaiting *awaitingTxList

	headMu sync.RWMutex
	head   core.PreconfHead
}

// New builds an empty Store with the default retention limit.
func New() *Store {
	return NewWithRetentionLimit(DefaultRetentionLimit)
}

// NewWithRetentionLimit builds an empty Store retaining at most limit
// commitments and txlists.
func NewWithRetentionLimit(limit int) *Store {
	return &Store{
		retentionLimit: limit,
		commitments:    make(map[uint64]core.SignedCommitment),
		pendingCommits: make(map[uint64]core.SignedCommitment),
		txlists:        make(map[common.Hash]core.RawTxListGossip),
		pendingTxlists: make(map[common.Hash]core.RawTxListGossip),
		awaiting:       newAwaitingTxList(limit),
	}
}

func blockNumber(c core.SignedCommitment) uint64 {
	return c.Commitment.Preconf.BlockNumber
}

// InsertCommitment admits a validated commitment, pruning the oldest entry
// (and its associated tx list) once the retention limit is exceeded. Any
// pending copy of the same block number is dropped.
func (s *Store) InsertCommitment(c core.SignedCommitment) {
	s.mu.Lock()
	s.commitments[blockNumber(c)] = c
	delete(s.pendingCommits, blockNumber(c))
	s.pruneCommitmentsLocked()
	s.mu.Unlock()

	s.pruneTxlists()
}

// Len reports the number of validated commitments currently cached, the
// `/status` endpoint's total_cached figure.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.commitments)
}

// GetCommitment fetches a validated commitment by block number.
func (s *Store) GetCommitment(blockNumber uint64) (core.SignedCommitment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commitments[blockNumber]
	return c, ok
}

// RemoveCommitment drops a validated commitment and any pending copy.
func (s *Store) RemoveCommitment(blockNumber uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.commitments, blockNumber)
	delete(s.pendingCommits, blockNumber)
}

// CommitmentsRange returns up to maxCount validated commitments with block
// number >= start, in ascending order — the commitments{start, max_count}
// response body.
func (s *Store) CommitmentsRange(start uint64, maxCount uint32) []core.SignedCommitment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]uint64, 0, len(s.commitments))
	for k := range s.commitments {
		if k >= start {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if uint32(len(keys)) > maxCount {
		keys = keys[:maxCount]
	}
	result := make([]core.SignedCommitment, 0, len(keys))
	for _, k := range keys {
		result = append(result, s.commitments[k])
	}
	return result
}

// pruneCommitmentsLocked evicts the oldest validated commitments (by block
// number) once the count exceeds the retention limit. Called with mu held.
func (s *Store) pruneCommitmentsLocked() {
	excess := len(s.commitments) - s.retentionLimit
	if excess <= 0 {
		return
	}

	keys := make([]uint64, 0, len(s.commitments))
	for k := range s.commitments {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys[:excess] {
		delete(s.commitments, k)
	}
}

// InsertTxList admits a validated raw tx list, pruning unreferenced entries
// once the retention limit is exceeded. Any pending copy of the same hash
// is dropped.
func (s *Store) InsertTxList(hash common.Hash, txlist core.RawTxListGossip) {
	s.txlistsMu.Lock()
	s.txlists[hash] = txlist
	delete(s.pendingTxlists, hash)
	s.txlistsMu.Unlock()

	s.pruneTxlists()
}

// RawTxListByHash fetches a validated raw tx list by hash.
func (s *Store) RawTxListByHash(hash common.Hash) ([]byte, bool) {
	s.txlistsMu.RLock()
	defer s.txlistsMu.RUnlock()
	t, ok := s.txlists[hash]
	if !ok {
		return nil, false
	}
	return t.TxList, true
}

// RemoveTxList drops a validated tx list and any pending copy.
func (s *Store) RemoveTxList(hash common.Hash) {
	s.txlistsMu.Lock()
	defer s.txlistsMu.Unlock()
	delete(s.txlists, hash)
	delete(s.pendingTxlists, hash)
}

// pruneTxlists evicts stored tx lists not referenced by any retained
// commitment, once the count exceeds the retention limit.
func (s *Store) pruneTxlists() {
	s.mu.RLock()
	referenced := make(map[common.Hash]struct{}, len(s.commitments))
	for _, c := range s.commitments {
		referenced[c.Commitment.Preconf.RawTxListHash] = struct{}{}
	}
	s.mu.RUnlock()

	s.txlistsMu.Lock()
	defer s.txlistsMu.Unlock()

	excess := len(s.txlists) - s.retentionLimit
	if excess <= 0 {
		return
	}

	for hash := range s.txlists {
		if excess <= 0 {
			break
		}
		if _, ok := referenced[hash]; ok {
			continue
		}
		delete(s.txlists, hash)
		excess--
	}
}

// InsertPendingCommitment buffers a gossip-received commitment that has not
// yet been locally validated. A block number already present in the
// validated store is ignored — the gossip copy can't be newer.
func (s *Store) InsertPendingCommitment(c core.SignedCommitment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bn := blockNumber(c)
	if _, ok := s.commitments[bn]; ok {
		return
	}
	s.pendingCommits[bn] = c
	s.prunePendingCommitmentsLocked()
}

// TakePendingCommitment removes and returns a pending commitment for
// validation.
func (s *Store) TakePendingCommitment(blockNumber uint64) (core.SignedCommitment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.pendingCommits[blockNumber]
	if ok {
		delete(s.pendingCommits, blockNumber)
	}
	return c, ok
}

// DropPendingCommitment discards a pending commitment that failed
// validation.
func (s *Store) DropPendingCommitment(blockNumber uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pendingCommits, blockNumber)
}

func (s *Store) prunePendingCommitmentsLocked() {
	excess := len(s.pendingCommits) - s.retentionLimit
	if excess <= 0 {
		return
	}
	keys := make([]uint64, 0, len(s.pendingCommits))
	for k := range s.pendingCommits {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys[:excess] {
		delete(s.pendingCommits, k)
	}
}

// InsertPendingTxList buffers a gossip-received raw tx list that has not
// yet been locally validated.
func (s *Store) InsertPendingTxList(hash common.Hash, txlist core.RawTxListGossip) {
	s.txlistsMu.Lock()
	defer s.txlistsMu.Unlock()

	if _, ok := s.txlists[hash]; ok {
		return
	}
	s.pendingTxlists[hash] = txlist
	s.prunePendingTxlistsLocked()
}

// TakePendingTxList removes and returns a pending tx list for validation.
func (s *Store) TakePendingTxList(hash common.Hash) (core.RawTxListGossip, bool) {
	s.txlistsMu.Lock()
	defer s.txlistsMu.Unlock()
	t, ok := s.pendingTxlists[hash]
	if ok {
		delete(s.pendingTxlists, hash)
	}
	return t, ok
}

// DropPendingTxList discards a pending tx list that failed validation.
func (s *Store) DropPendingTxList(hash common.Hash) {
	s.txlistsMu.Lock()
	defer s.txlistsMu.Unlock()
	delete(s.pendingTxlists, hash)
}

// prunePendingTxlistsLocked evicts entries in arbitrary map-iteration order
// once the retention limit is exceeded — unlike validated tx lists, pending
// entries have no commitment to check for references yet, so there's
// nothing to prefer keeping. Called with txlistsMu held.
func (s *Store) prunePendingTxlistsLocked() {
	excess := len(s.pendingTxlists) - s.retentionLimit
	if excess <= 0 {
		return
	}
	for hash := range s.pendingTxlists {
		if excess <= 0 {
			break
		}
		delete(s.pendingTxlists, hash)
		excess--
	}
}

// AddAwaitingTxList buffers a commitment whose tx list hasn't arrived yet.
func (s *Store) AddAwaitingTxList(txlistHash common.Hash, c core.SignedCommitment) {
	s.awaiting.add(txlistHash, c)
}

// TakeAwaitingTxList drains the commitments that were waiting on txlistHash.
func (s *Store) TakeAwaitingTxList(txlistHash common.Hash) []core.SignedCommitment {
	return s.awaiting.takeWaiting(txlistHash)
}

// SetHead updates the locally maintained preconfirmation head.
func (s *Store) SetHead(head core.PreconfHead) {
	s.headMu.Lock()
	defer s.headMu.Unlock()
	s.head = head
}

// Head returns the locally maintained preconfirmation head.
func (s *Store) Head() core.PreconfHead {
	s.headMu.RLock()
	defer s.headMu.RUnlock()
	return s.head
}
