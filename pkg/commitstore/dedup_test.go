package commitstore

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestSeenMessageIDRemembersAcrossCalls(t *testing.T) {
	d := NewDedup()

	require.False(t, d.SeenMessageID("msg-1"), "first sighting should not be seen yet")
	require.True(t, d.SeenMessageID("msg-1"), "second sighting should be remembered")
	require.False(t, d.SeenMessageID("msg-2"), "a different id is unrelated")
}

func TestSeenCommitmentKeysOnBlockAndSigner(t *testing.T) {
	d := NewDedup()
	signerA := common.HexToAddress("0xaaaa")
	signerB := common.HexToAddress("0xbbbb")

	require.False(t, d.SeenCommitment(1, signerA))
	require.True(t, d.SeenCommitment(1, signerA))
	require.False(t, d.SeenCommitment(1, signerB), "a different signer at the same block is distinct")
	require.False(t, d.SeenCommitment(2, signerA), "the same signer at a different block is distinct")
}

func TestSeenTxListKeysOnBlockAndHash(t *testing.T) {
	d := NewDedup()
	h1 := common.HexToHash("0x01")
	h2 := common.HexToHash("0x02")

	require.False(t, d.SeenTxList(1, h1))
	require.True(t, d.SeenTxList(1, h1))
	require.False(t, d.SeenTxList(1, h2))
}

func TestDedupCacheExpiresAfterTTL(t *testing.T) {
	c := newDedupCache(16, 10*time.Millisecond)

	require.False(t, c.SeenOrRemember("k"))
	require.True(t, c.SeenOrRemember("k"))

	time.Sleep(30 * time.Millisecond)
	require.False(t, c.SeenOrRemember("k"), "entry should have expired by now")
}

func TestDedupCacheEvictsOnCapacity(t *testing.T) {
	c := newDedupCache(1, time.Minute)

	require.False(t, c.SeenOrRemember("k1"))
	require.False(t, c.SeenOrRemember("k2"), "inserting past capacity evicts the oldest key")
	require.False(t, c.SeenOrRemember("k1"), "k1 should have been evicted by k2's insertion")
}

func TestCleanupExpiredIsSafeToCall(t *testing.T) {
	d := NewDedup()
	d.SeenMessageID("msg")
	require.NotPanics(t, d.CleanupExpired)
}
