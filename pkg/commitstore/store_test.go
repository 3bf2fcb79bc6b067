package commitstore

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

func newCommitment(blockNumber uint64, txlistHash common.Hash) core.SignedCommitment {
	return core.SignedCommitment{
		Commitment: core.Commitment{
			Preconf: core.Preconfirmation{
				BlockNumber:   blockNumber,
				RawTxListHash: txlistHash,
			},
		},
	}
}

func TestInsertAndGetCommitment(t *testing.T) {
	s := New()
	hash := common.HexToHash("0x01")
	s.InsertCommitment(newCommitment(10, hash))

	got, ok := s.GetCommitment(10)
	require.True(t, ok)
	require.Equal(t, uint64(10), got.Commitment.Preconf.BlockNumber)

	_, ok = s.GetCommitment(11)
	require.False(t, ok)
}

func TestInsertCommitmentClearsPending(t *testing.T) {
	s := New()
	hash := common.HexToHash("0x01")
	s.InsertPendingCommitment(newCommitment(10, hash))

	_, ok := s.TakePendingCommitment(10)
	require.True(t, ok)

	s.InsertPendingCommitment(newCommitment(10, hash))
	s.InsertCommitment(newCommitment(10, hash))

	_, ok = s.TakePendingCommitment(10)
	require.False(t, ok, "validated insert should drop the pending copy")
}

func TestCommitmentsRangeOrderedAndBounded(t *testing.T) {
	s := New()
	for i := uint64(1); i <= 5; i++ {
		s.InsertCommitment(newCommitment(i, common.Hash{}))
	}

	got := s.CommitmentsRange(2, 2)
	require.Len(t, got, 2)
	require.Equal(t, uint64(2), got[0].Commitment.Preconf.BlockNumber)
	require.Equal(t, uint64(3), got[1].Commitment.Preconf.BlockNumber)
}

func TestRetentionEvictsOldestCommitmentAndItsTxList(t *testing.T) {
	s := NewWithRetentionLimit(2)

	hash1 := common.HexToHash("0x01")
	hash2 := common.HexToHash("0x02")
	hash3 := common.HexToHash("0x03")

	s.InsertCommitment(newCommitment(1, hash1))
	s.InsertTxList(hash1, core.RawTxListGossip{RawTxListHash: hash1, TxList: []byte("a")})
	s.InsertCommitment(newCommitment(2, hash2))
	s.InsertTxList(hash2, core.RawTxListGossip{RawTxListHash: hash2, TxList: []byte("b")})
	s.InsertCommitment(newCommitment(3, hash3))
	s.InsertTxList(hash3, core.RawTxListGossip{RawTxListHash: hash3, TxList: []byte("c")})

	_, ok := s.GetCommitment(1)
	require.False(t, ok, "oldest commitment should be evicted once retention limit is exceeded")

	_, ok = s.RawTxListByHash(hash1)
	require.False(t, ok, "tx list of an evicted commitment should be pruned too")

	_, ok = s.RawTxListByHash(hash3)
	require.True(t, ok)
}

func TestPendingTxListEvictionIsUnordered(t *testing.T) {
	s := NewWithRetentionLimit(1)

	h1 := common.HexToHash("0x01")
	h2 := common.HexToHash("0x02")

	s.InsertPendingTxList(h1, core.RawTxListGossip{RawTxListHash: h1})
	s.InsertPendingTxList(h2, core.RawTxListGossip{RawTxListHash: h2})

	_, ok1 := s.TakePendingTxList(h1)
	_, ok2 := s.TakePendingTxList(h2)
	require.False(t, ok1 && ok2, "pending txlists must respect the retention cap")
}

func TestAwaitingTxListBuffersAndDrains(t *testing.T) {
	s := New()
	hash := common.HexToHash("0x01")
	c1 := newCommitment(1, hash)
	c2 := newCommitment(2, hash)

	s.AddAwaitingTxList(hash, c1)
	s.AddAwaitingTxList(hash, c2)

	drained := s.TakeAwaitingTxList(hash)
	require.Len(t, drained, 2)

	require.Empty(t, s.TakeAwaitingTxList(hash), "a second drain should come up empty")
}

func TestHeadRoundTrip(t *testing.T) {
	s := New()
	head := core.PreconfHead{BlockNumber: 42}
	s.SetHead(head)
	require.Equal(t, head, s.Head())
}

func TestLenCountsCachedCommitments(t *testing.T) {
	s := New()
	require.Equal(t, 0, s.Len())

	s.InsertCommitment(newCommitment(1, common.HexToHash("0x01")))
	s.InsertCommitment(newCommitment(2, common.HexToHash("0x02")))
	require.Equal(t, 2, s.Len())

	s.InsertCommitment(newCommitment(2, common.HexToHash("0x03")))
	require.Equal(t, 2, s.Len(), "re-inserting an existing block number must not grow the count")
}
