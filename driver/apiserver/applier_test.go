package apiserver

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/beacon/engine"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/taikoxyz/surge-preconf-client/driver/router"
	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/derivation"
	"github.com/taikoxyz/surge-preconf-client/pkg/rpc"
)

type fakeEngine struct {
	applied     []*core.TaikoPayloadAttributes
	blockHash   common.Hash
	applyErr    error
	resultBlock uint64
}

func (e *fakeEngine) ApplyPayload(_ context.Context, attrs *core.TaikoPayloadAttributes, _ common.Hash, _ *common.Hash) (*rpc.ApplyOutcome, error) {
	if e.applyErr != nil {
		return nil, e.applyErr
	}
	e.applied = append(e.applied, attrs)
	return &rpc.ApplyOutcome{
		BlockNumber: e.resultBlock,
		BlockHash:   e.blockHash,
		Payload:     &engine.ExecutableData{Number: e.resultBlock},
	}, nil
}

func (e *fakeEngine) BlockHashByNumber(context.Context, uint64) (common.Hash, error) {
	return common.Hash{}, nil
}

type fakeTip struct {
	tip core.CanonicalTip
}

func (f fakeTip) CanonicalTip() core.CanonicalTip { return f.tip }

type fakeParents struct {
	state *derivation.ParentState
}

func (p *fakeParents) LastL1OriginByBatchID(context.Context, uint64) (*derivation.ParentState, error) {
	return p.state, nil
}

func (p *fakeParents) LatestCanonical(context.Context) (*derivation.ParentState, error) {
	return p.state, nil
}

func (p *fakeParents) ShastaForkHeight(context.Context) (uint64, error) { return 0, nil }

type fakeApplierStore struct {
	rawTxLists map[common.Hash][]byte
	head       core.PreconfHead
}

func (s *fakeApplierStore) RawTxListByHash(hash common.Hash) ([]byte, bool) {
	raw, ok := s.rawTxLists[hash]
	return raw, ok
}

func (s *fakeApplierStore) SetHead(head core.PreconfHead) { s.head = head }

func newTestApplier(t *testing.T, store *fakeApplierStore, eng *fakeEngine, eop *EOPTracker) *Applier {
	t.Helper()
	rt := router.New(eng, fakeTip{tip: core.CanonicalTip{Status: core.CanonicalTipKnown, BlockNumber: 4}}, nil)
	parents := &fakeParents{state: &derivation.ParentState{GasLimit: 30_000_000}}
	return NewApplier(store, parents, rt, 0, eop)
}

func testCommitment(blockNumber uint64, rawTxListHash common.Hash, eop bool) core.SignedCommitment {
	return core.SignedCommitment{
		Commitment: core.Commitment{
			Preconf: core.Preconfirmation{
				BlockNumber:   blockNumber,
				RawTxListHash: rawTxListHash,
				EOP:           eop,
			},
		},
	}
}

func TestApplierSkipsWhenRawTxListMissing(t *testing.T) {
	store := &fakeApplierStore{rawTxLists: map[common.Hash][]byte{}}
	eng := &fakeEngine{resultBlock: 5, blockHash: common.HexToHash("0x05")}
	a := newTestApplier(t, store, eng, NewEOPTracker(nil))

	c := testCommitment(5, common.HexToHash("0xaa"), false)
	a.Apply(context.Background(), c)

	require.Empty(t, eng.applied, "apply must not be attempted without the raw tx list")
	require.Zero(t, store.head.BlockNumber)
}

func TestApplierAppliesAndSetsHead(t *testing.T) {
	rawHash := common.HexToHash("0xaa")
	store := &fakeApplierStore{rawTxLists: map[common.Hash][]byte{rawHash: []byte("txs")}}
	eng := &fakeEngine{resultBlock: 5, blockHash: common.HexToHash("0x05")}
	a := newTestApplier(t, store, eng, NewEOPTracker(nil))

	c := testCommitment(5, rawHash, false)
	a.Apply(context.Background(), c)

	require.Len(t, eng.applied, 1)
	require.Equal(t, uint64(5), store.head.BlockNumber)
	require.Equal(t, eng.blockHash, store.head.BlockHash)
}

func TestApplierPublishesEndOfSequencing(t *testing.T) {
	rawHash := common.HexToHash("0xbb")
	store := &fakeApplierStore{rawTxLists: map[common.Hash][]byte{rawHash: []byte("txs")}}
	eng := &fakeEngine{resultBlock: 6, blockHash: common.HexToHash("0x06")}
	eop := NewEOPTracker(nil)
	ch, unsubscribe := eop.Subscribe()
	defer unsubscribe()

	a := newTestApplier(t, store, eng, eop)
	c := testCommitment(6, rawHash, true)
	a.Apply(context.Background(), c)

	select {
	case n := <-ch:
		require.Equal(t, uint64(6), n.BlockNumber)
	default:
		t.Fatal("EOP commitment should have published an end-of-sequencing notification")
	}
}

func TestApplierDoesNotApplyStaleBlock(t *testing.T) {
	rawHash := common.HexToHash("0xcc")
	store := &fakeApplierStore{rawTxLists: map[common.Hash][]byte{rawHash: []byte("txs")}}
	eng := &fakeEngine{resultBlock: 3, blockHash: common.HexToHash("0x03")}
	a := newTestApplier(t, store, eng, NewEOPTracker(nil))

	// Canonical tip is at block 4; a commitment for block 3 is stale.
	c := testCommitment(3, rawHash, false)
	a.Apply(context.Background(), c)

	require.Empty(t, eng.applied)
	require.Zero(t, store.head.BlockNumber)
}
