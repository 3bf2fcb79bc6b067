package catchup

import (
	"context"
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p"
)

func sign(t *testing.T, key *ecdsa.PrivateKey, c core.Commitment) core.SignedCommitment {
	t.Helper()
	hash, err := c.SigningHash()
	require.NoError(t, err)
	sig, err := crypto.Sign(hash[:], key)
	require.NoError(t, err)
	var signed core.SignedCommitment
	signed.Commitment = c
	copy(signed.Signature[:], sig)
	return signed
}

type mockPeer struct {
	head        core.PreconfHead
	commitments map[uint64][]core.SignedCommitment // keyed by request start
	txlists     map[common.Hash]p2p.RawTxListResponse
}

func (m *mockPeer) Head(ctx context.Context) (core.PreconfHead, error) {
	return m.head, nil
}

func (m *mockPeer) Commitments(ctx context.Context, start uint64, maxCount uint32) ([]core.SignedCommitment, error) {
	return m.commitments[start], nil
}

func (m *mockPeer) RawTxList(ctx context.Context, hash common.Hash) (p2p.RawTxListResponse, error) {
	return m.txlists[hash], nil
}

type mockResolver struct {
	signer common.Address
}

func (r *mockResolver) Resolve(ctx context.Context, timestamp, now uint64) (common.Address, error) {
	return r.signer, nil
}

type mockStore struct {
	commitments []core.SignedCommitment
	txlists     map[common.Hash]core.RawTxListGossip
}

func (s *mockStore) InsertCommitment(c core.SignedCommitment) {
	s.commitments = append(s.commitments, c)
}

func (s *mockStore) InsertTxList(hash common.Hash, txlist core.RawTxListGossip) {
	if s.txlists == nil {
		s.txlists = make(map[common.Hash]core.RawTxListGossip)
	}
	s.txlists[hash] = txlist
}

func TestBackfillFromPeerHeadWalksChainToBoundary(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	block1 := sign(t, key, core.Commitment{Preconf: core.Preconfirmation{BlockNumber: 1, Timestamp: 10, EOP: true}})
	hash1, err := block1.Commitment.Hash()
	require.NoError(t, err)

	block2 := sign(t, key, core.Commitment{Preconf: core.Preconfirmation{BlockNumber: 2, Timestamp: 20, ParentPreconfirmationHash: hash1}})
	hash2, err := block2.Commitment.Hash()
	require.NoError(t, err)

	tip := sign(t, key, core.Commitment{Preconf: core.Preconfirmation{BlockNumber: 3, Timestamp: 30, ParentPreconfirmationHash: hash2}})

	peer := &mockPeer{
		head: core.PreconfHead{BlockNumber: 3},
		commitments: map[uint64][]core.SignedCommitment{
			3: {tip},
			1: {block1, block2},
		},
		txlists: map[common.Hash]p2p.RawTxListResponse{},
	}
	store := &mockStore{}
	resolver := &mockResolver{signer: signer}

	e := New(peer, store, resolver, Config{})
	chain, boundary, err := e.BackfillFromPeerHead(context.Background(), 0)

	require.NoError(t, err)
	require.True(t, boundary)
	require.Len(t, chain, 3)
	require.Equal(t, uint64(1), chain[0].Commitment.Preconf.BlockNumber)
	require.Equal(t, uint64(3), chain[2].Commitment.Preconf.BlockNumber)
	require.Len(t, store.commitments, 3)
}

func TestBackfillNothingToDoWhenPeerBehindDriver(t *testing.T) {
	peer := &mockPeer{head: core.PreconfHead{BlockNumber: 5}}
	store := &mockStore{}
	resolver := &mockResolver{}

	e := New(peer, store, resolver, Config{})
	chain, boundary, err := e.BackfillFromPeerHead(context.Background(), 10)

	require.NoError(t, err)
	require.False(t, boundary)
	require.Nil(t, chain)
}

func TestBackfillErrorsOnMissingTipCommitment(t *testing.T) {
	peer := &mockPeer{
		head:        core.PreconfHead{BlockNumber: 3},
		commitments: map[uint64][]core.SignedCommitment{},
	}
	store := &mockStore{}
	resolver := &mockResolver{}

	e := New(peer, store, resolver, Config{})
	_, _, err := e.BackfillFromPeerHead(context.Background(), 0)
	require.ErrorIs(t, err, ErrNoPeerTipCommitment)
}

func TestBackfillRejectsWrongSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	tip := sign(t, key, core.Commitment{Preconf: core.Preconfirmation{BlockNumber: 1, Timestamp: 10, EOP: true}})

	peer := &mockPeer{
		head:        core.PreconfHead{BlockNumber: 1},
		commitments: map[uint64][]core.SignedCommitment{1: {tip}},
	}
	store := &mockStore{}
	resolver := &mockResolver{signer: common.HexToAddress("0xdeadbeef")}

	e := New(peer, store, resolver, Config{})
	_, _, err = e.BackfillFromPeerHead(context.Background(), 0)
	require.ErrorIs(t, err, ErrCommitmentValidation)
}

func TestFetchTxListsStoresMatchingTxList(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	txHash := common.HexToHash("0xabc")
	c := sign(t, key, core.Commitment{Preconf: core.Preconfirmation{BlockNumber: 1, Timestamp: 10, RawTxListHash: txHash}})

	peer := &mockPeer{
		head:        core.PreconfHead{BlockNumber: 1},
		commitments: map[uint64][]core.SignedCommitment{1: {c}},
		txlists: map[common.Hash]p2p.RawTxListResponse{
			txHash: {Hash: txHash, TxList: []byte("payload"), Found: true},
		},
	}
	store := &mockStore{}
	resolver := &mockResolver{signer: signer}

	e := New(peer, store, resolver, Config{})
	_, _, err = e.BackfillFromPeerHead(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), store.txlists[txHash].TxList)
}
