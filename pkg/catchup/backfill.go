package catchup

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// BackfillFromPeerHead anchors on the peer's tip commitment and walks the
// parent-commitment chain backward until reaching the block immediately
// after eventSyncTip (the driver's own sync boundary).
//
// Returns the validated chain in ascending block-number order, plus
// whether a chain reaching the sync boundary was stored. When the peer's
// tip is behind the boundary there is nothing to fetch: it returns a nil
// chain, false and no error.
func (e *Engine) BackfillFromPeerHead(ctx context.Context, eventSyncTip uint64) ([]core.SignedCommitment, bool, error) {
	peerHead, err := e.peer.Head(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "fetch peer head")
	}
	peerTip := peerHead.BlockNumber

	stopBlock := eventSyncTip + 1
	if stopBlock > peerTip {
		return nil, false, nil
	}

	tipCommitments, err := e.peer.Commitments(ctx, peerTip, 1)
	if err != nil {
		return nil, false, errors.Wrap(err, "fetch tip commitment")
	}
	if len(tipCommitments) == 0 {
		return nil, false, ErrNoPeerTipCommitment
	}
	tip := tipCommitments[0]

	fetched, err := e.pageCommitments(ctx, stopBlock, peerTip-1)
	if err != nil {
		return nil, false, err
	}
	byHash := indexByHash(fetched)

	chain, err := e.walkChain(ctx, tip, byHash, stopBlock)
	if err != nil {
		return nil, false, err
	}
	if len(chain) == 0 {
		return nil, false, nil
	}

	reverse(chain)

	boundaryBlock := chain[0].Commitment.Preconf.BlockNumber
	if boundaryBlock != stopBlock {
		return nil, false, ErrBoundaryMismatch
	}

	for _, c := range chain {
		e.store.InsertCommitment(c)
	}

	if err := e.fetchTxLists(ctx, chain); err != nil {
		return nil, false, err
	}

	return chain, true, nil
}

// pageCommitments requests commitments over [start, end] inclusive in
// batches of cfg.batchSize(), stopping on an empty page before end is
// reached (which is an error: the peer claimed a tip past what it can
// actually deliver).
func (e *Engine) pageCommitments(ctx context.Context, start, end uint64) ([]core.SignedCommitment, error) {
	if start > end {
		return nil, nil
	}

	var all []core.SignedCommitment
	batchSize := e.cfg.batchSize()
	current := start

	for current <= end {
		remaining := end - current + 1
		count := batchSize
		if remaining < uint64(count) {
			count = uint32(remaining)
		}

		page, err := e.peer.Commitments(ctx, current, count)
		if err != nil {
			return nil, errors.Wrap(err, "fetch commitment page")
		}
		if len(page) == 0 {
			return nil, ErrEmptyCommitmentBatch
		}

		all = append(all, page...)
		current += uint64(len(page))
	}

	return all, nil
}

func indexByHash(commitments []core.SignedCommitment) map[common.Hash]core.SignedCommitment {
	index := make(map[common.Hash]core.SignedCommitment, len(commitments))
	for _, c := range commitments {
		hash, err := c.Commitment.Hash()
		if err != nil {
			continue
		}
		if _, exists := index[hash]; exists {
			continue
		}
		index[hash] = c
	}
	return index
}

// walkChain validates the tip commitment and follows
// parent_preconfirmation_hash backward through byHash until reaching
// stopBlock or a zero parent hash. A commitment that fails validation
// aborts the walk with an error, per the stop condition's error-propagated
// case.
func (e *Engine) walkChain(ctx context.Context, tip core.SignedCommitment, byHash map[common.Hash]core.SignedCommitment, stopBlock uint64) ([]core.SignedCommitment, error) {
	current := tip
	if err := e.validateCommitment(ctx, current); err != nil {
		return nil, err
	}

	chain := []core.SignedCommitment{current}

	for {
		blockNumber := current.Commitment.Preconf.BlockNumber
		if blockNumber <= stopBlock {
			break
		}

		parentHash := current.Commitment.Preconf.ParentPreconfirmationHash
		if parentHash == (common.Hash{}) {
			break
		}

		parent, ok := byHash[parentHash]
		if !ok {
			break
		}
		if err := e.validateCommitment(ctx, parent); err != nil {
			return nil, err
		}

		chain = append(chain, parent)
		current = parent
	}

	return chain, nil
}

// validateCommitment recovers the signer, optionally checks the expected
// slasher, and confirms the signer matches the lookahead's entitled signer
// at the commitment's timestamp.
func (e *Engine) validateCommitment(ctx context.Context, c core.SignedCommitment) error {
	signer, err := c.RecoverSigner()
	if err != nil {
		return errors.Wrapf(ErrCommitmentValidation, "recover signer: %v", err)
	}

	if e.cfg.ExpectedSlasher != nil && c.Commitment.SlasherAddress != *e.cfg.ExpectedSlasher {
		return errors.Wrap(ErrCommitmentValidation, "unexpected slasher address")
	}

	now := uint64(time.Now().Unix())
	expected, err := e.resolver.Resolve(ctx, c.Commitment.Preconf.Timestamp, now)
	if err != nil {
		return errors.Wrapf(ErrCommitmentValidation, "resolve lookahead signer: %v", err)
	}
	if signer != expected {
		return errors.Wrap(ErrCommitmentValidation, "signer does not match lookahead")
	}

	return nil
}

func reverse(chain []core.SignedCommitment) {
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
}
