package apiserver

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/taikoxyz/surge-preconf-client/driver/router"
	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/derivation"
)

// ApplierStore is the commitment-store surface Applier needs: the raw tx
// list a commitment names, and where to record the resulting
// preconfirmation head once applied.
type ApplierStore interface {
	RawTxListByHash(hash common.Hash) ([]byte, bool)
	SetHead(core.PreconfHead)
}

// Applier turns a commitment that's been validated and paired with its raw
// tx list into an applied L2 block, routing it through the production
// router exactly the way a directly-submitted /preconfBlocks request is
// routed. It implements p2p.CommitmentApplier.
type Applier struct {
	store      ApplierStore
	parents    derivation.ParentBlockSource
	router     *router.Router
	forkHeight uint64
	eop        *EOPTracker
}

// NewApplier wires an Applier. eop may be nil to skip end-of-sequencing
// notification for commitments arriving this way.
func NewApplier(store ApplierStore, parents derivation.ParentBlockSource, rt *router.Router, forkHeight uint64, eop *EOPTracker) *Applier {
	return &Applier{store: store, parents: parents, router: rt, forkHeight: forkHeight, eop: eop}
}

// Apply resolves parent state, builds payload attributes, and routes the
// commitment through the engine. Failures are logged, not returned: the
// caller is a fire-and-forget gossip callback with nobody waiting on a
// result.
func (a *Applier) Apply(ctx context.Context, c core.SignedCommitment) {
	rawTxList, ok := a.store.RawTxListByHash(c.Commitment.Preconf.RawTxListHash)
	if !ok {
		log.Warn("apply gossiped commitment: raw tx list not cached", "block", c.Commitment.Preconf.BlockNumber)
		return
	}

	parent, err := a.parents.LatestCanonical(ctx)
	if err != nil {
		log.Warn("apply gossiped commitment: resolve parent state", "block", c.Commitment.Preconf.BlockNumber, "error", err)
		return
	}

	attrs, err := derivation.BuildPreconfAttrs(c.Commitment, parent, a.forkHeight, rawTxList)
	if err != nil {
		log.Warn("apply gossiped commitment: build payload attributes", "block", c.Commitment.Preconf.BlockNumber, "error", err)
		return
	}

	outcome, err := a.router.RoutePreconfirmation(ctx, router.PreconfirmationInput{
		BlockNumber: c.Commitment.Preconf.BlockNumber,
		Attrs:       attrs,
	})
	if err != nil {
		log.Warn("apply gossiped commitment", "block", c.Commitment.Preconf.BlockNumber, "error", err)
		return
	}
	if !outcome.Applied || len(outcome.Results) == 0 {
		return
	}

	result := outcome.Results[len(outcome.Results)-1]
	hash, err := c.Commitment.Hash()
	if err != nil {
		return
	}

	head := core.PreconfHead{BlockNumber: result.BlockNumber, BlockHash: result.BlockHash, PreconfirmationHash: hash}
	a.store.SetHead(head)

	if c.Commitment.Preconf.EOP && a.eop != nil {
		a.eop.Publish(ctx, head)
	}
}
