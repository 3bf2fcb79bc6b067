package catchup

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// fetchTxLists backfills raw tx lists for every non-EOP commitment in
// chain, using a bounded-concurrency worker set. A response whose tx list
// is empty is treated as a not-found reply rather than an error and isn't
// inserted.
func (e *Engine) fetchTxLists(ctx context.Context, chain []core.SignedCommitment) error {
	hashes := make([]common.Hash, 0, len(chain))
	for _, c := range chain {
		if c.Commitment.Preconf.EOP {
			continue
		}
		hashes = append(hashes, c.Commitment.Preconf.RawTxListHash)
	}
	if len(hashes) == 0 {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.txlistConcurrency())

	for _, hash := range hashes {
		hash := hash
		g.Go(func() error {
			txlist, found, err := e.fetchTxList(gCtx, hash)
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			e.store.InsertTxList(hash, txlist)
			return nil
		})
	}

	return g.Wait()
}

func (e *Engine) fetchTxList(ctx context.Context, hash common.Hash) (core.RawTxListGossip, bool, error) {
	resp, err := e.peer.RawTxList(ctx, hash)
	if err != nil {
		return core.RawTxListGossip{}, false, errors.Wrap(err, "request raw tx list")
	}
	if !resp.Found || len(resp.TxList) == 0 {
		return core.RawTxListGossip{}, false, nil
	}
	if resp.Hash != hash {
		return core.RawTxListGossip{}, false, errors.Wrapf(ErrTxListHashMismatch, "got %s, want %s", resp.Hash, hash)
	}

	return core.RawTxListGossip{RawTxListHash: hash, TxList: resp.TxList}, true, nil
}
