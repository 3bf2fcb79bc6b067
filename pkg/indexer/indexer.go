package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"gorm.io/gorm"
)

// Config tunes the indexer's poll cadence, batching, and reorg/pruning
// window.
type Config struct {
	PollInterval     time.Duration
	BackfillBatch    uint64
	ReorgLookback    uint64
	StartSlot        *uint64
	WatchAddresses   map[common.Address]struct{}
}

// Indexer backfills beacon blocks and blobs, reconciles the last
// ReorgLookback slots against the live chain on every tick, and prunes
// non-canonical rows once they fall behind the finalized checkpoint.
type Indexer struct {
	cfg     Config
	storage *Storage
	beacon  *BeaconClient
}

// New builds an Indexer.
func New(cfg Config, storage *Storage, beacon *BeaconClient) *Indexer {
	return &Indexer{cfg: cfg, storage: storage, beacon: beacon}
}

// Run polls until ctx is cancelled, logging (not aborting on) per-tick
// errors so a single bad beacon response doesn't kill the whole process.
func (idx *Indexer) Run(ctx context.Context) error {
	ticker := time.NewTicker(idx.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := idx.tick(ctx); err != nil {
			log.Error("indexer tick failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (idx *Indexer) tick(ctx context.Context) error {
	headSlot, err := idx.beacon.HeadSlot(ctx)
	if err != nil {
		return fmt.Errorf("fetch head slot: %w", err)
	}
	finalizedSlot, err := idx.beacon.FinalizedSlot(ctx)
	if err != nil {
		return fmt.Errorf("fetch finalized slot: %w", err)
	}
	lastProcessed, err := idx.storage.GetLastProcessedSlot(idx.storage.Pool())
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}

	log.Debug("indexer tick snapshot", "headSlot", headSlot, "finalizedSlot", finalizedSlot, "lastProcessed", lastProcessed)

	next := idx.computeNextSlot(headSlot, lastProcessed)

	for next <= headSlot {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		upper := min64(next+idx.cfg.BackfillBatch-1, headSlot)
		for slot := next; slot <= upper; slot++ {
			if err := idx.processSlot(ctx, slot); err != nil {
				return fmt.Errorf("process slot %d: %w", slot, err)
			}
		}
		next = upper + 1
	}

	reorgStart := saturatingSub(headSlot, idx.cfg.ReorgLookback)
	for slot := reorgStart; slot <= headSlot; slot++ {
		if err := idx.refreshSlot(ctx, slot); err != nil {
			return fmt.Errorf("refresh slot %d: %w", slot, err)
		}
	}

	if finalizedSlot > idx.cfg.ReorgLookback {
		pruneBefore := int64(finalizedSlot - idx.cfg.ReorgLookback)
		if err := idx.storage.PruneNonCanonicalBeforeSlot(idx.storage.Pool(), pruneBefore); err != nil {
			return fmt.Errorf("prune non-canonical rows: %w", err)
		}
	}

	return nil
}

// computeNextSlot picks where to resume backfilling: StartSlot only
// applies on a genuinely cold start (no cursor saved yet).
func (idx *Indexer) computeNextSlot(headSlot uint64, lastProcessed *int64) uint64 {
	if lastProcessed == nil && idx.cfg.StartSlot != nil {
		return min64(*idx.cfg.StartSlot, headSlot)
	}
	if lastProcessed != nil {
		return uint64(*lastProcessed) + 1
	}
	return saturatingSub(headSlot, idx.cfg.ReorgLookback)
}

func (idx *Indexer) processSlot(ctx context.Context, slot uint64) error {
	summary, err := idx.beacon.BlockSummaryBySlot(ctx, slot)
	if err != nil {
		return err
	}
	if summary == nil {
		return idx.storage.Transaction(func(tx *gorm.DB) error {
			return idx.storage.SetLastProcessedSlot(tx, int64(slot))
		})
	}
	return idx.storeBlock(ctx, summary)
}

func (idx *Indexer) refreshSlot(ctx context.Context, slot uint64) error {
	summary, err := idx.beacon.BlockSummaryBySlot(ctx, slot)
	if err != nil {
		return err
	}
	if summary == nil {
		return nil
	}

	existing, err := idx.storage.GetBlockBySlot(idx.storage.Pool(), int64(summary.Slot))
	if err != nil {
		return err
	}
	if existing != nil && common.BytesToHash(existing.BlockRoot) == summary.BlockRoot {
		return idx.storage.Transaction(func(tx *gorm.DB) error {
			if err := idx.promoteBranch(ctx, tx, existing); err != nil {
				return err
			}
			return idx.storage.SetLastProcessedSlot(tx, int64(summary.Slot))
		})
	}

	return idx.storeBlock(ctx, summary)
}

func (idx *Indexer) storeBlock(ctx context.Context, summary *BlockSummary) error {
	return idx.storage.Transaction(func(tx *gorm.DB) error {
		block := summaryToBlockRecord(summary)
		if err := idx.storage.InsertOrUpdateBlock(tx, &block); err != nil {
			return err
		}

		blobs, err := idx.fetchBlobRecords(ctx, summary)
		if err != nil {
			return err
		}
		if err := idx.storage.ReplaceBlobs(tx, summary.BlockRoot, blobs); err != nil {
			return err
		}

		if err := idx.promoteBranch(ctx, tx, &block); err != nil {
			return err
		}
		return idx.storage.SetLastProcessedSlot(tx, block.Slot)
	})
}

// promoteBranch walks parentRoot backward, fetching missing ancestors from
// the beacon node if they aren't stored locally, until it finds a
// canonical ancestor (the fork point) or exhausts ReorgLookback depth.
// Everything strictly newer than the fork point on the old branch is
// marked non-canonical, and every slot on the new branch is marked
// canonical.
func (idx *Indexer) promoteBranch(ctx context.Context, tx *gorm.DB, head *BlockRecord) error {
	branch := []BlockRecord{*head}
	cursor := common.BytesToHash(head.ParentRoot)
	var forkSlot *int64
	var depth uint64

	for depth < idx.cfg.ReorgLookback {
		parent, err := idx.storage.GetBlockByRoot(tx, cursor)
		if err != nil {
			return err
		}
		if parent != nil {
			branch = append(branch, *parent)
			if parent.Canonical {
				forkSlot = &parent.Slot
				break
			}
			cursor = common.BytesToHash(parent.ParentRoot)
			depth++
			continue
		}

		fetched, err := idx.beacon.BlockSummaryByRoot(ctx, cursor)
		if err != nil {
			return err
		}
		if fetched == nil {
			break
		}

		record := summaryToBlockRecord(fetched)
		if err := idx.storage.InsertOrUpdateBlock(tx, &record); err != nil {
			return err
		}
		blobs, err := idx.fetchBlobRecords(ctx, fetched)
		if err != nil {
			return err
		}
		if err := idx.storage.ReplaceBlobs(tx, fetched.BlockRoot, blobs); err != nil {
			return err
		}

		cursor = common.BytesToHash(record.ParentRoot)
		branch = append(branch, record)
		depth++
	}

	if forkSlot != nil {
		if err := idx.storage.MarkNonCanonicalAfterSlot(tx, *forkSlot); err != nil {
			return err
		}
	}

	slotsToPromote, rootsToPromote := reconcileCanonicalSet(branch, head.Slot)
	if len(slotsToPromote) == 0 {
		return nil
	}

	// Demote every row at these slots first — including the one about to
	// be re-promoted — so a sibling left over from the losing branch
	// can't end up canonical alongside it, then promote only the new
	// branch's own roots. Keying the promotion by slot here would flip
	// the sibling straight back to canonical=true.
	if err := idx.storage.SetCanonicalForSlots(tx, slotsToPromote, false); err != nil {
		return err
	}
	return idx.storage.SetCanonicalForRoots(tx, rootsToPromote, true)
}

// reconcileCanonicalSet picks which slots need their canonical row
// repointed and which roots are the winners, from a branch walked back
// from headSlot. Split out from promoteBranch so the slot-vs-root
// reconciliation is testable without a database.
func reconcileCanonicalSet(branch []BlockRecord, headSlot int64) (slots []int64, roots [][]byte) {
	slots = make([]int64, 0, len(branch))
	roots = make([][]byte, 0, len(branch))
	for _, b := range branch {
		if !b.Canonical || b.Slot == headSlot {
			slots = append(slots, b.Slot)
			roots = append(roots, b.BlockRoot)
		}
	}
	return slots, roots
}

func (idx *Indexer) fetchBlobRecords(ctx context.Context, summary *BlockSummary) ([]BlobRecord, error) {
	if !idx.hasWatchedBlobs(summary) {
		return nil, nil
	}

	sidecars, err := idx.beacon.BlobSidecars(ctx, summary.Slot)
	if err != nil {
		return nil, err
	}
	return buildBlobRecords(summary, sidecars, idx.cfg.WatchAddresses)
}

func (idx *Indexer) hasWatchedBlobs(summary *BlockSummary) bool {
	if len(idx.cfg.WatchAddresses) == 0 {
		return true
	}
	for _, target := range summary.BlobTargets {
		if target == nil {
			continue
		}
		if _, ok := idx.cfg.WatchAddresses[*target]; ok {
			return true
		}
	}
	return false
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
