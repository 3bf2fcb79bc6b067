package indexer

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage wraps the gorm handle used to persist blocks, blobs, and the
// processing cursor. Methods take an explicit *gorm.DB so callers can pass
// either the pool (read paths) or an open transaction (write paths),
// mirroring the Rust indexer's explicit pool/transaction threading.
type Storage struct {
	db *gorm.DB
}

// NewStorage wraps an already-migrated gorm handle.
func NewStorage(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Pool returns the underlying connection pool for read-only queries that
// don't need transactional isolation.
func (s *Storage) Pool() *gorm.DB { return s.db }

// Transaction runs fn inside a single DB transaction, committing on a nil
// return and rolling back otherwise.
func (s *Storage) Transaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// GetLastProcessedSlot fetches the indexer's saved cursor, or nil if the
// indexer has never completed a slot.
func (s *Storage) GetLastProcessedSlot(db *gorm.DB) (*int64, error) {
	var row cursorRow
	err := db.First(&row, cursorRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.Slot, nil
}

// SetLastProcessedSlot upserts the cursor.
func (s *Storage) SetLastProcessedSlot(db *gorm.DB, slot int64) error {
	row := cursorRow{ID: cursorRowID, Slot: slot}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"slot"}),
	}).Create(&row).Error
}

// GetBlockBySlot fetches the block stored at a slot, or nil if absent.
func (s *Storage) GetBlockBySlot(db *gorm.DB, slot int64) (*BlockRecord, error) {
	var block BlockRecord
	err := db.Where("slot = ?", slot).First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// GetBlockByRoot fetches the block with the given root, or nil if absent.
func (s *Storage) GetBlockByRoot(db *gorm.DB, root common.Hash) (*BlockRecord, error) {
	var block BlockRecord
	err := db.Where("block_root = ?", root.Bytes()).First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// InsertOrUpdateBlock upserts a block record keyed by its root.
func (s *Storage) InsertOrUpdateBlock(db *gorm.DB, block *BlockRecord) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_root"}},
		DoUpdates: clause.AssignmentColumns([]string{"slot", "parent_root", "timestamp", "canonical"}),
	}).Create(block).Error
}

// ReplaceBlobs deletes any existing blob rows for blockRoot and inserts
// the given set, keeping blob storage consistent with a single upsert of
// the owning block.
func (s *Storage) ReplaceBlobs(db *gorm.DB, blockRoot common.Hash, blobs []BlobRecord) error {
	if err := db.Where("block_root = ?", blockRoot.Bytes()).Delete(&BlobRecord{}).Error; err != nil {
		return err
	}
	if len(blobs) == 0 {
		return nil
	}
	return db.Create(&blobs).Error
}

// MarkNonCanonicalAfterSlot flips canonical=false for every block strictly
// newer than forkSlot — the losing side of a reorg.
func (s *Storage) MarkNonCanonicalAfterSlot(db *gorm.DB, forkSlot int64) error {
	return db.Model(&BlockRecord{}).
		Where("slot > ?", forkSlot).
		Update("canonical", false).Error
}

// SetCanonicalForSlots marks the given slots' canonical flag. A slot can
// hold more than one stored row (the old and new side of a reorg both
// keep a row at the same slot), so this flips every row at that slot —
// callers that need to promote one specific branch must follow it with
// SetCanonicalForRoots to single out the winning row.
func (s *Storage) SetCanonicalForSlots(db *gorm.DB, slots []int64, canonical bool) error {
	if len(slots) == 0 {
		return nil
	}
	return db.Model(&BlockRecord{}).
		Where("slot IN ?", slots).
		Update("canonical", canonical).Error
}

// SetCanonicalForRoots marks the given block roots' canonical flag,
// keyed by the primary key rather than slot so it only ever touches the
// specific rows named, never a sibling sharing the same slot.
func (s *Storage) SetCanonicalForRoots(db *gorm.DB, roots [][]byte, canonical bool) error {
	if len(roots) == 0 {
		return nil
	}
	return db.Model(&BlockRecord{}).
		Where("block_root IN ?", roots).
		Update("canonical", canonical).Error
}

// PruneNonCanonicalBeforeSlot deletes non-canonical blocks (and their
// blobs) with slot < beforeSlot. Canonical rows are never pruned.
func (s *Storage) PruneNonCanonicalBeforeSlot(db *gorm.DB, beforeSlot int64) error {
	var roots [][]byte
	if err := db.Model(&BlockRecord{}).
		Where("slot < ? AND canonical = ?", beforeSlot, false).
		Pluck("block_root", &roots).Error; err != nil {
		return err
	}
	if len(roots) == 0 {
		return nil
	}

	if err := db.Where("block_root IN ?", roots).Delete(&BlobRecord{}).Error; err != nil {
		return err
	}
	return db.Where("slot < ? AND canonical = ?", beforeSlot, false).Delete(&BlockRecord{}).Error
}
