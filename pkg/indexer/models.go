// Package indexer persists beacon blocks and blobs with reorg-aware
// canonical tracking, independent of the L2 derivation path: it's the
// boundary component other tooling (archival fallback, operators) reads
// blob history from.
package indexer

// BlockRecord is one beacon block's identity and canonical status.
type BlockRecord struct {
	BlockRoot  []byte `gorm:"column:block_root;primaryKey;size:32"`
	Slot       int64  `gorm:"column:slot;index"`
	ParentRoot []byte `gorm:"column:parent_root;size:32"`
	Timestamp  *int64 `gorm:"column:timestamp"`
	Canonical  bool   `gorm:"column:canonical;index"`
}

func (BlockRecord) TableName() string { return "blocks" }

// BlobRecord is one blob sidecar attached to a beacon block.
type BlobRecord struct {
	BlockRoot     []byte `gorm:"column:block_root;primaryKey;size:32"`
	Index         int32  `gorm:"column:blob_index;primaryKey"`
	Slot          int64  `gorm:"column:slot;index"`
	VersionedHash []byte `gorm:"column:versioned_hash;size:32"`
	Commitment    []byte `gorm:"column:commitment;size:48"`
	Proof         []byte `gorm:"column:proof;size:48"`
	Blob          []byte `gorm:"column:blob"`
	Canonical     bool   `gorm:"column:canonical;index"`
}

func (BlobRecord) TableName() string { return "blobs" }

// cursorRow is the single-row `last_processed_slot` scalar, modeled as a
// fixed-id table so gorm's ordinary upsert machinery applies.
type cursorRow struct {
	ID   uint8 `gorm:"column:id;primaryKey"`
	Slot int64 `gorm:"column:slot"`
}

func (cursorRow) TableName() string { return "last_processed_slot" }

const cursorRowID uint8 = 1
