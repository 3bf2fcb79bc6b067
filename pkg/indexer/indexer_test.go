package indexer

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestComputeNextSlotColdStartUsesReorgLookback(t *testing.T) {
	idx := &Indexer{cfg: Config{ReorgLookback: 10}}
	assert.Equal(t, uint64(90), idx.computeNextSlot(100, nil))
}

func TestComputeNextSlotColdStartHonorsStartSlot(t *testing.T) {
	start := uint64(50)
	idx := &Indexer{cfg: Config{ReorgLookback: 10, StartSlot: &start}}
	assert.Equal(t, uint64(50), idx.computeNextSlot(100, nil))
}

func TestComputeNextSlotColdStartClampsStartSlotToHead(t *testing.T) {
	start := uint64(500)
	idx := &Indexer{cfg: Config{ReorgLookback: 10, StartSlot: &start}}
	assert.Equal(t, uint64(100), idx.computeNextSlot(100, nil))
}

func TestComputeNextSlotResumesFromCursor(t *testing.T) {
	start := uint64(1)
	last := int64(77)
	idx := &Indexer{cfg: Config{ReorgLookback: 10, StartSlot: &start}}
	assert.Equal(t, uint64(78), idx.computeNextSlot(100, &last))
}

func TestSaturatingSubClampsAtZero(t *testing.T) {
	assert.Equal(t, uint64(0), saturatingSub(5, 10))
	assert.Equal(t, uint64(5), saturatingSub(15, 10))
}

func TestMin64(t *testing.T) {
	assert.Equal(t, uint64(3), min64(3, 9))
	assert.Equal(t, uint64(3), min64(9, 3))
}

func TestHasWatchedBlobsEmptySetWatchesEverything(t *testing.T) {
	idx := &Indexer{cfg: Config{}}
	summary := &BlockSummary{BlobTargets: []*common.Address{nil}}
	assert.True(t, idx.hasWatchedBlobs(summary))
}

// applyCanonicalUpdate mimics the two-step storage sequence
// promoteBranch issues against real rows: demote every row at the given
// slots, then promote only the named roots. Standing in for a gorm-backed
// Storage so the reconciliation logic is exercised without a database.
func applyCanonicalUpdate(rows map[string]*BlockRecord, slots []int64, demoteSlots bool, roots [][]byte, promote bool) {
	if demoteSlots {
		slotSet := make(map[int64]bool, len(slots))
		for _, s := range slots {
			slotSet[s] = true
		}
		for _, row := range rows {
			if slotSet[row.Slot] {
				row.Canonical = false
			}
		}
	}
	if promote {
		for _, root := range roots {
			rows[string(root)].Canonical = true
		}
	}
}

func TestReconcileCanonicalSetPromotesOnlyBranchRootsOnReorg(t *testing.T) {
	// Scenario S3: slot 10 is the shared fork point (canonical), slot 11
	// held root B as canonical; a refresh observes a new root C at slot
	// 11 instead. Only C should end up canonical at slot 11.
	rootA := []byte{0x0A}
	rootB := []byte{0x0B}
	rootC := []byte{0x0C}

	rows := map[string]*BlockRecord{
		string(rootA): {BlockRoot: rootA, Slot: 10, Canonical: true},
		string(rootB): {BlockRoot: rootB, Slot: 11, Canonical: true},
		string(rootC): {BlockRoot: rootC, Slot: 11, ParentRoot: rootA, Canonical: false},
	}

	// The walk back from the new head C stops at the shared ancestor A
	// (A.Canonical is true, so it is the fork point). reconcileCanonicalSet
	// skips a canonical row below the head slot, so the branch here holds
	// only C.
	head := rows[string(rootC)]
	branch := []BlockRecord{*head}

	forkSlot := rows[string(rootA)].Slot
	applyMarkNonCanonicalAfterSlot(rows, forkSlot)

	slots, roots := reconcileCanonicalSet(branch, head.Slot)
	applyCanonicalUpdate(rows, slots, true, roots, true)

	canonicalAtSlot11 := 0
	for _, row := range rows {
		if row.Slot == 11 && row.Canonical {
			canonicalAtSlot11++
		}
	}
	assert.Equal(t, 1, canonicalAtSlot11)
	assert.True(t, rows[string(rootC)].Canonical)
	assert.False(t, rows[string(rootB)].Canonical)
}

// applyMarkNonCanonicalAfterSlot mirrors Storage.MarkNonCanonicalAfterSlot:
// demote every row strictly newer than forkSlot.
func applyMarkNonCanonicalAfterSlot(rows map[string]*BlockRecord, forkSlot int64) {
	for _, row := range rows {
		if row.Slot > forkSlot {
			row.Canonical = false
		}
	}
}

func TestReconcileCanonicalSetLeavesUntouchedBranchAlone(t *testing.T) {
	// A refresh that re-observes the same canonical root at the head
	// slot, with no non-canonical ancestors in the walked branch, still
	// needs the head's own slot reconciled (it's always included via the
	// b.Slot == headSlot branch) but nothing else.
	root := []byte{0x01}
	branch := []BlockRecord{{BlockRoot: root, Slot: 20, Canonical: true}}

	slots, roots := reconcileCanonicalSet(branch, 20)
	assert.Equal(t, []int64{20}, slots)
	assert.Equal(t, [][]byte{root}, roots)
}

func TestHasWatchedBlobsMatchesTarget(t *testing.T) {
	watched := common.HexToAddress("0x1")
	other := common.HexToAddress("0x2")
	idx := &Indexer{cfg: Config{WatchAddresses: map[common.Address]struct{}{watched: {}}}}

	matching := &BlockSummary{BlobTargets: []*common.Address{&other, &watched}}
	assert.True(t, idx.hasWatchedBlobs(matching))

	notMatching := &BlockSummary{BlobTargets: []*common.Address{&other}}
	assert.False(t, idx.hasWatchedBlobs(notMatching))
}
