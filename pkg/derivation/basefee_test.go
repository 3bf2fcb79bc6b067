package derivation

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeBaseFeeFlatDuringInitialWindow(t *testing.T) {
	parent := &ParentState{Timestamp: 100, BaseFee: big.NewInt(5_000_000_000)}

	const forkHeight = 1000
	last := forkHeight + ShastaInitialBaseFeeBlocks - 1

	fee := computeBaseFee(parent, forkHeight, last, computeBlockTime(parent, 112))
	require.Equal(t, ShastaInitialBaseFee, fee)
}

func TestComputeBaseFeeSwitchesAtWindowBoundary(t *testing.T) {
	parent := &ParentState{Timestamp: 100, BaseFee: big.NewInt(5_000_000_000)}

	const forkHeight = 1000
	boundary := forkHeight + ShastaInitialBaseFeeBlocks

	fee := computeBaseFee(parent, forkHeight, boundary, computeBlockTime(parent, 112))
	require.Equal(t, parent.BaseFee, fee)
}

func TestComputeBaseFeeFallsBackToFlatWithNoParentBaseFee(t *testing.T) {
	parent := &ParentState{Timestamp: 100}

	const forkHeight = 1000
	boundary := forkHeight + ShastaInitialBaseFeeBlocks

	fee := computeBaseFee(parent, forkHeight, boundary, computeBlockTime(parent, 112))
	require.Equal(t, ShastaInitialBaseFee, fee)
}

func TestComputeBlockTimeFloorsAtOne(t *testing.T) {
	parent := &ParentState{Timestamp: 100}

	require.Equal(t, uint64(1), computeBlockTime(parent, 100))
	require.Equal(t, uint64(1), computeBlockTime(parent, 99))
	require.Equal(t, uint64(12), computeBlockTime(parent, 112))
}
