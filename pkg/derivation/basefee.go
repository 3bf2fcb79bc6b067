package derivation

import "math/big"

// computeBlockTime derives the EIP-4396 block_time input: the gap between
// the new block's timestamp and the parent's, floored at 1 so a same- or
// out-of-order timestamp never collapses the adjustment to a zero or
// negative delta.
func computeBlockTime(parent *ParentState, blockTimestamp uint64) uint64 {
	if blockTimestamp <= parent.Timestamp {
		return 1
	}
	return blockTimestamp - parent.Timestamp
}

// computeBaseFee picks the per-block base fee: the flat ShastaInitialBaseFee
// for the first ShastaInitialBaseFeeBlocks after the fork height; after that
// window, parent.BaseFee carried forward unchanged (ShastaInitialBaseFee
// when the parent has none).
//
// blockTime is block_time = max(block.timestamp - parent.timestamp, 1) (see
// computeBlockTime). It is accepted but not used: no EIP-4396 time-aware
// adjustment is applied to the post-window base fee.
func computeBaseFee(parent *ParentState, forkHeight, blockNumber, blockTime uint64) *big.Int {
	if blockNumber < forkHeight+ShastaInitialBaseFeeBlocks {
		return new(big.Int).Set(ShastaInitialBaseFee)
	}
	if parent.BaseFee == nil {
		return new(big.Int).Set(ShastaInitialBaseFee)
	}
	return new(big.Int).Set(parent.BaseFee)
}
