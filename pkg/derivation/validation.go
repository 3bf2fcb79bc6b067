package derivation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// validateBlockCount implements the "Block count = 0" rejection at the
// segment level, before any per-block check runs.
func validateBlockCount(blocks []*core.BlockManifest) error {
	if len(blocks) == 0 {
		return &ManifestRejectedError{Issue: IssueEmptyManifest, Details: "manifest has zero blocks"}
	}
	return nil
}

// gasBounds computes [parent_gas_limit*(D-C)/D, parent_gas_limit*(D+C)/D]
// intersected with [MinGasLimit, MaxGasLimit].
func gasBounds(effectiveParentGasLimit uint64) (min, max uint64) {
	d, c := GasLimitDenominator, BlockGasLimitMaxChange
	lo := effectiveParentGasLimit * (d - c) / d
	hi := effectiveParentGasLimit * (d + c) / d
	if lo < MinGasLimit {
		lo = MinGasLimit
	}
	if hi > MaxGasLimit {
		hi = MaxGasLimit
	}
	return lo, hi
}

// effectiveParentGasLimit subtracts the anchor-tx gas reservation from the
// parent gas limit for non-genesis blocks, as both gas-limit-bounds and
// default-manifest substitution require.
func effectiveParentGasLimit(parent *ParentState) uint64 {
	if parent.BlockNumber == 0 {
		return parent.GasLimit
	}
	if parent.GasLimit <= AnchorV3GasLimit {
		return parent.GasLimit
	}
	return parent.GasLimit - AnchorV3GasLimit
}

// floorTimestamp is max(parent_ts+1, proposal_ts - TIMESTAMP_MAX_OFFSET, fork_ts).
func floorTimestamp(parentTimestamp, proposalTimestamp, forkTimestamp uint64) uint64 {
	floor := parentTimestamp + 1

	var proposalFloor uint64
	if proposalTimestamp > TimestampMaxOffset {
		proposalFloor = proposalTimestamp - TimestampMaxOffset
	}
	if proposalFloor > floor {
		floor = proposalFloor
	}
	if forkTimestamp > floor {
		floor = forkTimestamp
	}
	return floor
}

// validateManifest implements the per-block manifest rejection rules. A
// nil error means the manifest is acceptable as-is.
func validateManifest(
	manifest *core.BlockManifest,
	parent *ParentState,
	originBlockNumber, proposalTimestamp, forkTimestamp uint64,
	isForcedInclusion bool,
) error {
	floor := floorTimestamp(parent.Timestamp, proposalTimestamp, forkTimestamp)
	if manifest.Timestamp < floor || manifest.Timestamp > proposalTimestamp {
		return &ManifestRejectedError{
			Issue: IssueBadTimestamp,
			Details: fmt.Sprintf(
				"timestamp %d outside [%d, %d]", manifest.Timestamp, floor, proposalTimestamp,
			),
		}
	}

	if manifest.AnchorBlockNumber > originBlockNumber {
		return &ManifestRejectedError{Issue: IssueBadAnchor, Details: "anchor exceeds origin block number"}
	}
	if originBlockNumber-manifest.AnchorBlockNumber > MaxAnchorOffset {
		return &ManifestRejectedError{Issue: IssueBadAnchor, Details: "anchor too far behind origin block number"}
	}
	if !isForcedInclusion && manifest.AnchorBlockNumber <= parent.AnchorBlockNumber {
		return &ManifestRejectedError{Issue: IssueBadAnchor, Details: "anchor does not strictly exceed parent anchor"}
	}

	effParentGasLimit := effectiveParentGasLimit(parent)
	lo, hi := gasBounds(effParentGasLimit)
	if manifest.GasLimit < lo || manifest.GasLimit > hi {
		return &ManifestRejectedError{
			Issue: IssueBadGasLimit,
			Details: fmt.Sprintf(
				"gas limit %d outside [%d, %d]", manifest.GasLimit, lo, hi,
			),
		}
	}

	return nil
}

// defaultManifest substitutes the default single-block, empty manifest used
// when a source's manifest is rejected.
func defaultManifest(parent *ParentState, proposer common.Address, proposalTimestamp, forkTimestamp, anchorBlockNumber uint64) *core.BlockManifest {
	ts := floorTimestamp(parent.Timestamp, proposalTimestamp, forkTimestamp)

	gasLimit := parent.GasLimit
	if parent.BlockNumber != 0 && gasLimit > AnchorV3V4GasLimit {
		gasLimit -= AnchorV3V4GasLimit
	}

	return &core.BlockManifest{
		Timestamp:         ts,
		Coinbase:          proposer,
		AnchorBlockNumber: anchorBlockNumber,
		GasLimit:          gasLimit,
		Transactions:      nil,
	}
}
