package derivation

import "math/big"

// Protocol constants the wire format leaves as deployment parameters;
// picked to match conventional Ethereum/Taiko values and documented here
// rather than scattered as magic numbers. See DESIGN.md.
const (
	// TimestampMaxOffset bounds how far behind the proposal timestamp a
	// block's floor timestamp may be computed from, when substituting a
	// default manifest.
	TimestampMaxOffset uint64 = 3600

	// MaxAnchorOffset bounds how far behind originBlockNumber an anchor
	// number may point.
	MaxAnchorOffset uint64 = 128

	// GasLimitDenominator and BlockGasLimitMaxChange together bound the
	// fraction of parent_gas_limit a block's gas limit may move by,
	// mirroring Ethereum's GAS_LIMIT_BOUND_DIVISOR mechanics.
	GasLimitDenominator    uint64 = 1024
	BlockGasLimitMaxChange uint64 = 1

	MinGasLimit uint64 = 5_000
	MaxGasLimit uint64 = 400_000_000

	// AnchorV3GasLimit is the gas the anchor transaction itself reserves;
	// subtracted from the effective parent gas limit for non-genesis
	// blocks in manifest validation.
	AnchorV3GasLimit uint64 = 250_000

	// AnchorV3V4GasLimit is subtracted from a default manifest's gas limit
	// substitution.
	AnchorV3V4GasLimit uint64 = 250_000

	// ShastaInitialBaseFeeBlocks is how many blocks after the fork height
	// hold the flat ShastaInitialBaseFee before dynamic pricing resumes.
	ShastaInitialBaseFeeBlocks uint64 = 5
)

// ShastaInitialBaseFee is the flat wei value used for the first
// ShastaInitialBaseFeeBlocks blocks after the fork height.
var ShastaInitialBaseFee = big.NewInt(1_000_000_000)
