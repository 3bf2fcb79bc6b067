package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// L1Origin binds an L2 block to the L1 proposal that produced it. Adapted
// from the taiko-mono `surge.L1Origin` type, generalized with the
// IsForcedInclusion and Signature fields a preconfirmation-aware core needs.
type L1Origin struct {
	BlockID            *big.Int    `json:"blockID"`
	L2BlockHash        common.Hash `json:"l2BlockHash"`
	L1BlockHeight      *big.Int    `json:"l1BlockHeight"`
	L1BlockHash        common.Hash `json:"l1BlockHash"`
	BuildPayloadArgsID [8]byte     `json:"buildPayloadArgsID"`
	IsForcedInclusion  bool        `json:"isForcedInclusion"`
	// Signature carries the final source's prover_auth_bytes, left-aligned
	// into 65 bytes with truncation/zero-padding. Not validated by
	// this core — see Open Question in DESIGN.md.
	Signature [65]byte `json:"signature"`
}
