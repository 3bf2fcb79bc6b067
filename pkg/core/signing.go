package core

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/taikoxyz/surge-preconf-client/bindings/encoding"
)

// RecoverSigner recovers the address that produced a SignedCommitment's
// signature over its commitment's signing hash.
func (sc SignedCommitment) RecoverSigner() (common.Address, error) {
	hash, err := sc.Commitment.SigningHash()
	if err != nil {
		return common.Address{}, fmt.Errorf("signing hash: %w", err)
	}
	return encoding.RecoverCommitmentSigner(hash, sc.Signature[:])
}
