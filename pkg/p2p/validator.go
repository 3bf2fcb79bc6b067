package p2p

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// ErrResponseValidation wraps every rejection this validator produces.
var ErrResponseValidation = errors.New("p2p response validation failed")

// SignerResolver answers who was entitled to sign a commitment at a given
// L2 block timestamp, per the on-L1 lookahead. Mirrors catchup.SignerResolver
// so both packages can be driven by the same lookahead.Resolver without
// either importing the other (catchup already imports p2p for
// RawTxListResponse, so the reverse import would cycle).
type SignerResolver interface {
	Resolve(ctx context.Context, timestamp, now uint64) (common.Address, error)
}

// LookaheadValidator implements ResponseValidator against a lookahead
// signer resolver, the same check catchup.Engine.validateCommitment
// performs for backfilled chains.
type LookaheadValidator struct {
	resolver SignerResolver
}

// NewLookaheadValidator wires a LookaheadValidator around a signer resolver.
func NewLookaheadValidator(resolver SignerResolver) *LookaheadValidator {
	return &LookaheadValidator{resolver: resolver}
}

// ValidateCommitments recovers each commitment's signer and confirms it
// matches the lookahead's entitled signer at the commitment's timestamp.
func (v *LookaheadValidator) ValidateCommitments(peerID string, resp []core.SignedCommitment) error {
	ctx := context.Background()
	now := uint64(time.Now().Unix())

	for i := range resp {
		c := resp[i]

		signer, err := c.RecoverSigner()
		if err != nil {
			return errors.Wrapf(ErrResponseValidation, "peer %s: recover signer: %v", peerID, err)
		}

		expected, err := v.resolver.Resolve(ctx, c.Commitment.Preconf.Timestamp, now)
		if err != nil {
			return errors.Wrapf(ErrResponseValidation, "peer %s: resolve lookahead signer: %v", peerID, err)
		}

		if signer != expected {
			return errors.Wrapf(ErrResponseValidation, "peer %s: signer does not match lookahead", peerID)
		}
	}

	return nil
}

// ValidateRawTxList confirms the response's claimed hash matches the
// actual keccak256 of the returned bytes.
func (v *LookaheadValidator) ValidateRawTxList(peerID string, resp RawTxListResponse) error {
	if !resp.Found {
		return nil
	}

	if got := crypto.Keccak256Hash(resp.TxList); got != resp.Hash {
		return errors.Wrapf(ErrResponseValidation, "peer %s: tx list hash mismatch", peerID)
	}

	return nil
}

// ValidateHead rejects a head claim with a zero block hash; anything
// further (reorg plausibility, etc.) is the router's job once ingested.
func (v *LookaheadValidator) ValidateHead(peerID string, resp core.PreconfHead) error {
	if resp.BlockHash == (common.Hash{}) {
		return errors.Wrapf(ErrResponseValidation, "peer %s: empty head block hash", peerID)
	}
	return nil
}
