package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ethereum/go-ethereum/crypto"
)

// preconfirmationRLP mirrors Preconfirmation's field order for hashing
// purposes; kept distinct from the wire struct so RLP tags never leak into
// the domain type.
type preconfirmationRLP struct {
	EOP                       bool
	BlockNumber               uint64
	Timestamp                 uint64
	GasLimit                  uint64
	ProposalID                uint64
	Coinbase                  common.Address
	SubmissionWindowEnd       uint64
	RawTxListHash             common.Hash
	ParentPreconfirmationHash common.Hash
	SlasherAddress            common.Address
}

// Hash returns the identity hash of a commitment: the keccak256 of its RLP
// encoding. This is the value every `parent_preconfirmation_hash` link and
// catch-up index refers to.
func (c Commitment) Hash() (common.Hash, error) {
	enc, err := rlp.EncodeToBytes(preconfirmationRLP{
		EOP:                       c.Preconf.EOP,
		BlockNumber:               c.Preconf.BlockNumber,
		Timestamp:                 c.Preconf.Timestamp,
		GasLimit:                  c.Preconf.GasLimit,
		ProposalID:                c.Preconf.ProposalID,
		Coinbase:                  c.Preconf.Coinbase,
		SubmissionWindowEnd:       c.Preconf.SubmissionWindowEnd,
		RawTxListHash:             c.Preconf.RawTxListHash,
		ParentPreconfirmationHash: c.Preconf.ParentPreconfirmationHash,
		SlasherAddress:            c.SlasherAddress,
	})
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// SigningHash is the hash a sequencer signs over to produce a
// SignedCommitment's 65-byte signature: identical to Hash() today, kept as
// a distinct name so signing and identity semantics can diverge later
// without call-site churn.
func (c Commitment) SigningHash() (common.Hash, error) {
	return c.Hash()
}
