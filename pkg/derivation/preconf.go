package derivation

import (
	"math/big"

	"github.com/taikoxyz/surge-preconf-client/bindings/encoding"
	"github.com/taikoxyz/surge-preconf-client/pkg/core"
)

// BuildPreconfAttrs turns a validated preconfirmation commitment and its
// matching raw tx list into payload attributes the engine applier can
// apply directly, the same shape deriveBlock produces for the canonical
// path but sourced from a gossip commitment instead of an L1 proposal log.
func BuildPreconfAttrs(
	commitment core.Commitment,
	parent *ParentState,
	forkHeight uint64,
	rawTxList []byte,
) (*core.TaikoPayloadAttributes, error) {
	pc := commitment.Preconf

	blockTime := computeBlockTime(parent, pc.Timestamp)
	baseFee := computeBaseFee(parent, forkHeight, pc.BlockNumber, blockTime)

	difficulty, err := encoding.BlockDifficulty(parent.PrevRandao, new(big.Int).SetUint64(pc.BlockNumber))
	if err != nil {
		return nil, err
	}

	l1Origin := &core.L1Origin{
		BlockID: new(big.Int).SetUint64(pc.BlockNumber),
	}

	return &core.TaikoPayloadAttributes{
		PayloadAttributes: core.PayloadAttributes{
			Timestamp:             pc.Timestamp,
			PrevRandao:            difficulty,
			SuggestedFeeRecipient: pc.Coinbase,
		},
		BaseFeePerGas: baseFee,
		BlockMetadata: core.BlockMetadata{
			Beneficiary: pc.Coinbase,
			GasLimit:    pc.GasLimit,
			Timestamp:   pc.Timestamp,
			MixHash:     difficulty,
			TxList:      rawTxList,
		},
		L1Origin: l1Origin,
	}, nil
}
