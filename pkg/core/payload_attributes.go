package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/beacon/engine"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PayloadAttributes is the standard engine-API payload attributes object,
// kept separate from TaikoPayloadAttributes below so the engine applier's
// narrow interface can depend on the plain engine-API shape.
type PayloadAttributes struct {
	Timestamp             uint64
	PrevRandao            common.Hash
	SuggestedFeeRecipient common.Address
	Withdrawals           []*types.Withdrawal
	ParentBeaconBlockRoot *common.Hash
}

// BlockMetadata is the Taiko-specific block metadata carried alongside the
// standard payload attributes, produced by the derivation pipeline.
type BlockMetadata struct {
	Beneficiary common.Address
	GasLimit    uint64
	Timestamp   uint64
	MixHash     common.Hash
	TxList      []byte
	ExtraData   []byte
}

// TaikoPayloadAttributes is the full unit the derivation pipeline produces
// and the engine applier consumes.
type TaikoPayloadAttributes struct {
	PayloadAttributes  PayloadAttributes
	BaseFeePerGas      *big.Int
	BlockMetadata      BlockMetadata
	L1Origin           *L1Origin
	AnchorTransaction  *types.Transaction
}
