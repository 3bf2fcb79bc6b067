package encoding

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"
)

// versionedHashVersionKZG is the high byte a KZG commitment's keccak-256
// hash is stamped with to produce its EIP-4844 versioned hash.
const versionedHashVersionKZG = 0x01

// KZGToVersionedHash maps a blob KZG commitment to its versioned hash:
// keccak256(commitment) with the high byte replaced by 0x01.
func KZGToVersionedHash(commitment kzg4844.Commitment) common.Hash {
	h := crypto.Keccak256Hash(commitment[:])
	h[0] = versionedHashVersionKZG
	return h
}

var (
	uint256Ty, _ = abi.NewType("uint256", "", nil)
	bytes32Ty, _ = abi.NewType("bytes32", "", nil)

	difficultyArgs = abi.Arguments{{Type: bytes32Ty}, {Type: uint256Ty}}
)

// BlockDifficulty computes the keccak256(abi_encode({parentDifficulty,
// blockNumber})) value uses for both the block's difficulty and its
// prevRandao/mixHash.
func BlockDifficulty(parentDifficulty common.Hash, blockNumber *big.Int) (common.Hash, error) {
	packed, err := difficultyArgs.Pack(parentDifficulty, blockNumber)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}

// RecoverCommitmentSigner recovers the signer address of a 65-byte
// signature over a preconfirmation commitment's signing hash.
func RecoverCommitmentSigner(signingHash common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != 65 {
		return common.Address{}, newInvalidData("signature", "expected 65 bytes")
	}
	// go-ethereum expects the recovery id in the last byte as 0/1.
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(signingHash.Bytes(), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
