package apiserver

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/beacon/engine"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestDecodeSignatureAcceptsHexWithAndWithoutPrefix(t *testing.T) {
	raw := strings.Repeat("ab", 65)

	sig, err := decodeSignature("0x" + raw)
	require.NoError(t, err)
	require.Equal(t, byte(0xab), sig[0])

	sig2, err := decodeSignature(raw)
	require.NoError(t, err)
	require.Equal(t, sig, sig2)
}

func TestDecodeSignatureRejectsWrongLength(t *testing.T) {
	_, err := decodeSignature("0x" + strings.Repeat("ab", 64))
	require.Error(t, err)
}

func TestDecodeSignatureRejectsInvalidHex(t *testing.T) {
	_, err := decodeSignature("0xzz")
	require.Error(t, err)
}

func TestHeaderFromExecutableDataMapsFields(t *testing.T) {
	payload := &engine.ExecutableData{
		ParentHash:   common.HexToHash("0x01"),
		FeeRecipient: common.HexToAddress("0x02"),
		StateRoot:    common.HexToHash("0x03"),
		Number:       42,
		GasLimit:     30_000_000,
		GasUsed:      21_000,
		Timestamp:    1_700_000_000,
		LogsBloom:    make([]byte, 256),
	}

	header := headerFromExecutableData(payload)

	require.Equal(t, payload.ParentHash, header.ParentHash)
	require.Equal(t, payload.FeeRecipient, header.Coinbase)
	require.Equal(t, payload.StateRoot, header.Root)
	require.Equal(t, payload.Number, header.Number.Uint64())
	require.Equal(t, payload.GasLimit, header.GasLimit)
	require.Equal(t, payload.GasUsed, header.GasUsed)
	require.Equal(t, payload.Timestamp, header.Time)
	require.Zero(t, header.Difficulty.Sign())
}
