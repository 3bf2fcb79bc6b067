package encoding

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// MaxTxListBytes bounds a decompressed tx list, matching the wire protocol
// cap on GetRawTxListResponse.txlist.
const MaxTxListBytes = 120_000 // 4844 target blob payload size, per-block budget

// CompressTxList RLP-encodes then zlib-compresses a transaction list, the
// wire format every preconfirmed and proposed block's tx list uses.
func CompressTxList(txs types.Transactions) ([]byte, error) {
	encoded, err := rlp.EncodeToBytes(txs)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(encoded); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressTxList reverses CompressTxList, rejecting results over
// MaxTxListBytes.
func DecompressTxList(compressed []byte) (types.Transactions, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	raw, err := io.ReadAll(io.LimitReader(r, MaxTxListBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxTxListBytes {
		return nil, newInvalidData("txList", "decompressed size exceeds MaxTxListBytes")
	}

	var txs types.Transactions
	if err := rlp.DecodeBytes(raw, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
