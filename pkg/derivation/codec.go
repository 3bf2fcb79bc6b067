package derivation

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// rlpZlibDecode zlib-decompresses raw and RLP-decodes it into out. This is
// the default ManifestCoder transport; see manifest.go.
func rlpZlibDecode(raw []byte, out interface{}) error {
	r, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer r.Close()

	decoded, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(decoded, out)
}
