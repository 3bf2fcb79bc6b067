package blobsource

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

// hexToBytes decodes a 0x-prefixed big-endian hex field, the encoding
// specifies for every payload hex field.
func hexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
