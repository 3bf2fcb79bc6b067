package indexer

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// hexToBytes decodes a 0x-prefixed big-endian hex field, the encoding
// every beacon API payload hex field uses.
func hexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func parseUint(s string) (uint64, error) {
	var v uint64
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}
