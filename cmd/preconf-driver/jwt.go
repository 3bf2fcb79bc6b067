package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/node"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// dialAuthenticatedEngineClient reads a 32-byte hex JWT secret from path
// and dials the engine-API endpoint with it, the same HS256 handshake a
// consensus client uses to authenticate engine_* calls against geth.
func dialAuthenticatedEngineClient(ctx context.Context, endpoint, jwtSecretFile string) (*gethrpc.Client, error) {
	secret, err := readJWTSecret(jwtSecretFile)
	if err != nil {
		return nil, fmt.Errorf("read jwt secret: %w", err)
	}

	return gethrpc.DialOptions(ctx, endpoint, gethrpc.WithHTTPAuth(node.NewJWTAuth(secret)))
}

func readJWTSecret(path string) ([32]byte, error) {
	var secret [32]byte

	raw, err := os.ReadFile(path)
	if err != nil {
		return secret, err
	}

	hexSecret := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x"))
	decoded, err := hex.DecodeString(hexSecret)
	if err != nil {
		return secret, fmt.Errorf("decode jwt secret: %w", err)
	}
	if len(decoded) != 32 {
		return secret, fmt.Errorf("jwt secret must be 32 bytes, got %d", len(decoded))
	}

	copy(secret[:], decoded)
	return secret, nil
}
