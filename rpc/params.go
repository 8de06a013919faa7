package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"totemic/crypto"
)

// decodeParams unmarshals the single object parameter RPC methods take.
func decodeParams(req *RPCRequest, dst interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("expected exactly one params object")
	}
	if err := json.Unmarshal(req.Params[0], dst); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

func parseAddress(field, value string) ([20]byte, error) {
	if strings.TrimSpace(value) == "" {
		return [20]byte{}, fmt.Errorf("%s is required", field)
	}
	addr, err := crypto.DecodeAddress(value)
	if err != nil {
		return [20]byte{}, fmt.Errorf("%s: %v", field, err)
	}
	return addr.Array(), nil
}

func parseAmount(field, value string) (*big.Int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%s must be a non-negative decimal string", field)
	}
	return amount, nil
}

func parseHex(field, value string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%s must be hex encoded", field)
	}
	return decoded, nil
}

func encodeAddress(addr [20]byte) string {
	return crypto.NewAddress(crypto.TotemPrefix, addr[:]).String()
}
