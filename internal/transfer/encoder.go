package transfer

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// transferSelector is the 4-byte selector for transfer(address,uint256).
const transferSelector = "a9059cbb"

// Call is a single on-chain call ready for submission. Data is empty for a
// native value transfer and a 0x-prefixed hex payload for a contract call.
type Call struct {
	To    string
	Value *big.Int
	Data  string
}

// BaseUnits converts a human-readable decimal amount into the asset's base
// units (amount x 10^decimals). The amount is taken as text so values such as
// "0.1" convert exactly instead of inheriting float64 representation error.
func BaseUnits(amount string, decimals int) (*big.Int, error) {
	f, ok := new(big.Float).SetPrec(256).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f.Mul(f, new(big.Float).SetPrec(256).SetInt(scale))

	units, _ := f.Int(nil)
	return units, nil
}

// EncodeTransfer builds the call that moves the given human amount of the
// asset to the recipient: a plain value transfer for the native currency, an
// ERC-20 transfer(address,uint256) call otherwise. Token range limits are not
// checked here beyond the uint256 encoding bound; out-of-range values are
// rejected downstream.
func EncodeTransfer(asset Asset, to, amount string) (Call, error) {
	recipient, err := ParseAddress(to)
	if err != nil {
		return Call{}, err
	}

	units, err := BaseUnits(amount, asset.Decimals)
	if err != nil {
		return Call{}, err
	}

	if asset.Native() {
		return Call{To: to, Value: units}, nil
	}

	if units.BitLen() > 256 {
		return Call{}, fmt.Errorf("amount %q exceeds 256 bits in %s base units", amount, asset.Symbol)
	}

	data := "0x" + transferSelector + pad32(recipient) + pad32(units.Bytes())
	return Call{To: asset.Contract, Value: big.NewInt(0), Data: data}, nil
}

// ParseAddress validates a 0x-prefixed 20-byte hex address and returns its
// raw bytes.
func ParseAddress(addr string) ([]byte, error) {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return nil, fmt.Errorf("address %q missing 0x prefix", addr)
	}
	raw, err := hex.DecodeString(addr[2:])
	if err != nil {
		return nil, fmt.Errorf("address %q is not hex: %w", addr, err)
	}
	if len(raw) != 20 {
		return nil, fmt.Errorf("address %q has %d bytes, want 20", addr, len(raw))
	}
	return raw, nil
}

// pad32 left-pads the bytes to a 32-byte ABI word and hex-encodes it.
func pad32(b []byte) string {
	var word [32]byte
	copy(word[32-len(b):], b)
	return hex.EncodeToString(word[:])
}
