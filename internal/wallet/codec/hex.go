package codec

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// HexToBigInt decodes a wire hex quantity ("0x1a", "1A", "0x") into an unsigned integer.
// An empty remainder decodes to zero. The digits are decoded as raw bytes, so a
// leading nibble of 8-f can never turn the value negative.
func HexToBigInt(s string) (*big.Int, error) {
	digits := trimHexPrefix(strings.TrimSpace(s))
	if digits == "" {
		return new(big.Int), nil
	}

	// an odd digit count gets a leading 0 nibble, which also keeps the top bit clear
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex quantity %q", s)
	}

	return new(big.Int).SetBytes(raw), nil
}

// HexToUint64 decodes a wire hex quantity that must fit in 64 bits (chain id, gas, nonce).
func HexToUint64(s string) (uint64, error) {
	n, err := HexToBigInt(s)
	if err != nil {
		return 0, err
	}

	if !n.IsUint64() {
		return 0, errors.Errorf("hex quantity %q overflows uint64", s)
	}

	return n.Uint64(), nil
}

// BigIntToHex renders n as a 0x-prefixed quantity; zero and nil render as "0x0".
func BigIntToHex(n *big.Int) string {
	if n == nil || n.Sign() == 0 {
		return "0x0"
	}

	return hexutil.EncodeBig(n)
}


func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
