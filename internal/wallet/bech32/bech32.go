// Package bech32 encodes and decodes human-readable-prefix payloads (Sui private key
// exports, Cosmos addresses) independent of any chain.
package bech32

import (
	"strings"

	btcbech32 "github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"
)

// ErrHRPMismatch is returned when a decoded string carries a different prefix than expected.
var ErrHRPMismatch = errors.New("bech32: human-readable prefix mismatch")

// Encode regroups payload into 5-bit words and appends the 6-character checksum.
func Encode(hrp string, payload []byte) (string, error) {
	if hrp == "" {
		return "", errors.New("bech32: empty human-readable prefix")
	}

	words, err := btcbech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "bech32: failed to regroup payload")
	}

	encoded, err := btcbech32.Encode(strings.ToLower(hrp), words)
	if err != nil {
		return "", errors.Wrap(err, "bech32: failed to encode")
	}

	return encoded, nil
}

// Decode verifies the checksum and prefix of encoded and returns the 8-bit payload.
func Decode(encoded string, expectedHRP string) ([]byte, error) {
	hrp, words, err := btcbech32.DecodeNoLimit(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "bech32: failed to decode")
	}

	if hrp != strings.ToLower(expectedHRP) {
		return nil, errors.Wrapf(ErrHRPMismatch, "got %q, want %q", hrp, expectedHRP)
	}

	payload, err := btcbech32.ConvertBits(words, 5, 8, false)
	if err != nil {
		return nil, errors.Wrap(err, "bech32: failed to regroup words")
	}

	return payload, nil
}

// HRP returns the prefix of encoded without validating the checksum.
func HRP(encoded string) string {
	encoded = strings.ToLower(strings.TrimSpace(encoded))
	if i := strings.LastIndexByte(encoded, '1'); i > 0 {
		return encoded[:i]
	}
	return ""
}
