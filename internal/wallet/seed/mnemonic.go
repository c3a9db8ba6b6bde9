package seed

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned for a phrase with a bad word count, unknown words or a bad checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// Normalize collapses whitespace and lower-cases the phrase.
func Normalize(mnemonic string) string {
	return strings.ToLower(strings.Join(strings.Fields(mnemonic), " "))
}

// LooksLikeMnemonic reports whether s has the word count of a supported phrase (12 or 24 words).
// It does not verify the checksum.
func LooksLikeMnemonic(s string) bool {
	n := len(strings.Fields(s))
	return n == 12 || n == 24
}

// FromMnemonic validates mnemonic and stretches it into the 512-bit BIP-39 seed.
func FromMnemonic(mnemonic string, passphrase string) ([]byte, error) {
	mnemonic = Normalize(mnemonic)
	if !LooksLikeMnemonic(mnemonic) {
		return nil, errors.Wrapf(ErrInvalidMnemonic, "expected 12 or 24 words, got %d", len(strings.Fields(mnemonic)))
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidMnemonic, err.Error())
	}

	return seed, nil
}

// NewMnemonic generates a fresh phrase; bitSize 128 gives 12 words, 256 gives 24.
func NewMnemonic(bitSize int) (string, error) {
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate mnemonic")
	}

	return mnemonic, nil
}
