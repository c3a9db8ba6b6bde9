package seed_test

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/internal/wallet/seed"
)

//nolint:dupword // BIP-39 test vector
const abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestFromMnemonicVector(t *testing.T) {
	// BIP-39 reference vector with passphrase "TREZOR"
	got, err := seed.FromMnemonic(abandonMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.Equal(t,
		"c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04",
		hex.EncodeToString(got))
}

func TestFromMnemonicRejectsBadChecksum(t *testing.T) {
	//nolint:dupword // invalid on purpose
	_, err := seed.FromMnemonic("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, seed.ErrInvalidMnemonic))
}

func TestFromMnemonicRejectsWordCount(t *testing.T) {
	_, err := seed.FromMnemonic("abandon about", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, seed.ErrInvalidMnemonic))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", seed.Normalize("  A \t b\nC "))
	assert.True(t, seed.LooksLikeMnemonic(abandonMnemonic))
	assert.False(t, seed.LooksLikeMnemonic("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"))
}

func TestManagerDerivesFreshSeeds(t *testing.T) {
	m := seed.NewManager()

	first, err := m.Seed(abandonMnemonic, "")
	require.NoError(t, err)
	assert.Len(t, first, 64)

	// whitespace and case variations derive the same seed
	second, err := m.Seed("  ABANDON "+abandonMnemonic[len("abandon "):]+"  ", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// the caller owns the returned slice
	first[0] ^= 0xff
	third, err := m.Seed(abandonMnemonic, "")
	require.NoError(t, err)
	assert.Equal(t, second, third)

	other, err := m.Seed(abandonMnemonic, "other")
	require.NoError(t, err)
	assert.NotEqual(t, third, other)
}

func TestNewMnemonic(t *testing.T) {
	phrase, err := seed.NewMnemonic(128)
	require.NoError(t, err)
	assert.True(t, seed.LooksLikeMnemonic(phrase))

	_, err = seed.FromMnemonic(phrase, "")
	assert.NoError(t, err)
}
