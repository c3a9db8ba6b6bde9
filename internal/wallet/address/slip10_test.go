package address_test

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/internal/wallet/address"
)

// SLIP-0010 test vector 1 for ed25519
func TestDeriveEd25519Vector1(t *testing.T) {
	seedBytes := mustHex(t, "000102030405060708090a0b0c0d0e0f")

	key, chainCode, err := address.DeriveEd25519(seedBytes, "m")
	require.NoError(t, err)
	assert.Equal(t, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7", hex.EncodeToString(key))
	assert.Equal(t, "90046a93de5380a72b5e45010748567d5ea02bbf6522f979e05c0d8d8ca9fffb", hex.EncodeToString(chainCode))

	key, chainCode, err = address.DeriveEd25519(seedBytes, "m/0'")
	require.NoError(t, err)
	assert.Equal(t, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3", hex.EncodeToString(key))
	assert.Equal(t, "8b59aa11380b624e81507a27fedda59fea6d0b779a778918a2fd3590e16e9c69", hex.EncodeToString(chainCode))
}

func TestDeriveEd25519RejectsNonHardened(t *testing.T) {
	_, _, err := address.DeriveEd25519(mustHex(t, "000102030405060708090a0b0c0d0e0f"), address.CosmosPath)
	require.Error(t, err)

	var kdErr *address.KeyDerivationError
	assert.True(t, errors.As(err, &kdErr))
}

func TestParsePath(t *testing.T) {
	indices, err := address.ParsePath("m/44'/60'/0'/0/0")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x8000002c, 0x8000003c, 0x80000000, 0, 0}, indices)

	indices, err = address.ParsePath("m/44h/784h/0h/0h/0h")
	require.NoError(t, err)
	assert.Len(t, indices, 5)
	for _, index := range indices {
		assert.True(t, address.IsHardened(index))
	}

	indices, err = address.ParsePath("m")
	require.NoError(t, err)
	assert.Empty(t, indices)

	for _, bad := range []string{"", "44'/60'", "m/x", "m/44''", "m//0", "m/2147483648"} {
		_, err := address.ParsePath(bad)
		assert.Error(t, err, bad)
	}
}
