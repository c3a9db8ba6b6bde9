package address_test

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/internal/wallet/address"
	"github.com/chapool/txengine/internal/wallet/bech32"
	"github.com/chapool/txengine/internal/wallet/seed"
)

//nolint:dupword // well-known development mnemonics
const (
	junkMnemonic    = "test test test test test test test test test test test junk"
	abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	junkPrivateKey  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	junkAddress     = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	filmMnemonic         = "film crazy soon outside stand loop subway crumble thrive popular green nuclear struggle pistol arm wife phrase warfare march wheat nephew ask sunny firm"
	filmSuiAddress       = "0xa2d14fad60c56049ecf75246a481934691214ce413e6a8ae2fe6834c173a6133"
	abandonCosmosAddress = "cosmos19rl4cm2hmr8afy4kldpxz3fka4jguq0auqdal4"
)

func newService(t *testing.T) address.Service {
	t.Helper()

	svc, err := address.NewService(seed.NewManager())
	require.NoError(t, err)
	return svc
}

func TestResolveEVMMnemonic(t *testing.T) {
	svc := newService(t)

	km, err := svc.Resolve(context.Background(), junkMnemonic, address.ChainEVM, address.Options{})
	require.NoError(t, err)

	assert.True(t, strings.EqualFold(junkAddress, km.Address))
	assert.Equal(t, address.EVMPath, km.DerivationPath)
	assert.Equal(t, junkPrivateKey, hex.EncodeToString(km.PrivateKey))
	assert.Len(t, km.PublicKey, 65)
	assert.Equal(t, junkMnemonic, km.SeedPhrase)

	km, err = svc.Resolve(context.Background(), abandonMnemonic, address.ChainEVM, address.Options{})
	require.NoError(t, err)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", km.Address)
}

func TestResolveEVMRawKey(t *testing.T) {
	svc := newService(t)

	for _, input := range []string{junkPrivateKey, "0x" + junkPrivateKey, "  0X" + strings.ToUpper(junkPrivateKey) + "\n"} {
		km, err := svc.Resolve(context.Background(), input, address.ChainEVM, address.Options{})
		require.NoError(t, err, input)
		assert.Equal(t, junkAddress, km.Address)
		assert.Empty(t, km.SeedPhrase)
	}

	addr, err := address.EVMAddress(mustHex(t, junkPrivateKey))
	require.NoError(t, err)
	assert.Equal(t, junkAddress, addr)
}

func TestResolveCustomPath(t *testing.T) {
	svc := newService(t)

	first, err := svc.Resolve(context.Background(), junkMnemonic, address.ChainEVM, address.Options{})
	require.NoError(t, err)

	second, err := svc.Resolve(context.Background(), junkMnemonic, address.ChainEVM, address.Options{Path: "m/44'/60'/0'/0/1"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Address, second.Address)
	assert.True(t, strings.EqualFold("0x70997970C51812dc3A010C7d01b50e0d17dc79C8", second.Address))
}

func TestResolveRejectsUnsupportedInput(t *testing.T) {
	svc := newService(t)

	for _, input := range []string{"", "deadbeef", "not a key at all", "0x" + strings.Repeat("z", 64)} {
		_, err := svc.Resolve(context.Background(), input, address.ChainEVM, address.Options{})
		require.Error(t, err, input)

		var kdErr *address.KeyDerivationError
		assert.True(t, errors.As(err, &kdErr), input)
	}
}

func TestResolveRejectsBadMnemonic(t *testing.T) {
	svc := newService(t)

	//nolint:dupword // bad checksum on purpose
	_, err := svc.Resolve(context.Background(), "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", address.ChainEVM, address.Options{})
	require.Error(t, err)

	var kdErr *address.KeyDerivationError
	require.True(t, errors.As(err, &kdErr))
	assert.True(t, errors.Is(err, seed.ErrInvalidMnemonic))
}

func TestResolveSui(t *testing.T) {
	svc := newService(t)

	km, err := svc.Resolve(context.Background(), junkMnemonic, address.ChainSui, address.Options{})
	require.NoError(t, err)

	assert.Equal(t, address.SuiPath, km.DerivationPath)
	assert.Len(t, km.PrivateKey, ed25519.SeedSize)
	assert.Len(t, km.PublicKey, ed25519.PublicKeySize)
	assert.Len(t, km.Address, 66)
	assert.True(t, strings.HasPrefix(km.Address, "0x"))
	assert.Equal(t, address.SuiAddress(km.PublicKey), km.Address)

	// the public key belongs to the seed
	expanded := ed25519.NewKeyFromSeed(km.PrivateKey)
	assert.Equal(t, []byte(expanded.Public().(ed25519.PublicKey)), km.PublicKey)

	exported, err := address.ExportSuiPrivateKey(km.PrivateKey)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(exported, "suiprivkey1"))

	again, err := svc.Resolve(context.Background(), exported, address.ChainSui, address.Options{})
	require.NoError(t, err)
	assert.Equal(t, km.Address, again.Address)
	assert.Equal(t, km.PrivateKey, again.PrivateKey)

	// a Sui key cannot sign for another chain
	_, err = svc.Resolve(context.Background(), exported, address.ChainEVM, address.Options{})
	assert.Error(t, err)
}

func TestResolveSuiKnownAddress(t *testing.T) {
	km, err := newService(t).Resolve(context.Background(), filmMnemonic, address.ChainSui, address.Options{})
	require.NoError(t, err)
	assert.Equal(t, filmSuiAddress, km.Address)
}

func TestParseSuiPrivateKeyRejectsOtherSchemes(t *testing.T) {
	payload := append([]byte{0x01}, make([]byte, 32)...)
	encoded, err := bech32.Encode(address.SuiPrivateKeyHRP, payload)
	require.NoError(t, err)

	_, err = address.ParseSuiPrivateKey(encoded)
	require.Error(t, err)

	var kdErr *address.KeyDerivationError
	assert.True(t, errors.As(err, &kdErr))
}

func TestResolveCosmos(t *testing.T) {
	svc := newService(t)

	km, err := svc.Resolve(context.Background(), abandonMnemonic, address.ChainCosmos, address.Options{})
	require.NoError(t, err)
	assert.Equal(t, abandonCosmosAddress, km.Address)
	assert.Len(t, km.PublicKey, 33)

	payload, err := bech32.Decode(km.Address, address.DefaultCosmosHRP)
	require.NoError(t, err)
	assert.Equal(t, address.CosmosAddressBytes(km.PublicKey), payload)
	assert.Len(t, payload, 20)

	osmo, err := svc.Resolve(context.Background(), abandonMnemonic, address.ChainCosmos, address.Options{HRP: "osmo"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(osmo.Address, "osmo1"))

	osmoPayload, err := bech32.Decode(osmo.Address, "osmo")
	require.NoError(t, err)
	assert.Equal(t, payload, osmoPayload)
}

func TestDeriveAddressMatchesResolve(t *testing.T) {
	svc := newService(t)

	seedBytes, err := seed.FromMnemonic(junkMnemonic, "")
	require.NoError(t, err)

	addr, err := svc.DeriveAddress(context.Background(), seedBytes, address.EVMPath, address.ChainEVM)
	require.NoError(t, err)
	assert.True(t, strings.EqualFold(junkAddress, addr))

	_, err = svc.DeriveAddress(context.Background(), seedBytes, address.EVMPath, address.Chain("aptos"))
	assert.Error(t, err)
}

func TestKeyMaterialClear(t *testing.T) {
	km, err := address.EVMKeyMaterial(mustHex(t, junkPrivateKey))
	require.NoError(t, err)

	secret := km.PrivateKey
	km.Clear()
	assert.Nil(t, km.PrivateKey)
	assert.Equal(t, make([]byte, len(secret)), secret)
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
