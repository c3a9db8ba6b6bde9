package address

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // Cosmos addresses are defined over RIPEMD-160

	"github.com/chapool/txengine/internal/wallet/bech32"
)

// CosmosKeyMaterial builds Cosmos key material from a secp256k1 private key.
// The address is Bech32(hrp, RIPEMD160(SHA256(compressed public key))).
func CosmosKeyMaterial(privateKey []byte, hrp string) (*KeyMaterial, error) {
	if hrp == "" {
		hrp = DefaultCosmosHRP
	}

	ecdsaPrivateKey, err := toECDSA(privateKey)
	if err != nil {
		return nil, err
	}

	publicKey := crypto.CompressPubkey(&ecdsaPrivateKey.PublicKey)

	address, err := bech32.Encode(hrp, CosmosAddressBytes(publicKey))
	if err != nil {
		return nil, derivationError("failed to encode Cosmos address", err)
	}

	return &KeyMaterial{
		Chain:      ChainCosmos,
		PrivateKey: crypto.FromECDSA(ecdsaPrivateKey),
		PublicKey:  publicKey,
		Address:    address,
	}, nil
}

// CosmosAddressBytes returns RIPEMD160(SHA256(publicKey)).
func CosmosAddressBytes(publicKey []byte) []byte {
	sha := sha256.Sum256(publicKey)

	hasher := ripemd160.New()
	hasher.Write(sha[:])
	return hasher.Sum(nil)
}
