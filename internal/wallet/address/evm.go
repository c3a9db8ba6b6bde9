package address

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

// DeriveAddress derives a chain address from seed and BIP44 path
func (s *service) DeriveAddress(ctx context.Context, seed []byte, path string, chain Chain) (string, error) {
	// Derive private key from seed and path
	privateKey, err := s.DerivePrivateKey(ctx, seed, path, chain)
	if err != nil {
		return "", err
	}

	// Clear private key after use
	defer func() {
		for i := range privateKey {
			privateKey[i] = 0
		}
	}()

	km, err := keyMaterialFor(chain, privateKey, "")
	if err != nil {
		return "", err
	}

	return km.Address, nil
}

// DerivePrivateKey derives a private key from seed and BIP44 path.
// secp256k1 chains use BIP-32, Sui uses SLIP-10 Ed25519 and returns the 32-byte seed.
// WARNING: Caller must clear the private key after use
func (s *service) DerivePrivateKey(_ context.Context, seed []byte, path string, chain Chain) ([]byte, error) {
	switch chain {
	case ChainEVM, ChainCosmos:
		return deriveSecp256k1(seed, path)
	case ChainSui:
		key, _, err := DeriveEd25519(seed, path)
		return key, err
	default:
		return nil, derivationError("unsupported chain "+string(chain), nil)
	}
}

// deriveSecp256k1 walks a BIP-32 path from the master key of seed
func deriveSecp256k1(seed []byte, path string) ([]byte, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, derivationError("failed to parse BIP44 path", err)
	}

	// Create master key from seed
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, derivationError("failed to create master key", err)
	}

	// Derive key step by step
	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, derivationError("failed to derive child key", errors.Wrapf(err, "index %d", index))
		}
	}

	// Return private key (32 bytes)
	return leftPad32(key.Key), nil
}

// EVMKeyMaterial builds EVM key material from a raw secp256k1 private key.
// The address is the last 20 bytes of Keccak-256 over the uncompressed public key.
func EVMKeyMaterial(privateKey []byte) (*KeyMaterial, error) {
	ecdsaPrivateKey, err := toECDSA(privateKey)
	if err != nil {
		return nil, err
	}

	return &KeyMaterial{
		Chain:      ChainEVM,
		PrivateKey: crypto.FromECDSA(ecdsaPrivateKey),
		PublicKey:  crypto.FromECDSAPub(&ecdsaPrivateKey.PublicKey),
		Address:    crypto.PubkeyToAddress(ecdsaPrivateKey.PublicKey).Hex(),
	}, nil
}

// EVMAddress returns the checksummed address for a raw secp256k1 private key.
func EVMAddress(privateKey []byte) (string, error) {
	km, err := EVMKeyMaterial(privateKey)
	if err != nil {
		return "", err
	}
	defer km.Clear()

	return km.Address, nil
}

func leftPad32(b []byte) []byte {
	const size = 32
	if len(b) >= size {
		return b
	}
	padded := make([]byte, size)
	copy(padded[size-len(b):], b)
	return padded
}

func toECDSA(privateKey []byte) (*ecdsa.PrivateKey, error) {
	// Convert to ECDSA private key
	ecdsaPrivateKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, derivationError("invalid secp256k1 private key", err)
	}

	return ecdsaPrivateKey, nil
}
