package address

import (
	"context"
	"fmt"
)

// Chain selects the key algorithm and address format.
type Chain string

const (
	ChainEVM    Chain = "evm"
	ChainSui    Chain = "sui"
	ChainCosmos Chain = "cosmos"
)

// Default derivation paths and prefixes.
const (
	EVMPath    = "m/44'/60'/0'/0/0"
	SuiPath    = "m/44'/784'/0'/0'/0'"
	CosmosPath = "m/44'/118'/0'/0/0"

	DefaultCosmosHRP = "cosmos"
	SuiPrivateKeyHRP = "suiprivkey"
)

// Sui signature scheme flag for Ed25519
const SuiEd25519Flag byte = 0x00

// KeyMaterial is a derived signing identity. It is owned by the caller and never persisted here.
//
// PrivateKey is the 32-byte secp256k1 scalar for EVM and Cosmos, and the 32-byte Ed25519 seed
// for Sui. Address is always a pure function of PublicKey.
type KeyMaterial struct {
	Chain          Chain
	SeedPhrase     string
	DerivationPath string
	PrivateKey     []byte
	PublicKey      []byte
	Address        string
}

// Clear zeroes the secret fields.
func (k *KeyMaterial) Clear() {
	if k == nil {
		return
	}
	for i := range k.PrivateKey {
		k.PrivateKey[i] = 0
	}
	k.PrivateKey = nil
	k.SeedPhrase = ""
}

// Options tune Resolve. Zero values pick the chain defaults.
type Options struct {
	Path       string
	Passphrase string
	HRP        string
}

// Service provides key resolution and derivation functionality
type Service interface {
	// Resolve turns a raw key, mnemonic or Bech32 private key into chain key material
	Resolve(ctx context.Context, input string, chain Chain, opts Options) (*KeyMaterial, error)

	// DeriveAddress derives an address from seed along path
	DeriveAddress(ctx context.Context, seed []byte, path string, chain Chain) (string, error)

	// DerivePrivateKey derives a private key from seed along path
	// WARNING: Private key should be cleared after use
	DerivePrivateKey(ctx context.Context, seed []byte, path string, chain Chain) ([]byte, error)
}

// KeyDerivationError reports a malformed mnemonic, path or key format.
type KeyDerivationError struct {
	Reason string
	Err    error
}

func (e *KeyDerivationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("key derivation: %s: %v", e.Reason, e.Err)
	}
	return "key derivation: " + e.Reason
}

func (e *KeyDerivationError) Unwrap() error {
	return e.Err
}

func derivationError(reason string, err error) error {
	return &KeyDerivationError{Reason: reason, Err: err}
}
