package keystore

import (
	"context"

	"github.com/pkg/errors"
)

// Kind names the secret a keystore file holds.
type Kind string

const (
	KindMnemonic   Kind = "mnemonic"
	KindPrivateKey Kind = "private_key"
)

const (
	version    = 3
	cipherName = "aes-128-ctr"
	kdfName    = "scrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password: MAC mismatch")
	ErrExists          = errors.New("keystore already exists")
	ErrNotFound        = errors.New("keystore not found")
	ErrUnsupported     = errors.New("unsupported keystore format")
	ErrAddressMismatch = errors.New("decrypted key does not match stored address")
)

// KeystoreJSON is the Ethereum keystore v3 document, extended with the secret kind and the
// address the secret resolves to.
//
//nolint:revive // KeystoreJSON is the standard name for Ethereum keystore JSON structure
type KeystoreJSON struct {
	Version int        `json:"version"`
	ID      string     `json:"id"`
	Kind    Kind       `json:"kind"`
	Chain   string     `json:"chain,omitempty"`
	Address string     `json:"address,omitempty"`
	Crypto  CryptoJSON `json:"crypto"`
}

type CryptoJSON struct {
	Ciphertext   string           `json:"ciphertext"`
	CipherParams CipherParamsJSON `json:"cipherparams"`
	Cipher       string           `json:"cipher"`
	KDF          string           `json:"kdf"`
	KDFParams    KDFParamsJSON    `json:"kdfparams"`
	MAC          string           `json:"mac"`
}

type CipherParamsJSON struct {
	IV string `json:"iv"`
}

type KDFParamsJSON struct {
	DKLen int    `json:"dklen"`
	Salt  string `json:"salt"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
}

// ScryptParams defines scrypt KDF parameters
type ScryptParams struct {
	DKLen int // Derived key length (32 bytes)
	N     int // CPU/memory cost parameter
	R     int // Block size parameter
	P     int // Parallelization parameter
}

// DefaultScryptParams returns the standard keystore v3 cost (N = 2^18).
func DefaultScryptParams() ScryptParams {
	return ScryptParams{DKLen: 32, N: 1 << 18, R: 8, P: 1}
}

// LightScryptParams trades strength for speed (N = 2^12). Meant for tests and throwaway keys.
func LightScryptParams() ScryptParams {
	return ScryptParams{DKLen: 32, N: 1 << 12, R: 8, P: 6}
}

// CreateRequest describes a new keystore file.
type CreateRequest struct {
	Path     string
	Secret   string
	Password string

	// Chain the stored address is derived for. Empty means evm.
	Chain string
}

// Service reads and writes encrypted key files
type Service interface {
	// Create encrypts req.Secret and writes it to req.Path. It refuses to overwrite a file.
	Create(ctx context.Context, req CreateRequest) (*KeystoreJSON, error)

	// Read loads and validates the keystore at path
	Read(ctx context.Context, path string) (*KeystoreJSON, error)

	// Decrypt returns the secret and checks it against the stored address
	// WARNING: The caller owns the returned secret
	Decrypt(ctx context.Context, ks *KeystoreJSON, password string) (string, error)

	// Exists checks if a keystore file is present at path
	Exists(ctx context.Context, path string) (bool, error)
}
