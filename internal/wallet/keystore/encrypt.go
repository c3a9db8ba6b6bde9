package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize = 32
	ivSize   = aes.BlockSize
)

// encrypt seals secret with a scrypt-derived key. The first half of the key drives
// AES-128-CTR and the second half authenticates the ciphertext.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func encrypt(secret []byte, password string, params ScryptParams) (*CryptoJSON, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	defer clear(derivedKey)

	ciphertext, err := aesCTR(derivedKey[:16], iv, secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt secret")
	}

	return &CryptoJSON{
		Ciphertext:   hex.EncodeToString(ciphertext),
		CipherParams: CipherParamsJSON{IV: hex.EncodeToString(iv)},
		Cipher:       cipherName,
		KDF:          kdfName,
		KDFParams: KDFParamsJSON{
			DKLen: params.DKLen,
			Salt:  hex.EncodeToString(salt),
			N:     params.N,
			R:     params.R,
			P:     params.P,
		},
		MAC: hex.EncodeToString(calculateMAC(derivedKey[16:32], ciphertext)),
	}, nil
}

// aesCTR is its own inverse
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func aesCTR(key []byte, iv []byte, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)

	return out, nil
}

// calculateMAC is Keccak-256(derivedKey[16:32] || ciphertext)
func calculateMAC(key []byte, ciphertext []byte) []byte {
	return crypto.Keccak256(key, ciphertext)
}
