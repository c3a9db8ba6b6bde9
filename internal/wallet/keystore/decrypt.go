package keystore

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// decrypt opens a sealed secret. A wrong password surfaces as ErrInvalidPassword.
func decrypt(c *CryptoJSON, password string) ([]byte, error) {
	if err := validateCrypto(c); err != nil {
		return nil, err
	}

	salt, err := hex.DecodeString(c.KDFParams.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode salt")
	}

	//nolint:varnamelen // iv is a common abbreviation for initialization vector
	iv, err := hex.DecodeString(c.CipherParams.IV)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode IV")
	}
	if len(iv) != ivSize {
		return nil, errors.Wrapf(ErrUnsupported, "IV must be %d bytes, got %d", ivSize, len(iv))
	}

	ciphertext, err := hex.DecodeString(c.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(c.MAC)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode MAC")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, c.KDFParams.N, c.KDFParams.R, c.KDFParams.P, c.KDFParams.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	defer clear(derivedKey)

	mac := calculateMAC(derivedKey[16:32], ciphertext)
	if subtle.ConstantTimeCompare(mac, expectedMAC) != 1 {
		return nil, ErrInvalidPassword
	}

	plaintext, err := aesCTR(derivedKey[:16], iv, ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt secret")
	}

	return plaintext, nil
}

func validateCrypto(c *CryptoJSON) error {
	if c.Cipher != cipherName {
		return errors.Wrapf(ErrUnsupported, "cipher %q", c.Cipher)
	}
	if c.KDF != kdfName {
		return errors.Wrapf(ErrUnsupported, "kdf %q", c.KDF)
	}
	if c.KDFParams.DKLen < 32 {
		return errors.Wrapf(ErrUnsupported, "dklen %d", c.KDFParams.DKLen)
	}
	return nil
}
