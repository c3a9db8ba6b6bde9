package address

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/chapool/txengine/internal/wallet/bech32"
)

// SuiKeyMaterial expands a 32-byte Ed25519 seed into Sui key material.
func SuiKeyMaterial(seed []byte) (*KeyMaterial, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, derivationError("invalid Ed25519 seed", errors.Errorf("want %d bytes, got %d", ed25519.SeedSize, len(seed)))
	}

	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey, _ := privateKey.Public().(ed25519.PublicKey)

	seedCopy := make([]byte, ed25519.SeedSize)
	copy(seedCopy, seed)

	return &KeyMaterial{
		Chain:      ChainSui,
		PrivateKey: seedCopy,
		PublicKey:  publicKey,
		Address:    SuiAddress(publicKey),
	}, nil
}

// SuiAddress is 0x + hex(Blake2b-256(flag || public key)).
func SuiAddress(publicKey ed25519.PublicKey) string {
	data := make([]byte, 0, 1+len(publicKey))
	data = append(data, SuiEd25519Flag)
	data = append(data, publicKey...)

	digest := blake2b.Sum256(data)
	return "0x" + hex.EncodeToString(digest[:])
}

// ExportSuiPrivateKey encodes a 32-byte Ed25519 seed as a suiprivkey1... string.
func ExportSuiPrivateKey(seed []byte) (string, error) {
	if len(seed) != ed25519.SeedSize {
		return "", errors.Errorf("invalid Ed25519 seed length %d", len(seed))
	}

	payload := make([]byte, 0, 1+ed25519.SeedSize)
	payload = append(payload, SuiEd25519Flag)
	payload = append(payload, seed...)

	return bech32.Encode(SuiPrivateKeyHRP, payload)
}

// ParseSuiPrivateKey decodes a suiprivkey1... string into the 32-byte Ed25519 seed.
func ParseSuiPrivateKey(encoded string) ([]byte, error) {
	payload, err := bech32.Decode(encoded, SuiPrivateKeyHRP)
	if err != nil {
		return nil, derivationError("malformed Sui private key", err)
	}

	if len(payload) != 1+ed25519.SeedSize {
		return nil, derivationError("malformed Sui private key", errors.Errorf("payload length %d", len(payload)))
	}

	if payload[0] != SuiEd25519Flag {
		return nil, derivationError("unsupported Sui key scheme", errors.Errorf("flag 0x%02x", payload[0]))
	}

	return payload[1:], nil
}
