package signer

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Sui intent prefix: scope TransactionData, version V0, app id Sui.
var suiTransactionIntent = [3]byte{0, 0, 0}

const (
	suiEd25519Flag      byte = 0x00
	suiSignatureBlobLen      = 1 + ed25519.SignatureSize + ed25519.PublicKeySize
)

// SuiIntentDigest is Blake2b-256(intent || txBytes).
func SuiIntentDigest(txBytes []byte) [32]byte {
	msg := make([]byte, 0, len(suiTransactionIntent)+len(txBytes))
	msg = append(msg, suiTransactionIntent[:]...)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}

// SignSui signs BCS transaction bytes with the 32-byte Ed25519 seed and returns the
// base64 serialized signature flag || signature || public key.
func SignSui(seed, txBytes []byte) (string, error) {
	if len(seed) != ed25519.SeedSize {
		return "", signingError("invalid Ed25519 seed", errors.Errorf("want %d bytes, got %d", ed25519.SeedSize, len(seed)))
	}
	if len(txBytes) == 0 {
		return "", signingError("empty transaction bytes", nil)
	}

	privateKey := ed25519.NewKeyFromSeed(seed)
	defer func() {
		for i := range privateKey {
			privateKey[i] = 0
		}
	}()

	publicKey, _ := privateKey.Public().(ed25519.PublicKey)
	digest := SuiIntentDigest(txBytes)
	signature := ed25519.Sign(privateKey, digest[:])

	blob := make([]byte, 0, suiSignatureBlobLen)
	blob = append(blob, suiEd25519Flag)
	blob = append(blob, signature...)
	blob = append(blob, publicKey...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// VerifySui checks a serialized signature produced by SignSui against txBytes and
// returns the embedded public key.
func VerifySui(txBytes []byte, serialized string) (ed25519.PublicKey, error) {
	blob, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		return nil, errors.Wrap(err, "malformed signature encoding")
	}
	if len(blob) != suiSignatureBlobLen {
		return nil, errors.Errorf("signature blob length %d, want %d", len(blob), suiSignatureBlobLen)
	}
	if blob[0] != suiEd25519Flag {
		return nil, errors.Errorf("unsupported signature scheme flag 0x%02x", blob[0])
	}

	signature := blob[1 : 1+ed25519.SignatureSize]
	publicKey := ed25519.PublicKey(blob[1+ed25519.SignatureSize:])

	digest := SuiIntentDigest(txBytes)
	if !ed25519.Verify(publicKey, digest[:], signature) {
		return nil, errors.New("signature does not verify")
	}

	return publicKey, nil
}
