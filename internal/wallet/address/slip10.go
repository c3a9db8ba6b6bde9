package address

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/pkg/errors"
)

const slip10Ed25519Curve = "ed25519 seed"

type slip10Node struct {
	key       []byte
	chainCode []byte
}

// DeriveEd25519 derives a SLIP-10 Ed25519 key and chain code from a BIP-39 seed.
// Ed25519 has no public derivation, so every path segment must be hardened.
func DeriveEd25519(seed []byte, path string) ([]byte, []byte, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, nil, derivationError("failed to parse SLIP-10 path", err)
	}

	node := slip10Master(seed)
	for _, index := range indices {
		if !IsHardened(index) {
			return nil, nil, derivationError("non-hardened segment in Ed25519 path",
				errors.Errorf("index %d of %q", index, path))
		}
		node = node.child(index)
	}

	return node.key, node.chainCode, nil
}

func slip10Master(seed []byte) slip10Node {
	mac := hmac.New(sha512.New, []byte(slip10Ed25519Curve))
	mac.Write(seed)
	return splitNode(mac.Sum(nil))
}

// child computes HMAC-SHA512(chainCode, 0x00 || key || index_be32)
func (n slip10Node) child(index uint32) slip10Node {
	const dataLen = 1 + 32 + 4
	data := make([]byte, 0, dataLen)
	data = append(data, 0x00)
	data = append(data, n.key...)
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, n.chainCode)
	mac.Write(data)
	return splitNode(mac.Sum(nil))
}

func splitNode(sum []byte) slip10Node {
	const half = 32
	return slip10Node{key: sum[:half], chainCode: sum[half:]}
}
