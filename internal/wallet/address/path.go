package address

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HardenedOffset is added to an index marked with ' or h.
const HardenedOffset uint32 = 0x80000000

// ParsePath parses a BIP-44 path string into indices.
// Example: "m/44'/60'/0'/0/0" -> [2147483692, 2147483708, 2147483648, 0, 0]
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "" || (path[0] != 'm' && path[0] != 'M') {
		return nil, errors.Errorf("invalid derivation path %q: must start with m", path)
	}

	path = strings.TrimPrefix(path[1:], "/")
	if path == "" {
		return []uint32{}, nil
	}

	parts := strings.Split(path, "/")
	indices := make([]uint32, 0, len(parts))
	for _, part := range parts {
		hardened := false
		if strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") || strings.HasSuffix(part, "H") {
			hardened = true
			part = part[:len(part)-1]
		}

		const (
			base10    = 10
			indexBits = 31
		)
		index, err := strconv.ParseUint(part, base10, indexBits)
		if err != nil {
			return nil, errors.Errorf("invalid path segment %q in %q", part, path)
		}

		//nolint:gosec // bounded to 31 bits by ParseUint
		value := uint32(index)
		if hardened {
			value += HardenedOffset
		}

		indices = append(indices, value)
	}

	return indices, nil
}

// IsHardened reports whether index carries the hardened flag.
func IsHardened(index uint32) bool {
	return index >= HardenedOffset
}
