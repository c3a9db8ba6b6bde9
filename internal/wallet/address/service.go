package address

import (
	"context"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/wallet/bech32"
	"github.com/chapool/txengine/internal/wallet/seed"
)

var rawKeyPattern = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]{64}$`)

type service struct {
	seedManager seed.Manager
}

// NewService creates a new AddressService
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(seedManager seed.Manager) (Service, error) {
	if seedManager == nil {
		seedManager = seed.NewManager()
	}

	return &service{
		seedManager: seedManager,
	}, nil
}

// Resolve accepts a 64-hex-char private key, a 12/24-word mnemonic or a suiprivkey1... string
func (s *service) Resolve(ctx context.Context, input string, chain Chain, opts Options) (*KeyMaterial, error) {
	log := util.LogFromContext(ctx).With().Str("chain", string(chain)).Logger()

	input = strings.TrimSpace(input)

	var (
		km  *KeyMaterial
		err error
	)

	switch {
	case rawKeyPattern.MatchString(input):
		raw, decodeErr := hex.DecodeString(input[len(input)-64:])
		if decodeErr != nil {
			return nil, derivationError("malformed hex private key", decodeErr)
		}
		km, err = keyMaterialFor(chain, raw, opts.HRP)
		for i := range raw {
			raw[i] = 0
		}
	case bech32.HRP(input) == SuiPrivateKeyHRP:
		if chain != ChainSui {
			return nil, derivationError("Sui private key used for chain "+string(chain), nil)
		}
		var suiSeed []byte
		suiSeed, err = ParseSuiPrivateKey(input)
		if err == nil {
			km, err = SuiKeyMaterial(suiSeed)
		}
	case seed.LooksLikeMnemonic(input):
		km, err = s.fromMnemonic(ctx, input, chain, opts)
	default:
		return nil, derivationError("unsupported key format: want 64 hex chars, a 12/24-word mnemonic or a Bech32 private key", nil)
	}

	if err != nil {
		log.Debug().Err(err).Msg("Failed to resolve key material")
		return nil, err
	}

	log.Debug().Str("address", km.Address).Str("path", km.DerivationPath).Msg("Resolved key material")

	return km, nil
}

func (s *service) fromMnemonic(ctx context.Context, mnemonic string, chain Chain, opts Options) (*KeyMaterial, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath(chain)
	}

	seedBytes, err := s.seedManager.Seed(mnemonic, opts.Passphrase)
	if err != nil {
		return nil, derivationError("malformed mnemonic", err)
	}

	// Clear seed after use
	defer func() {
		for i := range seedBytes {
			seedBytes[i] = 0
		}
	}()

	privateKey, err := s.DerivePrivateKey(ctx, seedBytes, path, chain)
	if err != nil {
		return nil, err
	}

	km, err := keyMaterialFor(chain, privateKey, opts.HRP)
	if err != nil {
		return nil, err
	}

	km.SeedPhrase = seed.Normalize(mnemonic)
	km.DerivationPath = path

	return km, nil
}

// DefaultPath returns the conventional first-account path of chain.
func DefaultPath(chain Chain) string {
	switch chain {
	case ChainSui:
		return SuiPath
	case ChainCosmos:
		return CosmosPath
	default:
		return EVMPath
	}
}

func keyMaterialFor(chain Chain, privateKey []byte, hrp string) (*KeyMaterial, error) {
	switch chain {
	case ChainEVM:
		return EVMKeyMaterial(privateKey)
	case ChainCosmos:
		return CosmosKeyMaterial(privateKey, hrp)
	case ChainSui:
		return SuiKeyMaterial(privateKey)
	default:
		return nil, derivationError("unsupported chain "+string(chain), nil)
	}
}
