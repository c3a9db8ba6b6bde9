package keystore

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/wallet/address"
)

// VerifyAddress re-derives the address of secret and compares it with the one recorded at
// creation. Files without an address pass.
func (s *service) VerifyAddress(ctx context.Context, ks *KeystoreJSON, secret string) error {
	log := util.LogFromContext(ctx).With().Str("component", "keystore_verification").Logger()

	if ks.Address == "" {
		log.Debug().Msg("No verification address stored")
		return nil
	}

	chain := address.Chain(ks.Chain)
	if chain == "" {
		chain = address.ChainEVM
	}

	derived, err := s.verificationAddress(ctx, secret, chain)
	if err != nil {
		return err
	}

	if !strings.EqualFold(derived, ks.Address) {
		log.Warn().Str("derived", derived).Str("stored", ks.Address).Msg("Keystore verification failed: addresses do not match")
		return ErrAddressMismatch
	}

	return nil
}

func (s *service) verificationAddress(ctx context.Context, secret string, chain address.Chain) (string, error) {
	km, err := s.addressService.Resolve(ctx, secret, chain, address.Options{})
	if err != nil {
		return "", errors.Wrap(err, "failed to derive verification address")
	}
	defer km.Clear()

	return km.Address, nil
}
