package keystore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/util/jsonx"
	"github.com/chapool/txengine/internal/wallet/address"
	"github.com/chapool/txengine/internal/wallet/seed"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

type service struct {
	addressService address.Service
	params         ScryptParams
}

// NewService creates a new KeystoreService
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(addressService address.Service, params ScryptParams) (Service, error) {
	if addressService == nil {
		return nil, errors.New("address service is required")
	}
	if params.DKLen == 0 {
		params = DefaultScryptParams()
	}

	return &service{
		addressService: addressService,
		params:         params,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*KeystoreJSON, error) {
	log := util.LogFromContext(ctx).With().Str("path", req.Path).Logger()

	exists, err := s.Exists(ctx, req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check keystore existence")
	}
	if exists {
		return nil, errors.Wrap(ErrExists, req.Path)
	}

	secret := strings.TrimSpace(req.Secret)
	chain := address.Chain(req.Chain)
	if chain == "" {
		chain = address.ChainEVM
	}

	kind := KindPrivateKey
	if seed.LooksLikeMnemonic(secret) {
		kind = KindMnemonic
		secret = seed.Normalize(secret)
	}

	addr, err := s.verificationAddress(ctx, secret, chain)
	if err != nil {
		return nil, err
	}

	sealed, err := encrypt([]byte(secret), req.Password, s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt secret")
		return nil, errors.Wrap(err, "failed to encrypt secret")
	}

	ks := &KeystoreJSON{
		Version: version,
		ID:      uuid.New().String(),
		Kind:    kind,
		Chain:   string(chain),
		Address: addr,
		Crypto:  *sealed,
	}

	data, err := jsonx.Marshal(ks)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}

	if err := writeExclusive(req.Path, data); err != nil {
		log.Error().Err(err).Msg("Failed to write keystore")
		return nil, err
	}

	log.Info().Str("id", ks.ID).Str("kind", string(kind)).Str("address", addr).Msg("Keystore created")

	return ks, nil
}

func (s *service) Read(_ context.Context, path string) (*KeystoreJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(ErrNotFound, path)
		}
		return nil, errors.Wrap(err, "failed to read keystore")
	}

	var ks KeystoreJSON
	if err := jsonx.Unmarshal(data, &ks); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	if ks.Version != version {
		return nil, errors.Wrapf(ErrUnsupported, "version %d", ks.Version)
	}
	if ks.Kind != KindMnemonic && ks.Kind != KindPrivateKey {
		return nil, errors.Wrapf(ErrUnsupported, "kind %q", ks.Kind)
	}
	if err := validateCrypto(&ks.Crypto); err != nil {
		return nil, err
	}

	return &ks, nil
}

func (s *service) Decrypt(ctx context.Context, ks *KeystoreJSON, password string) (string, error) {
	log := util.LogFromContext(ctx).With().Str("id", ks.ID).Logger()

	plaintext, err := decrypt(&ks.Crypto, password)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to decrypt keystore")
		return "", err
	}

	secret := string(plaintext)
	clear(plaintext)

	if err := s.VerifyAddress(ctx, ks, secret); err != nil {
		return "", err
	}

	return secret, nil
}

func (s *service) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrap(err, "failed to stat keystore")
}

func writeExclusive(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.Wrap(err, "failed to create keystore directory")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return errors.Wrap(ErrExists, path)
		}
		return errors.Wrap(err, "failed to create keystore file")
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return errors.Wrap(err, "failed to write keystore file")
	}

	return errors.Wrap(f.Close(), "failed to close keystore file")
}
