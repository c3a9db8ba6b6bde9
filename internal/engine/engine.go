package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/rpc"
	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/wallet/address"
	"github.com/chapool/txengine/internal/wallet/codec"
	"github.com/chapool/txengine/internal/wallet/confirm"
	"github.com/chapool/txengine/internal/wallet/evm"
	"github.com/chapool/txengine/internal/wallet/fee"
	"github.com/chapool/txengine/internal/wallet/keystore"
	"github.com/chapool/txengine/internal/wallet/seed"
	"github.com/chapool/txengine/internal/wallet/sui"
)

var (
	ErrNoEndpoint = errors.New("no chain or RPC endpoint given")
	ErrNoSigner   = errors.New("no signing key configured: set a keystore or a key")
)

// Engine holds the configured services the commands are built from.
type Engine struct {
	Config    config.Service
	Chains    *config.Registry
	Addresses address.Service
	Keystores keystore.Service
}

// New loads the chain registry named by cfg and wires the key services.
func New(cfg config.Service) (*Engine, error) {
	chains, err := config.LoadChains(cfg.Chains.File)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load chain registry")
	}

	addressService, err := address.NewService(seed.NewManager())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create address service")
	}

	params := keystore.DefaultScryptParams()
	if cfg.Signer.LightKDF {
		params = keystore.LightScryptParams()
	}

	keystoreService, err := keystore.NewService(addressService, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create keystore service")
	}

	return &Engine{
		Config:    cfg,
		Chains:    chains,
		Addresses: addressService,
		Keystores: keystoreService,
	}, nil
}

// Target selects an endpoint by registry name, by URL, or both (the URL then overrides the
// registered endpoint).
type Target struct {
	Chain    string
	Endpoint string
	Proxy    string
}

// ResolveChain returns the chain settings of target, checking that it is of kind.
func (e *Engine) ResolveChain(target Target, kind config.ChainKind) (config.Chain, error) {
	var chain config.Chain

	switch {
	case target.Chain != "":
		registered, err := e.Chains.Lookup(target.Chain)
		if err != nil {
			return config.Chain{}, err
		}
		if registered.Kind != kind {
			return config.Chain{}, errors.Errorf("chain %s is %s, want %s", registered.Name, registered.Kind, kind)
		}
		chain = registered
	case target.Endpoint != "":
		chain = config.Chain{Name: string(kind), Kind: kind, Decimals: defaultDecimals(kind)}
	default:
		return config.Chain{}, ErrNoEndpoint
	}

	if target.Endpoint != "" {
		chain.Endpoint = target.Endpoint
	}
	if target.Proxy != "" {
		chain.Proxy = target.Proxy
	}
	if chain.Proxy == "" {
		chain.Proxy = e.Config.RPC.Proxy
	}

	return chain, nil
}

func defaultDecimals(kind config.ChainKind) int32 {
	if kind == config.ChainKindSui {
		return codec.SuiDecimals
	}
	return codec.EVMDecimals
}

// Client creates a transport for chain with the configured timeout, rate limit and user agent.
func (e *Engine) Client(chain config.Chain) (*rpc.Client, error) {
	endpoint, err := rpc.NewEndpoint(chain.Endpoint, chain.Proxy)
	if err != nil {
		return nil, errors.Wrapf(err, "chain %s", chain.Name)
	}

	opts := []rpc.Option{
		rpc.WithRateLimit(e.Config.RPC.RateLimit, e.Config.RPC.Burst),
	}
	if e.Config.RPC.Timeout > 0 {
		opts = append(opts, rpc.WithTimeout(e.Config.RPC.Timeout))
	}
	if e.Config.RPC.UserAgent != "" {
		opts = append(opts, rpc.WithUserAgent(e.Config.RPC.UserAgent))
	}

	return rpc.NewClient(endpoint, opts...), nil
}

// EVMSender creates a sender for chain that scales native amounts by the chain's decimals.
func (e *Engine) EVMSender(chain config.Chain, client rpc.Caller) *evm.Sender {
	sender := evm.NewSender(client)
	if chain.Decimals > 0 {
		sender.Decimals = chain.Decimals
	}
	if e.Config.EVM.EstimateTimeout > 0 {
		sender.EstimateTimeout = e.Config.EVM.EstimateTimeout
	}
	return sender
}

func (e *Engine) SuiSender(chain config.Chain, client rpc.Caller) *sui.Sender {
	sender := sui.NewSender(client)
	if chain.Decimals > 0 {
		sender.Decimals = chain.Decimals
	}
	if e.Config.Sui.GasBudget > 0 {
		sender.GasBudget = e.Config.Sui.GasBudget
	}
	if e.Config.Sui.CoinLimit > 0 {
		sender.CoinLimit = e.Config.Sui.CoinLimit
	}
	return sender
}

func (e *Engine) Poller(client rpc.Caller) *confirm.Poller {
	poller := confirm.NewPoller(client)
	if e.Config.Confirm.Interval > 0 {
		poller.Interval = e.Config.Confirm.Interval
	}
	return poller
}

// TxType picks the transaction type: override, then the chain entry, then the configured default.
func (e *Engine) TxType(chain config.Chain, override string) (fee.Kind, error) {
	name := override
	if name == "" {
		name = chain.TxType
	}
	if name == "" {
		name = e.Config.EVM.TxType
	}
	return fee.ParseKind(name)
}

// PasswordFunc asks the user for the keystore password.
type PasswordFunc func(prompt string) (string, error)

// Secret returns the signing secret from the configured keystore, or else the configured key.
// password is only called for a keystore without a configured password.
func (e *Engine) Secret(ctx context.Context, password PasswordFunc) (string, error) {
	signer := e.Config.Signer

	if signer.Keystore != "" {
		ks, err := e.Keystores.Read(ctx, signer.Keystore)
		if err != nil {
			return "", err
		}

		pw := signer.Password
		if pw == "" {
			if password == nil {
				return "", errors.Wrap(ErrNoSigner, "keystore password required")
			}
			if pw, err = password("Enter keystore password: "); err != nil {
				return "", errors.Wrap(err, "failed to read password")
			}
		}

		secret, err := e.Keystores.Decrypt(ctx, ks, pw)
		if err != nil {
			return "", errors.Wrap(err, "failed to decrypt keystore")
		}
		return secret, nil
	}

	if signer.Key != "" {
		return signer.Key, nil
	}

	return "", ErrNoSigner
}

// KeyMaterial resolves the configured signing secret for chain.
// WARNING: Call Clear on the result once done
func (e *Engine) KeyMaterial(ctx context.Context, chain address.Chain, opts address.Options, password PasswordFunc) (*address.KeyMaterial, error) {
	secret, err := e.Secret(ctx, password)
	if err != nil {
		return nil, err
	}

	if opts.Passphrase == "" {
		opts.Passphrase = e.Config.Signer.Passphrase
	}

	km, err := e.Addresses.Resolve(ctx, secret, chain, opts)
	if err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Debug().Str("chain", string(chain)).Str("address", km.Address).Msg("Loaded signing key")

	return km, nil
}
