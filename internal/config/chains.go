package config

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ChainKind is the transaction family of a chain.
type ChainKind string

const (
	ChainKindEVM ChainKind = "evm"
	ChainKindSui ChainKind = "sui"
)

// ErrUnknownChain is returned by Registry.Lookup for a name not in the registry.
var ErrUnknownChain = errors.New("unknown chain")

// Chain is one entry of the chain registry file.
//
//	[chains.sepolia]
//	kind = "evm"
//	endpoint = "https://rpc.sepolia.org"
//	tx_type = "eip1559"
type Chain struct {
	Name     string    `toml:"-"`
	Kind     ChainKind `toml:"kind"`
	Endpoint string    `toml:"endpoint"`
	Proxy    string    `toml:"proxy"`
	TxType   string    `toml:"tx_type"`
	Decimals int32     `toml:"decimals"`
	Explorer string    `toml:"explorer"`
}

// Registry maps chain names to their settings.
type Registry struct {
	Chains map[string]Chain `toml:"chains"`
}

// LoadChains decodes a TOML registry file. A missing file yields an empty registry.
func LoadChains(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{Chains: map[string]Chain{}}, nil
		}
		return nil, errors.Wrapf(err, "failed to read chain registry %s", path)
	}

	return ParseChains(string(data))
}

// ParseChains decodes a TOML registry document and validates every entry.
func ParseChains(doc string) (*Registry, error) {
	var reg Registry
	if _, err := toml.Decode(doc, &reg); err != nil {
		return nil, errors.Wrap(err, "failed to decode chain registry")
	}

	if reg.Chains == nil {
		reg.Chains = map[string]Chain{}
	}

	for name, chain := range reg.Chains {
		chain.Name = name
		chain.Kind = ChainKind(strings.ToLower(string(chain.Kind)))

		switch chain.Kind {
		case ChainKindEVM:
			if chain.Decimals == 0 {
				chain.Decimals = 18
			}
		case ChainKindSui:
			if chain.Decimals == 0 {
				chain.Decimals = 9
			}
		default:
			return nil, errors.Errorf("chain %s: unsupported kind %q", name, chain.Kind)
		}

		if chain.Endpoint == "" {
			return nil, errors.Errorf("chain %s: endpoint is required", name)
		}

		reg.Chains[name] = chain
	}

	return &reg, nil
}

// Lookup returns the chain registered under name.
func (r *Registry) Lookup(name string) (Chain, error) {
	chain, ok := r.Chains[name]
	if !ok {
		return Chain{}, errors.Wrapf(ErrUnknownChain, "%q (registered: %s)", name, strings.Join(r.Names(), ", "))
	}
	return chain, nil
}

// Names returns the registered chain names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Chains))
	for name := range r.Chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
