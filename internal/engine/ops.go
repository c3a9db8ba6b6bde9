package engine

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/wallet/address"
	"github.com/chapool/txengine/internal/wallet/codec"
	"github.com/chapool/txengine/internal/wallet/confirm"
	"github.com/chapool/txengine/internal/wallet/evm"
	"github.com/chapool/txengine/internal/wallet/sui"
)

// EVMTransfer is a native or ERC-20 transfer, or a contract call when Data is set.
type EVMTransfer struct {
	Target Target
	To     string
	Amount codec.Amount

	// Token makes this an ERC-20 transfer of Amount to To. A human Amount is scaled by the
	// token's decimals().
	Token string
	Data  []byte

	TxType string
	Key    address.Options
	Wait   bool
}

type SuiTransfer struct {
	Target Target
	To     string
	Amount codec.Amount
	Key    address.Options
}

// SendResult describes a broadcast transaction.
type SendResult struct {
	Chain    string
	From     string
	TxHash   string
	Explorer string
	Status   confirm.Result
}

// SendEVM signs and broadcasts t with the configured key, then waits for its receipt when t.Wait is set.
// A result is returned alongside a wait error once the transaction has been broadcast.
func (e *Engine) SendEVM(ctx context.Context, t EVMTransfer, password PasswordFunc) (*SendResult, error) {
	chain, err := e.ResolveChain(t.Target, config.ChainKindEVM)
	if err != nil {
		return nil, err
	}

	kind, err := e.TxType(chain, t.TxType)
	if err != nil {
		return nil, err
	}

	to, err := parseEVMAddress("recipient", t.To)
	if err != nil {
		return nil, err
	}

	client, err := e.Client(chain)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	km, err := e.KeyMaterial(ctx, address.ChainEVM, t.Key, password)
	if err != nil {
		return nil, err
	}
	defer km.Clear()

	sender := e.EVMSender(chain, client)
	req := evm.SendRequest{
		To:         to,
		Data:       t.Data,
		Value:      t.Amount,
		PrivateKey: km.PrivateKey,
		TxType:     kind,
		Speedup:    e.Config.EVM.Speedup,
	}

	if t.Token != "" {
		if req, err = e.tokenTransfer(ctx, sender, req, t); err != nil {
			return nil, err
		}
	}

	log := util.LogFromContext(ctx).With().Str("chain", chain.Name).Str("from", km.Address).Logger()

	hash, err := sender.SendTx(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send transaction")
		return nil, err
	}

	result := &SendResult{
		Chain:    chain.Name,
		From:     km.Address,
		TxHash:   hash,
		Explorer: explorerLink(chain, hash),
		Status:   confirm.Pending,
	}

	if !t.Wait {
		return result, nil
	}

	result.Status, err = e.Poller(client).Wait(ctx, hash, e.Config.Confirm.Timeout)
	return result, err
}

func (e *Engine) tokenTransfer(ctx context.Context, sender *evm.Sender, req evm.SendRequest, t EVMTransfer) (evm.SendRequest, error) {
	if len(t.Data) > 0 {
		return req, errors.New("token transfers cannot carry extra call data")
	}
	if !t.Amount.IsSet() {
		return req, errors.New("token transfers need an amount")
	}

	token, err := parseEVMAddress("token", t.Token)
	if err != nil {
		return req, err
	}

	var decimals int32
	if t.Amount.Kind() == codec.AmountHuman {
		if decimals, err = sender.TokenDecimals(ctx, token); err != nil {
			return req, errors.Wrap(err, "failed to read token decimals")
		}
	}

	amount, err := t.Amount.ToMinor(decimals)
	if err != nil {
		return req, err
	}

	data, err := evm.TransferData(req.To, amount)
	if err != nil {
		return req, err
	}

	req.To = token
	req.Data = data
	req.Value = codec.Amount{}

	return req, nil
}

// SendSui transfers SUI with the configured key. Execution waits for local effects.
func (e *Engine) SendSui(ctx context.Context, t SuiTransfer, password PasswordFunc) (*SendResult, error) {
	chain, err := e.ResolveChain(t.Target, config.ChainKindSui)
	if err != nil {
		return nil, err
	}

	client, err := e.Client(chain)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	km, err := e.KeyMaterial(ctx, address.ChainSui, t.Key, password)
	if err != nil {
		return nil, err
	}
	defer km.Clear()

	digest, err := e.SuiSender(chain, client).SendNative(ctx, sui.SendRequest{
		To:         t.To,
		Amount:     t.Amount,
		PrivateKey: km.PrivateKey,
	})
	if err != nil {
		return nil, err
	}

	return &SendResult{
		Chain:    chain.Name,
		From:     km.Address,
		TxHash:   digest,
		Explorer: explorerLink(chain, digest),
		Status:   confirm.Success,
	}, nil
}

// Wait polls the EVM chain of target for the receipt of txHash. A non-positive timeout uses
// the configured one.
func (e *Engine) Wait(ctx context.Context, target Target, txHash string, timeout time.Duration) (confirm.Result, error) {
	chain, err := e.ResolveChain(target, config.ChainKindEVM)
	if err != nil {
		return confirm.Pending, err
	}

	client, err := e.Client(chain)
	if err != nil {
		return confirm.Pending, err
	}
	defer client.Close()

	if timeout <= 0 {
		timeout = e.Config.Confirm.Timeout
	}

	return e.Poller(client).Wait(ctx, txHash, timeout)
}

// BalanceEVM returns the native balance of account at the latest block.
func (e *Engine) BalanceEVM(ctx context.Context, target Target, account string) (codec.Balance, error) {
	chain, err := e.ResolveChain(target, config.ChainKindEVM)
	if err != nil {
		return codec.Balance{}, err
	}

	addr, err := parseEVMAddress("account", account)
	if err != nil {
		return codec.Balance{}, err
	}

	client, err := e.Client(chain)
	if err != nil {
		return codec.Balance{}, err
	}
	defer client.Close()

	return e.EVMSender(chain, client).Balance(ctx, addr)
}

// TokenBalance returns the ERC-20 balance of account.
func (e *Engine) TokenBalance(ctx context.Context, target Target, token, account string) (codec.Balance, error) {
	chain, err := e.ResolveChain(target, config.ChainKindEVM)
	if err != nil {
		return codec.Balance{}, err
	}

	tokenAddr, err := parseEVMAddress("token", token)
	if err != nil {
		return codec.Balance{}, err
	}

	addr, err := parseEVMAddress("account", account)
	if err != nil {
		return codec.Balance{}, err
	}

	client, err := e.Client(chain)
	if err != nil {
		return codec.Balance{}, err
	}
	defer client.Close()

	return e.EVMSender(chain, client).TokenBalance(ctx, tokenAddr, addr)
}

// BalanceSui returns the SUI balance of owner.
func (e *Engine) BalanceSui(ctx context.Context, target Target, owner string) (codec.Balance, error) {
	chain, err := e.ResolveChain(target, config.ChainKindSui)
	if err != nil {
		return codec.Balance{}, err
	}

	client, err := e.Client(chain)
	if err != nil {
		return codec.Balance{}, err
	}
	defer client.Close()

	return e.SuiSender(chain, client).Balance(ctx, owner)
}

func parseEVMAddress(what, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid %s address %q", what, s)
	}
	return common.HexToAddress(s), nil
}

func explorerLink(chain config.Chain, hash string) string {
	if chain.Explorer == "" {
		return ""
	}
	return strings.TrimRight(chain.Explorer, "/") + "/tx/" + hash
}
