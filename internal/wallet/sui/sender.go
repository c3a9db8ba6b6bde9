package sui

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/rpc"
	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/wallet/address"
	"github.com/chapool/txengine/internal/wallet/codec"
	"github.com/chapool/txengine/internal/wallet/signer"
)

var addressPattern = regexp.MustCompile(`^0[xX][0-9a-fA-F]{1,64}$`)

// NormalizeAddress returns addr as 0x followed by 64 lowercase hex digits.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !addressPattern.MatchString(addr) {
		return "", errors.Errorf("invalid Sui address %q", addr)
	}

	const hexLen = 64
	digits := strings.ToLower(addr[2:])
	return "0x" + strings.Repeat("0", hexLen-len(digits)) + digits, nil
}

// Sender transfers SUI through one JSON-RPC endpoint. Each send queries fresh coin objects and never retries.
type Sender struct {
	client    rpc.Caller
	GasBudget uint64
	CoinLimit int
	Decimals  int32
}

func NewSender(client rpc.Caller) *Sender {
	return &Sender{
		client:    client,
		GasBudget: DefaultGasBudget,
		CoinLimit: DefaultCoinLimit,
		Decimals:  codec.SuiDecimals,
	}
}

// SendNative transfers req.Amount to req.To and returns the transaction digest.
//
// Node failures while building or executing the transaction are returned as *TraceError
// holding every exchange of the send. A selected coin consumed in the meantime surfaces
// as ErrStaleCoin.
func (s *Sender) SendNative(ctx context.Context, req SendRequest) (string, error) {
	km, err := address.SuiKeyMaterial(req.PrivateKey)
	if err != nil {
		return "", &signer.SigningError{Reason: "invalid sender key", Err: err}
	}
	defer km.Clear()

	to, err := NormalizeAddress(req.To)
	if err != nil {
		return "", err
	}

	if !req.Amount.IsSet() {
		return "", errors.New("amount is required")
	}
	amount, err := req.Amount.ToMinor(s.decimals())
	if err != nil {
		return "", errors.Wrap(err, "invalid amount")
	}
	if amount.Sign() <= 0 {
		return "", errors.Errorf("amount must be positive, got %s", amount)
	}

	trace := rpc.TraceFromContext(ctx)
	if trace == nil {
		trace = rpc.NewTrace()
		ctx = rpc.WithTrace(ctx, trace)
	}

	log := util.LogFromContext(ctx).With().Str("from", km.Address).Str("to", to).Str("amount", amount.String()).Logger()

	coins, err := s.GetCoins(ctx, km.Address)
	if err != nil {
		return "", &TraceError{Err: err, Trace: trace}
	}

	need := new(big.Int).Add(amount, new(big.Int).SetUint64(s.gasBudget()))
	selected, err := SelectCoins(coins, need)
	if err != nil {
		return "", err
	}

	log.Debug().Int("coins", len(selected)).Str("need", need.String()).Msg("Selected coin objects")

	var built transactionBlockBytes
	_, err = rpc.CallInto(ctx, s.client, &built, "unsafe_paySui",
		km.Address,
		coinIDs(selected),
		[]string{to},
		[]string{amount.String()},
		strconv.FormatUint(s.gasBudget(), 10),
	)
	if err != nil {
		return "", &TraceError{Err: classify(errors.Wrap(err, "failed to build pay transaction")), Trace: trace}
	}

	txBytes, err := base64.StdEncoding.DecodeString(built.TxBytes)
	if err != nil || len(txBytes) == 0 {
		return "", &TraceError{Err: errors.New("node returned malformed transaction bytes"), Trace: trace}
	}

	signature, err := signer.SignSui(km.PrivateKey, txBytes)
	if err != nil {
		return "", err
	}

	var executed executionResponse
	_, err = rpc.CallInto(ctx, s.client, &executed, "sui_executeTransactionBlock",
		built.TxBytes,
		[]string{signature},
		map[string]bool{"showEffects": true},
		"WaitForLocalExecution",
	)
	if err != nil {
		return "", &TraceError{Err: classify(errors.Wrap(err, "failed to execute transaction")), Trace: trace}
	}

	if executed.Digest == "" {
		return "", &TraceError{Err: errors.New("node returned no transaction digest"), Trace: trace}
	}

	if executed.Effects != nil && executed.Effects.Status.Status != "" && executed.Effects.Status.Status != "success" {
		err := fmt.Errorf("%w: %s: %s", ErrExecutionFailed, executed.Digest, executed.Effects.Status.Error)
		return "", &TraceError{Err: err, Trace: trace}
	}

	log.Info().Str("tx_digest", executed.Digest).Msg("Transaction executed")

	return executed.Digest, nil
}

// GetCoins returns up to CoinLimit SUI coin objects owned by owner.
func (s *Sender) GetCoins(ctx context.Context, owner string) ([]Coin, error) {
	limit := s.CoinLimit
	if limit <= 0 {
		limit = DefaultCoinLimit
	}

	var page coinPage
	if _, err := rpc.CallInto(ctx, s.client, &page, "suix_getCoins", owner, CoinType, nil, limit); err != nil {
		return nil, errors.Wrap(err, "failed to get coins")
	}

	coins := make([]Coin, 0, len(page.Data))
	for _, c := range page.Data {
		balance, ok := new(big.Int).SetString(c.Balance, 10)
		if !ok {
			return nil, errors.Errorf("coin %s has malformed balance %q", c.CoinObjectID, c.Balance)
		}
		coins = append(coins, Coin{
			ID:      c.CoinObjectID,
			Version: c.Version,
			Digest:  c.Digest,
			Balance: balance,
			Owner:   owner,
		})
	}

	return coins, nil
}

// Balance returns the total SUI balance of owner.
func (s *Sender) Balance(ctx context.Context, owner string) (codec.Balance, error) {
	owner, err := NormalizeAddress(owner)
	if err != nil {
		return codec.Balance{}, err
	}

	var resp balanceResponse
	found, err := rpc.CallInto(ctx, s.client, &resp, "suix_getBalance", owner, CoinType)
	if err != nil {
		return codec.Balance{}, errors.Wrap(err, "failed to get balance")
	}
	if !found {
		return codec.Balance{}, &rpc.RPCError{Message: rpc.NoResultMessage, Method: "suix_getBalance"}
	}

	total, ok := new(big.Int).SetString(resp.TotalBalance, 10)
	if !ok {
		return codec.Balance{}, errors.Errorf("malformed totalBalance %q", resp.TotalBalance)
	}

	return codec.Balance{Minor: total, Decimals: s.decimals()}, nil
}

func (s *Sender) decimals() int32 {
	if s.Decimals <= 0 {
		return codec.SuiDecimals
	}
	return s.Decimals
}

func (s *Sender) gasBudget() uint64 {
	if s.GasBudget == 0 {
		return DefaultGasBudget
	}
	return s.GasBudget
}

// classify marks node errors about consumed or locked objects as ErrStaleCoin.
func classify(err error) error {
	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) && isStaleCoinMessage(rpcErr.Message) {
		return fmt.Errorf("%w: %w", ErrStaleCoin, err)
	}
	return err
}
