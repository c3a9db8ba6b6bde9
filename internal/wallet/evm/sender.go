package evm

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/rpc"
	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/wallet/address"
	"github.com/chapool/txengine/internal/wallet/codec"
	"github.com/chapool/txengine/internal/wallet/fee"
	"github.com/chapool/txengine/internal/wallet/signer"
)

// Sender builds, signs and broadcasts EVM transactions through one JSON-RPC endpoint.
// It keeps no state between sends and never retries.
type Sender struct {
	client          rpc.Caller
	EstimateTimeout time.Duration
	Decimals        int32 // native token decimals, scales human values and balances
}

func NewSender(client rpc.Caller) *Sender {
	return &Sender{
		client:          client,
		EstimateTimeout: DefaultEstimateTimeout,
		Decimals:        codec.EVMDecimals,
	}
}

// callMsg is the eth_call / eth_estimateGas transaction object.
type callMsg struct {
	From  string `json:"from,omitempty"`
	To    string `json:"to"`
	Data  string `json:"data,omitempty"`
	Value string `json:"value,omitempty"`
}

// SendTx derives the sender, prices, signs and broadcasts the transaction and returns its hash.
// Failures are *signer.SigningError, *GasEstimationError, *rpc.RPCError or *rpc.TransportError.
func (s *Sender) SendTx(ctx context.Context, req SendRequest) (string, error) {
	if req.TxType == "" {
		req.TxType = fee.KindEIP1559
	}
	if req.TxType != fee.KindLegacy && req.TxType != fee.KindEIP1559 {
		return "", errors.Errorf("unknown transaction type %q", req.TxType)
	}
	if req.Speedup < 0 {
		return "", errors.Errorf("speedup must be >= 0, got %d", req.Speedup)
	}

	value := new(big.Int)
	if req.Value.IsSet() {
		var err error
		if value, err = req.Value.ToMinor(s.decimals()); err != nil {
			return "", errors.Wrap(err, "invalid value")
		}
	}

	log := util.LogFromContext(ctx).With().Str("to", req.To.Hex()).Str("tx_type", string(req.TxType)).Logger()

	// Resolve from address
	from, err := address.EVMAddress(req.PrivateKey)
	if err != nil {
		return "", &signer.SigningError{Reason: "invalid sender key", Err: err}
	}
	log = log.With().Str("from", from).Logger()

	chainID, err := rpc.CallBigInt(ctx, s.client, "eth_chainId")
	if err != nil {
		return "", errors.Wrap(err, "failed to get chain id")
	}

	baseFee, err := rpc.CallBigInt(ctx, s.client, "eth_gasPrice")
	if err != nil {
		return "", errors.Wrap(err, "failed to get gas price")
	}

	msg := callMsg{
		From:  from,
		To:    req.To.Hex(),
		Value: codec.BigIntToHex(value),
	}
	if len(req.Data) > 0 {
		msg.Data = hexutil.Encode(req.Data)
	}

	estimatedGas, err := s.estimateGas(ctx, msg)
	if err != nil {
		return "", err
	}

	quote, err := fee.NewQuote(req.TxType, baseFee, req.Speedup, estimatedGas)
	if err != nil {
		return "", errors.Wrap(err, "failed to price transaction")
	}

	nonce, err := rpc.CallUint64(ctx, s.client, "eth_getTransactionCount", from, "pending")
	if err != nil {
		return "", errors.Wrap(err, "failed to get pending nonce")
	}

	to := req.To
	signed, err := signer.SignEVM(&signer.EVMRequest{
		ChainID: chainID,
		From:    common.HexToAddress(from),
		To:      &to,
		Value:   value,
		Data:    req.Data,
		Nonce:   nonce,
		Fee:     quote,
	}, req.PrivateKey)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("chain_id", chainID.String()).
		Uint64("nonce", nonce).
		Uint64("gas_limit", quote.GasLimit).
		Str("max_fee_cost", quote.MaxCost().String()).
		Str("value", value.String()).
		Msg("Broadcasting transaction")

	txHash, err := rpc.CallString(ctx, s.client, "eth_sendRawTransaction", hexutil.Encode(signed.Raw))
	if err != nil {
		return "", errors.Wrap(err, "failed to broadcast transaction")
	}

	if !equalHash(txHash, signed.Hash) {
		log.Warn().Str("tx_hash", txHash).Str("local_hash", signed.Hash).Msg("Node returned a different transaction hash")
	}

	log.Info().Str("tx_hash", txHash).Msg("Transaction broadcast")

	return txHash, nil
}

func (s *Sender) decimals() int32 {
	if s.Decimals <= 0 {
		return codec.EVMDecimals
	}
	return s.Decimals
}

func (s *Sender) estimateGas(ctx context.Context, msg callMsg) (uint64, error) {
	timeout := s.EstimateTimeout
	if timeout <= 0 {
		timeout = DefaultEstimateTimeout
	}

	estimateCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gas, err := rpc.CallUint64(estimateCtx, s.client, "eth_estimateGas", msg)
	if err != nil {
		return 0, &GasEstimationError{Err: err}
	}

	return gas, nil
}

// Balance returns the balance of account at the latest block.
func (s *Sender) Balance(ctx context.Context, account common.Address) (codec.Balance, error) {
	wei, err := rpc.CallBigInt(ctx, s.client, "eth_getBalance", account.Hex(), "latest")
	if err != nil {
		return codec.Balance{}, errors.Wrap(err, "failed to get balance")
	}

	return codec.Balance{Minor: wei, Decimals: s.decimals()}, nil
}

// CallContract runs eth_call against the latest block and returns the returned bytes.
func (s *Sender) CallContract(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	msg := callMsg{To: contract.Hex(), Data: hexutil.Encode(data)}

	result, err := rpc.CallString(ctx, s.client, "eth_call", msg, "latest")
	if err != nil {
		return nil, errors.Wrap(err, "failed to call contract")
	}

	out, err := hexutil.Decode(result)
	if err != nil {
		return nil, errors.Wrap(err, "malformed eth_call result")
	}

	return out, nil
}

// TokenBalance returns the ERC20 balance of account, scaled by the token's decimals().
func (s *Sender) TokenBalance(ctx context.Context, token, account common.Address) (codec.Balance, error) {
	data, err := BalanceOfData(account)
	if err != nil {
		return codec.Balance{}, err
	}

	out, err := s.CallContract(ctx, token, data)
	if err != nil {
		return codec.Balance{}, errors.Wrap(err, "failed to call balanceOf")
	}

	balance, err := unpackUint256("balanceOf", out)
	if err != nil {
		return codec.Balance{}, err
	}

	decimals, err := s.TokenDecimals(ctx, token)
	if err != nil {
		return codec.Balance{}, err
	}

	return codec.Balance{Minor: balance, Decimals: decimals}, nil
}

// TokenDecimals calls decimals() on token.
func (s *Sender) TokenDecimals(ctx context.Context, token common.Address) (int32, error) {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return 0, errors.Wrap(err, "failed to pack decimals call")
	}

	out, err := s.CallContract(ctx, token, data)
	if err != nil {
		return 0, errors.Wrap(err, "failed to call decimals")
	}

	values, err := erc20ABI.Unpack("decimals", out)
	if err != nil {
		return 0, errors.Wrap(err, "failed to decode decimals result")
	}
	if len(values) != 1 {
		return 0, errors.Errorf("decimals returned %d values", len(values))
	}

	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, errors.Errorf("unexpected decimals type %T", values[0])
	}

	return int32(decimals), nil
}

func equalHash(a, b string) bool {
	return common.HexToHash(a) == common.HexToHash(b)
}
