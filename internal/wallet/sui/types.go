package sui

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/rpc"
	"github.com/chapool/txengine/internal/wallet/codec"
)

const (
	// DefaultGasBudget is the gas budget of a pay transaction, in mist.
	DefaultGasBudget uint64 = 10_000_000
	// DefaultCoinLimit caps the coin objects fetched per send.
	DefaultCoinLimit = 10

	CoinType = "0x2::sui::SUI"
)

var (
	// ErrInsufficientFunds means the owner has no SUI coin or their total is short of amount + gas budget.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrStaleCoin means a selected coin object was consumed or locked between query and submission.
	ErrStaleCoin = errors.New("stale coin object")
	// ErrExecutionFailed means the transaction was executed but its effects report failure.
	ErrExecutionFailed = errors.New("transaction execution failed")
)

// Coin is a snapshot of one coin object at query time.
type Coin struct {
	ID      string
	Version string
	Digest  string
	Balance *big.Int
	Owner   string
}

// SendRequest describes a native SUI transfer.
type SendRequest struct {
	To         string
	Amount     codec.Amount // human amounts are scaled by the sender's Decimals
	PrivateKey []byte // 32-byte Ed25519 seed, never transmitted
}

// TraceError carries the request/response exchanges of the failed send.
type TraceError struct {
	Err   error
	Trace *rpc.Trace
}

func (e *TraceError) Error() string {
	if e.Trace == nil || len(e.Trace.Entries()) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n" + e.Trace.String()
}

func (e *TraceError) Unwrap() error {
	return e.Err
}

type coinPage struct {
	Data []struct {
		CoinType     string `json:"coinType"`
		CoinObjectID string `json:"coinObjectId"`
		Version      string `json:"version"`
		Digest       string `json:"digest"`
		Balance      string `json:"balance"`
	} `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

type transactionBlockBytes struct {
	TxBytes string `json:"txBytes"`
}

type executionResponse struct {
	Digest  string `json:"digest"`
	Effects *struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
	} `json:"effects"`
}

type balanceResponse struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}
