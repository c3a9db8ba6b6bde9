package signer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chapool/txengine/internal/wallet/fee"
)

// EVMRequest is a fully priced EVM transaction. All amounts are in wei.
type EVMRequest struct {
	ChainID *big.Int        // Chain ID (1 for Ethereum mainnet, 137 for Polygon, etc.)
	From    common.Address  // Expected sender, checked against the key when set
	To      *common.Address // Recipient, nil deploys a contract
	Value   *big.Int        // Amount in wei
	Data    []byte          // Transaction data (for contract calls)
	Nonce   uint64          // Transaction nonce
	Fee     fee.Quote       // Gas limit and prices
}

// SignedTransaction is produced once and never re-signed.
type SignedTransaction struct {
	Raw  []byte // RLP or typed envelope encoding
	Hash string // Transaction hash (hex string with 0x prefix)
}

// SigningError reports a malformed key or a transaction that cannot be signed.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing: %s: %v", e.Reason, e.Err)
	}
	return "signing: " + e.Reason
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

func signingError(reason string, err error) error {
	return &SigningError{Reason: reason, Err: err}
}
