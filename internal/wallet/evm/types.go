package evm

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chapool/txengine/internal/wallet/codec"
	"github.com/chapool/txengine/internal/wallet/fee"
)

// DefaultEstimateTimeout bounds eth_estimateGas when Sender.EstimateTimeout is zero.
const DefaultEstimateTimeout = 30 * time.Second

// SendRequest describes one transaction from the owner of PrivateKey.
type SendRequest struct {
	To         common.Address
	Data       []byte
	Value      codec.Amount // human amounts are scaled by the sender's Decimals, an unset amount sends nothing
	PrivateKey []byte       // 32-byte secp256k1 key, never transmitted
	TxType     fee.Kind
	Speedup    int64 // percent of the adjusted fee added on top, >= 0
}

// GasEstimationError wraps a failed eth_estimateGas call. It is never retried.
type GasEstimationError struct {
	Err error
}

func (e *GasEstimationError) Error() string {
	return "gas estimation failed: " + e.Err.Error()
}

func (e *GasEstimationError) Unwrap() error {
	return e.Err
}
