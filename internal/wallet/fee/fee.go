package fee

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the EVM transaction envelope a quote is priced for.
type Kind string

const (
	KindLegacy  Kind = "legacy"
	KindEIP1559 Kind = "eip1559"
)

// ParseKind accepts "legacy"/"0" and "eip1559"/"2". The empty string selects EIP-1559.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "0", "0x0":
		return KindLegacy, nil
	case "", "eip1559", "eip-1559", "dynamic", "2", "0x2":
		return KindEIP1559, nil
	default:
		return "", errors.Errorf("unknown transaction type %q", s)
	}
}

const (
	safetyMarginDivisor = 100 // 1% over the node-reported base fee
	speedupDivisor      = 100 // each speedup step adds 1% of the adjusted fee
	gasHeadroomDivisor  = 2   // 50% over the estimate
)

// Quote is the price of one transaction. GasPrice is set for legacy quotes,
// MaxFeePerGas and PriorityFee for EIP-1559 quotes.
type Quote struct {
	Kind         Kind
	GasPrice     *big.Int
	MaxFeePerGas *big.Int
	PriorityFee  *big.Int
	GasLimit     uint64
}

// AdjustedFee is baseFee + baseFee/100.
func AdjustedFee(baseFee *big.Int) *big.Int {
	margin := new(big.Int).Quo(baseFee, big.NewInt(safetyMarginDivisor))
	return margin.Add(margin, baseFee)
}

// BumpedFee is adjusted + (adjusted/100) * speedup, computed on integers only.
func BumpedFee(baseFee *big.Int, speedup int64) *big.Int {
	adjusted := AdjustedFee(baseFee)
	step := new(big.Int).Quo(adjusted, big.NewInt(speedupDivisor))
	step.Mul(step, big.NewInt(speedup))
	return step.Add(step, adjusted)
}

// GasLimit is estimated + estimated/2.
func GasLimit(estimated uint64) (uint64, error) {
	limit := estimated + estimated/gasHeadroomDivisor
	if limit < estimated {
		return 0, errors.Errorf("gas limit for estimate %d overflows uint64", estimated)
	}
	return limit, nil
}

// NewQuote prices a transaction from the node base fee, the speedup percentage and a fresh gas estimate.
// The priority fee of an EIP-1559 quote equals its max fee.
func NewQuote(kind Kind, baseFee *big.Int, speedup int64, estimatedGas uint64) (Quote, error) {
	if baseFee == nil || baseFee.Sign() < 0 {
		return Quote{}, errors.Errorf("invalid base fee %v", baseFee)
	}
	if speedup < 0 {
		return Quote{}, errors.Errorf("speedup must be >= 0, got %d", speedup)
	}

	gasLimit, err := GasLimit(estimatedGas)
	if err != nil {
		return Quote{}, err
	}

	bumped := BumpedFee(baseFee, speedup)
	quote := Quote{Kind: kind, GasLimit: gasLimit}

	switch kind {
	case KindLegacy:
		quote.GasPrice = bumped
	case KindEIP1559:
		quote.MaxFeePerGas = bumped
		quote.PriorityFee = new(big.Int).Set(bumped)
	default:
		return Quote{}, errors.Errorf("unknown transaction type %q", kind)
	}

	return quote, nil
}

// MaxCost is the most the quote can spend on gas.
func (q Quote) MaxCost() *big.Int {
	price := q.GasPrice
	if q.Kind == KindEIP1559 {
		price = q.MaxFeePerGas
	}
	if price == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(price, new(big.Int).SetUint64(q.GasLimit))
}
