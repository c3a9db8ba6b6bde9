package codec

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Native token decimals of the supported chain families.
const (
	EVMDecimals int32 = 18
	SuiDecimals int32 = 9
)

var decimalDigits = regexp.MustCompile(`^[0-9]+$`)

// ErrNegativeAmount is returned for transfer values below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// AmountKind tags which unit an Amount was expressed in.
type AmountKind int

const (
	AmountUnset AmountKind = iota
	// AmountHuman is a decimal in whole tokens ("1.5" ETH).
	AmountHuman
	// AmountMinor is an integer already in minor units (wei, mist, octas).
	AmountMinor
)

func (k AmountKind) String() string {
	switch k {
	case AmountHuman:
		return "human"
	case AmountMinor:
		return "minor"
	default:
		return "unset"
	}
}

// Amount is a transfer value whose unit is stated by the caller instead of being
// guessed from its textual shape.
type Amount struct {
	kind  AmountKind
	human decimal.Decimal
	minor *big.Int
}

// Human wraps a whole-token decimal amount.
func Human(d decimal.Decimal) Amount {
	return Amount{kind: AmountHuman, human: d}
}

// Minor wraps an amount that is already in minor units.
func Minor(v *big.Int) Amount {
	return Amount{kind: AmountMinor, minor: new(big.Int).Set(v)}
}

// ParseHuman parses a decimal string such as "1.5" or "100" as whole tokens.
func ParseHuman(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, errors.Wrapf(err, "invalid decimal amount %q", s)
	}

	if d.IsNegative() {
		return Amount{}, errors.Wrapf(ErrNegativeAmount, "amount %s", s)
	}

	return Human(d), nil
}

// ParseMinor parses a minor-unit integer. Only two shapes are accepted: a 0x-prefixed
// hex quantity or plain base-10 digits. "100" is therefore always one hundred wei.
func ParseMinor(s string) (Amount, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err := HexToBigInt(s)
		if err != nil {
			return Amount{}, err
		}
		return Minor(v), nil
	case decimalDigits.MatchString(s):
		const base10 = 10
		v, ok := new(big.Int).SetString(s, base10)
		if !ok {
			return Amount{}, errors.Errorf("invalid minor-unit amount %q", s)
		}
		return Minor(v), nil
	default:
		return Amount{}, errors.Errorf("invalid minor-unit amount %q: want 0x-hex or base-10 digits", s)
	}
}

// Kind reports how the amount was expressed.
func (a Amount) Kind() AmountKind {
	return a.kind
}

// IsSet reports whether the amount was constructed through Human, Minor or a parser.
func (a Amount) IsSet() bool {
	return a.kind != AmountUnset
}

// ToMinor converts the amount to minor units. Human amounts are scaled by 10^decimals and
// rounded; minor amounts pass through unchanged. Negative amounts fail with ErrNegativeAmount.
func (a Amount) ToMinor(decimals int32) (*big.Int, error) {
	var v *big.Int
	switch a.kind {
	case AmountHuman:
		v = DecimalToMinorUnits(a.human, decimals)
	case AmountMinor:
		v = new(big.Int).Set(a.minor)
	default:
		return nil, errors.New("amount is not set")
	}

	if v.Sign() < 0 {
		return nil, errors.Wrapf(ErrNegativeAmount, "amount %s", a)
	}

	return v, nil
}

func (a Amount) String() string {
	switch a.kind {
	case AmountHuman:
		return a.human.String()
	case AmountMinor:
		return a.minor.String() + " (minor)"
	default:
		return "<unset>"
	}
}

// DecimalToMinorUnits returns round(amount × 10^decimals).
func DecimalToMinorUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Round(0).BigInt()
}

// FormatMinorUnits renders a minor-unit integer as a whole-token decimal string.
func FormatMinorUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

// Balance is an on-chain amount in minor units together with the token's decimals.
type Balance struct {
	Minor    *big.Int
	Decimals int32
}

// Formatted renders the balance in human units.
func (b Balance) Formatted() string {
	return FormatMinorUnits(b.Minor, b.Decimals)
}
