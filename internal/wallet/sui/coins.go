package sui

import (
	"math/big"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SelectCoins returns the fewest coins whose balances cover need, largest balances first.
func SelectCoins(coins []Coin, need *big.Int) ([]Coin, error) {
	if len(coins) == 0 {
		return nil, errors.Wrap(ErrInsufficientFunds, "no SUI coins")
	}
	if need == nil || need.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %v", need)
	}

	sorted := make([]Coin, len(coins))
	copy(sorted, coins)
	sort.SliceStable(sorted, func(i, j int) bool {
		return balanceOf(sorted[i]).Cmp(balanceOf(sorted[j])) > 0
	})

	total := new(big.Int)
	for i, coin := range sorted {
		total.Add(total, balanceOf(coin))
		if total.Cmp(need) >= 0 {
			return sorted[:i+1], nil
		}
	}

	return nil, errors.Wrapf(ErrInsufficientFunds, "have %s mist in %d coins, need %s", total, len(coins), need)
}

func balanceOf(c Coin) *big.Int {
	if c.Balance == nil {
		return new(big.Int)
	}
	return c.Balance
}

func coinIDs(coins []Coin) []string {
	ids := make([]string, 0, len(coins))
	for _, c := range coins {
		ids = append(ids, c.ID)
	}
	return ids
}

// staleCoinMessages are lowercased fragments of the node's errors for an input object
// that was consumed, deleted or locked by another transaction.
var staleCoinMessages = []string{
	"could not find the referenced object",
	"not available for consumption",
	"unavailable for consumption",
	"objectversionunavailableforconsumption",
	"inputobjectdeleted",
	"object deleted",
	"object was deleted",
	"objectlockconflict",
	"already locked",
	"is reserved for another transaction",
	"object not found",
	"already used",
}

func isStaleCoinMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, pattern := range staleCoinMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
