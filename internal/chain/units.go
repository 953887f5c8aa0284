package chain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FromUnits converts an amount in the token's smallest unit to token units
func FromUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// ToUnits scales a token amount to the smallest unit. Amounts with more
// fractional digits than decimals are rejected rather than truncated.
func ToUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}
	scaled := amount.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	return scaled.BigInt(), nil
}
