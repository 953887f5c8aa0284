package chain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int32
		expected string
		wantErr  bool
	}{
		{name: "whole", amount: "10", decimals: 6, expected: "10000000"},
		{name: "fraction", amount: "1.5", decimals: 18, expected: "1500000000000000000"},
		{name: "exact precision", amount: "0.00000001", decimals: 8, expected: "1"},
		{name: "too precise", amount: "0.000000001", decimals: 8, wantErr: true},
		{name: "zero decimals", amount: "3", decimals: 0, expected: "3"},
		{name: "negative", amount: "-1", decimals: 6, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			units, err := ToUnits(decimal.RequireFromString(tc.amount), tc.decimals)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, units.String())
		})
	}
}

func TestFromUnits(t *testing.T) {
	assert.True(t, FromUnits(big.NewInt(1_500_000), 6).Equal(decimal.RequireFromString("1.5")))
	assert.True(t, FromUnits(nil, 6).IsZero())
}

func TestAnnualPercentage(t *testing.T) {
	// 1e9 per second ≈ 3.1536% per year
	apr := AnnualPercentage(1_000_000_000)
	assert.Equal(t, "3.1536", apr.String())
}
