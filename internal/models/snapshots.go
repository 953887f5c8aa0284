package models

import "github.com/shopspring/decimal"

// BaseAssetData is the account's view of the base asset. APRs are
// percentages, balances are in token units.
type BaseAssetData struct {
	SupplyAPR         decimal.NullDecimal
	YourSupply        decimal.NullDecimal
	BorrowAPR         decimal.NullDecimal
	YourBorrow        decimal.NullDecimal
	AvailableToBorrow decimal.NullDecimal
}

// CollateralAssetData is the account's view of one collateral asset
type CollateralAssetData struct {
	YourSupply    decimal.NullDecimal
	WalletBalance decimal.NullDecimal
}

// CollateralAssetsData maps collateral symbol to its snapshot
type CollateralAssetsData map[string]CollateralAssetData

// PriceFeedData holds USD prices for the base and collateral assets
type PriceFeedData struct {
	BaseAsset        decimal.Decimal
	CollateralAssets map[string]decimal.Decimal
}

// CollateralPrice returns the price for symbol or zero
func (p *PriceFeedData) CollateralPrice(symbol string) decimal.Decimal {
	if p == nil || p.CollateralAssets == nil {
		return decimal.Zero
	}
	return p.CollateralAssets[symbol]
}

// TotalPoolData holds pool-wide totals in token units
type TotalPoolData struct {
	TotalBaseSupply decimal.Decimal
	TotalBaseBorrow decimal.Decimal
	Utilization     decimal.Decimal
	TotalCollateral map[string]decimal.Decimal
}

// WalletData is the wallet's balance of one token and its allowance to the pool
type WalletData struct {
	Symbol    string
	Balance   decimal.NullDecimal
	Allowance decimal.NullDecimal
}

// Known wraps a value as present
func Known(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// OrZero returns the value or zero when absent
func OrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
