package models

import "github.com/shopspring/decimal"

// PositionSummary is derived from the base, collateral and price snapshots.
// It is never stored.
type PositionSummary struct {
	AvailableToBorrow     decimal.Decimal
	AvailableToBorrowUSD  decimal.Decimal
	LiquidationPointUSD   decimal.Decimal
	LiquidationPercentage float64
	YourBorrowUSD         decimal.Decimal
	CollateralUSD         decimal.Decimal
}

// PoolMetrics are the pool-wide USD figures shown in the stats bar
type PoolMetrics struct {
	TotalSupplyUSD     decimal.Decimal
	TotalBorrowUSD     decimal.Decimal
	TotalCollateralUSD decimal.Decimal
	BasePrice          decimal.Decimal
}

// RiskTier classifies a liquidation percentage
type RiskTier string

const (
	RiskSafe    RiskTier = "safe"
	RiskWarning RiskTier = "warning"
	RiskDanger  RiskTier = "danger"
)
