// Package position derives the liquidation risk of an account from the
// base, collateral and price snapshots.
package position

import (
	"github.com/shopspring/decimal"

	"github.com/kelsos/comet-dash/internal/models"
)

var hundred = decimal.NewFromInt(100)

const (
	dangerThreshold  = 90
	warningThreshold = 80
)

// Summarize computes the position summary. Missing balances and prices
// count as zero, so the result is safe to render before every source has
// loaded.
func Summarize(pool models.PoolConfig, base models.BaseAssetData, collaterals models.CollateralAssetsData, prices models.PriceFeedData) models.PositionSummary {
	collateralUSD := decimal.Zero
	borrowCapacityUSD := decimal.Zero
	liquidationPointUSD := decimal.Zero

	for _, asset := range pool.AssetConfigs {
		supply := models.OrZero(collaterals[asset.Symbol].YourSupply)
		if supply.IsZero() {
			continue
		}
		valueUSD := supply.Mul(prices.CollateralPrice(asset.Symbol))

		collateralUSD = collateralUSD.Add(valueUSD)
		borrowCapacityUSD = borrowCapacityUSD.Add(applyFactor(valueUSD, asset.BorrowCollateralFactor))
		liquidationPointUSD = liquidationPointUSD.Add(applyFactor(valueUSD, asset.LiquidateCollateralFactor))
	}

	basePrice := prices.BaseAsset
	yourBorrowUSD := models.OrZero(base.YourBorrow).Mul(basePrice)
	availableToBorrowUSD := borrowCapacityUSD.Sub(yourBorrowUSD)

	availableToBorrow := decimal.Zero
	if basePrice.IsPositive() {
		availableToBorrow = availableToBorrowUSD.Div(basePrice)
	}

	return models.PositionSummary{
		AvailableToBorrow:     availableToBorrow,
		AvailableToBorrowUSD:  availableToBorrowUSD,
		LiquidationPointUSD:   liquidationPointUSD,
		LiquidationPercentage: LiquidationPercentage(yourBorrowUSD, liquidationPointUSD),
		YourBorrowUSD:         yourBorrowUSD,
		CollateralUSD:         collateralUSD,
	}
}

// factor is a percentage, e.g. 82.5
func applyFactor(v decimal.Decimal, factor float64) decimal.Decimal {
	return v.Mul(decimal.NewFromFloat(factor)).Div(hundred)
}

// LiquidationPercentage is the share of the liquidation point already
// borrowed, in percent. It is 0 when there is no liquidation point.
func LiquidationPercentage(borrowUSD, liquidationPointUSD decimal.Decimal) float64 {
	if !liquidationPointUSD.IsPositive() || borrowUSD.IsZero() {
		return 0
	}
	pct, _ := borrowUSD.Div(liquidationPointUSD).Mul(hundred).Float64()
	return pct
}

// Tier classifies a liquidation percentage for colouring
func Tier(pct float64) models.RiskTier {
	switch {
	case pct > dangerThreshold:
		return models.RiskDanger
	case pct > warningThreshold:
		return models.RiskWarning
	default:
		return models.RiskSafe
	}
}

// Metrics values the pool totals in USD
func Metrics(pool models.PoolConfig, totals models.TotalPoolData, prices models.PriceFeedData) models.PoolMetrics {
	totalCollateralUSD := decimal.Zero
	for _, asset := range pool.AssetConfigs {
		amount, ok := totals.TotalCollateral[asset.Symbol]
		if !ok {
			continue
		}
		totalCollateralUSD = totalCollateralUSD.Add(amount.Mul(prices.CollateralPrice(asset.Symbol)))
	}

	return models.PoolMetrics{
		TotalSupplyUSD:     totals.TotalBaseSupply.Mul(prices.BaseAsset),
		TotalBorrowUSD:     totals.TotalBaseBorrow.Mul(prices.BaseAsset),
		TotalCollateralUSD: totalCollateralUSD,
		BasePrice:          prices.BaseAsset,
	}
}

// WithAvailableToBorrow fills the base snapshot's AvailableToBorrow from
// the summary once prices and collateral are known
func WithAvailableToBorrow(base models.BaseAssetData, summary models.PositionSummary) models.BaseAssetData {
	base.AvailableToBorrow = models.Known(summary.AvailableToBorrow)
	return base
}
