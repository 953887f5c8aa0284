package services

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/comet-dash/internal/action"
	"github.com/kelsos/comet-dash/internal/models"
	"github.com/kelsos/comet-dash/internal/position"
)

// Dashboard is a point-in-time view of every data source. Sources load
// and fail independently; a source that has not loaded yet is shown as
// loading even when it has failed.
type Dashboard struct {
	Pool     models.PoolConfig
	Account  common.Address
	ReadOnly bool

	Base              models.BaseAssetData
	BaseLoaded        bool
	Collaterals       models.CollateralAssetsData
	CollateralsLoaded bool
	Prices            models.PriceFeedData
	PricesLoaded      bool
	Totals            models.TotalPoolData
	TotalsLoaded      bool

	Summary      models.PositionSummary
	SummaryReady bool
	Metrics      models.PoolMetrics
	MetricsReady bool

	// Errors holds the last error of each failing source
	Errors map[string]error
}

func (d *Dashboard) derive() {
	if d.BaseLoaded && d.CollateralsLoaded && d.PricesLoaded {
		d.Summary = position.Summarize(d.Pool, d.Base, d.Collaterals, d.Prices)
		d.Base = position.WithAvailableToBorrow(d.Base, d.Summary)
		d.SummaryReady = true
	}
	if d.TotalsLoaded && d.PricesLoaded {
		d.Metrics = position.Metrics(d.Pool, d.Totals, d.Prices)
		d.MetricsReady = true
	}
}

// Tier is the risk tier of the current position
func (d Dashboard) Tier() models.RiskTier {
	return position.Tier(d.Summary.LiquidationPercentage)
}

// Balances collects what the modal needs for symbol. wallet is the
// modal's own wallet snapshot; its Balance is absent until loaded.
func (d Dashboard) Balances(symbol string, wallet models.WalletData) action.Balances {
	b := action.Balances{
		WalletBalance:        wallet.Balance,
		BaseSupply:           models.OrZero(d.Base.YourSupply),
		BaseBorrow:           models.OrZero(d.Base.YourBorrow),
		AvailableToBorrow:    d.Summary.AvailableToBorrow,
		SupplyAPR:            models.OrZero(d.Base.SupplyAPR),
		BorrowAPR:            models.OrZero(d.Base.BorrowAPR),
		AvailableToBorrowUSD: d.Summary.AvailableToBorrowUSD,
		BorrowUSD:            d.Summary.YourBorrowUSD,
		CollateralPrice:      d.Prices.CollateralPrice(symbol),
	}
	if asset, ok := d.Pool.Collateral(symbol); ok && d.CollateralsLoaded {
		b.CollateralSupply = d.Collaterals[asset.Symbol].YourSupply
	}
	return b
}
