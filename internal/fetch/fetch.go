// Package fetch turns chain reads into the typed snapshots the dashboard
// renders. Every fetcher is an independent data source: it is re-run by the
// poller and keeps its own snapshot and error.
package fetch

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/kelsos/comet-dash/internal/models"
)

// Reader is the subset of chain.Reader the fetchers use
type Reader interface {
	Pool() models.PoolConfig
	BaseSupply(ctx context.Context) (decimal.Decimal, error)
	BaseBorrow(ctx context.Context) (decimal.Decimal, error)
	CollateralSupply(ctx context.Context, asset models.CollateralAsset) (decimal.Decimal, error)
	TokenBalance(ctx context.Context, token models.Token) (decimal.Decimal, error)
	Allowance(ctx context.Context, token models.Token) (decimal.Decimal, error)
	Utilization(ctx context.Context) (decimal.Decimal, *big.Int, error)
	SupplyAPR(ctx context.Context, utilization *big.Int) (decimal.Decimal, error)
	BorrowAPR(ctx context.Context, utilization *big.Int) (decimal.Decimal, error)
	TotalSupply(ctx context.Context) (decimal.Decimal, error)
	TotalBorrow(ctx context.Context) (decimal.Decimal, error)
	TotalCollateral(ctx context.Context, asset models.CollateralAsset) (decimal.Decimal, error)
	Price(ctx context.Context, token models.Token) (decimal.Decimal, error)
}

// maxConcurrentReads bounds per-fetcher fan-out for pools with many collaterals
const maxConcurrentReads = 8

// Fetcher is one pollable data source
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) error
}

var (
	_ Fetcher = (*BaseAssetFetcher)(nil)
	_ Fetcher = (*CollateralFetcher)(nil)
	_ Fetcher = (*PriceFeedFetcher)(nil)
	_ Fetcher = (*TotalPoolFetcher)(nil)
	_ Fetcher = (*WalletFetcher)(nil)
)
