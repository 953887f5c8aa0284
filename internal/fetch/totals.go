package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kelsos/comet-dash/internal/models"
)

// TotalPoolFetcher reads pool-wide supply, borrow, utilization and
// collateral totals
type TotalPoolFetcher struct {
	store[models.TotalPoolData]
	reader Reader
}

func NewTotalPoolFetcher(reader Reader) *TotalPoolFetcher {
	return &TotalPoolFetcher{reader: reader}
}

func (f *TotalPoolFetcher) Name() string { return "pool totals" }

func (f *TotalPoolFetcher) Fetch(ctx context.Context) error {
	pool := f.reader.Pool()
	data := models.TotalPoolData{TotalCollateral: make(map[string]decimal.Decimal, len(pool.AssetConfigs))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	g.Go(func() error {
		v, err := f.reader.TotalSupply(ctx)
		if err != nil {
			return fmt.Errorf("failed to read total supply: %w", err)
		}
		data.TotalBaseSupply = v
		return nil
	})
	g.Go(func() error {
		v, err := f.reader.TotalBorrow(ctx)
		if err != nil {
			return fmt.Errorf("failed to read total borrow: %w", err)
		}
		data.TotalBaseBorrow = v
		return nil
	})
	g.Go(func() error {
		v, _, err := f.reader.Utilization(ctx)
		if err != nil {
			return fmt.Errorf("failed to read utilization: %w", err)
		}
		data.Utilization = v
		return nil
	})

	for _, asset := range pool.AssetConfigs {
		g.Go(func() error {
			v, err := f.reader.TotalCollateral(ctx, asset)
			if err != nil {
				return fmt.Errorf("failed to read %s total collateral: %w", asset.Symbol, err)
			}
			mu.Lock()
			data.TotalCollateral[asset.Symbol] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		f.fail(err)
		return err
	}
	f.set(data)
	return nil
}
