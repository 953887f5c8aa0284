package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kelsos/comet-dash/internal/models"
)

// PriceFeedFetcher reads USD prices for the base asset and every collateral
type PriceFeedFetcher struct {
	store[models.PriceFeedData]
	reader Reader
}

func NewPriceFeedFetcher(reader Reader) *PriceFeedFetcher {
	return &PriceFeedFetcher{reader: reader}
}

func (f *PriceFeedFetcher) Name() string { return "price feeds" }

func (f *PriceFeedFetcher) Fetch(ctx context.Context) error {
	pool := f.reader.Pool()
	data := models.PriceFeedData{CollateralAssets: make(map[string]decimal.Decimal, len(pool.AssetConfigs))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	g.Go(func() error {
		price, err := f.reader.Price(ctx, pool.BaseToken.Token)
		if err != nil {
			return fmt.Errorf("failed to read %s price: %w", pool.BaseToken.Symbol, err)
		}
		data.BaseAsset = price
		return nil
	})

	for _, asset := range pool.AssetConfigs {
		g.Go(func() error {
			price, err := f.reader.Price(ctx, asset.Token)
			if err != nil {
				return fmt.Errorf("failed to read %s price: %w", asset.Symbol, err)
			}
			mu.Lock()
			data.CollateralAssets[asset.Symbol] = price
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
