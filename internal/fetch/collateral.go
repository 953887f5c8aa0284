package fetch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kelsos/comet-dash/internal/models"
)

// CollateralFetcher reads supplied and wallet balances of every collateral asset
type CollateralFetcher struct {
	store[models.CollateralAssetsData]
	reader Reader
}

func NewCollateralFetcher(reader Reader) *CollateralFetcher {
	return &CollateralFetcher{reader: reader}
}

func (f *CollateralFetcher) Name() string { return "collateral assets" }

func (f *CollateralFetcher) Fetch(ctx context.Context) error {
	assets := f.reader.Pool().AssetConfigs
	data := make(models.CollateralAssetsData, len(assets))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for _, asset := range assets {
		g.Go(func() error {
			supply, err := f.reader.CollateralSupply(ctx, asset)
			if err != nil {
				return fmt.Errorf("failed to read %s collateral: %w", asset.Symbol, err)
			}
			balance, err := f.reader.TokenBalance(ctx, asset.Token)
			if err != nil {
				return fmt.Errorf("failed to read %s wallet balance: %w", asset.Symbol, err)
			}

			mu.Lock()
			data[asset.Symbol] = models.CollateralAssetData{
				YourSupply:    models.Known(supply),
				WalletBalance: models.Known(balance),
			}
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
