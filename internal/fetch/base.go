package fetch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kelsos/comet-dash/internal/models"
)

// BaseAssetFetcher reads the account's base asset balances and the pool's
// current supply and borrow APR
type BaseAssetFetcher struct {
	store[models.BaseAssetData]
	reader Reader
}

func NewBaseAssetFetcher(reader Reader) *BaseAssetFetcher {
	return &BaseAssetFetcher{reader: reader}
}

func (f *BaseAssetFetcher) Name() string { return "base asset" }

// Fetch refreshes the snapshot. AvailableToBorrow is left absent; it is a
// position figure derived from prices and collateral.
func (f *BaseAssetFetcher) Fetch(ctx context.Context) error {
	var data models.BaseAssetData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := f.reader.BaseSupply(ctx)
		if err != nil {
			return fmt.Errorf("failed to read supply balance: %w", err)
		}
		data.YourSupply = models.Known(v)
		return nil
	})

	g.Go(func() error {
		v, err := f.reader.BaseBorrow(ctx)
		if err != nil {
			return fmt.Errorf("failed to read borrow balance: %w", err)
		}
		data.YourBorrow = models.Known(v)
		return nil
	})

	g.Go(func() error {
		_, utilization, err := f.reader.Utilization(ctx)
		if err != nil {
			return fmt.Errorf("failed to read utilization: %w", err)
		}
		supplyAPR, err := f.reader.SupplyAPR(ctx, utilization)
		if err != nil {
			return fmt.Errorf("failed to read supply rate: %w", err)
		}
		borrowAPR, err := f.reader.BorrowAPR(ctx, utilization)
		if err != nil {
			return fmt.Errorf("failed to read borrow rate: %w", err)
		}
		data.SupplyAPR = models.Known(supplyAPR)
		data.BorrowAPR = models.Known(borrowAPR)
		return nil
	})

	if err := g.Wait(); err != nil {
		f.fail(err)
		return err
	}
	f.set(data)
	return nil
}
