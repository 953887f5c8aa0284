package fetch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kelsos/comet-dash/internal/models"
)

// WalletFetcher reads the wallet balance of one token and its allowance to
// the pool. The modal creates one for the asset it is opened on.
type WalletFetcher struct {
	store[models.WalletData]
	reader Reader
	token  models.Token
}

func NewWalletFetcher(reader Reader, token models.Token) *WalletFetcher {
	return &WalletFetcher{reader: reader, token: token}
}

func (f *WalletFetcher) Name() string { return "wallet " + f.token.Symbol }

func (f *WalletFetcher) Fetch(ctx context.Context) error {
	data := models.WalletData{Symbol: f.token.Symbol}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := f.reader.TokenBalance(ctx, f.token)
		if err != nil {
			return fmt.Errorf("failed to read %s balance: %w", f.token.Symbol, err)
		}
		data.Balance = models.Known(v)
		return nil
	})
	g.Go(func() error {
		v, err := f.reader.Allowance(ctx, f.token)
		if err != nil {
			return fmt.Errorf("failed to read %s allowance: %w", f.token.Symbol, err)
		}
		data.Allowance = models.Known(v)
		return nil
	})

	if err := g.Wait(); err != nil {
		f.fail(err)
		return err
	}
	f.set(data)
	return nil
}
