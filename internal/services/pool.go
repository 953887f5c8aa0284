package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/comet-dash/internal/action"
	"github.com/kelsos/comet-dash/internal/async"
	"github.com/kelsos/comet-dash/internal/chain"
	"github.com/kelsos/comet-dash/internal/config"
	"github.com/kelsos/comet-dash/internal/fetch"
	"github.com/kelsos/comet-dash/internal/logger"
	"github.com/kelsos/comet-dash/internal/models"
	"github.com/kelsos/comet-dash/internal/pools"
	"github.com/kelsos/comet-dash/internal/storage"
	"github.com/kelsos/comet-dash/internal/tx"
	"github.com/kelsos/comet-dash/internal/utils"
)

// PoolService wires the chain reader and writer, the fetchers, the poller
// and the submission flow for one pool and one wallet
type PoolService struct {
	config  *config.Config
	pool    models.PoolConfig
	closer  func()
	wallet  *chain.Wallet
	reader  *chain.Reader
	writer  *chain.Writer
	history *storage.History

	reloader *async.Reloader
	poller   *async.Poller

	base        *fetch.BaseAssetFetcher
	collaterals *fetch.CollateralFetcher
	prices      *fetch.PriceFeedFetcher
	totals      *fetch.TotalPoolFetcher

	walletsMu sync.Mutex
	wallets   map[string]*fetch.WalletFetcher
}

// NewPoolService resolves the configured pool, dials the RPC endpoint and
// opens the history
func NewPoolService(ctx context.Context, cfg *config.Config) (*PoolService, error) {
	registry, err := LoadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := registry.Lookup(cfg.ChainID, cfg.PoolName)
	if err != nil {
		return nil, err
	}

	client, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, err
	}

	dataDir, err := utils.ExpandPath(cfg.DataDir)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	history, err := storage.NewHistory(dataDir)
	if err != nil {
		client.Close()
		return nil, err
	}

	s, err := NewPoolServiceWithBackend(ctx, cfg, pool, client, history)
	if err != nil {
		client.Close()
		return nil, err
	}
	s.closer = client.Close
	return s, nil
}

// LoadRegistry returns the configured pools file or the built-in pools
func LoadRegistry(cfg *config.Config) (*pools.Registry, error) {
	if cfg.PoolsFile == "" {
		return pools.Default()
	}
	path, err := utils.ExpandPath(cfg.PoolsFile)
	if err != nil {
		return nil, err
	}
	return pools.LoadFile(path)
}

// NewPoolServiceWithBackend creates the service on an existing backend
func NewPoolServiceWithBackend(ctx context.Context, cfg *config.Config, pool models.PoolConfig, backend chain.Backend, history *storage.History) (*PoolService, error) {
	wallet, err := chain.NewWallet(cfg.PrivateKey, cfg.Account)
	if err != nil {
		return nil, err
	}

	reader, err := chain.NewReader(backend, pool, wallet.Address(), cfg.RPCRate)
	if err != nil {
		return nil, err
	}

	writer, err := chain.NewWriter(ctx, backend, reader, wallet, cfg.ChainID, cfg.ReceiptPollInterval)
	if err != nil {
		return nil, err
	}

	reloader := async.NewReloader()
	s := &PoolService{
		config:      cfg,
		pool:        pool,
		wallet:      wallet,
		reader:      reader,
		writer:      writer,
		history:     history,
		reloader:    reloader,
		poller:      async.NewPoller(cfg.PollInterval, reloader),
		base:        fetch.NewBaseAssetFetcher(reader),
		collaterals: fetch.NewCollateralFetcher(reader),
		prices:      fetch.NewPriceFeedFetcher(reader),
		totals:      fetch.NewTotalPoolFetcher(reader),
		wallets:     make(map[string]*fetch.WalletFetcher),
	}

	for _, f := range []fetch.Fetcher{s.base, s.collaterals, s.prices, s.totals} {
		s.poller.Register(async.Source{Name: f.Name(), Fetch: f.Fetch})
	}

	logger.Info("Watching %s on chain %d for %s (read-only: %t)", pool.Name, cfg.ChainID, wallet.Address().Hex(), !wallet.CanSign())
	return s, nil
}

// Pool returns the pool configuration
func (s *PoolService) Pool() models.PoolConfig {
	return s.pool
}

// Account returns the wallet address
func (s *PoolService) Account() common.Address {
	return s.wallet.Address()
}

// ReadOnly reports whether the service cannot sign transactions
func (s *PoolService) ReadOnly() bool {
	return !s.wallet.CanSign()
}

// History returns the submission history
func (s *PoolService) History() *storage.History {
	return s.history
}

// OnUpdate registers a callback run after every fetch
func (s *PoolService) OnUpdate(fn func(source string, err error)) {
	s.poller.OnUpdate(fn)
}

// Start begins background polling
func (s *PoolService) Start(ctx context.Context) {
	s.poller.Start(ctx)
}

// Refresh runs every fetcher once and waits for them
func (s *PoolService) Refresh(ctx context.Context) {
	s.poller.RunOnce(ctx)
}

// Reload fires the process-wide reload signal
func (s *PoolService) Reload() {
	s.reloader.Reload()
}

// Cleanup stops polling and closes the RPC connection
func (s *PoolService) Cleanup() {
	s.poller.Stop()
	if s.closer != nil {
		s.closer()
	}
}

// Dashboard assembles the latest snapshots
func (s *PoolService) Dashboard() Dashboard {
	d := Dashboard{
		Pool:     s.pool,
		Account:  s.wallet.Address(),
		ReadOnly: !s.wallet.CanSign(),
		Errors:   make(map[string]error),
	}
	d.Base, d.BaseLoaded = s.base.Snapshot()
	d.Collaterals, d.CollateralsLoaded = s.collaterals.Snapshot()
	d.Prices, d.PricesLoaded = s.prices.Snapshot()
	d.Totals, d.TotalsLoaded = s.totals.Snapshot()

	for _, f := range []fetch.Fetcher{s.base, s.collaterals, s.prices, s.totals} {
		if err := s.poller.Err(f.Name()); err != nil {
			d.Errors[f.Name()] = err
		}
	}

	d.derive()
	return d
}

func (s *PoolService) walletFetcher(token models.Token) *fetch.WalletFetcher {
	key := strings.ToUpper(token.Symbol)

	s.walletsMu.Lock()
	defer s.walletsMu.Unlock()
	f, ok := s.wallets[key]
	if !ok {
		f = fetch.NewWalletFetcher(s.reader, token)
		s.wallets[key] = f
	}
	return f
}

// LoadWallet reads the wallet balance and allowance of symbol
func (s *PoolService) LoadWallet(ctx context.Context, symbol string) (models.WalletData, error) {
	token, ok := s.pool.Asset(symbol)
	if !ok {
		return models.WalletData{}, fmt.Errorf("%s is not an asset of %s", symbol, s.pool.Name)
	}
	f := s.walletFetcher(token)
	if err := f.Fetch(ctx); err != nil {
		data, _ := f.Snapshot()
		return data, err
	}
	data, _ := f.Snapshot()
	return data, nil
}

// Hooks are the UI callbacks of one submission session
type Hooks struct {
	Close    func()
	Observer tx.Observer
}

// NewFlow creates a submission flow whose success fires this service's
// reload signal
func (s *PoolService) NewFlow(hooks Hooks) *tx.Flow {
	return tx.NewFlow(s.writer, tx.Options{
		SettleDelay: s.config.SettleDelay,
		CloseDelay:  s.config.CloseDelay,
		Reload:      s.reloader.Reload,
		Close:       hooks.Close,
		Observer:    hooks.Observer,
	})
}

// Submit runs req on flow and records the attempt in the history
func (s *PoolService) Submit(ctx context.Context, flow *tx.Flow, req tx.Request) (tx.Result, error) {
	logger.Info("Submitting %s %s %s", req.Kind, req.Amount, req.Token.Symbol)
	result, err := flow.Submit(ctx, req)

	rec := storage.Record{
		ChainID:   s.config.ChainID,
		Pool:      s.pool.Name,
		Account:   s.wallet.Address().Hex(),
		Kind:      req.Kind.String(),
		Operation: req.Kind.Operation(),
		Asset:     req.Token.Symbol,
		Amount:    req.Amount.String(),
		Outcome:   storage.OutcomeSuccess,
	}
	if result.Approved {
		rec.ApproveHash = result.ApproveHash.Hex()
	}
	if result.Hash != (common.Hash{}) {
		rec.TxHash = result.Hash.Hex()
	}
	if err != nil {
		rec.Outcome = storage.OutcomeFailed
		rec.Error = tx.FormatError(err)
	}

	if s.history != nil {
		if _, histErr := s.history.Append(rec); histErr != nil {
			logger.Warn("Failed to record submission: %v", histErr)
		}
	}
	return result, err
}

// Request builds a submission for symbol, choosing the kind from verb
func (s *PoolService) Request(verb, symbol string, amount string) (tx.Request, error) {
	token, ok := s.pool.Asset(symbol)
	if !ok {
		return tx.Request{}, fmt.Errorf("%s is not an asset of %s", symbol, s.pool.Name)
	}
	kind, err := action.ParseKind(verb, s.pool.IsBase(symbol))
	if err != nil {
		return tx.Request{}, err
	}

	entry := action.NewEntry()
	if !entry.Update(amount) || !entry.Valid(token.Decimals) {
		return tx.Request{}, fmt.Errorf("%w: %q for %s with %d decimals", tx.ErrInvalidAmount, amount, token.Symbol, token.Decimals)
	}
	value, _ := entry.Amount()
	return tx.Request{Kind: kind, Token: token, Amount: value}, nil
}
