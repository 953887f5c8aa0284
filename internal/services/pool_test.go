package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/comet-dash/internal/action"
	"github.com/kelsos/comet-dash/internal/chain"
	"github.com/kelsos/comet-dash/internal/config"
	"github.com/kelsos/comet-dash/internal/models"
	"github.com/kelsos/comet-dash/internal/storage"
	"github.com/kelsos/comet-dash/internal/testutil"
	"github.com/kelsos/comet-dash/internal/tx"
)

func newTestService(t *testing.T) (*PoolService, *testutil.FakeBackend) {
	t.Helper()

	_, account := testutil.TestKey(t)
	backend := testutil.NewFakeBackend(t)

	comet, err := chain.CometABI()
	require.NoError(t, err)
	erc20, err := chain.ERC20ABI()
	require.NoError(t, err)
	feed, err := chain.AggregatorV3ABI()
	require.NoError(t, err)
	testutil.SeedPosition(backend, testutil.ABIs{Comet: comet, ERC20: erc20, Feed: feed}, account)

	cfg := config.NewConfig()
	cfg.PrivateKey = testutil.TestKeyHex
	cfg.SettleDelay = 0
	cfg.CloseDelay = 0
	cfg.ReceiptPollInterval = time.Millisecond

	history, err := storage.NewHistory(t.TempDir())
	require.NoError(t, err)

	s, err := NewPoolServiceWithBackend(context.Background(), cfg, testutil.Pool(), backend, history)
	require.NoError(t, err)
	t.Cleanup(s.Cleanup)
	return s, backend
}

func TestDashboardBeforeAndAfterRefresh(t *testing.T) {
	s, _ := newTestService(t)

	d := s.Dashboard()
	assert.False(t, d.BaseLoaded)
	assert.False(t, d.SummaryReady)
	assert.False(t, d.ReadOnly)
	assert.Equal(t, s.Account(), d.Account)

	s.Refresh(context.Background())
	d = s.Dashboard()
	require.True(t, d.SummaryReady)
	require.True(t, d.MetricsReady)
	assert.Empty(t, d.Errors)

	// 2 WETH at 2000 and 0.5 WBTC at 60000
	assert.Equal(t, "34000", d.Summary.CollateralUSD.String())
	assert.Equal(t, "1000", d.Summary.YourBorrowUSD.String())
	// 4000*0.8 + 30000*0.7 - 1000
	assert.Equal(t, "23200", d.Summary.AvailableToBorrow.String())
	assert.True(t, d.Base.AvailableToBorrow.Valid)
	assert.Equal(t, models.RiskSafe, d.Tier())
	assert.Equal(t, "5000000", d.Metrics.TotalSupplyUSD.String())
}

func TestDashboardRecordsFetchErrors(t *testing.T) {
	s, backend := newTestService(t)
	feed, err := chain.AggregatorV3ABI()
	require.NoError(t, err)
	backend.SetCall(testutil.WETHFeedAddress, feed, "latestRoundData", testutil.RoundData(0)...)

	s.Refresh(context.Background())
	d := s.Dashboard()

	assert.False(t, d.PricesLoaded)
	assert.False(t, d.SummaryReady)
	assert.Contains(t, d.Errors, "price feeds")
	assert.True(t, d.BaseLoaded)
}

func TestDashboardBalances(t *testing.T) {
	s, _ := newTestService(t)
	s.Refresh(context.Background())
	d := s.Dashboard()

	wallet, err := s.LoadWallet(context.Background(), "weth")
	require.NoError(t, err)
	assert.Equal(t, "WETH", wallet.Symbol)

	b := d.Balances("WETH", wallet)
	assert.Equal(t, "1", action.MaxValue(action.Supply, b).Decimal.String())
	assert.Equal(t, "2", action.MaxValue(action.Withdraw, b).Decimal.String())
	assert.Equal(t, "2000", b.CollateralPrice.String())

	usdc, err := s.LoadWallet(context.Background(), "USDC")
	require.NoError(t, err)
	b = d.Balances("USDC", usdc)
	// only borrowing, so base supply repays up to the borrow
	assert.Equal(t, "Repay", action.Label(action.BaseSupply, b))
	assert.Equal(t, "1000", action.MaxValue(action.BaseSupply, b).Decimal.String())
	assert.Equal(t, "23200", action.MaxValue(action.BaseBorrow, b).Decimal.String())

	_, err = s.LoadWallet(context.Background(), "DAI")
	assert.Error(t, err)
}

func TestRequest(t *testing.T) {
	s, _ := newTestService(t)

	req, err := s.Request("borrow", "usdc", "12.5")
	require.NoError(t, err)
	assert.Equal(t, action.BaseBorrow, req.Kind)
	assert.Equal(t, "USDC", req.Token.Symbol)
	assert.Equal(t, "12.5", req.Amount.String())

	_, err = s.Request("borrow", "WETH", "1")
	assert.Error(t, err)

	_, err = s.Request("supply", "USDC", "1.0000001")
	assert.ErrorIs(t, err, tx.ErrInvalidAmount)

	for _, amount := range []string{"-1", " -5", "1e-2000000000"} {
		_, err = s.Request("supply", "USDC", amount)
		assert.ErrorIs(t, err, tx.ErrInvalidAmount, amount)
	}
}

func TestSubmitRecordsHistoryAndReloads(t *testing.T) {
	s, backend := newTestService(t)
	s.Refresh(context.Background())

	var states []tx.State
	closed := false
	flow := s.NewFlow(Hooks{
		Close:    func() { closed = true },
		Observer: func(state tx.State, _ string) { states = append(states, state) },
	})

	req, err := s.Request("supply", "WETH", "0.5")
	require.NoError(t, err)

	reloads := s.reloader.Subscribe()
	result, err := s.Submit(context.Background(), flow, req)
	require.NoError(t, err)

	assert.True(t, closed)
	assert.True(t, result.Approved)
	assert.Equal(t, []tx.State{tx.ApproveExecuting, tx.ApproveInProgress, tx.WaitingForTransactions, tx.NoAction}, states)
	assert.Equal(t, 2, backend.SentCount())
	assert.Len(t, reloads, 1)

	records, err := s.History().List(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, storage.OutcomeSuccess, records[0].Outcome)
	assert.Equal(t, "supply", records[0].Operation)
	assert.Equal(t, "WETH", records[0].Asset)
	assert.Equal(t, "0.5", records[0].Amount)
	assert.Equal(t, result.Hash.Hex(), records[0].TxHash)
}

func TestSubmitRecordsFailure(t *testing.T) {
	s, backend := newTestService(t)
	backend.MinedStatus = 0

	flow := s.NewFlow(Hooks{})
	req, err := s.Request("withdraw", "WETH", "1")
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), flow, req)
	require.ErrorIs(t, err, chain.ErrTxFailed)

	records, err := s.History().List(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, storage.OutcomeFailed, records[0].Outcome)
	assert.Equal(t, "The transaction was mined but reverted.", records[0].Error)
	assert.Empty(t, records[0].ApproveHash)
}
