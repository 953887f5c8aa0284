package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/comet-dash/internal/chain"
	"github.com/kelsos/comet-dash/internal/testutil"
)

var account = common.HexToAddress("0x9000000000000000000000000000000000000009")

func loadABIs(t *testing.T) testutil.ABIs {
	t.Helper()
	comet, err := chain.CometABI()
	require.NoError(t, err)
	erc20, err := chain.ERC20ABI()
	require.NoError(t, err)
	feed, err := chain.AggregatorV3ABI()
	require.NoError(t, err)
	return testutil.ABIs{Comet: comet, ERC20: erc20, Feed: feed}
}

func seed(t *testing.T) (*testutil.FakeBackend, *chain.Reader, testutil.ABIs) {
	t.Helper()
	a := loadABIs(t)
	backend := testutil.NewFakeBackend(t)
	testutil.SeedPosition(backend, a, account)

	reader, err := chain.NewReader(backend, testutil.Pool(), account, 0)
	require.NoError(t, err)
	return backend, reader, a
}

func TestBaseAssetFetcher(t *testing.T) {
	_, reader, _ := seed(t)
	f := NewBaseAssetFetcher(reader)

	_, loaded := f.Snapshot()
	assert.False(t, loaded)

	require.NoError(t, f.Fetch(context.Background()))
	data, loaded := f.Snapshot()
	require.True(t, loaded)

	assert.Equal(t, "0", data.YourSupply.Decimal.String())
	assert.Equal(t, "1000", data.YourBorrow.Decimal.String())
	assert.Equal(t, "3.1536", data.SupplyAPR.Decimal.String())
	assert.Equal(t, "6.3072", data.BorrowAPR.Decimal.String())
	assert.False(t, data.AvailableToBorrow.Valid)
	assert.NoError(t, f.Err())
}

func TestBaseAssetFetcherKeepsSnapshotOnError(t *testing.T) {
	backend, reader, a := seed(t)
	f := NewBaseAssetFetcher(reader)
	require.NoError(t, f.Fetch(context.Background()))

	boom := errors.New("node unavailable")
	backend.SetCallError(testutil.ProxyAddress, a.Comet, "borrowBalanceOf", boom)

	err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, f.Err(), boom)

	data, loaded := f.Snapshot()
	assert.True(t, loaded)
	assert.Equal(t, "1000", data.YourBorrow.Decimal.String())
}

func TestCollateralFetcher(t *testing.T) {
	_, reader, _ := seed(t)
	f := NewCollateralFetcher(reader)
	require.NoError(t, f.Fetch(context.Background()))

	data, loaded := f.Snapshot()
	require.True(t, loaded)
	require.Len(t, data, 2)

	assert.Equal(t, "2", data["WETH"].YourSupply.Decimal.String())
	assert.Equal(t, "1", data["WETH"].WalletBalance.Decimal.String())
	assert.Equal(t, "0.5", data["WBTC"].YourSupply.Decimal.String())
	assert.Equal(t, "3", data["WBTC"].WalletBalance.Decimal.String())
}

func TestPriceFeedFetcher(t *testing.T) {
	_, reader, _ := seed(t)
	f := NewPriceFeedFetcher(reader)
	require.NoError(t, f.Fetch(context.Background()))

	data, loaded := f.Snapshot()
	require.True(t, loaded)
	assert.Equal(t, "1", data.BaseAsset.String())
	assert.Equal(t, "2000", data.CollateralPrice("WETH").String())
	assert.Equal(t, "60000", data.CollateralPrice("WBTC").String())
}

func TestPriceFeedFetcherRejectsNegativeAnswer(t *testing.T) {
	backend, reader, a := seed(t)
	backend.SetCall(testutil.WBTCFeedAddress, a.Feed, "latestRoundData", testutil.RoundData(-1)...)

	f := NewPriceFeedFetcher(reader)
	require.Error(t, f.Fetch(context.Background()))
	_, loaded := f.Snapshot()
	assert.False(t, loaded)
}

func TestTotalPoolFetcher(t *testing.T) {
	_, reader, _ := seed(t)
	f := NewTotalPoolFetcher(reader)
	require.NoError(t, f.Fetch(context.Background()))

	data, loaded := f.Snapshot()
	require.True(t, loaded)
	assert.Equal(t, "5000000", data.TotalBaseSupply.String())
	assert.Equal(t, "4500000", data.TotalBaseBorrow.String())
	assert.Equal(t, "0.9", data.Utilization.String())
	assert.Equal(t, "300", data.TotalCollateral["WETH"].String())
	assert.Equal(t, "40", data.TotalCollateral["WBTC"].String())
}

func TestWalletFetcher(t *testing.T) {
	_, reader, _ := seed(t)
	f := NewWalletFetcher(reader, testutil.Pool().BaseToken.Token)
	assert.Equal(t, "wallet USDC", f.Name())

	require.NoError(t, f.Fetch(context.Background()))
	data, loaded := f.Snapshot()
	require.True(t, loaded)
	assert.Equal(t, "USDC", data.Symbol)
	assert.Equal(t, "750", data.Balance.Decimal.String())
	assert.True(t, data.Allowance.Valid)
	assert.True(t, data.Allowance.Decimal.IsZero())
}
