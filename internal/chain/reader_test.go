package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/comet-dash/internal/testutil"
)

var account = common.HexToAddress("0x9000000000000000000000000000000000000009")

func newTestReader(t *testing.T) (*Reader, *testutil.FakeBackend) {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	reader, err := NewReader(backend, testutil.Pool(), account, 0)
	require.NoError(t, err)
	return reader, backend
}

func TestReaderBalances(t *testing.T) {
	reader, backend := newTestReader(t)
	pool := testutil.Pool()
	weth := pool.AssetConfigs[0]

	backend.SetCall(pool.Proxy, reader.comet, "balanceOf", big.NewInt(250_000_000))
	backend.SetCall(pool.Proxy, reader.comet, "borrowBalanceOf", big.NewInt(0))
	backend.SetCall(pool.Proxy, reader.comet, "collateralBalanceOf", new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)))
	backend.SetCall(pool.BaseToken.Address, reader.erc20, "balanceOf", big.NewInt(42_000_000))
	backend.SetCall(pool.BaseToken.Address, reader.erc20, "allowance", big.NewInt(5_000_000))

	ctx := context.Background()

	supply, err := reader.BaseSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, "250", supply.String())

	borrow, err := reader.BaseBorrow(ctx)
	require.NoError(t, err)
	assert.True(t, borrow.IsZero())

	collateral, err := reader.CollateralSupply(ctx, weth)
	require.NoError(t, err)
	assert.Equal(t, "2", collateral.String())

	wallet, err := reader.TokenBalance(ctx, pool.BaseToken.Token)
	require.NoError(t, err)
	assert.Equal(t, "42", wallet.String())

	allowance, err := reader.Allowance(ctx, pool.BaseToken.Token)
	require.NoError(t, err)
	assert.Equal(t, "5", allowance.String())
}

func TestReaderRates(t *testing.T) {
	reader, backend := newTestReader(t)
	pool := testutil.Pool()

	utilization := new(big.Int).Mul(big.NewInt(8), big.NewInt(1e17))
	backend.SetCall(pool.Proxy, reader.comet, "getUtilization", utilization)
	backend.SetCall(pool.Proxy, reader.comet, "getSupplyRate", uint64(1_000_000_000))
	backend.SetCall(pool.Proxy, reader.comet, "getBorrowRate", uint64(2_000_000_000))

	ctx := context.Background()
	util, raw, err := reader.Utilization(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.8", util.String())

	supplyAPR, err := reader.SupplyAPR(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "3.1536", supplyAPR.String())

	borrowAPR, err := reader.BorrowAPR(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "6.3072", borrowAPR.String())
}

func TestReaderPrice(t *testing.T) {
	reader, backend := newTestReader(t)
	pool := testutil.Pool()
	weth := pool.AssetConfigs[0]

	backend.SetCall(weth.PriceFeed, reader.feed, "latestRoundData",
		big.NewInt(1), big.NewInt(3_000_12345678), big.NewInt(1), big.NewInt(1700000000), big.NewInt(1))

	price, err := reader.Price(context.Background(), weth.Token)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("3000.12345678")), price.String())
}

func TestReaderPriceReadsFeedDecimals(t *testing.T) {
	reader, backend := newTestReader(t)
	token := testutil.Pool().BaseToken.Token
	token.PriceFeedDecimals = 0

	backend.SetCall(token.PriceFeed, reader.feed, "decimals", uint8(6))
	backend.SetCall(token.PriceFeed, reader.feed, "latestRoundData",
		big.NewInt(1), big.NewInt(999_900), big.NewInt(1), big.NewInt(1700000000), big.NewInt(1))

	price, err := reader.Price(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "0.9999", price.String())
}

func TestReaderPriceRejectsBadAnswers(t *testing.T) {
	reader, backend := newTestReader(t)
	token := testutil.Pool().BaseToken.Token

	backend.SetCall(token.PriceFeed, reader.feed, "latestRoundData",
		big.NewInt(1), big.NewInt(-5), big.NewInt(1), big.NewInt(1700000000), big.NewInt(1))
	_, err := reader.Price(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive")

	backend.SetCall(token.PriceFeed, reader.feed, "latestRoundData",
		big.NewInt(1), big.NewInt(100), big.NewInt(1), big.NewInt(0), big.NewInt(1))
	_, err = reader.Price(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not complete")
}

func TestReaderCallError(t *testing.T) {
	reader, backend := newTestReader(t)
	pool := testutil.Pool()
	boom := errors.New("boom")
	backend.SetCallError(pool.Proxy, reader.comet, "borrowBalanceOf", boom)

	_, err := reader.BaseBorrow(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
