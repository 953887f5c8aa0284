package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/kelsos/comet-dash/internal/logger"
	"github.com/kelsos/comet-dash/internal/models"
)

// Comet per-second rates and utilization are scaled by 1e18
const factorScale = 18

// SecondsPerYear converts Comet's per-second rates to yearly rates
const SecondsPerYear = 60 * 60 * 24 * 365

// Reader performs typed read-only calls against a pool and an account
type Reader struct {
	backend Backend
	pool    models.PoolConfig
	account common.Address
	limiter *rate.Limiter

	comet *abi.ABI
	erc20 *abi.ABI
	feed  *abi.ABI
}

// NewReader creates a reader for pool as seen by account. rps bounds the
// number of eth_call requests per second; rps <= 0 disables the limit.
func NewReader(backend Backend, pool models.PoolConfig, account common.Address, rps float64) (*Reader, error) {
	comet, err := CometABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse comet ABI: %w", err)
	}
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}
	feed, err := AggregatorV3ABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregator ABI: %w", err)
	}

	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}

	return &Reader{
		backend: backend,
		pool:    pool,
		account: account,
		limiter: rate.NewLimiter(limit, burst),
		comet:   comet,
		erc20:   erc20,
		feed:    feed,
	}, nil
}

// Pool returns the pool configuration the reader was created for
func (r *Reader) Pool() models.PoolConfig {
	return r.pool
}

// Account returns the account whose position is read
func (r *Reader) Account() common.Address {
	return r.account
}

func (r *Reader) call(ctx context.Context, to common.Address, contract *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, to.Hex(), err)
	}

	values, err := contract.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}

	logger.Debug("eth_call %s on %s returned %d values", method, to.Hex(), len(values))
	return values, nil
}

func bigAt(values []interface{}, i int, method string) (*big.Int, error) {
	if i >= len(values) {
		return nil, fmt.Errorf("%s returned %d values, wanted index %d", method, len(values), i)
	}
	v, ok := values[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s value %d has type %T", method, i, values[i])
	}
	return v, nil
}

func (r *Reader) callBig(ctx context.Context, to common.Address, contract *abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	values, err := r.call(ctx, to, contract, method, args...)
	if err != nil {
		return nil, err
	}
	return bigAt(values, 0, method)
}

// BaseSupply returns the account's base asset supply balance in token units
func (r *Reader) BaseSupply(ctx context.Context) (decimal.Decimal, error) {
	v, err := r.callBig(ctx, r.pool.Proxy, r.comet, "balanceOf", r.account)
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(v, r.pool.BaseToken.Decimals), nil
}

// BaseBorrow returns the account's base asset borrow balance in token units
func (r *Reader) BaseBorrow(ctx context.Context) (decimal.Decimal, error) {
	v, err := r.callBig(ctx, r.pool.Proxy, r.comet, "borrowBalanceOf", r.account)
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(v, r.pool.BaseToken.Decimals), nil
}

// CollateralSupply returns the account's supplied collateral of asset
func (r *Reader) CollateralSupply(ctx context.Context, asset models.CollateralAsset) (decimal.Decimal, error) {
	v, err := r.callBig(ctx, r.pool.Proxy, r.comet, "collateralBalanceOf", r.account, asset.Address)
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(v, asset.Decimals), nil
}

// TokenBalance returns the wallet balance of token
func (r *Reader) TokenBalance(ctx context.Context, token models.Token) (decimal.Decimal, error) {
	v, err := r.callBig(ctx, token.Address, r.erc20, "balanceOf", r.account)
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(v, token.Decimals), nil
}

// Allowance returns how much of token the pool may transfer from the account
func (r *Reader) Allowance(ctx context.Context, token models.Token) (decimal.Decimal, error) {
	v, err := r.callBig(ctx, token.Address, r.erc20, "allowance", r.account, r.pool.Proxy)
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(v, token.Decimals), nil
}

// Utilization returns pool utilization as a fraction in [0, 1+]
func (r *Reader) Utilization(ctx context.Context) (decimal.Decimal, *big.Int, error) {
	v, err := r.callBig(ctx, r.pool.Proxy, r.comet, "getUtilization")
	if err != nil {
		return decimal.Zero, nil, err
	}
	return FromUnits(v, factorScale), v, nil
}

// SupplyAPR returns the supply APR in percent at the given raw utilization
func (r *Reader) SupplyAPR(ctx context.Context, utilization *big.Int) (decimal.Decimal, error) {
	return r.apr(ctx, "getSupplyRate", utilization)
}

// BorrowAPR returns the borrow APR in percent at the given raw utilization
func (r *Reader) BorrowAPR(ctx context.Context, utilization *big.Int) (decimal.Decimal, error) {
	return r.apr(ctx, "getBorrowRate", utilization)
}

func (r *Reader) apr(ctx context.Context, method string, utilization *big.Int) (decimal.Decimal, error) {
	values, err := r.call(ctx, r.pool.Proxy, r.comet, method, utilization)
	if err != nil {
		return decimal.Zero, err
	}
	if len(values) == 0 {
		return decimal.Zero, fmt.Errorf("%s returned no values", method)
	}
	perSecond, ok := values[0].(uint64)
	if !ok {
		return decimal.Zero, fmt.Errorf("%s value has type %T", method, values[0])
	}
	return AnnualPercentage(perSecond), nil
}

// AnnualPercentage converts a 1e18-scaled per-second rate to a yearly percentage
func AnnualPercentage(perSecond uint64) decimal.Decimal {
	return decimal.NewFromUint64(perSecond).
		Mul(decimal.NewFromInt(SecondsPerYear)).
		Shift(-factorScale).
		Mul(decimal.NewFromInt(100))
}

// TotalSupply returns the pool's total base supply in token units
func (r *Reader) TotalSupply(ctx context.Context) (decimal.Decimal, error) {
	v, err := r.callBig(ctx, r.pool.Proxy, r.comet, "totalSupply")
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(v, r.pool.BaseToken.Decimals), nil
}

// TotalBorrow returns the pool's total base borrow in token units
func (r *Reader) TotalBorrow(ctx context.Context) (decimal.Decimal, error) {
	v, err := r.callBig(ctx, r.pool.Proxy, r.comet, "totalBorrow")
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(v, r.pool.BaseToken.Decimals), nil
}

// TotalCollateral returns the pool's total supplied amount of asset
func (r *Reader) TotalCollateral(ctx context.Context, asset models.CollateralAsset) (decimal.Decimal, error) {
	v, err := r.callBig(ctx, r.pool.Proxy, r.comet, "totalsCollateral", asset.Address)
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(v, asset.Decimals), nil
}

// Price returns the USD price of token from its AggregatorV3 feed.
// Feed decimals come from configuration and are read on chain when unset.
func (r *Reader) Price(ctx context.Context, token models.Token) (decimal.Decimal, error) {
	feedDecimals := token.PriceFeedDecimals
	if feedDecimals == 0 {
		values, err := r.call(ctx, token.PriceFeed, r.feed, "decimals")
		if err != nil {
			return decimal.Zero, err
		}
		d, ok := values[0].(uint8)
		if !ok {
			return decimal.Zero, fmt.Errorf("decimals value has type %T", values[0])
		}
		feedDecimals = int32(d)
	}

	values, err := r.call(ctx, token.PriceFeed, r.feed, "latestRoundData")
	if err != nil {
		return decimal.Zero, err
	}
	answer, err := bigAt(values, 1, "latestRoundData")
	if err != nil {
		return decimal.Zero, err
	}
	updatedAt, err := bigAt(values, 3, "latestRoundData")
	if err != nil {
		return decimal.Zero, err
	}

	if answer.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("feed %s for %s returned non-positive answer %s", token.PriceFeed.Hex(), token.Symbol, answer)
	}
	if updatedAt.Sign() == 0 {
		return decimal.Zero, fmt.Errorf("feed %s for %s round not complete", token.PriceFeed.Hex(), token.Symbol)
	}

	return FromUnits(answer, feedDecimals), nil
}
