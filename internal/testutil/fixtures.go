package testutil

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/kelsos/comet-dash/internal/models"
)

// Well-known addresses used by the fixture pool
var (
	ProxyAddress    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	BaseAddress     = common.HexToAddress("0x2000000000000000000000000000000000000002")
	BaseFeedAddress = common.HexToAddress("0x2000000000000000000000000000000000000f02")
	WETHAddress     = common.HexToAddress("0x3000000000000000000000000000000000000003")
	WETHFeedAddress = common.HexToAddress("0x3000000000000000000000000000000000000f03")
	WBTCAddress     = common.HexToAddress("0x4000000000000000000000000000000000000004")
	WBTCFeedAddress = common.HexToAddress("0x4000000000000000000000000000000000000f04")
)

// TestKeyHex is a throwaway private key for signing in tests
const TestKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

// TestKey returns the parsed TestKeyHex and its address
func TestKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.HexToECDSA(TestKeyHex)
	if err != nil {
		t.Fatalf("parsing test key: %v", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

// Pool returns a pool with a 6-decimal base asset and two collaterals
func Pool() models.PoolConfig {
	return models.PoolConfig{
		Name:    "cUSDCv3",
		ChainID: 1,
		Proxy:   ProxyAddress,
		BaseToken: models.BaseAsset{Token: models.Token{
			Name:              "USD Coin",
			Symbol:            "USDC",
			Address:           BaseAddress,
			Decimals:          6,
			PriceFeed:         BaseFeedAddress,
			PriceFeedDecimals: 8,
		}},
		AssetConfigs: []models.CollateralAsset{
			{
				Token: models.Token{
					Name:              "Wrapped Ether",
					Symbol:            "WETH",
					Address:           WETHAddress,
					Decimals:          18,
					PriceFeed:         WETHFeedAddress,
					PriceFeedDecimals: 8,
				},
				BorrowCollateralFactor:    80,
				LiquidateCollateralFactor: 90,
				LiquidationFactor:         95,
			},
			{
				Token: models.Token{
					Name:              "Wrapped BTC",
					Symbol:            "WBTC",
					Address:           WBTCAddress,
					Decimals:          8,
					PriceFeed:         WBTCFeedAddress,
					PriceFeedDecimals: 8,
				},
				BorrowCollateralFactor:    70,
				LiquidateCollateralFactor: 75,
				LiquidationFactor:         95,
			},
		},
	}
}

// ABIs are the contract ABIs SeedPosition packs responses with
type ABIs struct {
	Comet, ERC20, Feed *abi.ABI
}

// Units scales v by 10^decimals
func Units(v int64, decimals int) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

// RoundData is a complete latestRoundData response with the given answer
func RoundData(answer int64) []interface{} {
	return []interface{}{big.NewInt(1), big.NewInt(answer), big.NewInt(1), big.NewInt(1700000000), big.NewInt(1)}
}

// SeedPosition loads the fixture pool's state into backend: account has
// supplied 2 WETH and 0.5 WBTC, borrows 1000 USDC and holds 750 USDC,
// 1 WETH and 3 WBTC. Prices are USDC 1, WETH 2000, WBTC 60000.
func SeedPosition(f *FakeBackend, a ABIs, account common.Address) {
	f.t.Helper()

	f.SetCall(ProxyAddress, a.Comet, "balanceOf", big.NewInt(0))
	f.SetCall(ProxyAddress, a.Comet, "borrowBalanceOf", Units(1000, 6))
	f.SetCall(ProxyAddress, a.Comet, "getUtilization", new(big.Int).Mul(big.NewInt(9), big.NewInt(1e17)))
	f.SetCall(ProxyAddress, a.Comet, "getSupplyRate", uint64(1_000_000_000))
	f.SetCall(ProxyAddress, a.Comet, "getBorrowRate", uint64(2_000_000_000))
	f.SetCall(ProxyAddress, a.Comet, "totalSupply", Units(5_000_000, 6))
	f.SetCall(ProxyAddress, a.Comet, "totalBorrow", Units(4_500_000, 6))
	f.SetCallFor(ProxyAddress, a.Comet, "totalsCollateral", []interface{}{WETHAddress}, Units(300, 18), big.NewInt(0))
	f.SetCallFor(ProxyAddress, a.Comet, "totalsCollateral", []interface{}{WBTCAddress}, Units(40, 8), big.NewInt(0))
	f.SetCallFor(ProxyAddress, a.Comet, "collateralBalanceOf", []interface{}{account, WETHAddress}, Units(2, 18))
	f.SetCallFor(ProxyAddress, a.Comet, "collateralBalanceOf", []interface{}{account, WBTCAddress}, big.NewInt(50_000_000))

	f.SetCall(BaseAddress, a.ERC20, "balanceOf", Units(750, 6))
	f.SetCall(BaseAddress, a.ERC20, "allowance", big.NewInt(0))
	f.SetCall(WETHAddress, a.ERC20, "balanceOf", Units(1, 18))
	f.SetCall(WETHAddress, a.ERC20, "allowance", big.NewInt(0))
	f.SetCall(WBTCAddress, a.ERC20, "balanceOf", Units(3, 8))
	f.SetCall(WBTCAddress, a.ERC20, "allowance", big.NewInt(0))

	f.SetCall(BaseFeedAddress, a.Feed, "latestRoundData", RoundData(100_000_000)...)
	f.SetCall(WETHFeedAddress, a.Feed, "latestRoundData", RoundData(2000_00000000)...)
	f.SetCall(WBTCFeedAddress, a.Feed, "latestRoundData", RoundData(60000_00000000)...)
}
