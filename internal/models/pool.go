package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// PoolConfig is the static description of a lending pool
type PoolConfig struct {
	Name    string         `yaml:"name"`
	ChainID int64          `yaml:"chainId"`
	Proxy   common.Address `yaml:"proxy"`
	Reward  common.Address `yaml:"reward"`

	BaseToken   BaseAsset   `yaml:"baseToken"`
	RewardToken RewardAsset `yaml:"rewardToken"`

	SupplyKink                         float64 `yaml:"supplyKink"`
	SupplyPerYearInterestRateSlopeLow  float64 `yaml:"supplyPerYearInterestRateSlopeLow"`
	SupplyPerYearInterestRateSlopeHigh float64 `yaml:"supplyPerYearInterestRateSlopeHigh"`
	SupplyPerYearInterestRateBase      float64 `yaml:"supplyPerYearInterestRateBase"`
	BorrowKink                         float64 `yaml:"borrowKink"`
	BorrowPerYearInterestRateSlopeLow  float64 `yaml:"borrowPerYearInterestRateSlopeLow"`
	BorrowPerYearInterestRateSlopeHigh float64 `yaml:"borrowPerYearInterestRateSlopeHigh"`
	BorrowPerYearInterestRateBase      float64 `yaml:"borrowPerYearInterestRateBase"`
	StoreFrontPriceFactor              float64 `yaml:"storeFrontPriceFactor"`
	TrackingIndexScale                 float64 `yaml:"trackingIndexScale"`
	BaseTrackingRewardSpeed            float64 `yaml:"baseTrackingRewardSpeed"`
	RewardKink                         float64 `yaml:"rewardKink"`
	BaseMinForRewards                  float64 `yaml:"baseMinForRewards"`
	BaseBorrowMin                      float64 `yaml:"baseBorrowMin"`
	TargetReserves                     float64 `yaml:"targetReserves"`

	AssetConfigs []CollateralAsset `yaml:"assetConfigs"`
}

// IsBase reports whether symbol names the pool's base asset
func (p *PoolConfig) IsBase(symbol string) bool {
	return strings.EqualFold(p.BaseToken.Symbol, symbol)
}

// Collateral returns the collateral asset with the given symbol
func (p *PoolConfig) Collateral(symbol string) (CollateralAsset, bool) {
	for _, asset := range p.AssetConfigs {
		if strings.EqualFold(asset.Symbol, symbol) {
			return asset, true
		}
	}
	return CollateralAsset{}, false
}

// Asset returns the token for symbol, base or collateral
func (p *PoolConfig) Asset(symbol string) (Token, bool) {
	if p.IsBase(symbol) {
		return p.BaseToken.Token, true
	}
	if asset, ok := p.Collateral(symbol); ok {
		return asset.Token, true
	}
	return Token{}, false
}

// PoolConfigMap maps chain id → pool name → pool
type PoolConfigMap map[int64]map[string]PoolConfig
