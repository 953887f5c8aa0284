package models

import "github.com/ethereum/go-ethereum/common"

// Token describes an ERC-20 asset known to a pool
type Token struct {
	Name              string         `yaml:"name"`
	Symbol            string         `yaml:"symbol"`
	Address           common.Address `yaml:"address"`
	Decimals          int32          `yaml:"decimals"`
	Color             string         `yaml:"color"`
	LogoURL           string         `yaml:"logoURL"`
	PriceFeed         common.Address `yaml:"priceFeed"`
	PriceFeedDecimals int32          `yaml:"priceFeedDecimals"`
}

// BaseAsset is the single borrow/lend token of a pool
type BaseAsset struct {
	Token `yaml:",inline"`
}

// RewardAsset is the token paid out by the rewards contract
type RewardAsset struct {
	Token `yaml:",inline"`
}

// CollateralAsset is a token that can back borrowing of the base asset.
// Factors are percentages.
type CollateralAsset struct {
	Token                     `yaml:",inline"`
	BorrowCollateralFactor    float64 `yaml:"borrowCollateralFactor"`
	LiquidateCollateralFactor float64 `yaml:"liquidateCollateralFactor"`
	LiquidationFactor         float64 `yaml:"liquidationFactor"`
	LiquidationPenalty        float64 `yaml:"liquidationPenalty"`
	SupplyCap                 float64 `yaml:"supplyCap"`
}
