package pools

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/kelsos/comet-dash/internal/logger"
	"github.com/kelsos/comet-dash/internal/models"
)

//go:embed pools.yaml
var defaultPools []byte

// ErrPoolNotFound is returned when no pool matches a chain id and name
var ErrPoolNotFound = errors.New("pool not found")

const maxDecimals = 36

type document struct {
	Pools []models.PoolConfig `yaml:"pools"`
}

// Registry is the read-only (chain id, pool name) → PoolConfig mapping
type Registry struct {
	pools models.PoolConfigMap
}

// Default loads the pools shipped with the binary
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultPools))
}

// LoadFile loads pools from a YAML file
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pools file: %w", err)
	}
	defer f.Close()

	logger.Info("Loading pools from %s", path)
	return Load(f)
}

// Load decodes and validates a pools document
func Load(r io.Reader) (*Registry, error) {
	var doc document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode pools: %w", err)
	}

	registry := &Registry{pools: make(models.PoolConfigMap)}
	for _, pool := range doc.Pools {
		if err := validate(pool); err != nil {
			return nil, fmt.Errorf("invalid pool %q on chain %d: %w", pool.Name, pool.ChainID, err)
		}
		byName, ok := registry.pools[pool.ChainID]
		if !ok {
			byName = make(map[string]models.PoolConfig)
			registry.pools[pool.ChainID] = byName
		}
		if _, dup := byName[pool.Name]; dup {
			return nil, fmt.Errorf("duplicate pool %q on chain %d", pool.Name, pool.ChainID)
		}
		byName[pool.Name] = pool
	}

	return registry, nil
}

// Lookup returns the pool with the given chain id and name
func (r *Registry) Lookup(chainID int64, name string) (models.PoolConfig, error) {
	if byName, ok := r.pools[chainID]; ok {
		if pool, ok := byName[name]; ok {
			return pool, nil
		}
	}
	return models.PoolConfig{}, fmt.Errorf("%w: %s on chain %d", ErrPoolNotFound, name, chainID)
}

// Names lists the pool names configured for a chain, sorted
func (r *Registry) Names(chainID int64) []string {
	names := make([]string, 0, len(r.pools[chainID]))
	for name := range r.pools[chainID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validate(pool models.PoolConfig) error {
	if pool.Name == "" {
		return errors.New("name is required")
	}
	if pool.ChainID <= 0 {
		return errors.New("chain id must be positive")
	}
	if pool.Proxy == (common.Address{}) {
		return errors.New("proxy address is required")
	}
	if err := validateToken(pool.BaseToken.Token); err != nil {
		return fmt.Errorf("base token: %w", err)
	}

	seen := map[string]bool{strings.ToUpper(pool.BaseToken.Symbol): true}
	for _, asset := range pool.AssetConfigs {
		if err := validateToken(asset.Token); err != nil {
			return fmt.Errorf("collateral %s: %w", asset.Symbol, err)
		}
		symbol := strings.ToUpper(asset.Symbol)
		if seen[symbol] {
			return fmt.Errorf("duplicate asset symbol %s", asset.Symbol)
		}
		seen[symbol] = true

		if asset.BorrowCollateralFactor <= 0 || asset.BorrowCollateralFactor > 100 {
			return fmt.Errorf("collateral %s: borrow collateral factor must be in (0,100], got %v", asset.Symbol, asset.BorrowCollateralFactor)
		}
		if asset.LiquidateCollateralFactor <= 0 || asset.LiquidateCollateralFactor > 100 {
			return fmt.Errorf("collateral %s: liquidate collateral factor must be in (0,100], got %v", asset.Symbol, asset.LiquidateCollateralFactor)
		}
		if asset.BorrowCollateralFactor > asset.LiquidateCollateralFactor {
			return fmt.Errorf("collateral %s: borrow collateral factor exceeds liquidate collateral factor", asset.Symbol)
		}
	}

	return nil
}

func validateToken(token models.Token) error {
	if token.Symbol == "" {
		return errors.New("symbol is required")
	}
	if token.Address == (common.Address{}) {
		return errors.New("address is required")
	}
	if token.Decimals < 0 || token.Decimals > maxDecimals {
		return fmt.Errorf("decimals must be in [0,%d], got %d", maxDecimals, token.Decimals)
	}
	if token.PriceFeed == (common.Address{}) {
		return errors.New("price feed is required")
	}
	return nil
}
