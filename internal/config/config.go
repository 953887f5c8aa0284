package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config holds all application configuration
type Config struct {
	// Chain settings
	RPCURL  string
	ChainID int64
	RPCRate float64

	// Pool settings
	PoolName  string
	PoolsFile string

	// Wallet settings
	Account    string
	PrivateKey string

	// Polling settings
	PollInterval time.Duration

	// Delays around the reload signal after a mined transaction
	SettleDelay time.Duration
	CloseDelay  time.Duration

	// Receipt polling
	ReceiptPollInterval time.Duration

	// Storage settings
	DataDir string
	LogDir  string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		RPCURL:              "http://localhost:8545",
		ChainID:             1,
		RPCRate:             20,
		PoolName:            "cUSDCv3",
		PollInterval:        15 * time.Second,
		SettleDelay:         2 * time.Second,
		CloseDelay:          time.Second,
		ReceiptPollInterval: 2 * time.Second,
		DataDir:             "~/.comet-dash",
		LogDir:              "logs",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if rpcURL := os.Getenv("COMET_RPC_URL"); rpcURL != "" {
		c.RPCURL = rpcURL
	}

	if chainID := os.Getenv("COMET_CHAIN_ID"); chainID != "" {
		if id, err := strconv.ParseInt(chainID, 10, 64); err == nil {
			c.ChainID = id
		}
	}

	if rate := os.Getenv("COMET_RPC_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			c.RPCRate = r
		}
	}

	if pool := os.Getenv("COMET_POOL"); pool != "" {
		c.PoolName = pool
	}

	if poolsFile := os.Getenv("COMET_POOLS_FILE"); poolsFile != "" {
		c.PoolsFile = poolsFile
	}

	if account := os.Getenv("COMET_ACCOUNT"); account != "" {
		c.Account = account
	}

	if key := os.Getenv("COMET_PRIVATE_KEY"); key != "" {
		c.PrivateKey = strings.TrimPrefix(key, "0x")
	}

	if interval := os.Getenv("COMET_POLL_INTERVAL"); interval != "" {
		if d, err := strconv.Atoi(interval); err == nil {
			c.PollInterval = time.Duration(d) * time.Millisecond
		}
	}

	if delay := os.Getenv("COMET_SETTLE_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.SettleDelay = time.Duration(d) * time.Millisecond
		}
	}

	if delay := os.Getenv("COMET_CLOSE_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.CloseDelay = time.Duration(d) * time.Millisecond
		}
	}

	if dataDir := os.Getenv("COMET_DATA_DIR"); dataDir != "" {
		c.DataDir = dataDir
	}

	if logDir := os.Getenv("COMET_LOG_DIR"); logDir != "" {
		c.LogDir = logDir
	}
}

// ReadOnly reports whether no signing key is configured
func (c *Config) ReadOnly() bool {
	return c.PrivateKey == ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url cannot be empty")
	}

	if c.ChainID <= 0 {
		return fmt.Errorf("chain id must be positive, got: %d", c.ChainID)
	}

	if c.PoolName == "" {
		return fmt.Errorf("pool name cannot be empty")
	}

	if c.RPCRate <= 0 {
		return fmt.Errorf("rpc rate must be positive, got: %v", c.RPCRate)
	}

	if c.PollInterval < time.Second {
		return fmt.Errorf("poll interval must be at least 1s, got: %s", c.PollInterval)
	}

	if c.SettleDelay < 0 || c.CloseDelay < 0 {
		return fmt.Errorf("reload delays must be non-negative, got: %s / %s", c.SettleDelay, c.CloseDelay)
	}

	if c.ReceiptPollInterval <= 0 {
		return fmt.Errorf("receipt poll interval must be positive, got: %s", c.ReceiptPollInterval)
	}

	if c.PrivateKey == "" && c.Account == "" {
		return fmt.Errorf("either an account address or a private key is required")
	}

	if c.Account != "" && !common.IsHexAddress(c.Account) {
		return fmt.Errorf("account is not a valid address: %s", c.Account)
	}

	return nil
}
