package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
	assert.Equal(t, time.Second, cfg.CloseDelay)
	assert.Equal(t, "cUSDCv3", cfg.PoolName)
	assert.True(t, cfg.ReadOnly())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("COMET_RPC_URL", "https://rpc.example.org")
	t.Setenv("COMET_CHAIN_ID", "8453")
	t.Setenv("COMET_POOL", "cWETHv3")
	t.Setenv("COMET_PRIVATE_KEY", "0xabc123")
	t.Setenv("COMET_SETTLE_DELAY", "500")
	t.Setenv("COMET_CLOSE_DELAY", "not-a-number")
	t.Setenv("COMET_POLL_INTERVAL", "30000")

	cfg := NewConfig()
	cfg.LoadFromEnvironment()

	assert.Equal(t, "https://rpc.example.org", cfg.RPCURL)
	assert.Equal(t, int64(8453), cfg.ChainID)
	assert.Equal(t, "cWETHv3", cfg.PoolName)
	assert.Equal(t, "abc123", cfg.PrivateKey)
	assert.Equal(t, 500*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, time.Second, cfg.CloseDelay, "unparseable values keep the default")
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.False(t, cfg.ReadOnly())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "read-only account",
			mutate: func(c *Config) { c.Account = "0xc3d688B66703497DAA19211EEdff47f25384cdc3" },
		},
		{
			name:    "no wallet",
			mutate:  func(c *Config) {},
			wantErr: "account address or a private key",
		},
		{
			name: "bad account",
			mutate: func(c *Config) {
				c.Account = "0x1234"
			},
			wantErr: "not a valid address",
		},
		{
			name: "negative delay",
			mutate: func(c *Config) {
				c.PrivateKey = "aa"
				c.SettleDelay = -time.Second
			},
			wantErr: "non-negative",
		},
		{
			name: "poll interval too short",
			mutate: func(c *Config) {
				c.PrivateKey = "aa"
				c.PollInterval = 10 * time.Millisecond
			},
			wantErr: "poll interval",
		},
		{
			name: "zero delays allowed",
			mutate: func(c *Config) {
				c.PrivateKey = "aa"
				c.SettleDelay = 0
				c.CloseDelay = 0
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
