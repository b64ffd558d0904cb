package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Db: DbConfig{
			Username: "test",
			Password: "test",
			Address:  "mongodb://localhost:27017",
			DbName:   "test",
		},
		Algo: AlgoConfig{
			Enabled:        true,
			CycleLength:    10 * time.Minute,
			MinSendTime:    1 * time.Minute,
			MinP2PoolSlice: 1 * time.Minute,
			SwitchOverhead: 3 * time.Second,
			Margin1h:       0.05,
			Buffer:         0.05,
			TierHeadroom:   0.85,
			Strategy:       SwitchStrategyProxy,
			Tiers: []TierConfig{
				{Name: "donor_vip", MinHashrate: 10_000},
				{Name: "donor", MinHashrate: 0},
			},
		},
		Pools: PoolsConfig{
			P2PoolURL:     "127.0.0.1:3333",
			XvbURL:        "pool.example.org:3333",
			WalletAddress: "4" + strings.Repeat("A", 94),
			DonorID:       "donor+50000",
		},
		P2Pool: P2PoolConfig{
			StatsDir: "/var/lib/p2pool/api",
		},
		Proxy: ProxyConfig{
			Host:          "127.0.0.1",
			Port:          8080,
			Timeout:       5 * time.Second,
			MaxRetryTimes: 3,
			RetryInterval: time.Second,
		},
		Fleet: FleetConfig{
			APIPort: 18000,
			Timeout: 2 * time.Second,
		},
		Xvb: XvbConfig{
			Endpoint:      "https://xmrvsbeast.com/p2pool/stats",
			Timeout:       10 * time.Second,
			MaxRetryTimes: 3,
			RetryInterval: time.Second,
			SyncEvery:     6,
		},
		Poller: PollerConfig{
			TelemetryInterval: 10 * time.Second,
			HistoryRetention:  time.Hour,
			WorkerRetention:   10 * time.Minute,
			BackoffInterval:   30 * time.Second,
		},
		Metrics: MetricsConfig{
			Host: "0.0.0.0",
			Port: 2112,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestAlgoConfig_Validate(t *testing.T) {
	t.Run("min send time exceeds cycle", func(t *testing.T) {
		cfg := validConfig()
		cfg.Algo.MinSendTime = cfg.Algo.CycleLength + time.Minute
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "min-send-time")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		cfg := validConfig()
		cfg.Algo.Strategy = "hybrid"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "strategy")
	})

	t.Run("tiers out of order", func(t *testing.T) {
		cfg := validConfig()
		cfg.Algo.Tiers = []TierConfig{
			{Name: "donor", MinHashrate: 0},
			{Name: "donor_vip", MinHashrate: 10_000},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "descending")
	})

	t.Run("headroom out of range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Algo.TierHeadroom = 1.5
		require.Error(t, cfg.Validate())
	})
}

func TestPoolsConfig_Validate(t *testing.T) {
	t.Run("invalid wallet address", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pools.WalletAddress = "not-a-wallet"
		require.Error(t, cfg.Validate())
	})

	t.Run("missing donor id", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pools.DonorID = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "donor-id")
	})
}

func TestPollerConfig_Validate(t *testing.T) {
	t.Run("telemetry interval not set", func(t *testing.T) {
		cfg := validConfig()
		cfg.Poller.TelemetryInterval = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry-interval must be positive")
	})

	t.Run("negative retention", func(t *testing.T) {
		cfg := validConfig()
		cfg.Poller.HistoryRetention = -time.Hour
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "history-retention must be positive")
	})
}
