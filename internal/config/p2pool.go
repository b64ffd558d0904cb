package config

import (
	"errors"
	"path/filepath"
)

// P2PoolConfig points at the stats files the local p2pool node periodically
// rewrites. Paths are derived from a single base directory, matching the
// node's --data-api layout.
type P2PoolConfig struct {
	StatsDir string `mapstructure:"stats-dir"`
}

func (cfg *P2PoolConfig) Validate() error {
	if cfg.StatsDir == "" {
		return errors.New("p2pool stats-dir cannot be empty")
	}
	return nil
}

func (cfg *P2PoolConfig) PoolStatsPath() string {
	return filepath.Join(cfg.StatsDir, "pool", "stats")
}

func (cfg *P2PoolConfig) P2PStatsPath() string {
	return filepath.Join(cfg.StatsDir, "local", "p2p")
}

func (cfg *P2PoolConfig) StratumStatsPath() string {
	return filepath.Join(cfg.StatsDir, "local", "stratum")
}

func (cfg *P2PoolConfig) NetworkStatsPath() string {
	return filepath.Join(cfg.StatsDir, "network", "stats")
}
