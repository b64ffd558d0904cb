package config

import (
	"errors"
	"time"
)

// XvbConfig describes the donation-performance endpoint (bonus history page
// keyed by wallet address).
type XvbConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
	// SyncEvery throttles the slow external call to every Nth telemetry
	// tick.
	SyncEvery int `mapstructure:"sync-every"`
}

func (cfg *XvbConfig) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New("xvb endpoint cannot be empty")
	}
	if cfg.Timeout <= 0 {
		return errors.New("xvb timeout must be positive")
	}
	if cfg.SyncEvery <= 0 {
		return errors.New("xvb sync-every must be positive")
	}
	return nil
}
