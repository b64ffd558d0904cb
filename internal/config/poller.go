package config

import (
	"errors"
	"time"
)

type PollerConfig struct {
	// TelemetryInterval is the collector tick period.
	TelemetryInterval time.Duration `mapstructure:"telemetry-interval"`
	// HistoryRetention bounds the hashrate history, in memory and on disk.
	HistoryRetention time.Duration `mapstructure:"history-retention"`
	// WorkerRetention expires known workers that stopped reporting.
	WorkerRetention time.Duration `mapstructure:"worker-retention"`
	// BackoffInterval is slept after a failed control tick before
	// re-deciding from fresh telemetry.
	BackoffInterval time.Duration `mapstructure:"backoff-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.TelemetryInterval <= 0 {
		return errors.New("poller telemetry-interval must be positive")
	}
	if cfg.HistoryRetention <= 0 {
		return errors.New("poller history-retention must be positive")
	}
	if cfg.WorkerRetention <= 0 {
		return errors.New("poller worker-retention must be positive")
	}
	if cfg.BackoffInterval <= 0 {
		return errors.New("poller backoff-interval must be positive")
	}
	return nil
}
