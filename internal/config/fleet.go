package config

import (
	"errors"
	"time"
)

// FleetConfig describes how individual xmrig workers are reached when the
// fleet switching strategy is used.
type FleetConfig struct {
	// APIPort is the HTTP API port every worker exposes.
	APIPort int `mapstructure:"api-port"`
	// Timeout applies per address candidate, not per worker; a worker with
	// three candidates can take up to three timeouts before being declared
	// unreachable.
	Timeout time.Duration `mapstructure:"timeout"`
}

func (cfg *FleetConfig) Validate() error {
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return errors.New("fleet api-port must be a valid port number")
	}
	if cfg.Timeout <= 0 {
		return errors.New("fleet timeout must be positive")
	}
	return nil
}
