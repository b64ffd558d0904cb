package config

import "errors"

// APIConfig describes the JSON status endpoint consumed by dashboards.
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (cfg *APIConfig) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.New("api port must be a valid port number")
	}
	return nil
}
