package config

import (
	"errors"
	"fmt"
	"time"
)

// ProxyConfig describes the xmrig-proxy HTTP API sitting in front of the
// fleet.
type ProxyConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	AccessToken   string        `mapstructure:"access-token"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func (cfg *ProxyConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("proxy host cannot be empty")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.New("proxy port must be a valid port number")
	}
	if cfg.Timeout <= 0 {
		return errors.New("proxy timeout must be positive")
	}
	return nil
}

func (cfg *ProxyConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
}
