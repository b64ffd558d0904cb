package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Db      DbConfig      `mapstructure:"db"`
	Algo    AlgoConfig    `mapstructure:"algo"`
	Pools   PoolsConfig   `mapstructure:"pools"`
	P2Pool  P2PoolConfig  `mapstructure:"p2pool"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Fleet   FleetConfig   `mapstructure:"fleet"`
	Xvb     XvbConfig     `mapstructure:"xvb"`
	Poller  PollerConfig  `mapstructure:"poller"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	API     APIConfig     `mapstructure:"api"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Db.Validate(); err != nil {
		return err
	}
	if err := cfg.Algo.Validate(); err != nil {
		return err
	}
	if err := cfg.Pools.Validate(); err != nil {
		return err
	}
	if err := cfg.P2Pool.Validate(); err != nil {
		return err
	}
	if err := cfg.Proxy.Validate(); err != nil {
		return err
	}
	if err := cfg.Fleet.Validate(); err != nil {
		return err
	}
	if err := cfg.Xvb.Validate(); err != nil {
		return err
	}
	if err := cfg.Poller.Validate(); err != nil {
		return err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}
	return cfg.API.Validate()
}

// New returns a fully parsed and validated Config from the given file path.
// Values can be overridden through environment variables, e.g.
// XVB_ARBITER_DB_ADDRESS overrides db.address.
func New(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetEnvPrefix("xvb_arbiter")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", cfgFile, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
