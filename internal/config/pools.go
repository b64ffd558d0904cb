package config

import (
	"errors"

	"github.com/moneropulse/xvb-arbiter/pkg"
)

// PoolsConfig carries the two upstream stratum endpoints the fleet can be
// pointed at, and the identities used on each.
type PoolsConfig struct {
	P2PoolURL     string `mapstructure:"p2pool-url"`
	XvbURL        string `mapstructure:"xvb-url"`
	WalletAddress string `mapstructure:"wallet-address"`
	DonorID       string `mapstructure:"donor-id"`
}

func (cfg *PoolsConfig) Validate() error {
	if cfg.P2PoolURL == "" {
		return errors.New("pools p2pool-url cannot be empty")
	}
	if cfg.XvbURL == "" {
		return errors.New("pools xvb-url cannot be empty")
	}
	if err := pkg.ValidateMoneroAddress(cfg.WalletAddress); err != nil {
		return err
	}
	if cfg.DonorID == "" {
		return errors.New("pools donor-id cannot be empty")
	}
	return nil
}
