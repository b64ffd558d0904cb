package config

import (
	"errors"
	"fmt"
	"time"
)

// Switch strategies supported by the actuator.
const (
	SwitchStrategyProxy = "proxy"
	SwitchStrategyFleet = "fleet"
)

// TierConfig is one donation tier: a name and the minimum 1h/24h average
// hashrate the donation pool expects to grant that tier.
type TierConfig struct {
	Name        string  `mapstructure:"name"`
	MinHashrate float64 `mapstructure:"min-hashrate"`
}

type AlgoConfig struct {
	// Enabled is the global kill switch. When false the engine always
	// decides P2POOL.
	Enabled bool `mapstructure:"enabled"`
	// CycleLength is the full control cycle; a decision covers exactly one
	// cycle.
	CycleLength time.Duration `mapstructure:"cycle-length"`
	// MinSendTime is the shortest XvB slice worth switching for.
	MinSendTime time.Duration `mapstructure:"min-send-time"`
	// MinP2PoolSlice: a SPLIT whose P2Pool remainder would be shorter than
	// this is promoted to a full XvB cycle.
	MinP2PoolSlice time.Duration `mapstructure:"min-p2pool-slice"`
	// SwitchOverhead compensates for pool switching latency when sizing the
	// XvB slice.
	SwitchOverhead time.Duration `mapstructure:"switch-overhead"`
	// Margin1h is the tolerance applied to the 1h average fulfilment check.
	// Historical deployments used anywhere from 0.05 to 0.2; it is
	// deliberately configuration, not a constant.
	Margin1h float64 `mapstructure:"margin-1h"`
	// Buffer oversizes the donated slice so the achieved average lands above
	// the tier floor instead of on it.
	Buffer float64 `mapstructure:"buffer"`
	// TierHeadroom is the share of stable hashrate considered safe to commit
	// when qualifying for a tier.
	TierHeadroom float64 `mapstructure:"tier-headroom"`
	// Strategy selects the switching actuator: "proxy" reconfigures a single
	// xmrig-proxy, "fleet" reconfigures every worker directly.
	Strategy string `mapstructure:"strategy"`
	// Tiers must be ordered by descending min-hashrate.
	Tiers []TierConfig `mapstructure:"tiers"`
}

func (cfg *AlgoConfig) Validate() error {
	if cfg.CycleLength <= 0 {
		return errors.New("algo cycle-length must be positive")
	}
	if cfg.MinSendTime <= 0 || cfg.MinSendTime > cfg.CycleLength {
		return errors.New("algo min-send-time must be positive and not exceed cycle-length")
	}
	if cfg.MinP2PoolSlice < 0 {
		return errors.New("algo min-p2pool-slice cannot be negative")
	}
	if cfg.SwitchOverhead < 0 {
		return errors.New("algo switch-overhead cannot be negative")
	}
	if cfg.Margin1h < 0 || cfg.Margin1h >= 1 {
		return errors.New("algo margin-1h must be in [0, 1)")
	}
	if cfg.Buffer < 0 {
		return errors.New("algo buffer cannot be negative")
	}
	if cfg.TierHeadroom <= 0 || cfg.TierHeadroom > 1 {
		return errors.New("algo tier-headroom must be in (0, 1]")
	}
	if cfg.Strategy != SwitchStrategyProxy && cfg.Strategy != SwitchStrategyFleet {
		return fmt.Errorf("algo strategy must be %q or %q", SwitchStrategyProxy, SwitchStrategyFleet)
	}
	if len(cfg.Tiers) == 0 {
		return errors.New("algo tiers cannot be empty")
	}
	for i, tier := range cfg.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("algo tier %d has no name", i)
		}
		if tier.MinHashrate < 0 {
			return fmt.Errorf("algo tier %q min-hashrate cannot be negative", tier.Name)
		}
		if i > 0 && tier.MinHashrate >= cfg.Tiers[i-1].MinHashrate {
			return fmt.Errorf("algo tiers must be ordered by strictly descending min-hashrate (%q >= %q)",
				tier.Name, cfg.Tiers[i-1].Name)
		}
	}
	return nil
}
