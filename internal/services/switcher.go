package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/moneropulse/xvb-arbiter/internal/clients/proxyclient"
	"github.com/moneropulse/xvb-arbiter/internal/clients/workerclient"
	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/db/model"
	"github.com/moneropulse/xvb-arbiter/internal/types"
)

// Report summarizes one switch attempt across the fleet. A partially failed
// switch is still a successful switch; only total actuator failure is an
// error.
type Report struct {
	Succeeded int
	Failed    int
}

// Switcher points the fleet at one of the two physical upstreams. SPLIT is a
// control-loop schedule, never a physical mode, so implementations reject it.
type Switcher interface {
	SwitchTo(ctx context.Context, mode types.Mode) (Report, error)
}

// NewSwitcher selects the actuator implementation from configuration.
func NewSwitcher(
	cfg *config.Config,
	proxy proxyclient.ProxyInterface,
	workers workerclient.WorkerInterface,
	registry WorkerRegistry,
) Switcher {
	if cfg.Algo.Strategy == config.SwitchStrategyFleet {
		return NewFleetSwitcher(workers, registry, &cfg.Pools, cfg.Fleet.Timeout)
	}
	return NewProxySwitcher(proxy, &cfg.Pools)
}

// upstreamPools builds the ordered pool list for a physical mode: the target
// first and enabled, the other kept but disabled.
func upstreamPools(mode types.Mode, cfg *config.PoolsConfig) ([]types.PoolEntry, error) {
	p2pool := types.PoolEntry{URL: cfg.P2PoolURL, User: cfg.WalletAddress, Pass: "x", Coin: "monero"}
	xvb := types.PoolEntry{URL: cfg.XvbURL, User: cfg.DonorID, Pass: "x", Coin: "monero"}

	switch mode {
	case types.ModeP2Pool:
		p2pool.Enabled = true
		return []types.PoolEntry{p2pool, xvb}, nil
	case types.ModeXvb:
		xvb.Enabled = true
		return []types.PoolEntry{xvb, p2pool}, nil
	default:
		return nil, fmt.Errorf("%s is not a physical mode", mode)
	}
}

// ProxySwitcher reconfigures the single xmrig-proxy every worker already
// mines through. One PUT repoints the whole fleet.
type ProxySwitcher struct {
	proxy proxyclient.ProxyInterface
	pools *config.PoolsConfig
}

func NewProxySwitcher(proxy proxyclient.ProxyInterface, pools *config.PoolsConfig) *ProxySwitcher {
	return &ProxySwitcher{proxy: proxy, pools: pools}
}

func (s *ProxySwitcher) SwitchTo(ctx context.Context, mode types.Mode) (Report, error) {
	pools, err := upstreamPools(mode, s.pools)
	if err != nil {
		return Report{}, err
	}

	// Fetch the full config first so the update preserves every unrelated
	// proxy setting.
	proxyCfg, err := s.proxy.GetConfig(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read proxy config before switch: %w", err)
	}
	proxyCfg["pools"] = pools

	if err := s.proxy.UpdateConfig(ctx, proxyCfg); err != nil {
		return Report{}, fmt.Errorf("failed to switch proxy to %s: %w", mode, err)
	}

	log.Ctx(ctx).Info().Str("mode", mode.String()).Msg("Switched proxy upstream")
	return Report{Succeeded: 1}, nil
}

// WorkerRegistry lists the workers a fleet switch must reach.
type WorkerRegistry interface {
	GetKnownWorkers() []model.WorkerDocument
}

// FleetSwitcher reconfigures every worker directly over its own API. One
// unreachable worker never blocks or fails the switch for the rest.
type FleetSwitcher struct {
	workers  workerclient.WorkerInterface
	registry WorkerRegistry
	pools    *config.PoolsConfig
	// perWorkerTimeout bounds one worker's whole update, all address
	// candidates included.
	perWorkerTimeout time.Duration
}

func NewFleetSwitcher(
	workers workerclient.WorkerInterface,
	registry WorkerRegistry,
	pools *config.PoolsConfig,
	candidateTimeout time.Duration,
) *FleetSwitcher {
	return &FleetSwitcher{
		workers:  workers,
		registry: registry,
		pools:    pools,
		// GetConfig and the PUT each walk up to three candidates.
		perWorkerTimeout: 6 * candidateTimeout,
	}
}

func (s *FleetSwitcher) SwitchTo(ctx context.Context, mode types.Mode) (Report, error) {
	pools, err := upstreamPools(mode, s.pools)
	if err != nil {
		return Report{}, err
	}

	known := s.registry.GetKnownWorkers()
	if len(known) == 0 {
		log.Ctx(ctx).Warn().Msg("No known workers to switch")
		return Report{}, nil
	}

	results := pool.NewWithResults[bool]()
	for _, worker := range known {
		results.Go(func() bool {
			workerCtx, cancel := context.WithTimeout(ctx, s.perWorkerTimeout)
			defer cancel()

			if err := s.workers.UpdatePools(workerCtx, worker.Name, worker.IP, pools); err != nil {
				log.Ctx(ctx).Warn().
					Str("worker", worker.Name).
					Str("ip", worker.IP).
					Err(err).
					Msg("Worker unreachable during switch, continuing with the rest")
				return false
			}
			return true
		})
	}

	var report Report
	for _, ok := range results.Wait() {
		if ok {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	log.Ctx(ctx).Info().
		Str("mode", mode.String()).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("Fleet switch finished")
	return report, nil
}
