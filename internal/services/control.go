package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moneropulse/xvb-arbiter/internal/algo"
	"github.com/moneropulse/xvb-arbiter/internal/observability/metrics"
	"github.com/moneropulse/xvb-arbiter/internal/state"
	"github.com/moneropulse/xvb-arbiter/internal/types"
	"github.com/moneropulse/xvb-arbiter/internal/utils"
)

var physicalModes = []string{types.ModeP2Pool.String(), types.ModeXvb.String()}

// RunControlLoop drives decide, switch and hold cycles until the context is
// cancelled. The fleet always starts on P2POOL regardless of the persisted
// mode; whatever happened before the restart, mining revenue is the safe
// default.
func (s *Service) RunControlLoop(ctx context.Context) {
	log.Info().Msg("Service Started: Control Loop")

	if err := s.applyMode(ctx, types.ModeP2Pool, types.ModeP2Pool.String()); err != nil {
		log.Error().Err(err).Msg("Initial switch to P2POOL failed")
	}

	for ctx.Err() == nil {
		if err := s.controlTick(ctx); err != nil {
			log.Error().Err(err).Msg("Control tick failed")
			if !sleepCtx(ctx, s.cfg.Poller.BackoffInterval) {
				break
			}
		}
	}
	log.Info().Msg("Control loop stopped")
}

// controlTick runs one full cycle: decide from the latest telemetry, apply
// the switch plan, hold for the decided durations.
func (s *Service) controlTick(ctx context.Context) error {
	snap, ok := s.latestTelemetry()
	if !ok {
		log.Debug().Msg("No telemetry yet, deferring first decision")
		if !sleepCtx(ctx, s.cfg.Poller.TelemetryInterval) {
			return nil
		}
		return nil
	}

	if age := time.Since(snap.Timestamp); age > 2*s.cfg.Poller.TelemetryInterval {
		metrics.RecordStaleTelemetry()
		log.Warn().Dur("age", age).Msg("Deciding on stale telemetry")
	}

	stats := s.store.GetDonationStats()

	algoCfg := s.cfg.Algo
	if tiers := s.store.GetTiers(); len(tiers) > 0 {
		algoCfg.Tiers = tiers
	}

	decision := algo.Decide(algo.Inputs{
		CurrentHashrate: snap.CurrentHashrate,
		StableHashrate:  snap.StableHashrate,
		SharesInWindow:  snap.Pool.SharesInWindow,
		FailCount:       stats.FailCount,
		Avg1h:           stats.Avg1h,
		Avg24h:          stats.Avg24h,
	}, &algoCfg)

	metrics.RecordDecision(decision.Mode.String())
	log.Info().
		Str("mode", decision.Mode.String()).
		Dur("xvb_duration", decision.XvbDuration).
		Float64("target_hashrate", decision.TargetHashrate).
		Str("reason", decision.Reason).
		Msg("Decision")

	cycle := s.cfg.Algo.CycleLength
	switch decision.Mode {
	case types.ModeP2Pool:
		if err := s.applyMode(ctx, types.ModeP2Pool, "P2POOL"); err != nil {
			return err
		}
		sleepCtx(ctx, cycle)

	case types.ModeXvb:
		if err := s.applyMode(ctx, types.ModeXvb, "XVB"); err != nil {
			return err
		}
		s.recordDonatedTime(ctx, cycle)
		sleepCtx(ctx, cycle)

	case types.ModeSplit:
		if err := s.applyMode(ctx, types.ModeXvb, "XVB (Split)"); err != nil {
			return err
		}
		s.recordDonatedTime(ctx, decision.XvbDuration)
		if !sleepCtx(ctx, decision.XvbDuration) {
			// Shutdown mid-hold: no final switch, the next start resets
			// to P2POOL anyway.
			return nil
		}
		if err := s.applyMode(ctx, types.ModeP2Pool, "P2POOL (Split)"); err != nil {
			return err
		}
		sleepCtx(ctx, cycle-decision.XvbDuration)
	}

	return nil
}

// applyMode runs the actuator and, on success, publishes both the physical
// mode and the display label in one patch.
func (s *Service) applyMode(ctx context.Context, mode types.Mode, label string) error {
	start := time.Now()
	report, err := s.switcher.SwitchTo(ctx, mode)
	metrics.RecordSwitchDuration(time.Since(start), s.cfg.Algo.Strategy, err != nil)
	if err != nil {
		return err
	}

	if report.Failed > 0 {
		metrics.RecordWorkerSwitchFailures(report.Failed)
	}

	s.store.UpdateDonationStats(ctx, state.StatsPatch{Mode: &mode, ModeLabel: &label})
	metrics.RecordActiveMode(mode.String(), physicalModes)
	return nil
}

func (s *Service) recordDonatedTime(ctx context.Context, d time.Duration) {
	s.store.UpdateDonationStats(ctx, state.StatsPatch{AddDonated: &d})

	total := s.store.GetDonationStats().TotalDonated
	log.Debug().
		Dur("donated", d).
		Str("total_donated", utils.FormatDuration(int64(total.Seconds()))).
		Msg("Donated time recorded")
}
