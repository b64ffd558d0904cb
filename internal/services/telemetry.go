package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/moneropulse/xvb-arbiter/internal/collectors"
	"github.com/moneropulse/xvb-arbiter/internal/db/model"
	"github.com/moneropulse/xvb-arbiter/internal/observability/metrics"
	"github.com/moneropulse/xvb-arbiter/internal/state"
	"github.com/moneropulse/xvb-arbiter/internal/utils"
	"github.com/moneropulse/xvb-arbiter/internal/utils/poller"
)

// WorkerStatus is one worker's live view inside a telemetry snapshot.
type WorkerStatus struct {
	Name   string `json:"name"`
	IP     string `json:"ip"`
	Status string `json:"status"`
	Uptime int64  `json:"uptime"`
	// Hashrates in H/s over the worker's averaging windows.
	Hashrate10s float64 `json:"hashrate_10s"`
	Hashrate60s float64 `json:"hashrate_60s"`
	Hashrate15m float64 `json:"hashrate_15m"`
}

// TelemetrySnapshot is the aggregated fleet state produced each telemetry
// tick. It feeds the decision engine, the status API and the warm-boot
// snapshot.
type TelemetrySnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	// CurrentHashrate reacts fast (shortest filled window per worker).
	CurrentHashrate float64 `json:"current_hashrate"`
	// StableHashrate prefers the 15m window per worker.
	StableHashrate float64                 `json:"stable_hashrate"`
	Workers        []WorkerStatus          `json:"workers"`
	Pool           collectors.PoolStats    `json:"pool"`
	P2P            collectors.P2PStats     `json:"p2p"`
	Network        collectors.NetworkStats `json:"network"`
	Mode           string                  `json:"mode"`
	ModeLabel      string                  `json:"mode_label"`
	DonationAvg1h  float64                 `json:"donation_avg_1h"`
	DonationAvg24h float64                 `json:"donation_avg_24h"`
	FailCount      int                     `json:"fail_count"`
	TotalDonated   int64                   `json:"total_donated_secs"`
}

const (
	workerOnline      = "online"
	workerUnreachable = "unreachable"
)

// proxy worker rows report kH/s; direct worker stats report H/s.
const proxyHashrateScale = 1000

// StartTelemetryPoller launches the periodic telemetry collection.
func (s *Service) StartTelemetryPoller(ctx context.Context) {
	s.telemetryPoller = poller.NewPoller(
		s.cfg.Poller.TelemetryInterval,
		metrics.RecordPollerDuration("telemetry", s.collectTelemetry),
	)
	go s.telemetryPoller.Start(ctx)
}

// StartStatsWatcher reacts to p2pool rewriting its stratum stats file by
// nudging the telemetry poller, so a found share shortens the reaction time
// of the next control tick. The collection itself stays on the poller
// goroutine.
func (s *Service) StartStatsWatcher(ctx context.Context) {
	watcher := collectors.NewWatcher(&s.cfg.P2Pool, func(ctx context.Context) {
		if s.telemetryPoller != nil {
			s.telemetryPoller.Nudge()
		}
	})
	go func() {
		if err := watcher.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Stats watcher stopped")
		}
	}()
}

// warmStart republishes the persisted snapshot so the status API serves data
// before the first telemetry tick completes.
func (s *Service) warmStart() {
	blob := s.store.LoadSnapshot()
	if blob == nil {
		return
	}

	var snap TelemetrySnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable state snapshot")
		return
	}
	// The snapshot is from a previous run; its age must still count as
	// stale until fresh telemetry arrives, so the timestamp is kept as is.
	s.setLatestTelemetry(snap)
	log.Info().Time("snapshot_ts", snap.Timestamp).Msg("Restored telemetry snapshot")
}

// collectTelemetry is one full collection pass.
func (s *Service) collectTelemetry(ctx context.Context) error {
	poolStats := s.collector.PoolStats()
	p2pStats := s.collector.P2PStats()
	networkStats := s.collector.NetworkStats()

	workers := s.fleetWorkers(ctx)

	var current, stable float64
	for _, w := range workers {
		if w.Status != workerOnline {
			continue
		}
		current += firstNonZero(w.Hashrate10s, w.Hashrate60s, w.Hashrate15m)
		stable += firstNonZero(w.Hashrate15m, w.Hashrate60s, w.Hashrate10s)
	}
	metrics.RecordFleetHashrate("10s", current)
	metrics.RecordFleetHashrate("15m", stable)
	log.Ctx(ctx).Debug().
		Str("current_hashrate", utils.FormatHashrate(current)).
		Str("stable_hashrate", utils.FormatHashrate(stable)).
		Int("workers", len(workers)).
		Msg("Telemetry collected")

	stats := s.store.GetDonationStats()
	snap := TelemetrySnapshot{
		Timestamp:       time.Now(),
		CurrentHashrate: current,
		StableHashrate:  stable,
		Workers:         workers,
		Pool:            poolStats,
		P2P:             p2pStats,
		Network:         networkStats,
		Mode:            stats.Mode.String(),
		ModeLabel:       stats.ModeLabel,
		DonationAvg1h:   stats.Avg1h,
		DonationAvg24h:  stats.Avg24h,
		FailCount:       stats.FailCount,
		TotalDonated:    int64(stats.TotalDonated.Seconds()),
	}
	s.setLatestTelemetry(snap)

	s.store.AppendHistoryPoint(ctx, stable)

	registry := make([]model.WorkerDocument, 0, len(workers))
	for _, w := range workers {
		registry = append(registry, model.WorkerDocument{Name: w.Name, IP: w.IP})
	}
	s.store.UpsertKnownWorkers(ctx, registry)

	if blob, err := json.Marshal(snap); err == nil {
		s.store.SaveSnapshot(ctx, blob)
	} else {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to encode telemetry snapshot")
	}

	if s.tickSeq%s.cfg.Xvb.SyncEvery == 0 {
		s.syncDonationStats(ctx)
	}
	s.tickSeq++

	return nil
}

// fleetWorkers builds the per-worker view: the proxy's worker table names
// the fleet, the stratum file is the fallback when the proxy is down, and
// each worker is then polled directly for authoritative numbers.
func (s *Service) fleetWorkers(ctx context.Context) []WorkerStatus {
	var base []WorkerStatus

	proxyWorkers, err := s.proxy.GetWorkers(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Proxy worker table unavailable, falling back to stratum")
		for _, w := range s.collector.StratumWorkers() {
			base = append(base, WorkerStatus{Name: w.Name, IP: w.IP, Status: workerUnreachable})
		}
	} else {
		for _, w := range proxyWorkers.Workers {
			base = append(base, WorkerStatus{
				Name:        w.Name,
				IP:          w.IP,
				Status:      workerOnline,
				Hashrate10s: w.Hashrate1m * proxyHashrateScale,
				Hashrate60s: w.Hashrate1m * proxyHashrateScale,
				Hashrate15m: w.Hashrate10m * proxyHashrateScale,
			})
		}
	}

	results := pool.NewWithResults[WorkerStatus]()
	for _, w := range base {
		results.Go(func() WorkerStatus {
			summary, err := s.workers.GetSummary(ctx, w.Name, w.IP)
			if err != nil {
				// Keep the proxy-reported numbers; the worker is only
				// unreachable when the proxy did not see it either.
				if w.Hashrate10s == 0 && w.Hashrate15m == 0 {
					w.Status = workerUnreachable
				}
				return w
			}
			w.Status = workerOnline
			w.Uptime = summary.Uptime
			if hr := summary.Hashrate10s(); hr > 0 {
				w.Hashrate10s = hr
			}
			if hr := summary.Hashrate60s(); hr > 0 {
				w.Hashrate60s = hr
			}
			if hr := summary.Hashrate15m(); hr > 0 {
				w.Hashrate15m = hr
			}
			return w
		})
	}
	return results.Wait()
}

// syncDonationStats refreshes the donation averages from the external
// endpoint. A fetch failure increments the accumulated fail counter instead
// of zeroing the stats; only a clean sync resets it.
func (s *Service) syncDonationStats(ctx context.Context) {
	stats, err := s.xvb.GetStats(ctx)
	if err != nil {
		failCount := s.store.GetDonationStats().FailCount + 1
		log.Ctx(ctx).Warn().
			Err(err).
			Int("fail_count", failCount).
			Msg("Donation stats sync failed")
		s.store.UpdateDonationStats(ctx, state.StatsPatch{FailCount: &failCount})
		metrics.RecordDonationFailCount(failCount)
		return
	}

	s.store.UpdateDonationStats(ctx, state.StatsPatch{
		Avg1h:     &stats.Avg1h,
		Avg24h:    &stats.Avg24h,
		FailCount: &stats.FailCount,
	})
	metrics.RecordDonationFailCount(stats.FailCount)
	log.Ctx(ctx).Info().
		Float64("avg_1h", stats.Avg1h).
		Float64("avg_24h", stats.Avg24h).
		Int("fail_count", stats.FailCount).
		Msg("External Sync: donation stats updated")
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
