package services

import (
	"context"
	"sync"
	"time"

	"github.com/moneropulse/xvb-arbiter/internal/clients/proxyclient"
	"github.com/moneropulse/xvb-arbiter/internal/clients/workerclient"
	"github.com/moneropulse/xvb-arbiter/internal/clients/xvbclient"
	"github.com/moneropulse/xvb-arbiter/internal/collectors"
	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/state"
	"github.com/moneropulse/xvb-arbiter/internal/utils/poller"
)

// Service wires telemetry collection, the decision engine and the switching
// actuator around the shared state store.
type Service struct {
	cfg       *config.Config
	store     *state.Store
	collector *collectors.Collector
	proxy     proxyclient.ProxyInterface
	workers   workerclient.WorkerInterface
	xvb       xvbclient.XvbInterface
	switcher  Switcher

	telemetryPoller *poller.Poller

	mu     sync.Mutex
	latest TelemetrySnapshot
	// tickSeq throttles the external donation-stats sync. It is touched
	// only from collectTelemetry, which always runs on the poller
	// goroutine, nudged collections included.
	tickSeq int
}

func NewService(
	cfg *config.Config,
	store *state.Store,
	collector *collectors.Collector,
	proxy proxyclient.ProxyInterface,
	workers workerclient.WorkerInterface,
	xvb xvbclient.XvbInterface,
	switcher Switcher,
) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		collector: collector,
		proxy:     proxy,
		workers:   workers,
		xvb:       xvb,
		switcher:  switcher,
	}
}

// StartArbiter launches the background telemetry pipeline and then runs the
// control loop in the calling goroutine until the context is cancelled.
func (s *Service) StartArbiter(ctx context.Context) {
	s.warmStart()
	s.StartTelemetryPoller(ctx)
	s.StartStatsWatcher(ctx)
	s.RunControlLoop(ctx)
}

func (s *Service) latestTelemetry() (TelemetrySnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, !s.latest.Timestamp.IsZero()
}

func (s *Service) setLatestTelemetry(snap TelemetrySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snap
}

// sleepCtx waits for d, reporting false when the context was cancelled
// first. Mode holds use it so shutdown abandons a hold without a final
// switch.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
