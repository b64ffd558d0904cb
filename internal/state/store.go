package state

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/db"
	"github.com/moneropulse/xvb-arbiter/internal/db/model"
	"github.com/moneropulse/xvb-arbiter/internal/types"
)

// DonationStats is the in-memory view of donation performance plus the
// active mode. All accessors return copies.
type DonationStats struct {
	// Mode is the physical mode the fleet mines in right now.
	Mode types.Mode
	// ModeLabel is the display annotation, e.g. "XVB (Split)".
	ModeLabel    string
	Avg1h        float64
	Avg24h       float64
	FailCount    int
	TotalDonated time.Duration
	LastUpdate   time.Time
}

// StatsPatch updates individual DonationStats fields; nil fields are left
// untouched. LastUpdate is bumped only when a numeric value actually
// changes, so neither a mode flip nor a sync reporting the same numbers
// masks how stale the donation averages are.
type StatsPatch struct {
	Mode       *types.Mode
	ModeLabel  *string
	Avg1h      *float64
	Avg24h     *float64
	FailCount  *int
	AddDonated *time.Duration
}

// Store is the canonical mutable process state. In-memory state is guarded
// by one coarse lock; every durable write goes through a second lock so the
// storage engine only ever sees a single writer. Reads return deep copies.
// Storage failures degrade durability but never stop the store: the
// in-memory copy stays authoritative.
type Store struct {
	mu   sync.Mutex
	dbMu sync.Mutex

	db               db.DbInterface
	historyRetention time.Duration
	workerRetention  time.Duration
	now              func() time.Time

	stats    DonationStats
	history  []model.HistoryPointDocument
	workers  map[string]model.WorkerDocument
	tiers    []config.TierConfig
	snapshot []byte
}

func NewStore(database db.DbInterface, pollerCfg *config.PollerConfig, tiers []config.TierConfig) *Store {
	return &Store{
		db:               database,
		historyRetention: pollerCfg.HistoryRetention,
		workerRetention:  pollerCfg.WorkerRetention,
		now:              time.Now,
		stats: DonationStats{
			// Safe boot default: never start by donating.
			Mode:      types.ModeP2Pool,
			ModeLabel: types.ModeP2Pool.String(),
		},
		workers: make(map[string]model.WorkerDocument),
		tiers:   append([]config.TierConfig(nil), tiers...),
	}
}

// Load warms the store from the database. A fresh database is not an
// error; missing documents keep their boot defaults.
func (s *Store) Load(ctx context.Context) error {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	now := s.now()

	stats, err := s.db.GetDonationStats(ctx)
	if err != nil && !db.IsNotFoundError(err) {
		return err
	}

	history, err := s.db.GetHistorySince(ctx, now.Add(-s.historyRetention))
	if err != nil {
		return err
	}

	workers, err := s.db.GetWorkers(ctx)
	if err != nil {
		return err
	}

	snapshot, err := s.db.GetSnapshot(ctx)
	if err != nil && !db.IsNotFoundError(err) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if stats != nil {
		mode := types.Mode(stats.Mode)
		if !mode.Valid() {
			mode = types.ModeP2Pool
		}
		s.stats = DonationStats{
			Mode:         mode,
			ModeLabel:    stats.CurrentMode,
			Avg1h:        stats.Avg1h,
			Avg24h:       stats.Avg24h,
			FailCount:    stats.FailCount,
			TotalDonated: time.Duration(stats.TotalDonatedSecs) * time.Second,
			LastUpdate:   time.Unix(stats.LastUpdate, 0),
		}
		if s.stats.ModeLabel == "" {
			s.stats.ModeLabel = mode.String()
		}
	}

	s.history = history
	cutoff := now.Add(-s.workerRetention)
	for _, w := range workers {
		if w.LastSeen.Before(cutoff) {
			continue
		}
		s.workers[w.Name] = w
	}
	s.snapshot = snapshot

	log.Info().
		Int("history_points", len(s.history)).
		Int("known_workers", len(s.workers)).
		Str("mode", s.stats.Mode.String()).
		Msg("State restored from database")
	return nil
}

// GetDonationStats returns a copy of the current stats.
func (s *Store) GetDonationStats() DonationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// UpdateDonationStats applies the patch field by field and persists only
// the changed fields.
func (s *Store) UpdateDonationStats(ctx context.Context, patch StatsPatch) {
	fields := make(map[string]interface{})

	s.mu.Lock()
	if patch.Mode != nil && patch.Mode.Valid() {
		s.stats.Mode = *patch.Mode
		fields["mode"] = patch.Mode.String()
	}
	if patch.ModeLabel != nil {
		s.stats.ModeLabel = *patch.ModeLabel
		fields["current_mode"] = *patch.ModeLabel
	}

	// A numeric field counts as changed only when its value actually moved;
	// a sync reporting the same averages must not mask staleness.
	numericChanged := false
	if patch.Avg1h != nil && *patch.Avg1h != s.stats.Avg1h {
		s.stats.Avg1h = *patch.Avg1h
		fields["avg_1h"] = *patch.Avg1h
		numericChanged = true
	}
	if patch.Avg24h != nil && *patch.Avg24h != s.stats.Avg24h {
		s.stats.Avg24h = *patch.Avg24h
		fields["avg_24h"] = *patch.Avg24h
		numericChanged = true
	}
	if patch.FailCount != nil && *patch.FailCount != s.stats.FailCount {
		s.stats.FailCount = *patch.FailCount
		fields["fail_count"] = *patch.FailCount
		numericChanged = true
	}
	if patch.AddDonated != nil && *patch.AddDonated != 0 {
		s.stats.TotalDonated += *patch.AddDonated
		fields["total_donated_secs"] = int64(s.stats.TotalDonated.Seconds())
		numericChanged = true
	}
	if numericChanged {
		s.stats.LastUpdate = s.now()
		fields["last_update"] = s.stats.LastUpdate.Unix()
	}
	s.mu.Unlock()

	if len(fields) == 0 {
		return
	}

	s.dbMu.Lock()
	defer s.dbMu.Unlock()
	if err := s.db.UpdateDonationFields(ctx, fields); err != nil {
		log.Error().Err(err).Msg("State Persistence Error: failed to save donation stats")
	}
}

// AppendHistoryPoint records one telemetry sample. The full measured
// hashrate is credited to the bucket of the mode active at sampling time;
// the two pool-specific columns always sum to the total.
func (s *Store) AppendHistoryPoint(ctx context.Context, totalHR float64) {
	now := s.now()
	point := model.HistoryPointDocument{
		Timestamp: now,
		TotalHR:   totalHR,
	}

	s.mu.Lock()
	if s.stats.Mode == types.ModeXvb {
		point.XvbHR = totalHR
	} else {
		point.P2PoolHR = totalHR
	}

	s.history = append(s.history, point)
	cutoff := now.Add(-s.historyRetention)
	for len(s.history) > 0 && s.history[0].Timestamp.Before(cutoff) {
		s.history = s.history[1:]
	}
	s.mu.Unlock()

	s.dbMu.Lock()
	defer s.dbMu.Unlock()
	if err := s.db.InsertHistoryPoint(ctx, &point); err != nil {
		log.Error().Err(err).Msg("State Persistence Error: failed to append history point")
		return
	}
	if _, err := s.db.PruneHistoryBefore(ctx, cutoff); err != nil {
		log.Error().Err(err).Msg("State Persistence Error: failed to prune history")
	}
}

// GetHistory returns the retained points, oldest first.
func (s *Store) GetHistory() []model.HistoryPointDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.HistoryPointDocument(nil), s.history...)
}

// UpsertKnownWorkers refreshes the worker registry from telemetry and
// prunes workers not seen within the retention window.
func (s *Store) UpsertKnownWorkers(ctx context.Context, workers []model.WorkerDocument) {
	now := s.now()

	upserted := make([]model.WorkerDocument, 0, len(workers))
	s.mu.Lock()
	for _, w := range workers {
		if w.Name == "" || w.IP == "" {
			continue
		}
		w.LastSeen = now
		s.workers[w.Name] = w
		upserted = append(upserted, w)
	}
	cutoff := now.Add(-s.workerRetention)
	for name, w := range s.workers {
		if w.LastSeen.Before(cutoff) {
			delete(s.workers, name)
		}
	}
	s.mu.Unlock()

	if len(upserted) == 0 {
		return
	}

	s.dbMu.Lock()
	defer s.dbMu.Unlock()
	if err := s.db.UpsertWorkers(ctx, upserted); err != nil {
		log.Error().Err(err).Msg("State Persistence Error: failed to upsert workers")
		return
	}
	if _, err := s.db.PruneWorkersBefore(ctx, cutoff); err != nil {
		log.Error().Err(err).Msg("State Persistence Error: failed to prune workers")
	}
}

// GetKnownWorkers returns a copy of the registry. A worker that is not
// currently reporting stats still appears here until it expires, so a
// switch can reach it.
func (s *Store) GetKnownWorkers() []model.WorkerDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers := make([]model.WorkerDocument, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	return workers
}

// SaveSnapshot stores the opaque aggregated-state blob, memory first for
// the fast read path, then durably.
func (s *Store) SaveSnapshot(ctx context.Context, blob []byte) {
	if len(blob) == 0 {
		return
	}

	s.mu.Lock()
	s.snapshot = append([]byte(nil), blob...)
	s.mu.Unlock()

	s.dbMu.Lock()
	defer s.dbMu.Unlock()
	if err := s.db.SaveSnapshot(ctx, blob); err != nil {
		log.Error().Err(err).Msg("State Persistence Error: failed to save snapshot")
	}
}

// LoadSnapshot returns the last snapshot blob, nil when none exists.
func (s *Store) LoadSnapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil
	}
	return append([]byte(nil), s.snapshot...)
}

// GetTiers returns a copy of the tier table, ordered by descending
// threshold.
func (s *Store) GetTiers() []config.TierConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]config.TierConfig(nil), s.tiers...)
}

// SetTiers replaces the tier table out of band; the engine only ever reads
// it through GetTiers.
func (s *Store) SetTiers(tiers []config.TierConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers = append([]config.TierConfig(nil), tiers...)
}
