package collectors

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/moneropulse/xvb-arbiter/internal/config"
)

// debounce window for bursts of writes; the node rewrites several stats
// files back to back.
const watchDebounce = 2 * time.Second

// Watcher reacts to the stratum stats file being rewritten, so a freshly
// found share reaches the decision engine before the next scheduled
// telemetry tick.
type Watcher struct {
	cfg      *config.P2PoolConfig
	onChange func(ctx context.Context)
}

func NewWatcher(cfg *config.P2PoolConfig, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{cfg: cfg, onChange: onChange}
}

// Start blocks until the context is cancelled. The parent directory is
// watched rather than the file itself because the node replaces stats files
// atomically via rename.
func (w *Watcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create stats watcher: %w", err)
	}
	defer fsWatcher.Close()

	statsPath := w.cfg.StratumStatsPath()
	watchDir := filepath.Dir(statsPath)
	if err := fsWatcher.Add(watchDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchDir, err)
	}

	log.Info().Str("dir", watchDir).Msg("Watching stratum stats for share updates")

	var lastFired time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if event.Name != statsPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if time.Since(lastFired) < watchDebounce {
				continue
			}
			lastFired = time.Now()
			log.Debug().Str("event", event.Op.String()).Msg("Stratum stats changed, refreshing telemetry")
			w.onChange(ctx)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Stats watcher error")
		}
	}
}
