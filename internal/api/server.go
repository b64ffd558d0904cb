package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/db"
	"github.com/moneropulse/xvb-arbiter/internal/state"
)

const (
	requestTimeout = 5 * time.Second
	idleTimeout    = 10 * time.Second
)

// Server exposes the latest aggregated telemetry snapshot as JSON. It reads
// straight from the state store, so it keeps serving the warm-boot snapshot
// before the first telemetry tick completes.
type Server struct {
	addr  string
	store *state.Store
	db    db.DbInterface
}

func New(cfg *config.APIConfig, store *state.Store, database db.DbInterface) *Server {
	return &Server{
		addr:  fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		store: store,
		db:    database,
	}
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	router := chi.NewRouter()
	router.Get("/api/v1/state", s.handleState)
	router.Get("/healthcheck", s.handleHealthcheck)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      router,
		ReadTimeout:  requestTimeout,
		WriteTimeout: requestTimeout,
		IdleTimeout:  idleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Status API shutdown failed")
		}
	}()

	log.Info().Str("addr", s.addr).Msg("Starting status API")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status API server failed: %w", err)
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	blob := s.store.LoadSnapshot()
	if blob == nil {
		http.Error(w, `{"error":"no snapshot yet"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(blob); err != nil {
		log.Debug().Err(err).Msg("Failed to write state response")
	}
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("Healthcheck failed")
		http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
