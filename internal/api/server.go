// Package api serves stored fee records and pool sync status over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"poolFeeSync/internal/chain"
	"poolFeeSync/internal/metrics"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/storage"
)

// HeadSource reports the latest block of a chain.
type HeadSource interface {
	HeadBlockNumber(ctx context.Context) (uint64, error)
}

// Config holds API settings.
type Config struct {
	Addr     string
	CacheTTL time.Duration
}

// Server exposes the query endpoints.
type Server struct {
	cfg      Config
	router   *chi.Mux
	ledger   storage.LedgerReader
	registry *chain.Registry
	pools    []model.Pool
	heads    map[model.ChainType]HeadSource
	metrics  *metrics.Metrics
	logger   *zap.Logger

	listCache   *ttlcache.Cache[string, listResponse]
	statusCache *ttlcache.Cache[string, statusResponse]
}

func NewServer(
	cfg Config,
	ledger storage.LedgerReader,
	registry *chain.Registry,
	pools []model.Pool,
	heads map[model.ChainType]HeadSource,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		ledger:   ledger,
		registry: registry,
		pools:    pools,
		heads:    heads,
		metrics:  m,
		logger:   logger,
		listCache: ttlcache.New[string, listResponse](
			ttlcache.WithTTL[string, listResponse](cfg.CacheTTL),
			ttlcache.WithDisableTouchOnHit[string, listResponse](),
		),
		statusCache: ttlcache.New[string, statusResponse](
			ttlcache.WithTTL[string, statusResponse](cfg.CacheTTL),
			ttlcache.WithDisableTouchOnHit[string, statusResponse](),
		),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(recovery(s.logger))
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/transactions", s.handleListTransactions)
	s.router.Get("/transactions/{hash}", s.handleGetTransaction)
	s.router.Get("/sync/status", s.handleSyncStatus)
	s.router.Handle("/metrics", s.metrics.Handler())
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.listCache.Start()
	go s.statusCache.Start()
	defer s.listCache.Stop()
	defer s.statusCache.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
