// Package server implements the HTTP API that exposes the support assistant.
// The server is started by the `supportrag serve` CLI command.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/54b3r/supportrag-go/internal/budget"
	"github.com/54b3r/supportrag-go/internal/logging"
)

// maxBodyBytes caps the size of a request body accepted by the API.
const maxBodyBytes int64 = 1 << 20

// defaultErrorMessage is returned to clients when answering fails and no
// localised message is configured.
const defaultErrorMessage = "Något gick fel när jag försökte hämta svaret. Försök igen om en liten stund."

// New constructs a Server from the provided answerer and config.
func New(a answerer, cfg *Config) (*Server, error) {
	if a == nil {
		return nil, fmt.Errorf("server: assistant must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Must outlast ChatTimeout so a slow model can still reply.
		cfg.WriteTimeout = 3 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.ChatTimeout == 0 {
		cfg.ChatTimeout = 2 * time.Minute
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.HistoryTurns == 0 {
		cfg.HistoryTurns = 20
	}
	if cfg.HistoryTokens == 0 {
		cfg.HistoryTokens = budget.DefaultMaxHistoryTokens
	}
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = defaultErrorMessage
	}
	if cfg.MetricsRegistry == nil {
		cfg.MetricsRegistry = prometheus.DefaultRegisterer
	}
	if cfg.MetricsGatherer == nil {
		cfg.MetricsGatherer = prometheus.DefaultGatherer
	}

	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}

	if cfg.APIKey == "" {
		log.Warn("server: SUPPORTRAG_API_KEY not set, API authentication is disabled")
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)

	s := &Server{
		answerer: a,
		cfg:      cfg,
		log:      log,
		pingers:  cfg.Pingers,
		metrics:  newServerMetrics(cfg.MetricsRegistry),
		stopRL:   sync.OnceFunc(stopRL),
	}
	s.router = s.routes(rl)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// routes mounts all middleware and handlers on a fresh chi router.
func (s *Server) routes(rl *rateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler { return requestLogger(s.log, next) })
	r.Use(chimw.Recoverer)
	r.Use(sentryMiddleware)
	r.Use(chimw.RequestSize(maxBodyBytes))
	r.Use(s.metrics.instrument)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.MetricsGatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return authMiddleware(s.cfg.APIKey, next) })
		r.Use(rl.middleware)

		r.Post("/api/chat", s.handleChat)
		r.Get("/api/sessions/{id}", s.handleGetSession)
		r.Delete("/api/sessions/{id}", s.handleDeleteSession)
	})

	return r
}

// Handler returns the fully wired HTTP handler. Used by tests and by callers
// that embed the API in their own server.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer s.stopRL()

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// Close stops background goroutines without starting the listener. Tests
// that only use Handler call it via t.Cleanup.
func (s *Server) Close() { s.stopRL() }
