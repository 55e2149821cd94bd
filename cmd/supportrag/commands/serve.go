package commands

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/54b3r/supportrag-go/internal/config"
	"github.com/54b3r/supportrag-go/internal/logging"
	"github.com/54b3r/supportrag-go/internal/server"
	"github.com/54b3r/supportrag-go/internal/store"
	"github.com/54b3r/supportrag-go/internal/tracing"
)

// historyDisabled is the SUPPORTRAG_HISTORY_DB value that turns off session
// persistence.
const historyDisabled = "disabled"

// NewServeCmd constructs the `supportrag serve` command, which starts the
// JSON HTTP API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the support assistant HTTP API",
		Long: `Start the JSON HTTP API.

Endpoints:
  POST   /api/chat            answer a question ({"question", "history", "sessionId"})
  GET    /api/sessions/{id}   stored turns of a session
  DELETE /api/sessions/{id}   forget a session
  GET    /api/health          liveness
  GET    /api/ready           dependency readiness
  GET    /metrics             Prometheus metrics

Set SUPPORTRAG_API_KEY to require a Bearer token on /api/chat and
/api/sessions. Session history is stored in SQLite at
SUPPORTRAG_HISTORY_DB (default ~/.supportrag/history.db); set it to
"disabled" to make clients send their own history.

Examples:
  supportrag serve
  supportrag serve --port 9090
  VECTOR_STORE=qdrant supportrag serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			flushSentry, err := tracing.InitSentry(sentryConfig(cfg))
			if err != nil {
				log.Warn("sentry disabled", slog.Any("error", err))
			} else if cfg.Telemetry.SentryDSN != "" {
				log.Info("sentry enabled", slog.String("environment", cfg.Telemetry.SentryEnvironment))
			}
			defer flushSentry()

			defer installLangfuse(cfg, log)()

			a, b, err := buildAssistant(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer b.Close()

			pingers := b.pingers
			var sessions store.SessionStore
			if s := openSessions(cfg.Server.HistoryDB, log); s != nil {
				defer func() { _ = s.Close() }()
				sessions = s
				pingers = append(pingers, server.NewPinger("sessions", s.Ping))
			}

			srv, err := server.New(a, &server.Config{
				Host:          cfg.Server.Host,
				Port:          cfg.Server.Port,
				Logger:        log,
				Pingers:       pingers,
				RateLimit:     cfg.Server.RateLimit,
				RateBurst:     cfg.Server.RateBurst,
				APIKey:        cfg.Server.APIKey,
				Sessions:      sessions,
				HistoryTurns:  cfg.Server.HistoryTurns,
				HistoryTokens: cfg.Server.HistoryTokens,
				ErrorMessage:  a.Prompts().ErrorMessage,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to (overrides SERVER_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on (overrides SERVER_PORT)")

	return cmd
}

// openSessions opens the SQLite session store at path, resolving the default
// location when path is empty. It returns nil when sessions are disabled or
// the store cannot be opened; the server then runs without session history.
func openSessions(path string, log *slog.Logger) *store.SQLiteStore {
	if path == historyDisabled {
		log.Info("history: disabled via SUPPORTRAG_HISTORY_DB=disabled")
		return nil
	}
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil
		}
		path = p
	}
	s, err := store.Open(path)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil
	}
	log.Info("history: store opened", slog.String("path", path))
	return s
}
