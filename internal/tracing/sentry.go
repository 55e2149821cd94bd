package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// serverName tags every Sentry event.
const serverName = "supportrag"

// SentryConfig holds the configuration for Sentry initialization.
type SentryConfig struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// InitSentry initializes the global Sentry client. It returns a function that
// flushes pending events. An empty DSN disables Sentry and returns a no-op.
func InitSentry(cfg SentryConfig) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serverName,
	})
	if err != nil {
		return func() {}, fmt.Errorf("tracing: sentry init failed: %w", err)
	}

	return func() { sentry.Flush(5 * time.Second) }, nil
}

// CaptureError reports err to the hub on ctx, falling back to the current hub.
// It is a no-op when Sentry is not initialized.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}
