// Package tracing wires optional observability backends: Langfuse traces of
// eino chain runs and Sentry error reporting. Both are no-ops when their
// credentials are absent.
package tracing

import (
	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// LangfuseConfig holds Langfuse credentials.
type LangfuseConfig struct {
	// Host is the Langfuse API host (default: http://localhost:3000).
	Host string
	// PublicKey and SecretKey authenticate the project.
	PublicKey string
	SecretKey string
}

// Enabled reports whether both keys are set.
func (c LangfuseConfig) Enabled() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

// SetupLangfuse returns a Langfuse callback handler and a flush function that
// must be called before process exit so buffered traces are sent. ok is false
// when Langfuse is not configured; handler and flush are then nil.
func SetupLangfuse(cfg LangfuseConfig) (handler callbacks.Handler, flush func(), ok bool) {
	if !cfg.Enabled() {
		return nil, nil, false
	}
	if cfg.Host == "" {
		cfg.Host = "http://localhost:3000"
	}

	handler, flush = langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      cfg.Host,
		PublicKey: cfg.PublicKey,
		SecretKey: cfg.SecretKey,
	})
	return handler, flush, true
}

// InstallLangfuse registers the Langfuse handler globally for every eino run
// in the process. It returns a flush function, a no-op when disabled.
func InstallLangfuse(cfg LangfuseConfig) (flush func(), ok bool) {
	handler, flush, ok := SetupLangfuse(cfg)
	if !ok {
		return func() {}, false
	}
	callbacks.AppendGlobalHandlers(handler)
	return flush, true
}
