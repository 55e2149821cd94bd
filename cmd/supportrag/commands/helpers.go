package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"

	"github.com/54b3r/supportrag-go/internal/assistant"
	"github.com/54b3r/supportrag-go/internal/config"
	"github.com/54b3r/supportrag-go/internal/database"
	"github.com/54b3r/supportrag-go/internal/embedder"
	"github.com/54b3r/supportrag-go/internal/provider"
	"github.com/54b3r/supportrag-go/internal/rag"
	"github.com/54b3r/supportrag-go/internal/server"
	"github.com/54b3r/supportrag-go/internal/tracing"
)

// backends holds the constructed embedding client and vector store plus the
// readiness probes and cleanup they need.
type backends struct {
	embedder rag.Embedder
	store    rag.VectorStore
	pingers  []server.Pinger
	closers  []func()
}

// Close releases resources in reverse order of acquisition.
func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends builds the embedder and the vector store selected by
// VECTOR_STORE. The caller must Close the result.
func openBackends(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backends, error) {
	embCfg := cfg.Embedding.Embedder()
	embedder.WarnIfChatModel(embCfg, log)

	emb, err := embedder.New(embCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	b := &backends{embedder: emb}
	if p, ok := emb.(interface{ Ping(context.Context) error }); ok {
		b.pingers = append(b.pingers, server.NewPinger("embedding", p.Ping))
	}
	log.Info("embedder initialised",
		slog.String("provider", embCfg.Provider),
		slog.Int("dimensions", embedder.DefaultDimensions(embCfg)),
	)

	switch cfg.Store.Backend {
	case config.StorePostgres:
		pool, err := database.NewPool(ctx, cfg.Store.Database())
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)

		store, err := rag.NewPostgresStore(pool, cfg.Store.Postgres())
		if err != nil {
			b.Close()
			return nil, err
		}
		b.store = store
		b.pingers = append(b.pingers, server.NewPinger("postgres", store.Ping))
		log.Info("postgres store ready", slog.String("table", cfg.Store.Table), slog.String("query", cfg.Store.QueryName))

	case config.StoreQdrant:
		qcfg := cfg.Store.Qdrant(embedder.DefaultDimensions(embCfg))
		store, err := rag.NewQdrantStore(ctx, qcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", qcfg.Host, qcfg.Port, err)
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.store = store
		b.pingers = append(b.pingers, server.NewPinger("qdrant", store.Ping))
		log.Info("qdrant store ready",
			slog.String("host", qcfg.Host),
			slog.Int("port", qcfg.Port),
			slog.String("collection", qcfg.Collection),
		)

	case config.StoreMemory:
		b.store = rag.NewMemoryStore()
		log.Warn("memory vector store selected, documents are lost on exit")
	}

	return b, nil
}

// newChatModel constructs the language model selected by MODEL_PROVIDER.
func newChatModel(ctx context.Context, cfg *config.Config, log *slog.Logger) (model.BaseChatModel, error) {
	chatModel, err := provider.New(ctx, &cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise model provider: %w", err)
	}
	log.Info("provider initialised",
		slog.String("provider", string(cfg.Model.Backend)),
		slog.String("model", cfg.Model.ModelName()),
	)
	return chatModel, nil
}

// newAssistant wires retriever, model and prompts into an Assistant.
func newAssistant(ctx context.Context, cfg *config.Config, b *backends, chatModel model.BaseChatModel, log *slog.Logger) (*assistant.Assistant, error) {
	retriever, err := rag.NewRetriever(b.embedder, b.store, cfg.Assistant.RetrievalK)
	if err != nil {
		return nil, err
	}

	prompts, err := assistant.LoadPrompts(cfg.Assistant.Language, cfg.Assistant.PromptVars())
	if err != nil {
		return nil, err
	}

	a, err := assistant.New(ctx, &assistant.Config{
		Retriever:  retriever,
		ChatModel:  chatModel,
		Prompts:    prompts,
		Classifier: assistant.NewClassifier(cfg.Assistant.Greetings),
		TopK:       cfg.Assistant.RetrievalK,
	})
	if err != nil {
		return nil, err
	}
	log.Info("assistant ready",
		slog.String("company", cfg.Assistant.Company),
		slog.String("language", prompts.Language),
		slog.String("prompt_version", prompts.Version),
		slog.Int("k", cfg.Assistant.RetrievalK),
	)
	return a, nil
}

// buildAssistant constructs everything needed to answer. On success the
// caller must Close the returned backends.
func buildAssistant(ctx context.Context, cfg *config.Config, log *slog.Logger) (*assistant.Assistant, *backends, error) {
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	chatModel, err := newChatModel(ctx, cfg, log)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	if cfg.Model.Backend == provider.BackendOllama {
		b.pingers = append(b.pingers, server.NewOllamaPinger(cfg.Model.Ollama.Host))
	}

	a, err := newAssistant(ctx, cfg, b, chatModel, log)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return a, b, nil
}

// installLangfuse registers Langfuse tracing for all eino runs when
// configured. The returned flush is never nil.
func installLangfuse(cfg *config.Config, log *slog.Logger) func() {
	flush, ok := tracing.InstallLangfuse(langfuseConfig(cfg))
	if ok {
		log.Info("langfuse tracing enabled", slog.String("host", cfg.Telemetry.LangfuseHost))
	} else {
		log.Debug("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY or LANGFUSE_SECRET_KEY not set"))
	}
	return flush
}

func langfuseConfig(cfg *config.Config) tracing.LangfuseConfig {
	return tracing.LangfuseConfig{
		Host:      cfg.Telemetry.LangfuseHost,
		PublicKey: cfg.Telemetry.LangfusePublicKey,
		SecretKey: cfg.Telemetry.LangfuseSecretKey,
	}
}

func sentryConfig(cfg *config.Config) tracing.SentryConfig {
	return tracing.SentryConfig{
		DSN:              cfg.Telemetry.SentryDSN,
		Environment:      cfg.Telemetry.SentryEnvironment,
		TracesSampleRate: cfg.Telemetry.SentryTracesSampleRate,
		Debug:            cfg.Telemetry.SentryDebug,
	}
}
