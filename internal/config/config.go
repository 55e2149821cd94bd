package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/54b3r/supportrag-go/internal/assistant"
	"github.com/54b3r/supportrag-go/internal/database"
	"github.com/54b3r/supportrag-go/internal/embedder"
	"github.com/54b3r/supportrag-go/internal/ingestion"
	"github.com/54b3r/supportrag-go/internal/provider"
	"github.com/54b3r/supportrag-go/internal/rag"
)

// Vector store backends accepted by VECTOR_STORE.
const (
	StorePostgres = "postgres"
	StoreQdrant   = "qdrant"
	StoreMemory   = "memory"
)

// Config is the resolved runtime configuration, built once at startup and
// passed down explicitly.
type Config struct {
	Assistant AssistantConfig
	Model     provider.Config
	Embedding EmbeddingConfig
	Store     StoreConfig
	S3        S3Config
	Server    ServerConfig
	Telemetry TelemetryConfig
}

// AssistantConfig holds persona, language and retrieval settings.
type AssistantConfig struct {
	Company            string   `envconfig:"ASSISTANT_COMPANY" default:"TechNova AB"`
	CompanyDescription string   `envconfig:"ASSISTANT_COMPANY_DESCRIPTION" default:"ett svenskt e-handelsföretag som säljer teknikprodukter online"`
	DocumentName       string   `envconfig:"ASSISTANT_DOCUMENT_NAME" default:"TechNova AB FAQ/policy"`
	Language           string   `envconfig:"ASSISTANT_LANGUAGE" default:"sv"`
	RetrievalK         int      `envconfig:"RETRIEVAL_K" default:"4"`
	Greetings          []string `envconfig:"SMALLTALK_GREETINGS"`
}

// PromptVars returns the values rendered into the prompt set.
func (a AssistantConfig) PromptVars() assistant.PromptVars {
	return assistant.PromptVars{
		Company:            a.Company,
		CompanyDescription: a.CompanyDescription,
		DocumentName:       a.DocumentName,
	}
}

// EmbeddingConfig holds embedding service settings.
type EmbeddingConfig struct {
	Provider        string        `envconfig:"EMBEDDING_PROVIDER" default:"ollama"`
	Model           string        `envconfig:"EMBEDDING_MODEL"`
	Endpoint        string        `envconfig:"EMBEDDING_ENDPOINT"`
	APIKey          string        `envconfig:"EMBEDDING_API_KEY"`
	Dimensions      int           `envconfig:"EMBEDDING_DIMENSIONS"`
	AzureAPIVersion string        `envconfig:"EMBEDDING_AZURE_API_VERSION"`
	Timeout         time.Duration `envconfig:"EMBEDDING_TIMEOUT" default:"60s"`
}

// Embedder converts the settings to an embedder.Config.
func (e EmbeddingConfig) Embedder() embedder.Config {
	return embedder.Config{
		Provider:        e.Provider,
		Model:           e.Model,
		Endpoint:        e.Endpoint,
		APIKey:          e.APIKey,
		Dimensions:      e.Dimensions,
		AzureAPIVersion: e.AzureAPIVersion,
		Timeout:         e.Timeout,
	}
}

// StoreConfig holds vector store settings.
type StoreConfig struct {
	Backend     string `envconfig:"VECTOR_STORE" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	MaxConns    int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	Table       string `envconfig:"STORE_TABLE" default:"documents"`
	QueryName   string `envconfig:"STORE_QUERY_NAME" default:"match_documents"`

	QdrantHost       string `envconfig:"QDRANT_HOST" default:"localhost"`
	QdrantPort       int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION" default:"documents"`
	QdrantAPIKey     string `envconfig:"QDRANT_API_KEY"`
	QdrantTLS        bool   `envconfig:"QDRANT_TLS"`
}

// Database returns the pool settings for the postgres backend.
func (s StoreConfig) Database() database.Config {
	return database.Config{URL: s.DatabaseURL, MaxConns: s.MaxConns}
}

// Postgres returns the table and function names for the postgres backend.
func (s StoreConfig) Postgres() rag.PostgresConfig {
	return rag.PostgresConfig{Table: s.Table, QueryName: s.QueryName}
}

// Qdrant returns the qdrant backend settings for vectors of size dim.
func (s StoreConfig) Qdrant(dim int) *rag.QdrantConfig {
	return &rag.QdrantConfig{
		Host:       s.QdrantHost,
		Port:       s.QdrantPort,
		Collection: s.QdrantCollection,
		VectorSize: uint64(dim), //nolint:gosec // dim is validated positive
		APIKey:     s.QdrantAPIKey,
		UseTLS:     s.QdrantTLS,
	}
}

// S3Config holds object storage settings for the document loader.
type S3Config struct {
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `envconfig:"S3_USE_PATH_STYLE"`
}

// Loader returns the document loader settings.
func (s S3Config) Loader() ingestion.LoaderConfig {
	return ingestion.LoaderConfig{S3: ingestion.S3Config{
		Endpoint:        s.Endpoint,
		Region:          s.Region,
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		UsePathStyle:    s.UsePathStyle,
	}}
}

// ServerConfig holds HTTP server and session history settings.
type ServerConfig struct {
	Host      string  `envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port      int     `envconfig:"SERVER_PORT" default:"8080"`
	APIKey    string  `envconfig:"SUPPORTRAG_API_KEY"`
	RateLimit float64 `envconfig:"SERVER_RATE_LIMIT" default:"2"`
	RateBurst int     `envconfig:"SERVER_RATE_BURST" default:"5"`

	// HistoryDB is the SQLite session database path. Empty selects
	// ~/.supportrag/history.db; "disabled" turns session persistence off.
	HistoryDB     string `envconfig:"SUPPORTRAG_HISTORY_DB"`
	HistoryTurns  int    `envconfig:"HISTORY_TURNS" default:"20"`
	HistoryTokens int    `envconfig:"HISTORY_TOKEN_BUDGET" default:"3000"`
}

// TelemetryConfig holds Langfuse tracing and Sentry error reporting settings.
type TelemetryConfig struct {
	LangfuseHost      string `envconfig:"LANGFUSE_HOST" default:"http://localhost:3000"`
	LangfusePublicKey string `envconfig:"LANGFUSE_PUBLIC_KEY"`
	LangfuseSecretKey string `envconfig:"LANGFUSE_SECRET_KEY"`

	SentryDSN              string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment      string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	SentryTracesSampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	SentryDebug            bool    `envconfig:"SENTRY_DEBUG"`
}

// LoadDotEnv loads variables from the given .env files (default: ./.env)
// without overriding the environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: failed to load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds a Config from the environment and validates it. Model
// settings are validated by provider.New, so commands that never call the
// model do not need model credentials.
func FromEnv() (*Config, error) {
	var cfg Config
	groups := []struct {
		name string
		target any
	}{
		{"assistant", &cfg.Assistant},
		{"model", &cfg.Model},
		{"embedding", &cfg.Embedding},
		{"store", &cfg.Store},
		{"s3", &cfg.S3},
		{"server", &cfg.Server},
		{"telemetry", &cfg.Telemetry},
	}
	for _, g := range groups {
		if err := envconfig.Process("", g.target); err != nil {
			return nil, fmt.Errorf("config: %s: %w", g.name, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Assistant.RetrievalK <= 0 {
		return fmt.Errorf("config: RETRIEVAL_K must be positive, got %d", c.Assistant.RetrievalK)
	}
	if c.Assistant.Company == "" {
		return fmt.Errorf("config: ASSISTANT_COMPANY must not be empty")
	}
	if err := embedder.Validate(c.Embedding.Embedder()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Store.Backend {
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres vector store")
		}
	case StoreQdrant, StoreMemory:
	default:
		return fmt.Errorf("config: unknown VECTOR_STORE %q, valid values: postgres, qdrant, memory", c.Store.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: SERVER_PORT out of range: %d", c.Server.Port)
	}
	if r := c.Telemetry.SentryTracesSampleRate; r < 0 || r > 1 {
		return fmt.Errorf("config: SENTRY_TRACES_SAMPLE_RATE must be within [0, 1], got %g", r)
	}
	return nil
}
