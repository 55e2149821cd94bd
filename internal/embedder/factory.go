// Package embedder provides rag.Embedder implementations for Ollama and the
// OpenAI/Azure OpenAI embeddings APIs, plus a factory that selects one from
// configuration.
package embedder

import (
	"fmt"
	"time"

	"github.com/54b3r/supportrag-go/internal/rag"
)

// Default embedding models per backend.
const (
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-small"

	defaultOllamaHost = "http://localhost:11434"

	// defaultOllamaDimensions is the output dimension of nomic-embed-text.
	// Other Ollama models may differ; set EMBEDDING_DIMENSIONS.
	defaultOllamaDimensions = 768
	// defaultOpenAIDimensions is the output dimension of text-embedding-3-small.
	defaultOpenAIDimensions = 1536
)

// Config selects and parameterises an embedding backend.
type Config struct {
	// Provider is one of ollama, openai, azure (default: ollama).
	Provider string
	// Model is the embedding model name. Empty selects the backend default.
	Model string
	// Endpoint is the service base URL. For ollama it defaults to
	// http://localhost:11434; for azure it is required.
	Endpoint string
	// APIKey authenticates openai and azure requests.
	APIKey string
	// Dimensions overrides the vector size. Zero uses the backend default.
	Dimensions int
	// AzureAPIVersion is the Azure OpenAI REST API version.
	AzureAPIVersion string
	// Timeout caps each embedding request. Zero means 60s.
	Timeout time.Duration
}

// DefaultDimensions returns the embedding vector size for cfg. Callers that
// need to provision a vector store (e.g. Qdrant collection creation) use this
// rather than hardcoding a value. An explicit Dimensions always wins.
func DefaultDimensions(cfg Config) int {
	if cfg.Dimensions > 0 {
		return cfg.Dimensions
	}
	switch providerOf(cfg) {
	case "ollama":
		return defaultOllamaDimensions
	default:
		return defaultOpenAIDimensions
	}
}

// New constructs a rag.Embedder for cfg.
func New(cfg Config) (rag.Embedder, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	switch providerOf(cfg) {
	case "ollama":
		host := cfg.Endpoint
		if host == "" {
			host = defaultOllamaHost
		}
		return NewOllamaEmbedder(&OllamaConfig{
			Host:    host,
			Model:   modelOrDefault(cfg.Model, defaultOllamaModel),
			Timeout: cfg.Timeout,
		}), nil

	case "openai":
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    cfg.Endpoint,
			APIKey:     cfg.APIKey,
			Model:      modelOrDefault(cfg.Model, defaultOpenAIModel),
			Dimensions: cfg.Dimensions,
		}), nil

	case "azure":
		apiVersion := cfg.AzureAPIVersion
		if apiVersion == "" {
			apiVersion = "2024-02-01"
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    cfg.Endpoint,
			APIKey:     cfg.APIKey,
			Model:      modelOrDefault(cfg.Model, defaultOpenAIModel),
			Dimensions: cfg.Dimensions,
			Azure:      true,
			APIVersion: apiVersion,
		}), nil

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q, valid values: ollama, openai, azure", cfg.Provider)
	}
}

func providerOf(cfg Config) string {
	if cfg.Provider == "" {
		return "ollama"
	}
	return cfg.Provider
}

func modelOrDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
