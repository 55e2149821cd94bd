package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/54b3r/supportrag-go/internal/rag"
)

// embeddingsAPI is the slice of *openai.Client used by OpenAIEmbedder.
type embeddingsAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIConfig holds the settings for constructing an OpenAIEmbedder.
type OpenAIConfig struct {
	// BaseURL overrides the API endpoint. For Azure this is the resource endpoint.
	BaseURL string
	// APIKey is the bearer token (OpenAI) or api-key header value (Azure).
	APIKey string
	// Model is the embedding model or Azure deployment name.
	Model string
	// Dimensions requests a reduced output size when the model supports it.
	Dimensions int
	// Azure selects Azure OpenAI authentication and URL layout.
	Azure bool
	// APIVersion is the Azure OpenAI REST API version.
	APIVersion string
	// HTTPClient overrides the transport. Nil means a client with a 60s timeout.
	HTTPClient *http.Client
}

// OpenAIEmbedder implements rag.Embedder against the OpenAI or Azure OpenAI
// embeddings endpoint.
type OpenAIEmbedder struct {
	// api performs the embeddings call.
	api embeddingsAPI
	// model is the embedding model or deployment name.
	model string
	// dimensions is forwarded when positive.
	dimensions int
}

// NewOpenAIEmbedder constructs an OpenAIEmbedder from cfg.
func NewOpenAIEmbedder(cfg *OpenAIConfig) *OpenAIEmbedder {
	var clientCfg openai.ClientConfig
	if cfg.Azure {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, strings.TrimRight(cfg.BaseURL, "/"))
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
		// Deployment names are used verbatim.
		clientCfg.AzureModelMapperFunc = func(model string) string { return model }
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	} else {
		clientCfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &OpenAIEmbedder{
		api:        openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed returns the embedding for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedder: %w", classifyOpenAIError(err))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("openai embedder: response contains no embedding: %w", rag.ErrEmbeddingService)
	}
	return resp.Data[0].Embedding, nil
}

// classifyOpenAIError maps client errors onto the rag error classes.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &rag.EmbeddingStatusError{
			StatusCode: apiErr.HTTPStatusCode,
			Status:     fmt.Sprintf("%d %s", apiErr.HTTPStatusCode, http.StatusText(apiErr.HTTPStatusCode)),
			Body:       apiErr.Message,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &rag.EmbeddingStatusError{
			StatusCode: reqErr.HTTPStatusCode,
			Status:     reqErr.HTTPStatus,
			Body:       string(reqErr.Body),
		}
	}
	return fmt.Errorf("%w: %w", rag.ErrEmbeddingService, err)
}
