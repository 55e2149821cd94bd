// Package provider constructs the eino chat model used to compose answers.
// Supported backends: Ollama, OpenAI, Azure OpenAI, Google Gemini and
// Volcengine Ark.
package provider

import (
	"fmt"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendOpenAI selects the OpenAI API or an OpenAI-compatible server.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendArk selects the Volcengine Ark model runtime.
	BackendArk Backend = "ark"
)

// ProviderOllama holds Ollama settings (OLLAMA_*).
type ProviderOllama struct {
	// Host is the Ollama base URL.
	Host string `split_words:"true" default:"http://localhost:11434"`
	// Model is the chat model tag.
	Model string `split_words:"true" default:"llama3"`
}

// ProviderOpenAI holds OpenAI settings (OPENAI_*).
type ProviderOpenAI struct {
	APIKey  string `split_words:"true"`
	Model   string `split_words:"true" default:"gpt-4o-mini"`
	BaseURL string `split_words:"true"`
}

// ProviderAzureOpenAI holds Azure OpenAI settings (AZURE_OPENAI_*).
type ProviderAzureOpenAI struct {
	APIKey   string `split_words:"true"`
	Endpoint string `split_words:"true"`
	// Deployment is sent verbatim as the model name; names such as
	// "gpt-4.1" must not be rewritten.
	Deployment string `split_words:"true"`
	APIVersion string `split_words:"true" default:"2024-02-01"`
}

// ProviderGemini holds Gemini settings (GEMINI_*).
type ProviderGemini struct {
	APIKey string `split_words:"true"`
	Model  string `split_words:"true" default:"gemini-2.0-flash"`
}

// ProviderArk holds Ark settings (ARK_*).
type ProviderArk struct {
	APIKey  string `split_words:"true"`
	Model   string `split_words:"true"`
	BaseURL string `split_words:"true"`
}

// Config selects a backend and carries the settings of every backend; only
// the selected one is read.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend `envconfig:"MODEL_PROVIDER" default:"ollama"`

	// MaxTokens caps the number of tokens generated per answer.
	MaxTokens int `envconfig:"MODEL_MAX_TOKENS" default:"1024"`

	Ollama      ProviderOllama      `envconfig:"OLLAMA"`
	OpenAI      ProviderOpenAI      `envconfig:"OPENAI"`
	AzureOpenAI ProviderAzureOpenAI `envconfig:"AZURE_OPENAI"`
	Gemini      ProviderGemini      `envconfig:"GEMINI"`
	Ark         ProviderArk         `envconfig:"ARK"`
}

// ModelName returns the model identifier of the selected backend, for logs.
func (c *Config) ModelName() string {
	switch c.Backend {
	case BackendOllama:
		return c.Ollama.Model
	case BackendOpenAI:
		return c.OpenAI.Model
	case BackendAzure:
		return c.AzureOpenAI.Deployment
	case BackendGemini:
		return c.Gemini.Model
	case BackendArk:
		return c.Ark.Model
	default:
		return ""
	}
}

// Validate reports the first missing setting for the selected backend, naming
// the environment variable that supplies it.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama:
		if c.Ollama.Host == "" {
			return fmt.Errorf("provider: OLLAMA_HOST is required for ollama backend")
		}
		if c.Ollama.Model == "" {
			return fmt.Errorf("provider: OLLAMA_MODEL is required for ollama backend")
		}
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("provider: OPENAI_API_KEY is required for openai backend")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("provider: OPENAI_MODEL is required for openai backend")
		}
	case BackendAzure:
		if c.AzureOpenAI.APIKey == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_API_KEY is required for azure backend")
		}
		if c.AzureOpenAI.Endpoint == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_ENDPOINT is required for azure backend")
		}
		if c.AzureOpenAI.Deployment == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_DEPLOYMENT is required for azure backend")
		}
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("provider: GEMINI_API_KEY is required for gemini backend")
		}
		if c.Gemini.Model == "" {
			return fmt.Errorf("provider: GEMINI_MODEL is required for gemini backend")
		}
	case BackendArk:
		if c.Ark.APIKey == "" {
			return fmt.Errorf("provider: ARK_API_KEY is required for ark backend")
		}
		if c.Ark.Model == "" {
			return fmt.Errorf("provider: ARK_MODEL is required for ark backend")
		}
	default:
		return fmt.Errorf("provider: unknown backend %q, valid values: ollama, openai, azure, gemini, ark", c.Backend)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("provider: MODEL_MAX_TOKENS must not be negative")
	}
	return nil
}
