// Package config resolves supportrag configuration.
//
// Configuration is layered: defaults → YAML file → .env file → process env.
// The YAML file and .env file only fill variables the environment does not
// already set, so an exported variable always wins. The typed [Config] is then
// built from the environment in one pass by [FromEnv].
//
// YAML file search order:
//  1. --config CLI flag (explicit path)
//  2. SUPPORTRAG_CONFIG environment variable
//  3. ~/.supportrag/config.yaml
//  4. ./supportrag.yaml
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration structure. Field names mirror the env var
// naming (lowercase, underscored).
type File struct {
	Assistant FileAssistant `yaml:"assistant"`
	Model     FileModel     `yaml:"model"`
	Embedding FileEmbedding `yaml:"embedding"`
	Store     FileStore     `yaml:"store"`
	S3        FileS3        `yaml:"s3"`
	Server    FileServer    `yaml:"server"`
	Logging   FileLogging   `yaml:"logging"`
	Tracing   FileTracing   `yaml:"tracing"`
}

// FileAssistant holds persona and retrieval settings.
type FileAssistant struct {
	Company            string   `yaml:"company"`
	CompanyDescription string   `yaml:"company_description"`
	DocumentName       string   `yaml:"document_name"`
	Language           string   `yaml:"language"`
	RetrievalK         int      `yaml:"retrieval_k"`
	Greetings          []string `yaml:"greetings"`
}

// FileModel holds chat model settings.
type FileModel struct {
	Provider  string `yaml:"provider"`
	MaxTokens int    `yaml:"max_tokens"`
	Ollama    struct {
		Host  string `yaml:"host"`
		Model string `yaml:"model"`
	} `yaml:"ollama"`
	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`
	Azure struct {
		APIKey     string `yaml:"api_key"`
		Endpoint   string `yaml:"endpoint"`
		Deployment string `yaml:"deployment"`
		APIVersion string `yaml:"api_version"`
	} `yaml:"azure"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	Ark struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"ark"`
}

// FileEmbedding holds embedding service settings.
type FileEmbedding struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
	Timeout    string `yaml:"timeout"`
}

// FileStore holds vector store settings.
type FileStore struct {
	Backend     string `yaml:"backend"`
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
	QueryName   string `yaml:"query_name"`
	Qdrant      struct {
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		Collection string `yaml:"collection"`
		APIKey     string `yaml:"api_key"`
		TLS        bool   `yaml:"tls"`
	} `yaml:"qdrant"`
}

// FileS3 holds the document loader's S3 settings.
type FileS3 struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// FileServer holds HTTP server settings.
type FileServer struct {
	Host          string  `yaml:"host"`
	Port          int     `yaml:"port"`
	APIKey        string  `yaml:"api_key"`
	RateLimit     float64 `yaml:"rate_limit"`
	RateBurst     int     `yaml:"rate_burst"`
	HistoryDB     string  `yaml:"history_db"`
	HistoryTurns  int     `yaml:"history_turns"`
	HistoryTokens int     `yaml:"history_tokens"`
}

// FileLogging holds structured logging settings.
type FileLogging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FileTracing holds Langfuse and Sentry settings.
type FileTracing struct {
	Langfuse struct {
		PublicKey string `yaml:"public_key"`
		SecretKey string `yaml:"secret_key"`
		Host      string `yaml:"host"`
	} `yaml:"langfuse"`
	Sentry struct {
		DSN              string  `yaml:"dsn"`
		Environment      string  `yaml:"environment"`
		TracesSampleRate float64 `yaml:"traces_sample_rate"`
	} `yaml:"sentry"`
}

// envMapping maps YAML fields to their env var names. Only non-empty YAML
// values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*File) string
}{
	{"ASSISTANT_COMPANY", func(c *File) string { return c.Assistant.Company }},
	{"ASSISTANT_COMPANY_DESCRIPTION", func(c *File) string { return c.Assistant.CompanyDescription }},
	{"ASSISTANT_DOCUMENT_NAME", func(c *File) string { return c.Assistant.DocumentName }},
	{"ASSISTANT_LANGUAGE", func(c *File) string { return c.Assistant.Language }},
	{"RETRIEVAL_K", func(c *File) string { return intStr(c.Assistant.RetrievalK) }},
	{"SMALLTALK_GREETINGS", func(c *File) string { return strings.Join(c.Assistant.Greetings, ",") }},
	{"MODEL_PROVIDER", func(c *File) string { return c.Model.Provider }},
	{"MODEL_MAX_TOKENS", func(c *File) string { return intStr(c.Model.MaxTokens) }},
	{"OLLAMA_HOST", func(c *File) string { return c.Model.Ollama.Host }},
	{"OLLAMA_MODEL", func(c *File) string { return c.Model.Ollama.Model }},
	{"OPENAI_API_KEY", func(c *File) string { return c.Model.OpenAI.APIKey }},
	{"OPENAI_MODEL", func(c *File) string { return c.Model.OpenAI.Model }},
	{"OPENAI_BASE_URL", func(c *File) string { return c.Model.OpenAI.BaseURL }},
	{"AZURE_OPENAI_API_KEY", func(c *File) string { return c.Model.Azure.APIKey }},
	{"AZURE_OPENAI_ENDPOINT", func(c *File) string { return c.Model.Azure.Endpoint }},
	{"AZURE_OPENAI_DEPLOYMENT", func(c *File) string { return c.Model.Azure.Deployment }},
	{"AZURE_OPENAI_API_VERSION", func(c *File) string { return c.Model.Azure.APIVersion }},
	{"GEMINI_API_KEY", func(c *File) string { return c.Model.Gemini.APIKey }},
	{"GEMINI_MODEL", func(c *File) string { return c.Model.Gemini.Model }},
	{"ARK_API_KEY", func(c *File) string { return c.Model.Ark.APIKey }},
	{"ARK_MODEL", func(c *File) string { return c.Model.Ark.Model }},
	{"ARK_BASE_URL", func(c *File) string { return c.Model.Ark.BaseURL }},
	{"EMBEDDING_PROVIDER", func(c *File) string { return c.Embedding.Provider }},
	{"EMBEDDING_MODEL", func(c *File) string { return c.Embedding.Model }},
	{"EMBEDDING_ENDPOINT", func(c *File) string { return c.Embedding.Endpoint }},
	{"EMBEDDING_API_KEY", func(c *File) string { return c.Embedding.APIKey }},
	{"EMBEDDING_DIMENSIONS", func(c *File) string { return intStr(c.Embedding.Dimensions) }},
	{"EMBEDDING_TIMEOUT", func(c *File) string { return c.Embedding.Timeout }},
	{"VECTOR_STORE", func(c *File) string { return c.Store.Backend }},
	{"DATABASE_URL", func(c *File) string { return c.Store.DatabaseURL }},
	{"STORE_TABLE", func(c *File) string { return c.Store.Table }},
	{"STORE_QUERY_NAME", func(c *File) string { return c.Store.QueryName }},
	{"QDRANT_HOST", func(c *File) string { return c.Store.Qdrant.Host }},
	{"QDRANT_PORT", func(c *File) string { return intStr(c.Store.Qdrant.Port) }},
	{"QDRANT_COLLECTION", func(c *File) string { return c.Store.Qdrant.Collection }},
	{"QDRANT_API_KEY", func(c *File) string { return c.Store.Qdrant.APIKey }},
	{"QDRANT_TLS", func(c *File) string { return boolStr(c.Store.Qdrant.TLS) }},
	{"S3_ENDPOINT", func(c *File) string { return c.S3.Endpoint }},
	{"S3_REGION", func(c *File) string { return c.S3.Region }},
	{"S3_ACCESS_KEY_ID", func(c *File) string { return c.S3.AccessKeyID }},
	{"S3_SECRET_ACCESS_KEY", func(c *File) string { return c.S3.SecretAccessKey }},
	{"S3_USE_PATH_STYLE", func(c *File) string { return boolStr(c.S3.UsePathStyle) }},
	{"SERVER_HOST", func(c *File) string { return c.Server.Host }},
	{"SERVER_PORT", func(c *File) string { return intStr(c.Server.Port) }},
	{"SUPPORTRAG_API_KEY", func(c *File) string { return c.Server.APIKey }},
	{"SERVER_RATE_LIMIT", func(c *File) string { return floatStr(c.Server.RateLimit) }},
	{"SERVER_RATE_BURST", func(c *File) string { return intStr(c.Server.RateBurst) }},
	{"SUPPORTRAG_HISTORY_DB", func(c *File) string { return c.Server.HistoryDB }},
	{"HISTORY_TURNS", func(c *File) string { return intStr(c.Server.HistoryTurns) }},
	{"HISTORY_TOKEN_BUDGET", func(c *File) string { return intStr(c.Server.HistoryTokens) }},
	{"LOG_LEVEL", func(c *File) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *File) string { return c.Logging.Format }},
	{"LANGFUSE_PUBLIC_KEY", func(c *File) string { return c.Tracing.Langfuse.PublicKey }},
	{"LANGFUSE_SECRET_KEY", func(c *File) string { return c.Tracing.Langfuse.SecretKey }},
	{"LANGFUSE_HOST", func(c *File) string { return c.Tracing.Langfuse.Host }},
	{"SENTRY_DSN", func(c *File) string { return c.Tracing.Sentry.DSN }},
	{"SENTRY_ENVIRONMENT", func(c *File) string { return c.Tracing.Sentry.Environment }},
	{"SENTRY_TRACES_SAMPLE_RATE", func(c *File) string { return floatStr(c.Tracing.Sentry.TracesSampleRate) }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten.
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue // env var already set
		}
		if err := os.Setenv(m.envKey, yamlVal); err != nil {
			return "", fmt.Errorf("config: failed to set %s: %w", m.envKey, err)
		}
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("SUPPORTRAG_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".supportrag", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("supportrag.yaml"); err == nil {
		return "supportrag.yaml"
	}

	return ""
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// floatStr converts a float to string, returning "" for zero values.
func floatStr(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// boolStr converts a bool to string, returning "" for false.
func boolStr(v bool) string {
	if !v {
		return ""
	}
	return "true"
}
