// Package assistant answers customer questions with retrieval-augmented
// generation: it short-circuits greetings, retrieves policy excerpts,
// assembles a grounded prompt, and invokes the chat model once.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/supportrag-go/internal/ingestion"
	"github.com/54b3r/supportrag-go/internal/logging"
	"github.com/54b3r/supportrag-go/internal/rag"
)

// DefaultCitationLimit is the number of retrieved chunks returned as sources.
const DefaultCitationLimit = 2

// previewRunes bounds the fallback citation preview.
const previewRunes = 160

// Template variable keys shared between the composer and the prompt set.
const (
	varQuestion    = "question"
	varContext     = "context"
	varChatHistory = "chat_history"
)

// Answer is the result of one question.
type Answer struct {
	// Answer is the reply text.
	Answer string `json:"answer"`
	// Sources cites at most the first two retrieved chunks. It is empty,
	// never nil, for small talk.
	Sources []Source `json:"sources"`
	// Smalltalk is true when the canned greeting was returned without
	// retrieval or a model call.
	Smalltalk bool `json:"-"`
}

// Config holds the dependencies required to construct an Assistant.
type Config struct {
	// Retriever fetches context for a question.
	Retriever rag.Retriever

	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel model.BaseChatModel

	// Prompts is the rendered prompt set.
	Prompts *PromptSet

	// Classifier detects small talk. Nil uses DefaultGreetings.
	Classifier *Classifier

	// TopK is the number of chunks retrieved per question (default: 4).
	TopK int

	// CitationLimit caps returned sources (default: 2).
	CitationLimit int
}

// Assistant is safe for concurrent use; it holds no per-request state.
type Assistant struct {
	// retriever fetches context for a question.
	retriever rag.Retriever

	// chain renders the prompt and invokes the chat model.
	chain compose.Runnable[map[string]any, *schema.Message]

	// prompts supplies the greeting, labels and version.
	prompts *PromptSet

	// classifier detects small talk.
	classifier *Classifier

	// topK is the retrieval depth.
	topK int

	// citations is the number of sources returned.
	citations int
}

// New constructs an Assistant and compiles its prompt → model chain.
func New(ctx context.Context, cfg *Config) (*Assistant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("assistant: config must not be nil")
	}
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("assistant: retriever must not be nil")
	}
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("assistant: chat model must not be nil")
	}
	if cfg.Prompts == nil {
		return nil, fmt.Errorf("assistant: prompts must not be nil")
	}

	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage(cfg.Prompts.System),
		schema.MessagesPlaceholder(varChatHistory, true),
		schema.UserMessage(cfg.Prompts.Question),
	)

	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(tpl).
		AppendChatModel(cfg.ChatModel).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to compile chain: %w", err)
	}

	classifier := cfg.Classifier
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = rag.DefaultTopK
	}
	citations := cfg.CitationLimit
	if citations <= 0 {
		citations = DefaultCitationLimit
	}

	return &Assistant{
		retriever:  cfg.Retriever,
		chain:      chain,
		prompts:    cfg.Prompts,
		classifier: classifier,
		topK:       topK,
		citations:  citations,
	}, nil
}

// Prompts returns the prompt set the assistant was built with.
func (a *Assistant) Prompts() *PromptSet { return a.prompts }

// Answer replies to question given the prior conversation. Greetings get the
// canned reply without any retrieval or model call. Otherwise the top-k
// chunks are retrieved, numbered into a context block, and sent to the model
// with the mapped history at temperature 0.
func (a *Assistant) Answer(ctx context.Context, question string, history []ChatMessage) (*Answer, error) {
	log := logging.FromContext(ctx)

	if a.classifier.IsSmalltalk(question) {
		log.Debug("assistant: small talk short-circuit")
		return &Answer{Answer: a.prompts.Greeting, Sources: []Source{}, Smalltalk: true}, nil
	}

	start := time.Now()
	docs, err := a.retriever.Retrieve(ctx, question, a.topK)
	if err != nil {
		return nil, fmt.Errorf("assistant: retrieval failed: %w", err)
	}

	msg, err := a.chain.Invoke(ctx, map[string]any{
		varQuestion:    question,
		varContext:     a.buildContext(docs),
		varChatHistory: MapHistory(history),
	}, compose.WithChatModelOption(model.WithTemperature(0)))
	if err != nil {
		return nil, fmt.Errorf("assistant: model invocation failed: %w: %w", rag.ErrLanguageModel, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("assistant: model returned no message: %w", rag.ErrLanguageModel)
	}

	log.Info("assistant: answered",
		slog.Int("retrieved", len(docs)),
		slog.Int("history", len(history)),
		slog.String("prompt_version", a.prompts.Version),
		slog.Duration("elapsed", time.Since(start)),
	)

	return &Answer{Answer: msg.Content, Sources: a.buildSources(docs)}, nil
}

// buildContext numbers each excerpt in rank order and joins them with a
// blank line.
func (a *Assistant) buildContext(docs []rag.Document) string {
	parts := make([]string, 0, len(docs))
	for i, d := range docs {
		parts = append(parts, a.prompts.SourceLabel+" "+strconv.Itoa(i+1)+":\n"+d.Content)
	}
	return strings.Join(parts, "\n\n")
}

// buildSources cites the first few retrieved chunks.
func (a *Assistant) buildSources(docs []rag.Document) []Source {
	n := min(len(docs), a.citations)
	sources := make([]Source, 0, n)
	for i, d := range docs[:n] {
		title := d.Metadata[rag.MetaSection]
		if title == "" {
			title = fmt.Sprintf("%s %d – %s", a.prompts.SourceLabel, i+1, a.prompts.DocumentName)
		}
		preview := d.Metadata[rag.MetaPreview]
		if preview == "" {
			preview = ingestion.Preview(d.Content, previewRunes)
		}
		sources = append(sources, Source{ID: d.ID, Title: title, Preview: preview})
	}
	return sources
}
