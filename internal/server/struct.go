package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/supportrag-go/internal/assistant"
	"github.com/54b3r/supportrag-go/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// ChatTimeout bounds a single /api/chat request including retrieval and
	// the model call (default: 2m).
	ChatTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks.
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on protected
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Sessions persists chat turns. Nil disables session history; clients
	// then send their own history with every request.
	Sessions store.SessionStore
	// HistoryTurns is the number of stored turns replayed per question
	// (default: 20).
	HistoryTurns int
	// HistoryTokens is the token budget for replayed history
	// (default: budget.DefaultMaxHistoryTokens).
	HistoryTokens int
	// ErrorMessage is the user-facing text returned when answering fails.
	ErrorMessage string
	// MetricsRegistry receives the server metrics. Defaults to
	// prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// answerer is the interface handleChat calls to answer a question.
// *assistant.Assistant satisfies it; tests inject a fake.
type answerer interface {
	Answer(ctx context.Context, question string, history []assistant.ChatMessage) (*assistant.Answer, error)
}

// Server is the HTTP server that exposes the assistant.
type Server struct {
	// answerer handles all questions.
	answerer answerer
	// cfg holds the resolved server configuration.
	cfg *Config
	// router is the chi router with all routes and middleware mounted.
	router http.Handler
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus collectors owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// Question is the customer's message.
	Question string `json:"question"`
	// History is the prior conversation. Ignored when SessionID refers to a
	// stored session.
	History []assistant.ChatMessage `json:"history,omitempty"`
	// SessionID continues a stored session. Empty starts a new one when
	// session history is enabled.
	SessionID string `json:"sessionId,omitempty"`
}

// chatResponse is the JSON response for POST /api/chat.
type chatResponse struct {
	Answer    string             `json:"answer"`
	Sources   []assistant.Source `json:"sources"`
	SessionID string             `json:"sessionId,omitempty"`
}

// sessionResponse is the JSON response for GET /api/sessions/{id}.
type sessionResponse struct {
	SessionID string                  `json:"sessionId"`
	Messages  []assistant.ChatMessage `json:"messages"`
}

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
}
