package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/54b3r/supportrag-go/internal/assistant"
	"github.com/54b3r/supportrag-go/internal/budget"
	"github.com/54b3r/supportrag-go/internal/logging"
	"github.com/54b3r/supportrag-go/internal/tracing"
)

// Chat outcome label values for the chat metrics.
const (
	outcomeOK        = "ok"
	outcomeSmalltalk = "smalltalk"
	outcomeTimeout   = "timeout"
	outcomeError     = "error"
)

// handleChat handles POST /api/chat. It answers one question, optionally
// continuing a stored session, and replies with the answer and its sources.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	history := req.History
	sessionID := req.SessionID
	if s.cfg.Sessions != nil {
		if sessionID == "" {
			sessionID = uuid.NewString()
		} else {
			stored, err := s.cfg.Sessions.Recent(r.Context(), sessionID, s.cfg.HistoryTurns)
			if err != nil {
				log.Error("session load failed", slog.String("session_id", sessionID), slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "failed to load session")
				return
			}
			history = stored
		}
	}
	history = budget.TrimHistory(budget.Estimate(req.Question), history, s.cfg.HistoryTokens)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ChatTimeout)
	defer cancel()

	s.metrics.chatInFlight.Inc()
	start := time.Now()
	answer, err := s.answerer.Answer(ctx, req.Question, history)
	s.metrics.chatInFlight.Dec()

	if err != nil {
		outcome := outcomeError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeTimeout
		}
		s.metrics.observeChat(outcome, time.Since(start))
		log.Error("chat failed",
			slog.String("outcome", outcome),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		tracing.CaptureError(r.Context(), err)
		writeError(w, http.StatusBadGateway, s.cfg.ErrorMessage)
		return
	}

	outcome := outcomeOK
	if answer.Smalltalk {
		outcome = outcomeSmalltalk
	}
	s.metrics.observeChat(outcome, time.Since(start))
	log.Info("chat answered",
		slog.String("outcome", outcome),
		slog.Int("sources", len(answer.Sources)),
		slog.Int("history_turns", len(history)),
		slog.Duration("duration", time.Since(start)),
	)

	if s.cfg.Sessions != nil {
		s.persistTurns(r.Context(), sessionID, req.Question, answer)
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:    answer.Answer,
		Sources:   answer.Sources,
		SessionID: sessionID,
	})
}

// persistTurns stores the question and the answer. Failures are logged; the
// client still receives its answer.
func (s *Server) persistTurns(ctx context.Context, sessionID, question string, answer *assistant.Answer) {
	log := logging.FromContext(ctx)
	turns := []assistant.ChatMessage{
		{Role: assistant.RoleUser, Content: question},
		{Role: assistant.RoleAssistant, Content: answer.Answer, Sources: answer.Sources},
	}
	for _, t := range turns {
		if err := s.cfg.Sessions.Append(ctx, sessionID, t); err != nil {
			log.Warn("session append failed",
				slog.String("session_id", sessionID),
				slog.String("role", t.Role),
				slog.Any("error", err),
			)
			return
		}
	}
}

// handleGetSession handles GET /api/sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Sessions == nil {
		writeError(w, http.StatusNotFound, "session history is disabled")
		return
	}
	id := chi.URLParam(r, "id")
	msgs, err := s.cfg.Sessions.Recent(r.Context(), id, s.cfg.HistoryTurns)
	if err != nil {
		logging.FromContext(r.Context()).Error("session load failed", slog.String("session_id", id), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if len(msgs) == 0 {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, Messages: msgs})
}

// handleDeleteSession handles DELETE /api/sessions/{id}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Sessions == nil {
		writeError(w, http.StatusNotFound, "session history is disabled")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.cfg.Sessions.Delete(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Error("session delete failed", slog.String("session_id", id), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
