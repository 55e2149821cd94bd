// Package budget estimates token usage of chat history and trims persisted
// sessions before they are replayed to the model. The assistant supports
// several LLM backends with different tokenizers, so it uses a conservative
// character heuristic: 1 token ≈ 4 characters.
package budget

import (
	"unicode/utf8"

	"github.com/54b3r/supportrag-go/internal/assistant"
)

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// messageOverhead approximates per-message framing tokens in chat APIs.
	messageOverhead = 4

	// DefaultMaxHistoryTokens is the default history budget. It leaves room
	// in an 8k context for the system prompt, four excerpts and the answer.
	DefaultMaxHistoryTokens = 3000
)

// Estimate returns a rough token count for s. Runes are counted rather than
// bytes so non-ASCII text is not overcounted.
func Estimate(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	if t := n / charsPerToken; t > 0 {
		return t
	}
	return 1
}

// EstimateMessages returns the estimated total token count of msgs, summing
// role and content plus a fixed per-message overhead. Sources are not sent to
// the model and are not counted.
func EstimateMessages(msgs []assistant.ChatMessage) int {
	total := 0
	for _, m := range msgs {
		total += messageOverhead
		total += Estimate(m.Role)
		total += Estimate(m.Content)
	}
	return total
}

// TrimHistory drops the oldest turns until reserved + history fits within
// maxTokens. reserved covers input that is never trimmed, such as the current
// question. If even an empty history exceeds the budget an empty slice is
// returned; the caller decides whether that is worth a warning.
func TrimHistory(reserved int, history []assistant.ChatMessage, maxTokens int) []assistant.ChatMessage {
	for len(history) > 0 && reserved+EstimateMessages(history) > maxTokens {
		history = history[1:]
	}
	return history
}
