package assistant

import (
	"github.com/cloudwego/eino/schema"
)

// Chat roles accepted in history. Any other role is ignored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Source is a citation returned with an answer.
type Source struct {
	// ID is the store identifier of the cited chunk.
	ID string `json:"id"`
	// Title is the section name or a numbered fallback label.
	Title string `json:"title"`
	// Preview is a short excerpt of the chunk.
	Preview string `json:"preview"`
}

// ChatMessage is one turn of a conversation as supplied by the caller.
type ChatMessage struct {
	// Role is "user" or "assistant"; other values are dropped.
	Role string `json:"role"`
	// Content is the message text.
	Content string `json:"content"`
	// Sources accompanies assistant turns; it is not sent to the model.
	Sources []Source `json:"sources,omitempty"`
}

// MapHistory converts caller history into model messages, preserving order
// and dropping turns whose role is neither user nor assistant.
func MapHistory(history []ChatMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleUser:
			out = append(out, schema.UserMessage(m.Content))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		}
	}
	return out
}
