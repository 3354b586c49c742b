package driving

import (
	"context"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

// ChatEvent is one event on a chat response stream. Events with a non-empty
// Text are incremental answer fragments in generation order. An event with
// Err set is terminal; the channel closes after it. A close without an
// error event is the normal end-of-answer marker.
type ChatEvent struct {
	Text string
	Err  error
}

// ChatService drives the archive assistant: it persists the conversation
// and streams tool-augmented answers.
type ChatService interface {
	// StreamChat appends the user message to the session and streams the
	// assistant's answer. The session is created lazily if unseen.
	StreamChat(ctx context.Context, sessionID, message string) (<-chan ChatEvent, error)

	// History returns the session's messages in insertion order.
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
