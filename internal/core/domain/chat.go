package domain

import "time"

// ChatRole identifies the author of a chat message.
type ChatRole string

// Chat message roles.
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatSession groups an ordered, append-only sequence of messages.
// Sessions are created lazily on first reference to an unseen id; the id
// itself is opaque and client-generated.
type ChatSession struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage is one turn in a session, ordered by insertion.
type ChatMessage struct {
	Role      ChatRole
	Content   string
	CreatedAt time.Time
}
