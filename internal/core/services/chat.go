package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// Chat limits.
const (
	// DefaultMaxMessageLength bounds one user message.
	DefaultMaxMessageLength = 10000

	// DefaultMessagesPerMinute is the per-session rate limit.
	DefaultMessagesPerMinute = 10

	// limiterIdleAfter is how long an unused session limiter survives
	// before the next sweep drops it.
	limiterIdleAfter = 5 * time.Minute
)

// sessionLimiter pairs a rate limiter with its last use, for eviction.
type sessionLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ChatService persists conversations and streams tool-augmented answers
// from the agent.
type ChatService struct {
	chatStore driven.ChatStore
	agent     *Agent

	maxMessageLength  int
	messagesPerMinute int

	mu        sync.Mutex
	limiters  map[string]*sessionLimiter
	lastSweep time.Time
}

// ChatOption configures a ChatService.
type ChatOption func(*ChatService)

// WithMaxMessageLength sets the user message size cap.
func WithMaxMessageLength(chars int) ChatOption {
	return func(s *ChatService) {
		if chars > 0 {
			s.maxMessageLength = chars
		}
	}
}

// WithMessagesPerMinute sets the per-session rate limit.
func WithMessagesPerMinute(n int) ChatOption {
	return func(s *ChatService) {
		if n > 0 {
			s.messagesPerMinute = n
		}
	}
}

// NewChatService creates a chat service. The agent may be nil when no model
// is configured; chat then reports domain.ErrLLMUnavailable.
func NewChatService(chatStore driven.ChatStore, agent *Agent, opts ...ChatOption) *ChatService {
	s := &ChatService{
		chatStore:         chatStore,
		agent:             agent,
		maxMessageLength:  DefaultMaxMessageLength,
		messagesPerMinute: DefaultMessagesPerMinute,
		limiters:          make(map[string]*sessionLimiter),
		lastSweep:         time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// limiter returns the session's rate limiter, creating it on first use.
// Limiters idle past limiterIdleAfter are swept out so long-lived servers
// don't accumulate one entry per session ever seen.
func (s *ChatService) limiter(sessionID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastSweep) >= limiterIdleAfter {
		for id, entry := range s.limiters {
			if now.Sub(entry.lastSeen) >= limiterIdleAfter {
				delete(s.limiters, id)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[sessionID]
	if !ok {
		perSecond := rate.Limit(float64(s.messagesPerMinute) / 60.0)
		entry = &sessionLimiter{limiter: rate.NewLimiter(perSecond, s.messagesPerMinute)}
		s.limiters[sessionID] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// StreamChat appends the user message to the session and streams the
// assistant's answer. The full answer text is persisted once the stream
// completes.
func (s *ChatService) StreamChat(ctx context.Context, sessionID, message string) (<-chan driving.ChatEvent, error) {
	message = strings.TrimSpace(message)
	if sessionID == "" || message == "" {
		return nil, fmt.Errorf("%w: session id and message are required", domain.ErrInvalidInput)
	}
	if len(message) > s.maxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, s.maxMessageLength)
	}
	if s.agent == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if !s.limiter(sessionID).Allow() {
		return nil, domain.ErrRateLimited
	}

	if err := s.chatStore.GetOrCreateSession(ctx, sessionID); err != nil {
		return nil, err
	}

	// History is read before the new message is appended so the agent sees
	// it exactly once, as the current turn.
	history, err := s.chatStore.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.chatStore.AppendMessage(ctx, sessionID, domain.RoleUser, message); err != nil {
		return nil, err
	}

	events := s.agent.Run(ctx, history, message)

	out := make(chan driving.ChatEvent)
	go s.pump(ctx, sessionID, events, out)
	return out, nil
}

// pump forwards agent events and records the assembled answer.
func (s *ChatService) pump(ctx context.Context, sessionID string, events <-chan driving.ChatEvent, out chan<- driving.ChatEvent) {
	defer close(out)

	var answer strings.Builder
	for ev := range events {
		if ev.Text != "" {
			answer.WriteString(ev.Text)
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			s.record(sessionID, answer.String())
			return
		}
	}

	s.record(sessionID, answer.String())
}

// record persists the assistant turn. Uses a fresh context: the stream's
// context may already be cancelled, and whatever was shown to the user
// belongs in the history.
func (s *ChatService) record(sessionID, answer string) {
	if strings.TrimSpace(answer) == "" {
		return
	}
	if err := s.chatStore.AppendMessage(context.Background(), sessionID, domain.RoleAssistant, answer); err != nil {
		logger.Error("recording assistant message: %v", err)
	}
}

// History returns the session's messages in insertion order.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	return s.chatStore.History(ctx, sessionID)
}
