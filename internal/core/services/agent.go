package services

import (
	"context"
	"encoding/json"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

// DefaultMaxRounds bounds how many tool-use rounds one question may take.
const DefaultMaxRounds = 5

// agentMaxTokens is the per-round output budget.
const agentMaxTokens = 2048

// systemPrompt frames the assistant and its retrieval workflow.
const systemPrompt = `You are the GIOIA Archive assistant. You help team members find information across their document archive — meeting notes, strategy docs, plans, etc.

You have three tools:
- search_documents: search across all docs by keyword
- read_document: read a specific doc (returns full text for short docs, preview for long ones)
- search_in_document: search within a long document for relevant chunks

Workflow for answering questions:
1. search_documents to find relevant docs
2. read_document to get the content
3. If the doc is long, use search_in_document with specific keywords to find the relevant sections

Guidelines:
- Always search before answering substantive questions
- Cite which documents you drew information from
- If you can't find relevant documents, say so honestly
- Keep answers concise and actionable
- You can search multiple times with different queries if needed`

// Agent runs the bounded tool-use loop: stream a model round, execute any
// requested tools, feed results back, repeat until the model answers
// without tools or the round budget runs out.
type Agent struct {
	streamer  driven.ChatStreamer
	retrieval driving.RetrievalService
	maxRounds int
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithMaxRounds sets the tool-use round budget.
func WithMaxRounds(rounds int) AgentOption {
	return func(a *Agent) {
		if rounds > 0 {
			a.maxRounds = rounds
		}
	}
}

// NewAgent creates an agent over a model stream and the retrieval tools.
func NewAgent(streamer driven.ChatStreamer, retrieval driving.RetrievalService, opts ...AgentOption) *Agent {
	a := &Agent{
		streamer:  streamer,
		retrieval: retrieval,
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run streams the assistant's answer to userMessage given prior history.
// Text fragments arrive in generation order across rounds; the channel
// closes when the answer is complete or after a terminal error event.
func (a *Agent) Run(ctx context.Context, history []domain.ChatMessage, userMessage string) <-chan driving.ChatEvent {
	out := make(chan driving.ChatEvent)
	go a.run(ctx, history, userMessage, out)
	return out
}

func (a *Agent) run(ctx context.Context, history []domain.ChatMessage, userMessage string, out chan<- driving.ChatEvent) {
	defer close(out)

	messages := make([]driven.Message, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, driven.Message{
			Role:    string(msg.Role),
			Content: []driven.ContentBlock{driven.TextBlock(msg.Content)},
		})
	}
	messages = append(messages, driven.Message{
		Role:    string(domain.RoleUser),
		Content: []driven.ContentBlock{driven.TextBlock(userMessage)},
	})

	tools := ToolDefinitions()

	for round := 0; round < a.maxRounds; round++ {
		logger.Debug("agent round %d/%d", round+1, a.maxRounds)

		events, err := a.streamer.StreamChat(ctx, driven.ChatRequest{
			System:    systemPrompt,
			Tools:     tools,
			Messages:  messages,
			MaxTokens: agentMaxTokens,
		})
		if err != nil {
			emit(ctx, out, driving.ChatEvent{Err: err})
			return
		}

		var toolUses []driven.ToolUse
		var final *driven.Message

		for ev := range events {
			switch ev.Type {
			case driven.StreamText:
				if !emit(ctx, out, driving.ChatEvent{Text: ev.Text}) {
					return
				}
			case driven.StreamToolUse:
				toolUses = append(toolUses, ev.ToolUse)
			case driven.StreamDone:
				final = ev.Final
			case driven.StreamError:
				emit(ctx, out, driving.ChatEvent{Err: ev.Err})
				return
			}
		}

		if len(toolUses) == 0 || final == nil {
			return
		}

		// Feed the assistant turn and tool results back for the next round.
		messages = append(messages, *final)

		results := make([]driven.ContentBlock, 0, len(toolUses))
		for _, use := range toolUses {
			var input map[string]any
			if err := json.Unmarshal([]byte(use.Input), &input); err != nil {
				input = map[string]any{}
			}
			logger.Debug("tool %s(%v)", use.Name, input)
			result := a.retrieval.Execute(ctx, use.Name, input)
			results = append(results, driven.ToolResultBlock(use.ID, result))
		}
		messages = append(messages, driven.Message{
			Role:    string(domain.RoleUser),
			Content: results,
		})

		if ctx.Err() != nil {
			return
		}
	}
}

// emit sends an event unless the context is done. Returns false when the
// caller should stop.
func emit(ctx context.Context, out chan<- driving.ChatEvent, ev driving.ChatEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
