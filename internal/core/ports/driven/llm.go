package driven

import (
	"context"
	"encoding/json"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

// Tool describes one operation the model may invoke during a chat round.
type Tool struct {
	// Name is the tool identifier the model uses to invoke it.
	Name string `json:"name"`

	// Description tells the model what the tool does and when to use it.
	Description string `json:"description"`

	// InputSchema is the JSON schema for the tool's arguments.
	InputSchema map[string]any `json:"input_schema"`
}

// ContentBlock is one block of a conversation message. The Type field
// selects which of the remaining fields are meaningful; the struct marshals
// directly to the Anthropic Messages wire format.
type ContentBlock struct {
	Type string `json:"type"`

	// Text is set for "text" blocks.
	Text string `json:"text,omitempty"`

	// ID, Name and Input are set for "tool_use" blocks. Input is the
	// JSON-encoded argument object.
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// ToolUseID and Content are set for "tool_result" blocks. ToolUseID
	// correlates the result with the originating invocation.
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// TextBlock builds a plain text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// ToolResultBlock builds a tool_result content block for an invocation id.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: "tool_result", ToolUseID: toolUseID, Content: content}
}

// Message is one conversation turn.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ChatRequest is one generation round handed to the model.
type ChatRequest struct {
	// System is the system prompt for the round.
	System string

	// Tools are the operations the model may invoke.
	Tools []Tool

	// Messages is the conversation so far, oldest first.
	Messages []Message

	// MaxTokens bounds the generated output (0 uses the adapter default).
	MaxTokens int
}

// StreamEventType discriminates stream events.
type StreamEventType int

// Stream event kinds emitted by a ChatStreamer.
const (
	// StreamText carries an incremental text fragment.
	StreamText StreamEventType = iota

	// StreamToolUse carries one completed tool invocation request.
	StreamToolUse

	// StreamDone carries the finalized assistant message for the round.
	// It is the last event before the channel closes on success.
	StreamDone

	// StreamError carries a terminal error. The channel closes after it.
	StreamError
)

// ToolUse is a model-issued request to invoke a tool.
type ToolUse struct {
	// ID is the opaque correlation id for the invocation.
	ID string

	// Name is the requested tool name.
	Name string

	// Input is the JSON-encoded argument object, possibly empty.
	Input string
}

// StreamEvent is one event on a chat stream.
type StreamEvent struct {
	Type    StreamEventType
	Text    string
	ToolUse ToolUse
	Final   *Message
	Err     error
}

// ChatStreamer streams one model round of a tool-use conversation.
//
// The returned channel yields text fragments in generation order, then any
// completed tool invocations, then either StreamDone or StreamError, and
// closes. Cancelling the context stops the stream and releases the
// underlying connection.
type ChatStreamer interface {
	// StreamChat starts one generation round.
	StreamChat(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error)
}

// Enricher generates document metadata and formatted renderings.
type Enricher interface {
	// Enrich produces a title, summary and tag set for document text.
	// originalName is a filename hint for untitled content.
	Enrich(ctx context.Context, text, originalName string) (*domain.Enrichment, error)

	// Format renders document text as a constrained HTML article
	// (paragraphs and headings only).
	Format(ctx context.Context, text, originalName string) (string, error)
}
