// Package anthropic provides LLM service adapters using the Anthropic API.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.ChatStreamer = (*LLMService)(nil)
	_ driven.Enricher     = (*LLMService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 4096

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// enrichMaxChars bounds how much document text is sent for metadata
	// generation.
	enrichMaxChars = 8000

	// formatMaxChars bounds how much document text is sent for HTML
	// formatting.
	formatMaxChars = 30000
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-sonnet-4-20250514).
	Model string

	// Timeout is the request timeout for non-streaming calls (default: 120s).
	Timeout time.Duration

	// MaxTokens is the default output budget per round (default: 4096).
	MaxTokens int
}

// LLMService provides chat streaming and document enrichment using the
// Anthropic Messages API.
type LLMService struct {
	client *http.Client

	// streamClient has no Timeout: a streamed round can legitimately take
	// longer than any fixed deadline, and cancellation comes from ctx.
	streamClient *http.Client

	baseURL   string
	apiKey    string
	model     string
	maxTokens int
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &LLMService{
		client:       &http.Client{Timeout: cfg.Timeout},
		streamClient: &http.Client{},
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
	}, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model     string           `json:"model"`
	Messages  []driven.Message `json:"messages"`
	MaxTokens int              `json:"max_tokens"`
	System    string           `json:"system,omitempty"`
	Tools     []driven.Tool    `json:"tools,omitempty"`
	Stream    bool             `json:"stream,omitempty"`
}

// messagesResponse is the non-streaming /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// streamEvent mirrors the union of SSE event payloads we care about.
type streamEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index"`

	ContentBlock struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`

	Delta struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
	} `json:"delta"`

	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StreamChat runs one generation round against /v1/messages with streaming
// enabled. Text deltas are forwarded as they arrive; tool invocations are
// accumulated from their partial JSON deltas and emitted complete.
func (s *LLMService) StreamChat(ctx context.Context, req driven.ChatRequest) (<-chan driven.StreamEvent, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = s.maxTokens
	}

	body := messagesRequest{
		Model:     s.model,
		Messages:  req.Messages,
		MaxTokens: maxTokens,
		System:    req.System,
		Tools:     req.Tools,
		Stream:    true,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", s.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := s.streamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("anthropic error (status %d)", resp.StatusCode)
		}
		return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, apiErrorMessage(respBody))
	}

	events := make(chan driven.StreamEvent)
	go s.readStream(ctx, resp.Body, events)

	return events, nil
}

// toolAccumulator collects a tool_use block's partial JSON deltas.
type toolAccumulator struct {
	id    string
	name  string
	input strings.Builder
}

// readStream consumes the SSE body, emitting events until message_stop or
// error. It owns closing both the body and the channel. Every send is
// guarded by ctx so a consumer that stops reading cannot strand the
// goroutine or hold the body open.
func (s *LLMService) readStream(ctx context.Context, body io.ReadCloser, events chan<- driven.StreamEvent) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	// Tool input deltas can make individual data lines large.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var final driven.Message
	final.Role = "assistant"

	var textBuf strings.Builder
	tools := make(map[int]*toolAccumulator)
	var toolOrder []int
	done := false

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(line[len("data: "):]), &ev); err != nil {
			logger.Debug("skipping malformed stream event: %v", err)
			continue
		}

		switch ev.Type {
		case "content_block_start":
			if ev.ContentBlock.Type == "tool_use" {
				tools[ev.Index] = &toolAccumulator{
					id:   ev.ContentBlock.ID,
					name: ev.ContentBlock.Name,
				}
				toolOrder = append(toolOrder, ev.Index)
			}

		case "content_block_delta":
			switch ev.Delta.Type {
			case "text_delta":
				textBuf.WriteString(ev.Delta.Text)
				if !send(ctx, events, driven.StreamEvent{Type: driven.StreamText, Text: ev.Delta.Text}) {
					return
				}
			case "input_json_delta":
				if acc, ok := tools[ev.Index]; ok {
					acc.input.WriteString(ev.Delta.PartialJSON)
				}
			}

		case "content_block_stop":
			if acc, ok := tools[ev.Index]; ok {
				use := driven.StreamEvent{Type: driven.StreamToolUse, ToolUse: driven.ToolUse{
					ID:    acc.id,
					Name:  acc.name,
					Input: acc.input.String(),
				}}
				if !send(ctx, events, use) {
					return
				}
			}

		case "error":
			send(ctx, events, driven.StreamEvent{
				Type: driven.StreamError,
				Err:  fmt.Errorf("anthropic stream error: %s", ev.Error.Message),
			})
			return

		case "message_stop":
			done = true
		}

		if done {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		send(ctx, events, driven.StreamEvent{Type: driven.StreamError, Err: fmt.Errorf("reading stream: %w", err)})
		return
	}
	if !done {
		send(ctx, events, driven.StreamEvent{Type: driven.StreamError, Err: fmt.Errorf("stream ended before message_stop")})
		return
	}

	// Assemble the final assistant message: text first, then tool_use
	// blocks in stream order.
	if textBuf.Len() > 0 {
		final.Content = append(final.Content, driven.TextBlock(textBuf.String()))
	}
	for _, idx := range toolOrder {
		acc := tools[idx]
		input := acc.input.String()
		if input == "" {
			input = "{}"
		}
		final.Content = append(final.Content, driven.ContentBlock{
			Type:  "tool_use",
			ID:    acc.id,
			Name:  acc.name,
			Input: json.RawMessage(input),
		})
	}

	send(ctx, events, driven.StreamEvent{Type: driven.StreamDone, Final: &final})
}

// send delivers an event unless the consumer is gone.
func send(ctx context.Context, events chan<- driven.StreamEvent, ev driven.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// complete performs a non-streaming single-turn request and returns the
// concatenated text blocks.
func (s *LLMService) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := messagesRequest{
		Model: s.model,
		Messages: []driven.Message{
			{Role: "user", Content: []driven.ContentBlock{driven.TextBlock(prompt)}},
		},
		MaxTokens: maxTokens,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("anthropic: no response content returned")
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	return result.String(), nil
}

// enrichPrompt asks for document metadata as a bare JSON object.
const enrichPrompt = `You are analyzing a document for a team archive system. The original filename is "%s".

Here is the document text:

<document>
%s
</document>

Generate a JSON object with these fields:
- "title": A clear, concise title for this document (max 80 chars)
- "summary": A 1-2 sentence summary of the key content (max 200 chars)
- "tags": An array of 2-5 relevant tags (lowercase, no spaces, use hyphens)

Respond with ONLY the JSON object, no markdown formatting or explanation.`

// Enrich produces a title, summary and tag set for document text.
func (s *LLMService) Enrich(ctx context.Context, text, originalName string) (*domain.Enrichment, error) {
	if len(text) > enrichMaxChars {
		text = text[:enrichMaxChars] + "\n\n[...truncated for enrichment]"
	}

	raw, err := s.complete(ctx, fmt.Sprintf(enrichPrompt, originalName, text), 1024)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}

	var parsed struct {
		Title   string   `json:"title"`
		Summary string   `json:"summary"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("enrich: parsing response %q: %w", truncate(raw, 200), err)
	}

	if parsed.Title == "" {
		parsed.Title = originalName
	}

	return &domain.Enrichment{
		Title:   truncate(parsed.Title, 200),
		Summary: truncate(parsed.Summary, 500),
		Tags:    capTags(parsed.Tags, 10),
	}, nil
}

// formatPrompt asks for a constrained HTML rendering of the document.
const formatPrompt = `You are formatting a document into a clean HTML article for a team knowledge base. The original filename is "%s".

Here is the document text:

<document>
%s
</document>

Generate HTML that follows this exact structure:
1. One <p> intro paragraph summarizing the document
2. Multiple <h2> section headings for each major topic
3. <p> content paragraphs under each heading
4. A final <h2>Standout Quotes</h2> section with 2-3 notable quotes formatted as:
   <p style="font-style: italic; color: #6a6560;">"Quote text here"<br/>— Speaker Name</p>

Rules:
- Output ONLY the HTML body content (no <html>, <head>, <body>, or <article> tags)
- Use only <p>, <h2>, <br/> tags — no <div>, <ul>, <strong>, <em>, or other tags
- Do NOT include a <h1> title — it's rendered separately
- Keep it concise but comprehensive — capture all key topics
- If the document has no clear quotes, pick 2 notable statements and attribute them
- If speakers aren't identifiable, omit the attribution line

Respond with ONLY the HTML, no markdown fences or explanation.`

// Format renders document text as a constrained HTML article.
func (s *LLMService) Format(ctx context.Context, text, originalName string) (string, error) {
	if len(text) > formatMaxChars {
		text = text[:formatMaxChars] + "\n\n[...truncated]"
	}

	raw, err := s.complete(ctx, fmt.Sprintf(formatPrompt, originalName, text), 4096)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

// Ping validates the service is reachable by checking the /v1/models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("anthropic: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// apiErrorMessage extracts the error message from an API error body,
// falling back to the raw body.
func apiErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(body)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func capTags(tags []string, max int) []string {
	if len(tags) > max {
		tags = tags[:max]
	}
	return tags
}
