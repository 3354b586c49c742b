package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Default retrieval parameters.
const (
	// DefaultSearchLimit caps archive-wide search results.
	DefaultSearchLimit = 10

	// DefaultChunkSearchLimit caps within-document chunk results.
	DefaultChunkSearchLimit = 5

	// DefaultSmallDocThreshold is the content length under which
	// read_document returns the full text.
	DefaultSmallDocThreshold = 8000

	// DefaultPreviewChars is how much of a long document read_document
	// shows before pointing at search_in_document.
	DefaultPreviewChars = 2000
)

// RetrievalService exposes the archive to a language model as three read
// operations. Results are model-readable text; lookup failures degrade to
// explanatory messages rather than errors so the model can recover.
type RetrievalService struct {
	store driven.ArchiveStore
	index driven.SearchIndex

	searchLimit       int
	chunkSearchLimit  int
	smallDocThreshold int
	previewChars      int
}

// RetrievalOption configures a RetrievalService.
type RetrievalOption func(*RetrievalService)

// WithSearchLimit sets the archive-wide result cap.
func WithSearchLimit(limit int) RetrievalOption {
	return func(s *RetrievalService) {
		if limit > 0 {
			s.searchLimit = limit
		}
	}
}

// WithChunkSearchLimit sets the within-document result cap.
func WithChunkSearchLimit(limit int) RetrievalOption {
	return func(s *RetrievalService) {
		if limit > 0 {
			s.chunkSearchLimit = limit
		}
	}
}

// WithSmallDocThreshold sets the full-text cutover length.
func WithSmallDocThreshold(chars int) RetrievalOption {
	return func(s *RetrievalService) {
		if chars > 0 {
			s.smallDocThreshold = chars
		}
	}
}

// WithPreviewChars sets the long-document preview length.
func WithPreviewChars(chars int) RetrievalOption {
	return func(s *RetrievalService) {
		if chars > 0 {
			s.previewChars = chars
		}
	}
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(store driven.ArchiveStore, index driven.SearchIndex, opts ...RetrievalOption) *RetrievalService {
	s := &RetrievalService{
		store:             store,
		index:             index,
		searchLimit:       DefaultSearchLimit,
		chunkSearchLimit:  DefaultChunkSearchLimit,
		smallDocThreshold: DefaultSmallDocThreshold,
		previewChars:      DefaultPreviewChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToolDefinitions returns the tool declarations for the three retrieval
// operations, in the Messages API schema format. The agent loop and the MCP
// surface share these.
func ToolDefinitions() []driven.Tool {
	return []driven.Tool{
		{
			Name: driving.ToolSearchDocuments,
			Description: "Search across all documents in the archive. Returns matching document titles, " +
				"summaries, and text snippets. Use this to find relevant documents before reading them in full.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query — keywords or phrases to find in documents",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name: driving.ToolReadDocument,
			Description: "Read a document by its ID. For short documents, returns the full text. " +
				"For long documents (1hr+ transcripts etc.), returns a summary and tells you the chunk count — " +
				"use search_in_document to find specific parts.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "number",
						"description": "The document ID to read",
					},
				},
				"required": []string{"document_id"},
			},
		},
		{
			Name: driving.ToolSearchInDocument,
			Description: "Search within a specific long document for chunks matching a query. " +
				"Use this when read_document told you the document is too long to return in full. " +
				"Returns the most relevant sections/chunks.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "number",
						"description": "The document ID to search within",
					},
					"query": map[string]any{
						"type":        "string",
						"description": "What to search for within this document",
					},
				},
				"required": []string{"document_id", "query"},
			},
		},
	}
}

// searchResult is the JSON shape returned to the model per hit.
type searchResult struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Snippet *string  `json:"snippet"`
}

// SearchDocuments searches the whole archive.
func (s *RetrievalService) SearchDocuments(ctx context.Context, query string) string {
	hits, err := s.index.SearchDocuments(ctx, query, s.searchLimit)
	if err != nil {
		logger.Warn("search_documents failed: %v", err)
		return "No documents found matching that query."
	}
	if len(hits) == 0 {
		return "No documents found matching that query."
	}

	results := make([]searchResult, len(hits))
	for i, hit := range hits {
		results[i] = searchResult{
			ID:      hit.ID,
			Title:   hit.Title,
			Summary: hit.Summary,
			Tags:    hit.Tags,
		}
		if hit.Snippet != "" {
			snippet := hit.Snippet
			results[i].Snippet = &snippet
		}
	}

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Warn("encoding search results: %v", err)
		return "No documents found matching that query."
	}
	return string(encoded)
}

// ReadDocument returns the full text for small documents, or a bounded
// preview plus chunk metadata for long ones.
func (s *RetrievalService) ReadDocument(ctx context.Context, documentID int64) string {
	text, err := s.store.FullText(ctx, documentID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("read_document failed: %v", err)
		}
		return "Document not found or has no content."
	}

	// Short doc — return in full
	if len(text) <= s.smallDocThreshold {
		return text
	}

	// Long doc — return beginning + warn about length
	chunkCount, err := s.store.ChunkCount(ctx, documentID)
	if err != nil {
		logger.Warn("counting chunks: %v", err)
	}
	preview := text
	if len(preview) > s.previewChars {
		// Back off to a rune boundary so the preview never ends
		// mid-character.
		cut := s.previewChars
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	return fmt.Sprintf("[LONG DOCUMENT — %d characters, %d chunks. Showing first ~2000 chars. "+
		"Use search_in_document to find specific sections.]\n\n%s\n\n"+
		"[...truncated — %d chunks total. Use search_in_document(document_id=%d, query=\"your keywords\") to find relevant parts.]",
		len(text), chunkCount, preview, chunkCount, documentID)
}

// SearchInDocument searches one document's chunks.
func (s *RetrievalService) SearchInDocument(ctx context.Context, documentID int64, query string) string {
	hits, err := s.index.SearchChunks(ctx, documentID, query, s.chunkSearchLimit)
	if err != nil {
		logger.Warn("search_in_document failed: %v", err)
		hits = nil
	}
	if len(hits) == 0 {
		return fmt.Sprintf("No chunks matched %q in this document. Try different keywords.", query)
	}

	sections := make([]string, len(hits))
	for i, hit := range hits {
		sections[i] = fmt.Sprintf("--- Chunk %d ---\n%s", hit.Index+1, hit.Content)
	}
	return strings.Join(sections, "\n\n")
}

// Hits returns raw document hits for surfaces that want structured results.
func (s *RetrievalService) Hits(ctx context.Context, query string) ([]domain.DocumentHit, error) {
	return s.index.SearchDocuments(ctx, query, s.searchLimit)
}

// Execute dispatches a named tool invocation with loosely-typed input.
// Missing or malformed arguments coerce to zero values so a bad model call
// yields a "not found" message instead of a crash.
func (s *RetrievalService) Execute(ctx context.Context, name string, input map[string]any) string {
	switch name {
	case driving.ToolSearchDocuments:
		return s.SearchDocuments(ctx, stringArg(input, "query"))
	case driving.ToolReadDocument:
		return s.ReadDocument(ctx, intArg(input, "document_id"))
	case driving.ToolSearchInDocument:
		return s.SearchInDocument(ctx, intArg(input, "document_id"), stringArg(input, "query"))
	}
	return "Unknown tool."
}

// stringArg extracts a string argument, coercing non-strings via fmt.
func stringArg(input map[string]any, key string) string {
	value, ok := input[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// intArg extracts a numeric argument. JSON numbers arrive as float64;
// models occasionally send ids as strings.
func intArg(input map[string]any, key string) int64 {
	switch value := input[key].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case int:
		return int64(value)
	case json.Number:
		n, _ := value.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		return n
	}
	return 0
}
