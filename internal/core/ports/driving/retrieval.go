package driving

import (
	"context"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

// Tool names exposed to the agent loop and the MCP surface.
const (
	ToolSearchDocuments  = "search_documents"
	ToolReadDocument     = "read_document"
	ToolSearchInDocument = "search_in_document"
)

// RetrievalService exposes the archive to a language model as three pure
// read operations with fixed input schemas. All three return model-readable
// text and degrade to "not found"/"no results" messages instead of errors.
type RetrievalService interface {
	// SearchDocuments searches the whole archive and returns a structured
	// listing of matches, or a literal no-results message.
	SearchDocuments(ctx context.Context, query string) string

	// ReadDocument returns the full text for small documents, or a bounded
	// preview plus length and chunk-count metadata for long ones.
	ReadDocument(ctx context.Context, documentID int64) string

	// SearchInDocument searches one document's chunks and returns the
	// matches under per-chunk headers, relevance first.
	SearchInDocument(ctx context.Context, documentID int64, query string) string

	// Execute dispatches a named tool invocation with loosely-typed input,
	// coercing missing or malformed arguments to safe defaults.
	Execute(ctx context.Context, name string, input map[string]any) string

	// Hits returns the raw document hits for a query, for surfaces that
	// want structured results rather than model-readable text.
	Hits(ctx context.Context, query string) ([]domain.DocumentHit, error)
}
