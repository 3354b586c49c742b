package driven

import (
	"context"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

// ArchiveStore provides document and chunk persistence.
//
// Every document write is reflected in the search index synchronously and
// atomically with the underlying row (the SQLite implementation keeps the
// FTS tables in sync with triggers), so a reader never observes a document
// without its index entry or vice versa.
type ArchiveStore interface {
	// InsertDocument creates a document in StatusProcessing and returns
	// its assigned id.
	InsertDocument(ctx context.Context, filename, originalName, mimeType string) (int64, error)

	// UpdateFilename records the on-disk filename once the id is known.
	UpdateFilename(ctx context.Context, id int64, filename string) error

	// UpdateContent stores the extracted full text.
	UpdateContent(ctx context.Context, id int64, content string) error

	// UpdateEnrichment stores AI-generated metadata and moves the document
	// to StatusReady.
	UpdateEnrichment(ctx context.Context, id int64, e domain.Enrichment, formattedHTML, slug string) error

	// UpdateError moves the document to StatusError with a human-readable
	// message in place of the summary.
	UpdateError(ctx context.Context, id int64, message string) error

	// GetDocument retrieves a document by id. Returns domain.ErrNotFound
	// if it does not exist.
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)

	// GetDocumentBySlug retrieves a document by its URL slug.
	GetDocumentBySlug(ctx context.Context, slug string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first, without content.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document; its chunks cascade.
	DeleteDocument(ctx context.Context, id int64) error

	// FullText returns the document's stored text. Returns
	// domain.ErrNotFound for unknown ids or documents without content.
	FullText(ctx context.Context, id int64) (string, error)

	// ReplaceChunks deletes any existing chunks for the document and
	// persists the given ones with sequential zero-based indexes, as a
	// single atomic batch.
	ReplaceChunks(ctx context.Context, documentID int64, chunks []string) error

	// ChunkCount returns the number of persisted chunks (0 if none).
	ChunkCount(ctx context.Context, documentID int64) (int, error)
}

// SearchIndex answers ranked lexical queries over the archive.
//
// Queries are phrase matches first; if the full-text engine rejects the
// query syntax, implementations fall back to a substring match and never
// surface the syntax error to the caller.
type SearchIndex interface {
	// SearchDocuments returns documents matching the query across title,
	// summary, tags and content, best match first, each with a highlighted
	// snippet. Unknown terms yield an empty slice, not an error.
	SearchDocuments(ctx context.Context, query string, limit int) ([]domain.DocumentHit, error)

	// SearchChunks searches within one document's chunks, relevance order.
	// Unknown document ids yield an empty slice.
	SearchChunks(ctx context.Context, documentID int64, query string, limit int) ([]domain.ChunkHit, error)
}

// ChatStore provides chat session and message persistence.
type ChatStore interface {
	// GetOrCreateSession creates the session if unseen, otherwise touches
	// its updated_at timestamp.
	GetOrCreateSession(ctx context.Context, sessionID string) error

	// AppendMessage appends one message to the session's ordered history.
	AppendMessage(ctx context.Context, sessionID string, role domain.ChatRole, content string) error

	// History returns the session's messages in insertion order.
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
