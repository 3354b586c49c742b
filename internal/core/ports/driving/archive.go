package driving

import (
	"context"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

// ArchiveService manages the document archive: ingest, listing, deletion.
type ArchiveService interface {
	// AddFile ingests a local file: stores it, extracts text, chunks and
	// indexes it, and enriches it with AI metadata. Returns the document
	// in its post-processing state.
	AddFile(ctx context.Context, path string) (*domain.Document, error)

	// AddURL fetches an HTML page and ingests its article text.
	AddURL(ctx context.Context, url string) (*domain.Document, error)

	// Reindex re-extracts and re-chunks an existing document's text.
	// Prior chunks are replaced atomically.
	Reindex(ctx context.Context, id int64) error

	// Get retrieves a document by id.
	Get(ctx context.Context, id int64) (*domain.Document, error)

	// GetBySlug retrieves a document by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Document, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document, its chunks and its stored file.
	Delete(ctx context.Context, id int64) error
}
