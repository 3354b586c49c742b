package domain

import "time"

// DocumentStatus tracks a document through the ingest pipeline.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusProcessing means the document was accepted but extraction or
	// enrichment has not finished yet.
	StatusProcessing DocumentStatus = "processing"

	// StatusReady means the document is fully indexed and enriched.
	StatusReady DocumentStatus = "ready"

	// StatusError means processing failed; Summary carries the error text.
	StatusError DocumentStatus = "error"
)

// Document represents an archived document with its extracted text and
// AI-generated metadata.
type Document struct {
	// ID is the numeric identifier assigned on insert.
	ID int64

	// Filename is the name of the stored file on disk.
	Filename string

	// OriginalName is the filename supplied at upload time.
	OriginalName string

	// MIMEType is the detected media type (text/plain, application/pdf, ...).
	MIMEType string

	// Title is the AI-generated title. Empty until enrichment completes.
	Title string

	// Summary is the AI-generated summary. For documents in StatusError it
	// holds a human-readable error message instead.
	Summary string

	// Tags is the ordered AI-generated tag set.
	Tags []string

	// Content is the full extracted plain text.
	Content string

	// FormattedHTML is an optional rendered article (paragraphs and
	// headings only), used by the document viewing surface.
	FormattedHTML string

	// Slug is an optional URL-safe identifier derived from the title.
	Slug string

	// Status is the processing state.
	Status DocumentStatus

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time
}

// Ready reports whether the document finished processing successfully.
func (d *Document) Ready() bool {
	return d.Status == StatusReady
}

// Chunk is a bounded, overlapping segment of a document's text, used for
// retrieval when the document is too large to read wholesale.
type Chunk struct {
	// DocumentID links to the owning Document. Chunks are cascade-deleted
	// with their document.
	DocumentID int64

	// Index is the zero-based position within the document.
	Index int

	// Content is the chunk text.
	Content string
}

// Enrichment is the AI-generated metadata for a document.
type Enrichment struct {
	Title   string
	Summary string
	Tags    []string
}
