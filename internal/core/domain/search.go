package domain

import "time"

// DocumentHit is a single document-level search result. Hits are produced
// fresh per query and never persisted.
type DocumentHit struct {
	// ID is the matched document's identifier.
	ID int64

	// Title, Summary and Tags mirror the document metadata at query time.
	Title   string
	Summary string
	Tags    []string

	// Status is the document's processing state.
	Status DocumentStatus

	// CreatedAt is the document's upload time.
	CreatedAt time.Time

	// Snippet is a short match-highlighted excerpt. Match substrings are
	// wrapped in <b></b> markers. Empty on the fallback search path.
	Snippet string
}

// ChunkHit is a single chunk-level search result, scoped to one document.
type ChunkHit struct {
	// Index is the chunk's zero-based position within its document.
	Index int

	// Content is the full chunk text.
	Content string

	// Snippet is a short match-highlighted excerpt, empty on the fallback
	// search path.
	Snippet string
}
