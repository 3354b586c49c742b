// Package chunker splits document text into overlapping segments sized for
// retrieval and for a language model's context budget.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 3000

// DefaultOverlap is the default number of overlapping characters carried
// from one chunk into the next.
const DefaultOverlap = 300

// paragraphSep matches runs of one or more blank lines.
var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// Chunker splits text on paragraph boundaries into overlapping chunks.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSize sets the target chunk size in characters.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}

	return c
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int {
	return c.size
}

// Split divides text into overlapping chunks on paragraph boundaries.
//
// Text at or under the chunk size is returned as a single chunk. Otherwise
// paragraphs accumulate into the current chunk until the next one would
// overflow the size; the chunk is then finalized (trimmed) and the next one
// is seeded with the trailing overlap of the previous chunk. A single
// paragraph longer than the chunk size is never split and yields an
// oversized chunk.
//
// The function is pure and deterministic: equal inputs produce equal output.
func (c *Chunker) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(text) <= c.size {
		return []string{trimmed}
	}

	paragraphs := paragraphSep.Split(text, -1)

	var chunks []string
	var current string

	for _, para := range paragraphs {
		// If adding this paragraph would exceed the chunk size, finalize
		// the current chunk and seed the next one with the overlap.
		if len(current) > 0 && len(current)+len(para)+2 > c.size {
			chunks = append(chunks, strings.TrimSpace(current))
			overlap := current
			if len(overlap) > c.overlap {
				// Advance to a rune boundary so the seed never starts
				// mid-character.
				cut := len(overlap) - c.overlap
				for cut < len(overlap) && !utf8.RuneStart(overlap[cut]) {
					cut++
				}
				overlap = overlap[cut:]
			}
			current = overlap + "\n\n" + para
		} else {
			if current != "" {
				current += "\n\n"
			}
			current += para
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}
