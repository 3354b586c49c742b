package mcp

import (
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval provides the archive search and read tools.
	Retrieval driving.RetrievalService

	// Archive provides document listing for resources. Optional.
	Archive driving.ArchiveService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Archive is optional: without it the resource listing is empty.
	return nil
}
