// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// Gioia archive. It lets AI assistants search and read the document archive.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
