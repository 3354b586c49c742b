package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
)

// SearchDocumentsInput is the input schema for the search_documents tool.
type SearchDocumentsInput struct {
	Query string `json:"query" jsonschema:"keywords or phrases to find in documents"`
}

// ReadDocumentInput is the input schema for the read_document tool.
type ReadDocumentInput struct {
	DocumentID int64 `json:"document_id" jsonschema:"the document ID to read"`
}

// SearchInDocumentInput is the input schema for the search_in_document tool.
type SearchInDocumentInput struct {
	DocumentID int64  `json:"document_id" jsonschema:"the document ID to search within"`
	Query      string `json:"query" jsonschema:"what to search for within this document"`
}

// TextOutput wraps the model-readable text every retrieval tool returns.
type TextOutput struct {
	Text string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: driving.ToolSearchDocuments,
		Description: "Search across all documents in the archive. Returns matching document titles, " +
			"summaries, and text snippets. Use this to find relevant documents before reading them in full.",
	}, s.handleSearchDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: driving.ToolReadDocument,
		Description: "Read a document by its ID. For short documents, returns the full text. " +
			"For long documents, returns a preview and the chunk count — use search_in_document to find specific parts.",
	}, s.handleReadDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: driving.ToolSearchInDocument,
		Description: "Search within a specific long document for chunks matching a query. " +
			"Returns the most relevant sections/chunks.",
	}, s.handleSearchInDocument)
}

// handleSearchDocuments handles the search_documents tool invocation.
func (s *Server) handleSearchDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchDocumentsInput,
) (*mcp.CallToolResult, TextOutput, error) {
	return nil, TextOutput{Text: s.ports.Retrieval.SearchDocuments(ctx, input.Query)}, nil
}

// handleReadDocument handles the read_document tool invocation.
func (s *Server) handleReadDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadDocumentInput,
) (*mcp.CallToolResult, TextOutput, error) {
	return nil, TextOutput{Text: s.ports.Retrieval.ReadDocument(ctx, input.DocumentID)}, nil
}

// handleSearchInDocument handles the search_in_document tool invocation.
func (s *Server) handleSearchInDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInDocumentInput,
) (*mcp.CallToolResult, TextOutput, error) {
	return nil, TextOutput{Text: s.ports.Retrieval.SearchInDocument(ctx, input.DocumentID, input.Query)}, nil
}
