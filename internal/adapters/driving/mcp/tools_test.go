package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, retrieval *mockRetrieval, archive *mockArchive) *Server {
	t.Helper()
	ports := &Ports{Retrieval: retrieval}
	if archive != nil {
		ports.Archive = archive
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestHandleSearchDocuments(t *testing.T) {
	retrieval := &mockRetrieval{result: "two matching documents"}
	server := newTestServer(t, retrieval, nil)

	_, output, err := server.handleSearchDocuments(context.Background(), nil,
		SearchDocumentsInput{Query: "roadmap"})

	require.NoError(t, err)
	assert.Equal(t, "two matching documents", output.Text)
	assert.Equal(t, "roadmap", retrieval.lastQuery)
}

func TestHandleReadDocument(t *testing.T) {
	retrieval := &mockRetrieval{result: "document body"}
	server := newTestServer(t, retrieval, nil)

	_, output, err := server.handleReadDocument(context.Background(), nil,
		ReadDocumentInput{DocumentID: 12})

	require.NoError(t, err)
	assert.Equal(t, "document body", output.Text)
	assert.Equal(t, int64(12), retrieval.lastDocID)
}

func TestHandleSearchInDocument(t *testing.T) {
	retrieval := &mockRetrieval{result: "--- Chunk 2 ---\ncontent"}
	server := newTestServer(t, retrieval, nil)

	_, output, err := server.handleSearchInDocument(context.Background(), nil,
		SearchInDocumentInput{DocumentID: 5, Query: "budget"})

	require.NoError(t, err)
	assert.Equal(t, "--- Chunk 2 ---\ncontent", output.Text)
	assert.Equal(t, int64(5), retrieval.lastDocID)
	assert.Equal(t, "budget", retrieval.lastQuery)
}
