package mcp

import (
	"context"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

// mockRetrieval is a mock implementation of driving.RetrievalService.
type mockRetrieval struct {
	result string

	lastQuery string
	lastDocID int64
}

func (m *mockRetrieval) SearchDocuments(_ context.Context, query string) string {
	m.lastQuery = query
	return m.result
}

func (m *mockRetrieval) ReadDocument(_ context.Context, documentID int64) string {
	m.lastDocID = documentID
	return m.result
}

func (m *mockRetrieval) SearchInDocument(_ context.Context, documentID int64, query string) string {
	m.lastDocID = documentID
	m.lastQuery = query
	return m.result
}

func (m *mockRetrieval) Execute(_ context.Context, _ string, _ map[string]any) string {
	return m.result
}

func (m *mockRetrieval) Hits(_ context.Context, _ string) ([]domain.DocumentHit, error) {
	return nil, nil
}

// mockArchive is a mock implementation of driving.ArchiveService.
type mockArchive struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockArchive) AddFile(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockArchive) AddURL(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockArchive) Reindex(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockArchive) Get(_ context.Context, _ int64) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockArchive) GetBySlug(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockArchive) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockArchive) Delete(_ context.Context, _ int64) error {
	return m.err
}
