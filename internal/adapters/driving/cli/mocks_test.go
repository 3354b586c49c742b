package cli

import (
	"context"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
)

// stubArchive is a stub implementation of driving.ArchiveService.
type stubArchive struct {
	document  *domain.Document
	documents []domain.Document
	err       error

	lastPath string
	lastURL  string
	lastID   int64
	lastSlug string
}

func (s *stubArchive) AddFile(_ context.Context, path string) (*domain.Document, error) {
	s.lastPath = path
	return s.document, s.err
}

func (s *stubArchive) AddURL(_ context.Context, url string) (*domain.Document, error) {
	s.lastURL = url
	return s.document, s.err
}

func (s *stubArchive) Reindex(_ context.Context, id int64) error {
	s.lastID = id
	return s.err
}

func (s *stubArchive) Get(_ context.Context, id int64) (*domain.Document, error) {
	s.lastID = id
	return s.document, s.err
}

func (s *stubArchive) GetBySlug(_ context.Context, slug string) (*domain.Document, error) {
	s.lastSlug = slug
	return s.document, s.err
}

func (s *stubArchive) List(_ context.Context) ([]domain.Document, error) {
	return s.documents, s.err
}

func (s *stubArchive) Delete(_ context.Context, id int64) error {
	s.lastID = id
	return s.err
}

// stubRetrieval is a stub implementation of driving.RetrievalService.
type stubRetrieval struct {
	text string
	hits []domain.DocumentHit
	err  error

	lastQuery string
	lastDocID int64
}

func (s *stubRetrieval) SearchDocuments(_ context.Context, query string) string {
	s.lastQuery = query
	return s.text
}

func (s *stubRetrieval) ReadDocument(_ context.Context, documentID int64) string {
	s.lastDocID = documentID
	return s.text
}

func (s *stubRetrieval) SearchInDocument(_ context.Context, documentID int64, query string) string {
	s.lastDocID = documentID
	s.lastQuery = query
	return s.text
}

func (s *stubRetrieval) Execute(_ context.Context, _ string, _ map[string]any) string {
	return s.text
}

func (s *stubRetrieval) Hits(_ context.Context, query string) ([]domain.DocumentHit, error) {
	s.lastQuery = query
	return s.hits, s.err
}

// stubChat is a stub implementation of driving.ChatService. Each call
// streams the configured events over a fresh channel.
type stubChat struct {
	events []driving.ChatEvent
	err    error

	calls       int
	lastSession string
	lastMessage string
}

func (s *stubChat) StreamChat(_ context.Context, sessionID, message string) (<-chan driving.ChatEvent, error) {
	s.calls++
	s.lastSession = sessionID
	s.lastMessage = message
	if s.err != nil {
		return nil, s.err
	}

	ch := make(chan driving.ChatEvent, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (s *stubChat) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return nil, nil
}

// setupTestServices installs stub services and returns a cleanup that
// restores the previous ones.
func setupTestServices() (archive *stubArchive, retrieval *stubRetrieval, chat *stubChat, cleanup func()) {
	oldArchive := archiveService
	oldRetrieval := retrievalService
	oldChat := chatService

	archive = &stubArchive{}
	retrieval = &stubRetrieval{}
	chat = &stubChat{}
	SetServices(&Services{Archive: archive, Retrieval: retrieval, Chat: chat})

	return archive, retrieval, chat, func() {
		archiveService = oldArchive
		retrievalService = oldRetrieval
		chatService = oldChat
	}
}
