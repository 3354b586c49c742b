package tui

import (
	"context"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
)

// stubChat is a stub implementation of driving.ChatService.
type stubChat struct {
	events chan driving.ChatEvent
	err    error

	lastSession string
	lastMessage string
}

func (s *stubChat) StreamChat(_ context.Context, sessionID, message string) (<-chan driving.ChatEvent, error) {
	s.lastSession = sessionID
	s.lastMessage = message
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func (s *stubChat) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return nil, nil
}

// stubArchive is a stub implementation of driving.ArchiveService.
type stubArchive struct {
	documents []domain.Document
	err       error
}

func (s *stubArchive) AddFile(_ context.Context, _ string) (*domain.Document, error) {
	return nil, s.err
}

func (s *stubArchive) AddURL(_ context.Context, _ string) (*domain.Document, error) {
	return nil, s.err
}

func (s *stubArchive) Reindex(_ context.Context, _ int64) error {
	return s.err
}

func (s *stubArchive) Get(_ context.Context, _ int64) (*domain.Document, error) {
	return nil, s.err
}

func (s *stubArchive) GetBySlug(_ context.Context, _ string) (*domain.Document, error) {
	return nil, s.err
}

func (s *stubArchive) List(_ context.Context) ([]domain.Document, error) {
	return s.documents, s.err
}

func (s *stubArchive) Delete(_ context.Context, _ int64) error {
	return s.err
}
