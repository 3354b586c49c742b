// Package tui provides an interactive chat interface for the archive.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat streams tool-augmented answers and persists the conversation.
	Chat driving.ChatService

	// Archive lists the documents shown in the session header.
	Archive driving.ArchiveService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(chat driving.ChatService, archive driving.ArchiveService) *Ports {
	return &Ports{
		Chat:    chat,
		Archive: archive,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Archive == nil {
		return ErrMissingArchiveService
	}
	return nil
}
