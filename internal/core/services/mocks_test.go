package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
)

// stubStore is an in-memory ArchiveStore for service tests.
type stubStore struct {
	mu     sync.Mutex
	nextID int64
	docs   map[int64]*domain.Document
	chunks map[int64][]string
}

var _ driven.ArchiveStore = (*stubStore)(nil)

func newStubStore() *stubStore {
	return &stubStore{
		docs:   make(map[int64]*domain.Document),
		chunks: make(map[int64][]string),
	}
}

func (s *stubStore) InsertDocument(_ context.Context, filename, originalName, mimeType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.docs[s.nextID] = &domain.Document{
		ID:           s.nextID,
		Filename:     filename,
		OriginalName: originalName,
		MIMEType:     mimeType,
		Status:       domain.StatusProcessing,
	}
	return s.nextID, nil
}

func (s *stubStore) get(id int64) (*domain.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (s *stubStore) UpdateFilename(_ context.Context, id int64, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.get(id)
	if err != nil {
		return err
	}
	doc.Filename = filename
	return nil
}

func (s *stubStore) UpdateContent(_ context.Context, id int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.get(id)
	if err != nil {
		return err
	}
	doc.Content = content
	return nil
}

func (s *stubStore) UpdateEnrichment(_ context.Context, id int64, e domain.Enrichment, formattedHTML, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.get(id)
	if err != nil {
		return err
	}
	doc.Title = e.Title
	doc.Summary = e.Summary
	doc.Tags = e.Tags
	doc.FormattedHTML = formattedHTML
	doc.Slug = slug
	doc.Status = domain.StatusReady
	return nil
}

func (s *stubStore) UpdateError(_ context.Context, id int64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.get(id)
	if err != nil {
		return err
	}
	doc.Status = domain.StatusError
	doc.Summary = "Error: " + message
	return nil
}

func (s *stubStore) GetDocument(_ context.Context, id int64) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.get(id)
	if err != nil {
		return nil, err
	}
	copied := *doc
	return &copied, nil
}

func (s *stubStore) GetDocumentBySlug(_ context.Context, slug string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.Slug == slug {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []domain.Document
	for id := s.nextID; id > 0; id-- {
		if doc, ok := s.docs[id]; ok {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (s *stubStore) DeleteDocument(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	delete(s.chunks, id)
	return nil
}

func (s *stubStore) FullText(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.get(id)
	if err != nil || doc.Content == "" {
		return "", domain.ErrNotFound
	}
	return doc.Content, nil
}

func (s *stubStore) ReplaceChunks(_ context.Context, documentID int64, chunks []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[documentID] = chunks
	return nil
}

func (s *stubStore) ChunkCount(_ context.Context, documentID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks[documentID]), nil
}

// stubIndex is a scripted SearchIndex.
type stubIndex struct {
	docHits   []domain.DocumentHit
	chunkHits []domain.ChunkHit
	err       error

	lastQuery string
	lastDocID int64
}

var _ driven.SearchIndex = (*stubIndex)(nil)

func (s *stubIndex) SearchDocuments(_ context.Context, query string, _ int) ([]domain.DocumentHit, error) {
	s.lastQuery = query
	return s.docHits, s.err
}

func (s *stubIndex) SearchChunks(_ context.Context, documentID int64, query string, _ int) ([]domain.ChunkHit, error) {
	s.lastDocID = documentID
	s.lastQuery = query
	return s.chunkHits, s.err
}

// stubChatStore is an in-memory ChatStore.
type stubChatStore struct {
	mu       sync.Mutex
	sessions map[string]bool
	messages map[string][]domain.ChatMessage
}

var _ driven.ChatStore = (*stubChatStore)(nil)

func newStubChatStore() *stubChatStore {
	return &stubChatStore{
		sessions: make(map[string]bool),
		messages: make(map[string][]domain.ChatMessage),
	}
}

func (s *stubChatStore) GetOrCreateSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = true
	return nil
}

func (s *stubChatStore) AppendMessage(_ context.Context, sessionID string, role domain.ChatRole, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[sessionID] = append(s.messages[sessionID], domain.ChatMessage{Role: role, Content: content})
	return nil
}

func (s *stubChatStore) History(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatMessage(nil), s.messages[sessionID]...), nil
}

// scriptedStreamer replays one scripted event sequence per round.
type scriptedStreamer struct {
	mu       sync.Mutex
	rounds   [][]driven.StreamEvent
	requests []driven.ChatRequest
	err      error
}

var _ driven.ChatStreamer = (*scriptedStreamer)(nil)

func (s *scriptedStreamer) StreamChat(_ context.Context, req driven.ChatRequest) (<-chan driven.StreamEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	s.requests = append(s.requests, req)
	if len(s.rounds) == 0 {
		return nil, fmt.Errorf("scripted streamer exhausted after %d rounds", len(s.requests)-1)
	}

	round := s.rounds[0]
	s.rounds = s.rounds[1:]

	ch := make(chan driven.StreamEvent, len(round))
	for _, ev := range round {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

// textRound builds a scripted round that answers with plain text.
func textRound(text string) []driven.StreamEvent {
	return []driven.StreamEvent{
		{Type: driven.StreamText, Text: text},
		{Type: driven.StreamDone, Final: &driven.Message{
			Role:    "assistant",
			Content: []driven.ContentBlock{driven.TextBlock(text)},
		}},
	}
}

// toolRound builds a scripted round that requests one tool invocation.
func toolRound(id, name, input string) []driven.StreamEvent {
	return []driven.StreamEvent{
		{Type: driven.StreamToolUse, ToolUse: driven.ToolUse{ID: id, Name: name, Input: input}},
		{Type: driven.StreamDone, Final: &driven.Message{
			Role: "assistant",
			Content: []driven.ContentBlock{{
				Type: "tool_use", ID: id, Name: name, Input: []byte(`{}`),
			}},
		}},
	}
}

// recordingRetrieval records Execute calls and returns a fixed result.
type recordingRetrieval struct {
	mu     sync.Mutex
	calls  []toolCall
	result string
}

type toolCall struct {
	name  string
	input map[string]any
}

func (r *recordingRetrieval) SearchDocuments(context.Context, string) string      { return r.result }
func (r *recordingRetrieval) ReadDocument(context.Context, int64) string          { return r.result }
func (r *recordingRetrieval) SearchInDocument(context.Context, int64, string) string {
	return r.result
}

func (r *recordingRetrieval) Execute(_ context.Context, name string, input map[string]any) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, toolCall{name: name, input: input})
	return r.result
}

func (r *recordingRetrieval) Hits(context.Context, string) ([]domain.DocumentHit, error) {
	return nil, nil
}
