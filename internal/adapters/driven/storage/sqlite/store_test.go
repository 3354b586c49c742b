package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "gioia.db"), store.Path())
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()
}

func TestArchiveStore_InsertAndGet(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "abc123.txt", "notes.txt", "text/plain")
	require.NoError(t, err)
	assert.Positive(t, id)

	doc, err := archive.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "abc123.txt", doc.Filename)
	assert.Equal(t, "notes.txt", doc.OriginalName)
	assert.Equal(t, "text/plain", doc.MIMEType)
	assert.Equal(t, domain.StatusProcessing, doc.Status)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestArchiveStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ArchiveStore().GetDocument(context.Background(), 9999)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArchiveStore_EnrichmentMovesToReady(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "a.txt", "a.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, archive.UpdateContent(ctx, id, "the quick brown fox"))

	enrichment := domain.Enrichment{
		Title:   "Fox Notes",
		Summary: "Observations about a fox.",
		Tags:    []string{"animals", "notes"},
	}
	require.NoError(t, archive.UpdateEnrichment(ctx, id, enrichment, "<p>fox</p>", "fox-notes"))

	doc, err := archive.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, doc.Status)
	assert.True(t, doc.Ready())
	assert.Equal(t, "Fox Notes", doc.Title)
	assert.Equal(t, []string{"animals", "notes"}, doc.Tags)
	assert.Equal(t, "<p>fox</p>", doc.FormattedHTML)
	assert.Equal(t, "fox-notes", doc.Slug)

	bySlug, err := archive.GetDocumentBySlug(ctx, "fox-notes")
	require.NoError(t, err)
	assert.Equal(t, id, bySlug.ID)
}

func TestArchiveStore_UpdateErrorStoresMessage(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "b.pdf", "b.pdf", "application/pdf")
	require.NoError(t, err)
	require.NoError(t, archive.UpdateError(ctx, id, "extraction failed"))

	doc, err := archive.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, doc.Status)
	assert.Equal(t, "Error: extraction failed", doc.Summary)
}

func TestArchiveStore_UpdateMissingDocument(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	assert.ErrorIs(t, archive.UpdateContent(ctx, 42, "text"), domain.ErrNotFound)
	assert.ErrorIs(t, archive.UpdateError(ctx, 42, "boom"), domain.ErrNotFound)
	assert.ErrorIs(t, archive.DeleteDocument(ctx, 42), domain.ErrNotFound)
}

func TestArchiveStore_FullText(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "c.txt", "c.txt", "text/plain")
	require.NoError(t, err)

	// No content yet behaves as not found.
	_, err = archive.FullText(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, archive.UpdateContent(ctx, id, "full body text"))

	text, err := archive.FullText(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "full body text", text)
}

func TestArchiveStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	first, err := archive.InsertDocument(ctx, "1.txt", "1.txt", "text/plain")
	require.NoError(t, err)
	second, err := archive.InsertDocument(ctx, "2.txt", "2.txt", "text/plain")
	require.NoError(t, err)

	docs, err := archive.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, second, docs[0].ID)
	assert.Equal(t, first, docs[1].ID)
}

func TestArchiveStore_ReplaceChunks(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "d.txt", "d.txt", "text/plain")
	require.NoError(t, err)

	require.NoError(t, archive.ReplaceChunks(ctx, id, []string{"alpha", "beta", "gamma"}))

	count, err := archive.ChunkCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Replacing drops the old set entirely.
	require.NoError(t, archive.ReplaceChunks(ctx, id, []string{"delta"}))

	count, err = archive.ChunkCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestArchiveStore_DeleteCascadesChunks(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "e.txt", "e.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, archive.ReplaceChunks(ctx, id, []string{"one", "two"}))

	require.NoError(t, archive.DeleteDocument(ctx, id))

	count, err := archive.ChunkCount(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchIndex_SearchDocuments(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "f.txt", "f.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, archive.UpdateContent(ctx, id, "a treatise on beekeeping and honey production"))
	require.NoError(t, archive.UpdateEnrichment(ctx, id, domain.Enrichment{
		Title:   "Beekeeping",
		Summary: "All about bees.",
		Tags:    []string{"bees"},
	}, "", ""))

	other, err := archive.InsertDocument(ctx, "g.txt", "g.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, archive.UpdateContent(ctx, other, "unrelated text about sailing"))

	hits, err := store.SearchIndex().SearchDocuments(ctx, "beekeeping", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].ID)
	assert.Equal(t, "Beekeeping", hits[0].Title)
	assert.Contains(t, hits[0].Snippet, "<b>beekeeping</b>")
}

func TestSearchIndex_NoMatches(t *testing.T) {
	store := newTestStore(t)

	hits, err := store.SearchIndex().SearchDocuments(context.Background(), "nonexistent", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchIndex_QuotedQueryTreatedAsPhrase(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "h.txt", "h.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, archive.UpdateContent(ctx, id, `he said "hello world" and left`))

	// Embedded quotes must not break the query.
	hits, err := store.SearchIndex().SearchDocuments(ctx, `hello world`, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].ID)
}

func TestSearchIndex_LikeFallback(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	id, err := archive.InsertDocument(ctx, "i.txt", "i.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, archive.UpdateContent(ctx, id, "config key db_host=localhost"))

	idx := store.SearchIndex().(*searchIndex)

	hits, err := idx.searchDocumentsLike(ctx, "db_host", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].ID)
	assert.Empty(t, hits[0].Snippet)
}

func TestSearchIndex_SearchChunksScopedToDocument(t *testing.T) {
	store := newTestStore(t)
	archive := store.ArchiveStore()
	ctx := context.Background()

	first, err := archive.InsertDocument(ctx, "j.txt", "j.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, archive.ReplaceChunks(ctx, first, []string{
		"chapter one covers installation",
		"chapter two covers configuration",
	}))

	second, err := archive.InsertDocument(ctx, "k.txt", "k.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, archive.ReplaceChunks(ctx, second, []string{
		"configuration for another system",
	}))

	hits, err := store.SearchIndex().SearchChunks(ctx, first, "configuration", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Index)
	assert.Contains(t, hits[0].Content, "chapter two")
}

func TestSearchIndex_SearchChunksUnknownDocument(t *testing.T) {
	store := newTestStore(t)

	hits, err := store.SearchIndex().SearchChunks(context.Background(), 777, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestChatStore_SessionAndHistory(t *testing.T) {
	store := newTestStore(t)
	chat := store.ChatStore()
	ctx := context.Background()

	require.NoError(t, chat.GetOrCreateSession(ctx, "session-1"))
	// Re-creating an existing session is a touch, not an error.
	require.NoError(t, chat.GetOrCreateSession(ctx, "session-1"))

	require.NoError(t, chat.AppendMessage(ctx, "session-1", domain.RoleUser, "hello"))
	require.NoError(t, chat.AppendMessage(ctx, "session-1", domain.RoleAssistant, "hi there"))

	history, err := chat.History(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, "hi there", history[1].Content)
}

func TestChatStore_HistoryEmptySession(t *testing.T) {
	store := newTestStore(t)

	history, err := store.ChatStore().History(context.Background(), "unseen")
	require.NoError(t, err)
	assert.Empty(t, history)
}
