package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gioia-labs/gioia-archive/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.gioia/data/gioia.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".gioia", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "gioia.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ArchiveStore returns an ArchiveStore interface backed by this store.
func (s *Store) ArchiveStore() driven.ArchiveStore {
	return &archiveStore{store: s}
}

// SearchIndex returns a SearchIndex interface backed by this store.
func (s *Store) SearchIndex() driven.SearchIndex {
	return &searchIndex{store: s}
}

// ChatStore returns a ChatStore interface backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// marshalTags encodes a tag slice as the JSON stored in the tags column.
// Nil encodes as the empty array so the column never holds SQL NULL.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshalling tags: %w", err)
	}
	return string(raw), nil
}

// unmarshalTags decodes the tags column, tolerating NULL and empty strings.
func unmarshalTags(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		return nil
	}
	return tags
}

// ==================== Archive Store ====================

// archiveStore implements driven.ArchiveStore.
type archiveStore struct {
	store *Store
}

var _ driven.ArchiveStore = (*archiveStore)(nil)

// InsertDocument creates a document in StatusProcessing and returns its id.
func (a *archiveStore) InsertDocument(ctx context.Context, filename, originalName, mimeType string) (int64, error) {
	result, err := a.store.db.ExecContext(ctx, `
		INSERT INTO documents (filename, original_name, mime_type) VALUES (?, ?, ?)
	`, filename, originalName, mimeType)
	if err != nil {
		return 0, fmt.Errorf("inserting document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted id: %w", err)
	}
	return id, nil
}

// UpdateFilename records the on-disk filename once the id is known.
func (a *archiveStore) UpdateFilename(ctx context.Context, id int64, filename string) error {
	result, err := a.store.db.ExecContext(ctx,
		"UPDATE documents SET filename = ? WHERE id = ?", filename, id)
	if err != nil {
		return fmt.Errorf("updating filename: %w", err)
	}
	return checkAffected(result)
}

// UpdateContent stores the extracted full text.
func (a *archiveStore) UpdateContent(ctx context.Context, id int64, content string) error {
	result, err := a.store.db.ExecContext(ctx,
		"UPDATE documents SET content_text = ? WHERE id = ?", content, id)
	if err != nil {
		return fmt.Errorf("updating content: %w", err)
	}
	return checkAffected(result)
}

// UpdateEnrichment stores AI metadata and moves the document to StatusReady.
func (a *archiveStore) UpdateEnrichment(ctx context.Context, id int64, e domain.Enrichment, formattedHTML, slug string) error {
	tagsJSON, err := marshalTags(e.Tags)
	if err != nil {
		return err
	}

	result, err := a.store.db.ExecContext(ctx, `
		UPDATE documents
		SET title = ?, summary = ?, tags = ?, formatted_html = ?, slug = ?, status = ?
		WHERE id = ?
	`, e.Title, e.Summary, tagsJSON, nullString(formattedHTML), nullString(slug),
		string(domain.StatusReady), id)
	if err != nil {
		return fmt.Errorf("updating enrichment: %w", err)
	}
	return checkAffected(result)
}

// UpdateError moves the document to StatusError, storing the message as the
// summary so listing surfaces show what went wrong.
func (a *archiveStore) UpdateError(ctx context.Context, id int64, message string) error {
	result, err := a.store.db.ExecContext(ctx,
		"UPDATE documents SET status = ?, summary = ? WHERE id = ?",
		string(domain.StatusError), "Error: "+message, id)
	if err != nil {
		return fmt.Errorf("updating error status: %w", err)
	}
	return checkAffected(result)
}

// GetDocument retrieves a document by id.
func (a *archiveStore) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	row := a.store.db.QueryRowContext(ctx, `
		SELECT id, filename, original_name, mime_type, title, summary, tags,
		       content_text, formatted_html, slug, status, created_at
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// GetDocumentBySlug retrieves a document by its URL slug.
func (a *archiveStore) GetDocumentBySlug(ctx context.Context, slug string) (*domain.Document, error) {
	row := a.store.db.QueryRowContext(ctx, `
		SELECT id, filename, original_name, mime_type, title, summary, tags,
		       content_text, formatted_html, slug, status, created_at
		FROM documents WHERE slug = ?
	`, slug)
	return scanDocument(row)
}

// ListDocuments returns all documents, newest first. Content and formatted
// HTML are omitted to keep listings cheap.
func (a *archiveStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := a.store.db.QueryContext(ctx, `
		SELECT id, filename, original_name, mime_type, title, summary, tags,
		       slug, status, created_at
		FROM documents ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var title, summary, tags, slug sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.OriginalName, &doc.MIMEType,
			&title, &summary, &tags, &slug, &doc.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Title = title.String
		doc.Summary = summary.String
		doc.Tags = unmarshalTags(tags)
		doc.Slug = slug.String
		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document; chunks cascade via foreign key.
func (a *archiveStore) DeleteDocument(ctx context.Context, id int64) error {
	result, err := a.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return checkAffected(result)
}

// FullText returns the document's stored text.
func (a *archiveStore) FullText(ctx context.Context, id int64) (string, error) {
	row := a.store.db.QueryRowContext(ctx,
		"SELECT content_text FROM documents WHERE id = ?", id)

	var content sql.NullString
	if err := row.Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("scanning content: %w", err)
	}
	if !content.Valid || content.String == "" {
		return "", domain.ErrNotFound
	}
	return content.String, nil
}

// ReplaceChunks swaps a document's chunks in a single transaction.
func (a *archiveStore) ReplaceChunks(ctx context.Context, documentID int64, chunks []string) error {
	tx, err := a.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (document_id, chunk_index, content) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, documentID, i, chunk); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// ChunkCount returns the number of persisted chunks for a document.
func (a *archiveStore) ChunkCount(ctx context.Context, documentID int64) (int, error) {
	row := a.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// scanDocument scans a full document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var title, summary, tags, content, formattedHTML, slug sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.OriginalName, &doc.MIMEType,
		&title, &summary, &tags, &content, &formattedHTML, &slug,
		&doc.Status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Title = title.String
	doc.Summary = summary.String
	doc.Tags = unmarshalTags(tags)
	doc.Content = content.String
	doc.FormattedHTML = formattedHTML.String
	doc.Slug = slug.String
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	return &doc, nil
}

// checkAffected converts a zero-row update into domain.ErrNotFound.
func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ==================== Search Index ====================

// searchIndex implements driven.SearchIndex on the FTS5 tables, falling back
// to LIKE when the query trips FTS syntax.
type searchIndex struct {
	store *Store
}

var _ driven.SearchIndex = (*searchIndex)(nil)

// ftsPhrase escapes a user query into an FTS5 phrase expression. Treating
// the whole query as one phrase keeps operators like AND, OR and * literal.
func ftsPhrase(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
}

// SearchDocuments searches title, summary, tags and content.
func (idx *searchIndex) SearchDocuments(ctx context.Context, query string, limit int) ([]domain.DocumentHit, error) {
	hits, err := idx.searchDocumentsFTS(ctx, query, limit)
	if err == nil {
		return hits, nil
	}

	logger.Warn("full-text search failed for %q, falling back to substring match: %v", query, err)
	return idx.searchDocumentsLike(ctx, query, limit)
}

func (idx *searchIndex) searchDocumentsFTS(ctx context.Context, query string, limit int) ([]domain.DocumentHit, error) {
	rows, err := idx.store.db.QueryContext(ctx, `
		SELECT d.id, d.title, d.summary, d.tags, d.status, d.created_at,
		       snippet(documents_fts, 3, '<b>', '</b>', '…', 40) AS snippet
		FROM documents_fts fts
		JOIN documents d ON d.id = fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsPhrase(query), limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents_fts: %w", err)
	}
	defer rows.Close()

	var hits []domain.DocumentHit
	for rows.Next() {
		var hit domain.DocumentHit
		var title, summary, tags, snippet sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&hit.ID, &title, &summary, &tags, &hit.Status,
			&createdAt, &snippet); err != nil {
			return nil, fmt.Errorf("scanning document hit: %w", err)
		}
		hit.Title = title.String
		hit.Summary = summary.String
		hit.Tags = unmarshalTags(tags)
		hit.Snippet = snippet.String
		if createdAt.Valid {
			hit.CreatedAt = createdAt.Time
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document hits: %w", err)
	}
	return hits, nil
}

func (idx *searchIndex) searchDocumentsLike(ctx context.Context, query string, limit int) ([]domain.DocumentHit, error) {
	pattern := "%" + query + "%"
	rows, err := idx.store.db.QueryContext(ctx, `
		SELECT id, title, summary, tags, status, created_at
		FROM documents
		WHERE content_text LIKE ? OR title LIKE ? OR summary LIKE ?
		ORDER BY created_at DESC
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var hits []domain.DocumentHit
	for rows.Next() {
		var hit domain.DocumentHit
		var title, summary, tags sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&hit.ID, &title, &summary, &tags, &hit.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning document hit: %w", err)
		}
		hit.Title = title.String
		hit.Summary = summary.String
		hit.Tags = unmarshalTags(tags)
		if createdAt.Valid {
			hit.CreatedAt = createdAt.Time
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document hits: %w", err)
	}
	return hits, nil
}

// SearchChunks searches within one document's chunks.
func (idx *searchIndex) SearchChunks(ctx context.Context, documentID int64, query string, limit int) ([]domain.ChunkHit, error) {
	hits, err := idx.searchChunksFTS(ctx, documentID, query, limit)
	if err == nil {
		return hits, nil
	}

	logger.Warn("chunk search failed for %q, falling back to substring match: %v", query, err)
	return idx.searchChunksLike(ctx, documentID, query, limit)
}

func (idx *searchIndex) searchChunksFTS(ctx context.Context, documentID int64, query string, limit int) ([]domain.ChunkHit, error) {
	rows, err := idx.store.db.QueryContext(ctx, `
		SELECT c.chunk_index, c.content,
		       snippet(chunks_fts, 0, '<b>', '</b>', '…', 40) AS snippet
		FROM chunks_fts fts
		JOIN chunks c ON c.id = fts.rowid
		WHERE chunks_fts MATCH ? AND c.document_id = ?
		ORDER BY rank
		LIMIT ?
	`, ftsPhrase(query), documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chunks_fts: %w", err)
	}
	defer rows.Close()

	var hits []domain.ChunkHit
	for rows.Next() {
		var hit domain.ChunkHit
		var snippet sql.NullString
		if err := rows.Scan(&hit.Index, &hit.Content, &snippet); err != nil {
			return nil, fmt.Errorf("scanning chunk hit: %w", err)
		}
		hit.Snippet = snippet.String
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk hits: %w", err)
	}
	return hits, nil
}

func (idx *searchIndex) searchChunksLike(ctx context.Context, documentID int64, query string, limit int) ([]domain.ChunkHit, error) {
	rows, err := idx.store.db.QueryContext(ctx, `
		SELECT chunk_index, content
		FROM chunks
		WHERE document_id = ? AND content LIKE ?
		ORDER BY chunk_index
		LIMIT ?
	`, documentID, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.ChunkHit
	for rows.Next() {
		var hit domain.ChunkHit
		if err := rows.Scan(&hit.Index, &hit.Content); err != nil {
			return nil, fmt.Errorf("scanning chunk hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk hits: %w", err)
	}
	return hits, nil
}

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// GetOrCreateSession creates the session if unseen, otherwise touches its
// updated_at timestamp.
func (c *chatStore) GetOrCreateSession(ctx context.Context, sessionID string) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id) VALUES (?)
		ON CONFLICT(id) DO UPDATE SET updated_at = datetime('now')
	`, sessionID)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

// AppendMessage appends one message to the session history.
func (c *chatStore) AppendMessage(ctx context.Context, sessionID string, role domain.ChatRole, content string) error {
	_, err := c.store.db.ExecContext(ctx,
		"INSERT INTO chat_messages (session_id, role, content) VALUES (?, ?, ?)",
		sessionID, string(role), content)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// History returns the session's messages in insertion order.
func (c *chatStore) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT role, content, created_at
		FROM chat_messages WHERE session_id = ? ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		var createdAt sql.NullTime
		if err := rows.Scan(&role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = domain.ChatRole(role)
		if createdAt.Valid {
			msg.CreatedAt = createdAt.Time
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}
