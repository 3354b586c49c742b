// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - ArchiveStore: Document and chunk persistence
//   - SearchIndex: FTS5 full-text search with a LIKE fallback
//   - ChatStore: Chat session and message persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Documents and chunks each have an external-content
// FTS5 table kept in sync by triggers, so every row write is reflected in the
// search index atomically.
//
// # Data Location
//
// By default, the database is stored at ~/.gioia/data/gioia.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
