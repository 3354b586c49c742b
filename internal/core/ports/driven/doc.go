// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ArchiveStore: Document and chunk persistence
//   - SearchIndex: Full-text search over documents and chunks (FTS5)
//   - ChatStore: Chat session and message persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ChatStreamer: Streaming tool-use conversation. Without it the chat
//     command is disabled.
//   - Enricher: Title/summary/tag generation. Without it ingest falls back
//     to filename-derived metadata.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
