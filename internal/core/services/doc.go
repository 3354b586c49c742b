// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The four services mirror the product surfaces: ArchiveService ingests
// and manages documents, RetrievalService exposes them to a language
// model as tools, Agent runs the tool-use loop, and ChatService wraps
// the agent with persistence and rate limiting.
package services
