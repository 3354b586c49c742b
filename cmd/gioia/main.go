// Command gioia is the entry point for the document archive CLI.
// It wires the driven adapters (SQLite storage, TOML configuration, the
// Anthropic LLM) into the core services and hands them to the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gioia-labs/gioia-archive/internal/adapters/driven/config/file"
	"github.com/gioia-labs/gioia-archive/internal/adapters/driven/llm/anthropic"
	"github.com/gioia-labs/gioia-archive/internal/adapters/driven/storage/sqlite"
	"github.com/gioia-labs/gioia-archive/internal/adapters/driving/cli"
	"github.com/gioia-labs/gioia-archive/internal/chunker"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
	"github.com/gioia-labs/gioia-archive/internal/core/services"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	settings := file.LoadSettings(configStore)

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	retrieval := services.NewRetrievalService(
		store.ArchiveStore(), store.SearchIndex(), retrievalOptions(settings)...)

	// Without an API key the archive still works: documents are ingested
	// and searchable, but enrichment and chat are disabled.
	var (
		enricher driven.Enricher
		agent    *services.Agent
	)
	if settings.AnthropicAPIKey != "" {
		llm, err := anthropic.NewLLMService(anthropic.Config{
			APIKey: settings.AnthropicAPIKey,
			Model:  settings.Model,
		})
		if err != nil {
			return fmt.Errorf("configuring LLM: %w", err)
		}
		defer llm.Close()

		enricher = llm
		agent = services.NewAgent(llm, retrieval, agentOptions(settings)...)
	} else {
		logger.Debug("no Anthropic API key configured, enrichment and chat disabled")
	}

	splitter := chunker.New(chunkerOptions(settings)...)
	filesDir := filepath.Join(filepath.Dir(store.Path()), "files")

	archive, err := services.NewArchiveService(store.ArchiveStore(), enricher, splitter, filesDir)
	if err != nil {
		return fmt.Errorf("creating archive service: %w", err)
	}

	chat := services.NewChatService(store.ChatStore(), agent, chatOptions(settings)...)

	cli.SetServices(&cli.Services{
		Archive:   archive,
		Retrieval: retrieval,
		Chat:      chat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}

func chunkerOptions(s file.Settings) []chunker.Option {
	var opts []chunker.Option
	if s.ChunkSize > 0 {
		opts = append(opts, chunker.WithSize(s.ChunkSize))
	}
	if s.ChunkOverlap > 0 {
		opts = append(opts, chunker.WithOverlap(s.ChunkOverlap))
	}
	return opts
}

func retrievalOptions(s file.Settings) []services.RetrievalOption {
	var opts []services.RetrievalOption
	if s.SearchLimit > 0 {
		opts = append(opts, services.WithSearchLimit(s.SearchLimit))
	}
	if s.ChunkSearchLimit > 0 {
		opts = append(opts, services.WithChunkSearchLimit(s.ChunkSearchLimit))
	}
	if s.SmallDocThreshold > 0 {
		opts = append(opts, services.WithSmallDocThreshold(s.SmallDocThreshold))
	}
	return opts
}

func agentOptions(s file.Settings) []services.AgentOption {
	var opts []services.AgentOption
	if s.MaxRounds > 0 {
		opts = append(opts, services.WithMaxRounds(s.MaxRounds))
	}
	return opts
}

func chatOptions(s file.Settings) []services.ChatOption {
	var opts []services.ChatOption
	if s.MaxMessageLength > 0 {
		opts = append(opts, services.WithMaxMessageLength(s.MaxMessageLength))
	}
	if s.MessagesPerMinute > 0 {
		opts = append(opts, services.WithMessagesPerMinute(s.MessagesPerMinute))
	}
	return opts
}
