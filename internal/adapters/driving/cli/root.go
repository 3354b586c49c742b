// Package cli implements the gioia command-line interface.
// It is a driving adapter: commands receive core services via SetServices
// and never construct infrastructure themselves.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

// version is the CLI version, overridable at build time via ldflags.
var version = "0.1.0"

// Services aggregates the driving ports the CLI commands depend on.
type Services struct {
	Archive   driving.ArchiveService
	Retrieval driving.RetrievalService
	Chat      driving.ChatService
}

var (
	archiveService   driving.ArchiveService
	retrievalService driving.RetrievalService
	chatService      driving.ChatService
)

// SetServices injects the core services used by the commands.
func SetServices(s *Services) {
	archiveService = s.Archive
	retrievalService = s.Retrieval
	chatService = s.Chat
}

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "gioia",
	Short: "Personal document archive with AI-powered retrieval",
	Long: `Gioia archives your documents locally and answers questions about them.

Files and web pages are stored in SQLite, split into overlapping chunks
and indexed for full-text search. The chat assistant retrieves relevant
passages through search tools before answering.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
