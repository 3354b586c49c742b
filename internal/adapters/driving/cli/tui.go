package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gioia-labs/gioia-archive/internal/adapters/driving/tui"
)

var tuiSession string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat UI",
	Long: `Launch the interactive terminal interface for the archive assistant.

Controls:
  enter    - Send message
  ↑/↓      - Scroll the transcript
  esc      - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiSession, "session", "", "chat session id (default: new session)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if chatService == nil || archiveService == nil {
		return errors.New("chat and archive services not configured")
	}

	app, err := tui.NewApp(tui.NewPorts(chatService, archiveService))
	if err != nil {
		return err
	}

	return app.WithContext(cmd.Context()).WithSession(tuiSession).Run()
}
