package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the archive assistant",
	Long: `Asks the archive assistant a question. The assistant searches your
documents with retrieval tools before answering and streams its reply.

With a message argument, asks a single question and exits. Without
arguments, starts an interactive session; type 'exit' to leave.

Use --session to continue an earlier conversation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "chat session id (default: new session)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	session := chatSession
	if session == "" {
		session = uuid.NewString()
	}

	if len(args) == 1 {
		return streamTurn(cmd, session, args[0])
	}

	cmd.Printf("Chat session %s. Type 'exit' to quit.\n", session)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := streamTurn(cmd, session, line); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
	return scanner.Err()
}

// streamTurn sends one message and prints the streamed answer.
func streamTurn(cmd *cobra.Command, session, message string) error {
	events, err := chatService.StreamChat(cmd.Context(), session, message)
	if err != nil {
		return err
	}

	for ev := range events {
		if ev.Err != nil {
			cmd.Println()
			return ev.Err
		}
		cmd.Print(ev.Text)
	}
	cmd.Println()
	return nil
}
