package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search archived documents",
	Long: `Performs full-text search across titles, summaries, tags and content.
Falls back to substring matching when the query cannot be parsed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	hits, err := retrievalService.Hits(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}

	return outputSearchTable(cmd, hits)
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.DocumentHit) error {
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, hits []domain.DocumentHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		cmd.Printf("  [%d] %s\n", hits[i].ID, hits[i].Title)
		if snippet := plainSnippet(hits[i].Snippet); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		} else if hits[i].Summary != "" {
			cmd.Printf("      %s\n", hits[i].Summary)
		}
		if len(hits[i].Tags) > 0 {
			cmd.Printf("      Tags: %s\n", strings.Join(hits[i].Tags, ", "))
		}
		cmd.Println()
	}

	return nil
}

// plainSnippet strips the <b></b> match markers for terminal output.
func plainSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, "<b>", "")
	return strings.ReplaceAll(snippet, "</b>", "")
}
