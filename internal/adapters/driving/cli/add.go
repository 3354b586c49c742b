package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
)

var addCmd = &cobra.Command{
	Use:   "add [path-or-url]",
	Short: "Add a document to the archive",
	Long: `Adds a local file or a web page to the archive.

Local files are copied into the archive, their text extracted, chunked
and indexed, and AI metadata (title, summary, tags) generated.
Supported file types: .txt, .md, .pdf, .html.

URLs are fetched and the article text extracted from the HTML.

Examples:
  gioia add notes/meeting.md
  gioia add https://example.com/blog/launch-post`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	target := args[0]
	ctx := cmd.Context()

	var (
		doc *domain.Document
		err error
	)
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		doc, err = archiveService.AddURL(ctx, target)
	} else {
		doc, err = archiveService.AddFile(ctx, target)
	}
	if err != nil {
		return fmt.Errorf("adding document: %w", err)
	}

	printDocument(cmd, doc)
	return nil
}

// printDocument prints a one-document summary block.
func printDocument(cmd *cobra.Command, doc *domain.Document) {
	title := doc.Title
	if title == "" {
		title = doc.OriginalName
	}

	cmd.Printf("[%d] %s (%s)\n", doc.ID, title, doc.Status)
	if doc.Summary != "" {
		cmd.Printf("    %s\n", doc.Summary)
	}
	if len(doc.Tags) > 0 {
		cmd.Printf("    Tags: %s\n", strings.Join(doc.Tags, ", "))
	}
}
