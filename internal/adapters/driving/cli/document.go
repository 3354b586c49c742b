package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [id-or-slug]",
	Short: "Read a document's text",
	Long: `Prints a document's extracted text, addressed by numeric id or by the
URL slug derived from its title. Long documents are shown as a bounded
preview with instructions for searching inside them.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a document",
	Long:  `Deletes a document, its chunks and its stored file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [id]",
	Short: "Re-extract and re-chunk a document",
	Long: `Re-runs text extraction and chunking for a document from its stored
file. Useful after changing the chunking configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reindexCmd)
}

// parseDocumentID parses a positional document id argument.
func parseDocumentID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return id, nil
}

func runRead(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		// Not numeric: resolve as a slug.
		if archiveService == nil {
			return errors.New("archive service not configured")
		}
		doc, err := archiveService.GetBySlug(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("resolving document %q: %w", args[0], err)
		}
		id = doc.ID
	}

	cmd.Println(retrievalService.ReadDocument(cmd.Context(), id))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	if err := archiveService.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	cmd.Printf("Deleted document %d.\n", id)
	return nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	if err := archiveService.Reindex(cmd.Context(), id); err != nil {
		return fmt.Errorf("reindexing document: %w", err)
	}

	cmd.Printf("Reindexed document %d.\n", id)
	return nil
}
