package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gioia-labs/gioia-archive/internal/extract"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

// watchSettleDelay gives the writer time to finish before ingesting.
const watchSettleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a folder and ingest new documents",
	Long: `Watches a directory and adds newly created files to the archive.
Only supported file types (.txt, .md, .pdf, .html) are ingested.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watching %s: not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for new documents...\n", dir)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !extract.Supported(extract.MIMEType(event.Name)) {
				logger.Debug("ignoring unsupported file: %s", event.Name)
				continue
			}

			time.Sleep(watchSettleDelay)
			doc, err := archiveService.AddFile(ctx, event.Name)
			if err != nil {
				cmd.PrintErrf("Error adding %s: %v\n", event.Name, err)
				continue
			}
			printDocument(cmd, doc)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}
