package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/casetrail-cli/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch an intake directory and ingest files as they arrive",
	Long: `Observes a directory and runs every new or updated file through the
ingest pipeline. Runs until interrupted. Note that relationships are
discovered per arriving file; run 'casetrail process' over the full set
for cross-document correlation.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	w := watcher.New(args[0], ingestService)
	events, err := w.Watch(cmd.Context())
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck

	cmd.Printf("Watching %s for evidence files...\n", args[0])

	for event := range events {
		switch {
		case event.Err != nil:
			cmd.Printf("  %s: %v\n", event.Path, event.Err)
		case event.Result != nil && event.Result.Document != nil:
			cmd.Printf("  ingested %s as %s\n", event.Path, event.Result.Document.ID)
		default:
			cmd.Printf("  rejected %s\n", event.Path)
		}
	}

	return nil
}
