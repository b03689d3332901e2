package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var attachmentsCmd = &cobra.Command{
	Use:   "attachments",
	Short: "Attachment store commands",
}

var attachmentsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show attachment storage statistics",
	Long: `Reports how many distinct binaries are stored, how many document
references point at them and the space saved by deduplication.`,
	RunE: runAttachmentsStats,
}

func init() {
	attachmentsCmd.AddCommand(attachmentsStatsCmd)
	rootCmd.AddCommand(attachmentsCmd)
}

func runAttachmentsStats(cmd *cobra.Command, _ []string) error {
	if timelineService == nil {
		return errors.New("timeline service not configured")
	}

	stats, err := timelineService.StorageStats(context.Background())
	if err != nil {
		return fmt.Errorf("reading attachment stats: %w", err)
	}

	cmd.Println("Attachment store:")
	cmd.Printf("  Unique files:     %d\n", stats.UniqueFiles)
	cmd.Printf("  Total references: %d\n", stats.TotalReferences)
	cmd.Printf("  Total size:       %d bytes\n", stats.TotalBytes)
	cmd.Printf("  Dedup ratio:      %.2f\n", stats.DedupRatio)

	return nil
}
