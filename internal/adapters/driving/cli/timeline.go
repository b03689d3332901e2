package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

var timelineJSON bool

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the assembled evidence timeline",
	Long: `Lists every timeline event in chronological order, undated events
last, with each event's actors and related documents.`,
	RunE: runTimeline,
}

func init() {
	timelineCmd.Flags().BoolVar(&timelineJSON, "json", false, "output the timeline as JSON")
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	if timelineService == nil {
		return errors.New("timeline service not configured")
	}

	events, err := timelineService.Events(context.Background())
	if err != nil {
		return fmt.Errorf("listing timeline: %w", err)
	}

	if timelineJSON {
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal timeline: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(events) == 0 {
		cmd.Println("No timeline events.")
		return nil
	}

	cmd.Println("Timeline:")
	cmd.Println()
	for i := range events {
		printEvent(cmd, &events[i])
	}

	return nil
}

func printEvent(cmd *cobra.Command, event *domain.TimelineEvent) {
	date := "undated"
	if event.TemporalInfo.EventDate != nil {
		date = event.TemporalInfo.EventDate.Format(time.DateOnly)
	}

	cmd.Printf("  [%s] %s (%s)\n", date, event.DocumentID, event.EventInfo.Type)
	if len(event.EventInfo.Actors) > 0 {
		cmd.Printf("      Actors: %s\n", strings.Join(event.EventInfo.Actors, ", "))
	}
	for _, related := range event.Relationships.RelatedDocuments {
		cmd.Printf("      Related: %s (%s, %s, %.2f)\n",
			related.ID, related.Type, related.Temporal, related.Confidence)
	}
	for _, ref := range event.Relationships.Attachments {
		cmd.Printf("      Attachment: %s\n", ref.Path)
	}
	cmd.Println()
}
