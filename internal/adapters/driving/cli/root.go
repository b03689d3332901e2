// Package cli implements the casetrail command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
	"github.com/custodia-labs/casetrail-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

// Services the commands run against. Wired by Execute before the root
// command dispatches; tests swap them for mocks.
var (
	ingestService   driving.IngestService
	timelineService driving.TimelineService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "casetrail",
	Short: "Evidence correlation engine",
	Long: `CaseTrail ingests heterogeneous evidence files (emails, message
logs, attachments), validates and chunks them, discovers relationships
between documents and assembles a cross-referenced timeline.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute wires the services and runs the root command.
func Execute(ingest driving.IngestService, timeline driving.TimelineService) error {
	ingestService = ingest
	timelineService = timeline
	return rootCmd.Execute()
}
