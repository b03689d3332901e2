package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

var (
	validateType string
	validateJSON bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate an evidence file without ingesting it",
	Long: `Runs the intake gate over a file and reports the findings.
Nothing is persisted; use this to check evidence before a batch run.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateType, "type", "t", "", "declared document type")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the full report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	declared := domain.DocTypeUnknown
	if validateType != "" {
		declared = domain.DocType(validateType)
		if !declared.Valid() {
			return fmt.Errorf("unknown document type %q", validateType)
		}
	}

	report, err := ingestService.Validate(context.Background(), string(raw), declared)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if validateJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if report.CanProcess {
		cmd.Printf("%s: OK (%s, ~%d tokens)\n", args[0], report.Size.Category, report.Size.EstimatedTokens)
	} else {
		cmd.Printf("%s: REJECTED\n", args[0])
		for _, e := range report.Errors {
			cmd.Printf("  error: %s\n", e)
		}
	}
	for _, w := range report.Warnings {
		cmd.Printf("  warning: %s\n", w)
	}

	return nil
}
