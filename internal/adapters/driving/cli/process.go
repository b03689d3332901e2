package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
)

var processType string

var processCmd = &cobra.Command{
	Use:   "process [path...]",
	Short: "Ingest evidence files and build the timeline",
	Long: `Validates, classifies, chunks and persists the given evidence files,
then discovers relationships between them and assembles the timeline.
Directories are expanded one level deep.

Rejected files are reported and skipped; they never abort the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processType, "type", "t", "", "declared document type (single file only)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no files to process")
	}

	if processType != "" {
		if len(paths) > 1 {
			return errors.New("--type applies to a single file only")
		}
		declared := domain.DocType(processType)
		if !declared.Valid() {
			return fmt.Errorf("unknown document type %q", processType)
		}

		result, err := ingestService.ProcessFile(ctx, paths[0], declared)
		if errors.Is(err, domain.ErrCannotProcess) {
			printRejection(cmd, paths[0], result)
			return err
		}
		if err != nil {
			return fmt.Errorf("processing failed: %w", err)
		}
		printResult(cmd, result)
		return nil
	}

	cmd.Printf("Processing %d files...\n", len(paths))

	results, events, err := processWithProgress(ctx, cmd, ingestService, paths)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	processed := 0
	for i := range results {
		if results[i].Document != nil {
			processed++
		} else {
			cmd.Printf("  rejected: %s\n", firstError(results[i].Report))
		}
	}

	cmd.Printf("Processed %d documents (%d rejected), %d timeline events.\n",
		processed, len(results)-processed, len(events))
	return nil
}

// processWithProgress runs the batch while displaying progress updates.
func processWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	ingest driving.IngestService,
	paths []string,
) ([]driving.IngestResult, []domain.TimelineEvent, error) {
	type batchOutcome struct {
		results []driving.IngestResult
		events  []domain.TimelineEvent
		err     error
	}

	outCh := make(chan batchOutcome, 1)
	go func() {
		results, events, err := ingest.ProcessBatch(ctx, paths)
		outCh <- batchOutcome{results, events, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case out := <-outCh:
			return out.results, out.events, out.err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, statusErr := ingest.Status(ctx)
			if statusErr == nil && status != nil && status.DocumentsProcessed > lastCount {
				cmd.Printf("\rProcessing... %d documents", status.DocumentsProcessed)
				lastCount = status.DocumentsProcessed
			}
		}
	}
}

// expandPaths resolves directories to their regular files, one level
// deep, and returns a stable ordering.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func printResult(cmd *cobra.Command, result *driving.IngestResult) {
	doc := result.Document
	cmd.Printf("Ingested %s as %s\n", doc.OriginalName, doc.ID)
	cmd.Printf("  Type:   %s (%s)\n", doc.Classification.Type, doc.Classification.Format)
	cmd.Printf("  Chunks: %d (%d estimated tokens)\n", result.ChunkCount, result.EstimatedTokens)
	if result.AnalysisConfidence > 0 {
		cmd.Printf("  Analysis confidence: %.2f\n", result.AnalysisConfidence)
	}
}

func printRejection(cmd *cobra.Command, path string, result *driving.IngestResult) {
	cmd.Printf("Rejected %s\n", path)
	if result != nil {
		cmd.Printf("  %s\n", firstError(result.Report))
	}
}

func firstError(report *domain.ValidationReport) string {
	if report == nil || len(report.Errors) == 0 {
		return "validation failed"
	}
	return report.Errors[0]
}
