package driving

import (
	"context"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// IngestResult reports how one evidence file moved through the pipeline.
type IngestResult struct {
	// Document is the ingested document, nil when validation failed.
	Document *domain.Document

	// Report is the validation outcome, always present.
	Report *domain.ValidationReport

	// ChunkCount is the number of chunks produced.
	ChunkCount int

	// EstimatedTokens is the total token estimate across chunks.
	EstimatedTokens int

	// AnalysisConfidence is the backend's confidence, 0 when the
	// analyzer is unavailable or skipped.
	AnalysisConfidence float64
}

// BatchStatus tracks an in-flight batch ingestion.
type BatchStatus struct {
	// Running indicates if ingestion is currently in progress.
	Running bool

	// DocumentsProcessed is the count of documents processed.
	DocumentsProcessed int

	// ErrorCount is the number of rejected or failed documents.
	ErrorCount int
}

// IngestService drives evidence intake: validation, classification,
// chunking, analysis and persistence.
type IngestService interface {
	// Validate runs the gate over raw content without ingesting.
	Validate(ctx context.Context, content string, declared domain.DocType) (*domain.ValidationReport, error)

	// ProcessFile ingests a single evidence file.
	// A fatal validation finding returns the report inside IngestResult
	// together with domain.ErrCannotProcess.
	ProcessFile(ctx context.Context, path string, declared domain.DocType) (*IngestResult, error)

	// ProcessBatch ingests a set of files, then assembles the timeline
	// for every document that survived validation.
	ProcessBatch(ctx context.Context, paths []string) ([]IngestResult, []domain.TimelineEvent, error)

	// Status returns progress of the running batch, if any.
	Status(ctx context.Context) (*BatchStatus, error)
}
