package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/casetrail-cli/internal/classifier"
	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
	"github.com/custodia-labs/casetrail-cli/internal/logger"
	"github.com/custodia-labs/casetrail-cli/internal/validation"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// roundTokenBudget caps how much chunk text is sent to the analyzer in
// one request. Documents above the budget are analysed in rounds and
// the round results merged.
const roundTokenBudget = 150000

// IngestService drives evidence intake end to end: validation,
// classification, chunking, analysis and persistence.
type IngestService struct {
	gate     *validation.Gate
	docStore driven.DocumentStore
	pipeline driven.PostProcessorPipeline
	timeline driving.TimelineService

	// analyzer is optional; nil skips semantic analysis entirely.
	analyzer driven.Analyzer

	mu     sync.Mutex
	status driving.BatchStatus
}

// NewIngestService creates a new ingest service. analyzer may be nil.
func NewIngestService(
	gate *validation.Gate,
	docStore driven.DocumentStore,
	pipeline driven.PostProcessorPipeline,
	timeline driving.TimelineService,
	analyzer driven.Analyzer,
) *IngestService {
	return &IngestService{
		gate:     gate,
		docStore: docStore,
		pipeline: pipeline,
		timeline: timeline,
		analyzer: analyzer,
	}
}

// Validate runs the gate over raw content without ingesting anything.
func (s *IngestService) Validate(_ context.Context, content string, declared domain.DocType) (*domain.ValidationReport, error) {
	return s.gate.Validate(content, declared), nil
}

// ProcessFile ingests one evidence file. A fatal validation finding
// returns the report together with domain.ErrCannotProcess; the file is
// not persisted.
func (s *IngestService) ProcessFile(ctx context.Context, path string, declared domain.DocType) (*driving.IngestResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	name := filepath.Base(path)
	content := string(raw)

	classification := classifier.Classify(name, content)
	if declared != domain.DocTypeUnknown && declared != "" {
		classification.Type = declared
	}

	binary := classification.Type == domain.DocTypeAttachment || classification.Type == domain.DocTypeSpreadsheet

	var report *domain.ValidationReport
	if binary {
		report = s.gate.ValidateBinary(info.Size())
		content = ""
	} else {
		report = s.gate.Validate(content, classification.Type)
	}
	if !report.CanProcess {
		logger.Info("rejected %s: %s", name, strings.Join(report.Errors, "; "))
		return &driving.IngestResult{Report: report}, domain.ErrCannotProcess
	}

	doc := &domain.Document{
		ID:           uuid.NewString(),
		OriginalName: name,
		Path:         path,
		Content:      content,
		SizeBytes:    info.Size(),
		Fingerprint: domain.Fingerprint{
			ContentHash:       hashBytes(raw),
			MetadataHash:      hashBytes([]byte(fmt.Sprintf("%s|%d|%d", name, info.Size(), info.ModTime().Unix()))),
			CreationSignature: info.ModTime(),
		},
		Classification: classification,
	}

	result := &driving.IngestResult{Document: doc, Report: report}

	if !binary {
		chunks, err := s.pipeline.Process(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("chunking %s: %w", name, err)
		}
		result.ChunkCount = len(chunks)
		for _, chunk := range chunks {
			result.EstimatedTokens += chunk.EstimatedTokens
		}

		if analysis := s.analyze(ctx, name, chunks); analysis != nil {
			doc.Metadata = map[string]any{"analysis": analysis}
			result.AnalysisConfidence = analysis.Confidence
		}

		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return nil, err
		}
		if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
			return nil, err
		}
	} else {
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return nil, err
		}
	}

	if _, err := s.timeline.ProcessDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("timeline for %s: %w", name, err)
	}

	logger.Debug("ingested %s as %s (%s, %d chunks)", name, doc.ID, classification.Type, result.ChunkCount)
	return result, nil
}

// ProcessBatch ingests every file, skipping rejects, then assembles the
// cross-referenced timeline over the documents that survived.
func (s *IngestService) ProcessBatch(ctx context.Context, paths []string) ([]driving.IngestResult, []domain.TimelineEvent, error) {
	s.mu.Lock()
	s.status = driving.BatchStatus{Running: true}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.status.Running = false
		s.mu.Unlock()
	}()

	var results []driving.IngestResult
	var docs []*domain.Document

	for _, path := range paths {
		result, err := s.ProcessFile(ctx, path, domain.DocTypeUnknown)
		if err != nil {
			logger.Warn("batch: %s: %v", path, err)
			s.mu.Lock()
			s.status.ErrorCount++
			s.mu.Unlock()
			if result != nil {
				results = append(results, *result)
			}
			continue
		}

		results = append(results, *result)
		docs = append(docs, result.Document)

		s.mu.Lock()
		s.status.DocumentsProcessed++
		s.mu.Unlock()
	}

	events, err := s.timeline.ProcessDocumentSet(ctx, docs)
	if err != nil {
		return results, nil, err
	}

	return results, events, nil
}

// Status returns a snapshot of the running batch.
func (s *IngestService) Status(_ context.Context) (*driving.BatchStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	return &status, nil
}

// analyze runs the analyzer over the document's chunks in rounds bounded
// by the token budget and merges the round results. Analyzer failures
// degrade to no analysis, never to an ingest failure.
func (s *IngestService) analyze(ctx context.Context, name string, chunks []domain.Chunk) *domain.Analysis {
	if s.analyzer == nil || len(chunks) == 0 {
		return nil
	}

	var merged *domain.Analysis
	var confidences []float64

	var round strings.Builder
	roundTokens := 0

	flush := func() {
		if round.Len() == 0 {
			return
		}
		analysis, err := s.analyzer.Analyze(ctx, round.String())
		round.Reset()
		roundTokens = 0
		if err != nil {
			logger.Warn("analysis for %s: %v", name, err)
			return
		}
		confidences = append(confidences, analysis.Confidence)
		merged = mergeAnalysis(merged, analysis)
	}

	for _, chunk := range chunks {
		if roundTokens > 0 && roundTokens+chunk.EstimatedTokens > roundTokenBudget {
			flush()
		}
		round.WriteString(chunk.Text)
		round.WriteString("\n")
		roundTokens += chunk.EstimatedTokens
	}
	flush()

	if merged == nil {
		return nil
	}

	var sum float64
	for _, c := range confidences {
		sum += c
	}
	merged.Confidence = sum / float64(len(confidences))
	return merged
}

// mergeAnalysis folds one round's analysis into the accumulator.
func mergeAnalysis(acc, next *domain.Analysis) *domain.Analysis {
	if acc == nil {
		copied := *next
		return &copied
	}
	acc.KeyPoints = append(acc.KeyPoints, next.KeyPoints...)
	acc.Relationships = append(acc.Relationships, next.Relationships...)
	acc.Entities.People = mergeUnique(acc.Entities.People, next.Entities.People)
	acc.Entities.Organizations = mergeUnique(acc.Entities.Organizations, next.Entities.Organizations)
	acc.Entities.Dates = mergeUnique(acc.Entities.Dates, next.Entities.Dates)
	acc.Patterns = mergeUnique(acc.Patterns, next.Patterns)
	return acc
}

func mergeUnique(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		existing = append(existing, v)
	}
	return existing
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
