package cli

import (
	"context"
	"errors"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report  *domain.ValidationReport
	result  *driving.IngestResult
	results []driving.IngestResult
	events  []domain.TimelineEvent
	status  *driving.BatchStatus
	err     error
}

func (m *mockIngestService) Validate(_ context.Context, _ string, _ domain.DocType) (*domain.ValidationReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) ProcessFile(_ context.Context, _ string, _ domain.DocType) (*driving.IngestResult, error) {
	return m.result, m.err
}

func (m *mockIngestService) ProcessBatch(_ context.Context, _ []string) ([]driving.IngestResult, []domain.TimelineEvent, error) {
	return m.results, m.events, m.err
}

func (m *mockIngestService) Status(_ context.Context) (*driving.BatchStatus, error) {
	return m.status, m.err
}

// mockTimelineService is a mock implementation of driving.TimelineService.
type mockTimelineService struct {
	events []domain.TimelineEvent
	stats  *domain.StoreStats
	err    error
}

func (m *mockTimelineService) ProcessDocument(_ context.Context, _ *domain.Document) (*domain.TimelineEvent, error) {
	return nil, m.err
}

func (m *mockTimelineService) ProcessDocumentSet(_ context.Context, _ []*domain.Document) ([]domain.TimelineEvent, error) {
	return m.events, m.err
}

func (m *mockTimelineService) Events(_ context.Context) ([]domain.TimelineEvent, error) {
	return m.events, m.err
}

func (m *mockTimelineService) StorageStats(_ context.Context) (*domain.StoreStats, error) {
	return m.stats, m.err
}

var errMockFailure = errors.New("mock failure")

func swapIngest(mock driving.IngestService) func() {
	old := ingestService
	ingestService = mock
	return func() {
		ingestService = old
	}
}

func swapTimeline(mock driving.TimelineService) func() {
	old := timelineService
	timelineService = mock
	return func() {
		timelineService = old
	}
}
