package driving

import (
	"context"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// TimelineService turns document sets into cross-referenced event
// timelines and exposes the assembled timeline for reporting sinks.
type TimelineService interface {
	// ProcessDocument builds the timeline event for one document.
	ProcessDocument(ctx context.Context, doc *domain.Document) (*domain.TimelineEvent, error)

	// ProcessDocumentSet processes every document independently, finds
	// pairwise relationships across the batch and enriches each event
	// with derived relationship views.
	ProcessDocumentSet(ctx context.Context, docs []*domain.Document) ([]domain.TimelineEvent, error)

	// Events returns the persisted timeline ordered by event date.
	Events(ctx context.Context) ([]domain.TimelineEvent, error)

	// StorageStats reports attachment store occupancy.
	StorageStats(ctx context.Context) (*domain.StoreStats, error)
}
