package driven

import (
	"context"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// DocumentStore persists documents, chunks and timeline events.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document, its chunks and its event.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// SaveEvent stores or updates a timeline event.
	SaveEvent(ctx context.Context, event *domain.TimelineEvent) error

	// GetEvent retrieves the timeline event for a document.
	GetEvent(ctx context.Context, documentID string) (*domain.TimelineEvent, error)

	// ListEvents returns all timeline events ordered by event date,
	// undated events last.
	ListEvents(ctx context.Context) ([]domain.TimelineEvent, error)
}
