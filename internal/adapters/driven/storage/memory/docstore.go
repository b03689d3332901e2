// Package memory provides in-memory implementations of driven ports
// for tests and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	events    map[string]domain.TimelineEvent
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		events:    make(map[string]domain.TimelineEvent),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores chunks for a document.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docID := chunks[0].DocumentID
	s.chunks[docID] = chunks
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := s.chunks[documentID]
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// DeleteDocument removes a document, its chunks and its event.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	delete(s.events, id)
	return nil
}

// ListDocuments returns all documents, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// SaveEvent stores or updates a timeline event.
func (s *DocumentStore) SaveEvent(_ context.Context, event *domain.TimelineEvent) error {
	if event == nil || event.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.DocumentID] = *event
	return nil
}

// GetEvent retrieves the timeline event for a document.
func (s *DocumentStore) GetEvent(_ context.Context, documentID string) (*domain.TimelineEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &event, nil
}

// ListEvents returns all events ordered by event date, undated last.
func (s *DocumentStore) ListEvents(_ context.Context) ([]domain.TimelineEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]domain.TimelineEvent, 0, len(s.events))
	for id := range s.events {
		events = append(events, s.events[id])
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].TemporalInfo.EventDate, events[j].TemporalInfo.EventDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return events, nil
}
