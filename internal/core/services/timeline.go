package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
	"github.com/custodia-labs/casetrail-cli/internal/logger"
)

// Ensure TimelineService implements the interface.
var _ driving.TimelineService = (*TimelineService)(nil)

// foundDateConfidence is assigned when any date was extracted from
// content. The extractor is a heuristic, so this never reaches 1.
const foundDateConfidence = 0.8

// defaultSignificance is a placeholder until a real scorer exists
// behind the analyzer port.
const defaultSignificance = 0.5

var (
	timelineISODate     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	timelineWrittenDate = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	actorAddress        = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// TimelineService builds per-document events and assembles
// cross-referenced timelines over document sets.
type TimelineService struct {
	docStore    driven.DocumentStore
	attachments driven.AttachmentStore
	matcher     *MatcherService

	// attachmentDir is recorded on events so consumers can locate
	// deduplicated binaries.
	attachmentDir string
}

// NewTimelineService creates a new timeline service.
func NewTimelineService(
	docStore driven.DocumentStore,
	attachments driven.AttachmentStore,
	matcher *MatcherService,
	attachmentDir string,
) *TimelineService {
	return &TimelineService{
		docStore:      docStore,
		attachments:   attachments,
		matcher:       matcher,
		attachmentDir: attachmentDir,
	}
}

// ExtractTemporalInfo scans content for explicit dates. The first date
// found becomes the event date; the rest are retained as related dates.
// Relative and ambiguous dates are not resolved.
func ExtractTemporalInfo(content string) domain.TemporalInfo {
	var dates []time.Time
	seen := make(map[string]struct{})

	add := func(t time.Time) {
		key := t.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		dates = append(dates, t)
	}

	for _, raw := range timelineISODate.FindAllString(content, -1) {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			add(t)
		}
	}
	for _, m := range timelineWrittenDate.FindAllStringSubmatch(content, -1) {
		raw := fmt.Sprintf("%s %s %s", m[1], m[2], m[3])
		if t, err := time.Parse("January 2 2006", raw); err == nil {
			add(t)
		}
	}

	info := domain.TemporalInfo{RelatedDates: []time.Time{}}
	if len(dates) == 0 {
		return info
	}

	info.EventDate = &dates[0]
	info.RelatedDates = dates[1:]
	info.DateConfidence = foundDateConfidence
	return info
}

// ExtractEventInfo derives the event annotation for a document.
// Actors are email-shaped tokens; anything subtler needs the analyzer.
func ExtractEventInfo(content string) domain.EventInfo {
	info := domain.EventInfo{
		Type:         "communication",
		Actors:       []string{},
		Significance: defaultSignificance,
	}

	seen := make(map[string]struct{})
	for _, addr := range actorAddress.FindAllString(content, -1) {
		addr = strings.ToLower(addr)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		info.Actors = append(info.Actors, addr)
	}

	return info
}

// ProcessDocument builds and persists the timeline event for one
// document. Binary documents are routed into the attachment store and
// the event records the deduplicated reference.
func (s *TimelineService) ProcessDocument(ctx context.Context, doc *domain.Document) (*domain.TimelineEvent, error) {
	if doc == nil || doc.ID == "" {
		return nil, domain.ErrInvalidInput
	}

	event := &domain.TimelineEvent{
		DocumentID:   doc.ID,
		TemporalInfo: ExtractTemporalInfo(doc.Content),
		EventInfo:    ExtractEventInfo(doc.Content),
		Relationships: domain.EventRelationships{
			Attachments:      []domain.AttachmentRef{},
			RelatedDocuments: []domain.RelatedDocument{},
		},
		FileInfo: domain.FileInfo{
			Path:      doc.Path,
			SizeBytes: doc.SizeBytes,
			Created:   doc.Fingerprint.CreationSignature,
			Modified:  doc.UpdatedAt,
		},
		StorageInfo: domain.StorageInfo{AttachmentDir: s.attachmentDir},
	}

	switch doc.Classification.Type {
	case domain.DocTypeAttachment, domain.DocTypeSpreadsheet:
		stored, err := s.attachments.Store(ctx, doc.Path, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("storing attachment for %s: %w", doc.ID, err)
		}
		event.Relationships.Attachments = append(event.Relationships.Attachments, domain.AttachmentRef{
			Path: stored.Path,
			Hash: stored.Hash,
			Type: doc.Classification.Type,
		})
		logger.Debug("document %s stored as attachment %s", doc.ID, stored.Hash)
	}

	if err := s.docStore.SaveEvent(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// ProcessDocumentSet processes every document independently, finds
// pairwise relationships across the whole batch, then enriches each
// event with its derived view of every edge it participates in.
// A failing document is skipped, not fatal for the batch.
func (s *TimelineService) ProcessDocumentSet(ctx context.Context, docs []*domain.Document) ([]domain.TimelineEvent, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	events := make([]*domain.TimelineEvent, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc *domain.Document) {
			defer wg.Done()
			event, err := s.ProcessDocument(ctx, doc)
			if err != nil {
				errs[i] = fmt.Errorf("processing %s: %w", doc.ID, err)
				return
			}
			events[i] = event
		}(i, doc)
	}
	wg.Wait()

	byID := make(map[string]*domain.TimelineEvent, len(docs))
	var processed []*domain.Document
	for i, event := range events {
		if event == nil {
			logger.Warn("timeline: %v", errs[i])
			continue
		}
		byID[event.DocumentID] = event
		processed = append(processed, docs[i])
	}
	if len(processed) == 0 {
		return nil, errors.Join(errs...)
	}

	edges, err := s.matcher.FindRelationships(ctx, processed)
	if err != nil {
		return nil, err
	}

	// Each undirected edge is stored once and viewed from both ends.
	for _, edge := range edges {
		s.attachView(byID, edge, edge.Source)
		s.attachView(byID, edge, edge.Target)
	}

	result := make([]domain.TimelineEvent, 0, len(processed))
	for _, doc := range processed {
		event := byID[doc.ID]
		if err := s.docStore.SaveEvent(ctx, event); err != nil {
			return nil, err
		}
		result = append(result, *event)
	}

	sortEventsByDate(result)
	return result, nil
}

// attachView adds one endpoint's derived view of an edge to its event.
func (s *TimelineService) attachView(byID map[string]*domain.TimelineEvent, edge domain.Relationship, endpoint string) {
	event, ok := byID[endpoint]
	if !ok {
		return
	}
	other, ok := edge.Other(endpoint)
	if !ok {
		return
	}

	otherTemporal := domain.TemporalInfo{}
	if otherEvent, ok := byID[other]; ok {
		otherTemporal = otherEvent.TemporalInfo
	}

	event.Relationships.RelatedDocuments = append(event.Relationships.RelatedDocuments, domain.RelatedDocument{
		ID:         other,
		Type:       edge.Type,
		Temporal:   domain.DetermineTemporalRelationship(event.TemporalInfo, otherTemporal),
		Confidence: edge.Confidence,
	})
}

// Events returns the persisted timeline ordered by event date.
func (s *TimelineService) Events(ctx context.Context) ([]domain.TimelineEvent, error) {
	return s.docStore.ListEvents(ctx)
}

// StorageStats reports attachment store occupancy.
func (s *TimelineService) StorageStats(ctx context.Context) (*domain.StoreStats, error) {
	return s.attachments.Stats(ctx)
}

// sortEventsByDate orders events chronologically, undated events last.
func sortEventsByDate(events []domain.TimelineEvent) {
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
}
