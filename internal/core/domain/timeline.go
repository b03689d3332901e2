package domain

import "time"

// TemporalRelation orders two documents' inferred event dates.
type TemporalRelation string

const (
	// TemporalBefore means the source event predates the target event.
	TemporalBefore TemporalRelation = "before"
	// TemporalAfter means the source event postdates the target event.
	TemporalAfter TemporalRelation = "after"
	// TemporalConcurrent means both events carry the same date.
	TemporalConcurrent TemporalRelation = "concurrent"
	// TemporalUnknown means at least one side has no inferred date.
	TemporalUnknown TemporalRelation = "unknown"
)

// TemporalInfo is the date evidence extracted from a document.
type TemporalInfo struct {
	// EventDate is the first date found, nil when none was.
	EventDate *time.Time `json:"event_date"`

	// RelatedDates are all further dates found in the content.
	RelatedDates []time.Time `json:"related_dates"`

	// DateConfidence is 0.8 when any date was found, else 0.
	// The extractor is a heuristic; ambiguous and relative dates are
	// not resolved.
	DateConfidence float64 `json:"date_confidence"`
}

// EventInfo is the heuristic event annotation for a document.
// Actor extraction matches email-shaped tokens only; significance is a
// fixed placeholder until a real scorer exists behind the analyzer port.
type EventInfo struct {
	// Type of event; "communication" unless a stronger signal exists.
	Type string `json:"type"`

	// Actors are the participants found in the content.
	Actors []string `json:"actors"`

	// Significance is a fixed placeholder weight.
	Significance float64 `json:"significance"`
}

// AttachmentRef points a timeline event at a deduplicated binary.
type AttachmentRef struct {
	// Path is the content-addressed storage location.
	Path string `json:"path"`

	// Hash is the SHA-256 content hash.
	Hash string `json:"hash"`

	// Type is the document classification that produced the binary.
	Type DocType `json:"type"`
}

// RelatedDocument is the per-event view of one undirected Relationship,
// derived at timeline assembly. The edge is stored once; both endpoints
// see it from their own side.
type RelatedDocument struct {
	// ID is the other endpoint's document ID.
	ID string `json:"id"`

	// Type is the relationship classification.
	Type RelationshipType `json:"type"`

	// Temporal orders this event against the other endpoint's event.
	Temporal TemporalRelation `json:"temporal_relationship"`

	// Confidence is the edge's match confidence.
	Confidence float64 `json:"confidence"`
}

// EventRelationships collects a timeline event's outgoing references.
type EventRelationships struct {
	Attachments      []AttachmentRef   `json:"attachments"`
	RelatedDocuments []RelatedDocument `json:"related_documents"`
}

// FileInfo records the source file behind a timeline event.
type FileInfo struct {
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
}

// StorageInfo records where event artefacts were materialised.
type StorageInfo struct {
	AttachmentDir string `json:"attachment_dir"`
}

// TimelineEvent is one document's entry in the assembled timeline.
// Created per document, then enriched with relationship views once all
// pairwise edges for the batch are known.
type TimelineEvent struct {
	// DocumentID is the source document.
	DocumentID string `json:"document_id"`

	TemporalInfo  TemporalInfo       `json:"temporal_info"`
	EventInfo     EventInfo          `json:"event_info"`
	Relationships EventRelationships `json:"relationships"`
	FileInfo      FileInfo           `json:"file_info"`
	StorageInfo   StorageInfo        `json:"storage_info"`
}

// DetermineTemporalRelationship orders source against target by inferred
// event date. Either side missing a date yields TemporalUnknown.
func DetermineTemporalRelationship(source, target TemporalInfo) TemporalRelation {
	if source.EventDate == nil || target.EventDate == nil {
		return TemporalUnknown
	}
	switch {
	case source.EventDate.Before(*target.EventDate):
		return TemporalBefore
	case source.EventDate.After(*target.EventDate):
		return TemporalAfter
	default:
		return TemporalConcurrent
	}
}
