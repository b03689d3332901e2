package domain

// RelationshipType classifies a discovered document relationship.
type RelationshipType string

const (
	// RelationEmailRecord links an email to a record-table entry.
	RelationEmailRecord RelationshipType = "email_record"
	// RelationEmailAttachment links an attachment to its carrying email.
	RelationEmailAttachment RelationshipType = "email_attachment"
)

// Relationship is an undirected, scored edge between two documents.
// Source/Target record which side the matcher started from, but the edge
// itself has no privileged direction: per-event views are derived from it
// rather than stored twice.
type Relationship struct {
	// Source is the document the matcher evaluated.
	Source string

	// Target is the document it was matched against.
	Target string

	// Type classifies the relationship.
	Type RelationshipType

	// Confidence is the match score in [0,1]. Not a calibrated
	// probability, only an ordering signal.
	Confidence float64

	// Metadata carries matcher detail (matched fields, reason code).
	Metadata map[string]any
}

// Other returns the endpoint opposite to id, and false when id is not an
// endpoint of the edge.
func (r Relationship) Other(id string) (string, bool) {
	switch id {
	case r.Source:
		return r.Target, true
	case r.Target:
		return r.Source, true
	}
	return "", false
}

// MatchReason codes recorded in Relationship.Metadata["reason"].
const (
	ReasonStrongFieldMatch  = "strong_field_match"
	ReasonWeakFieldMatch    = "weak_field_match"
	ReasonExtractionFailed  = "field_extraction_failed"
	ReasonMatchingError     = "matching_error"
	ReasonContentSimilarity = "content_similarity"
)
