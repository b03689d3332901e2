package domain

import "time"

// DocType is the closed set of document classifications.
// Branch logic switches on this type rather than free-form strings so
// new classifications surface every switch that needs updating.
type DocType string

const (
	// DocTypeEmail is an email message or email thread export.
	DocTypeEmail DocType = "email"
	// DocTypeRecordTable is a tabular message log (CSV/TSV export).
	DocTypeRecordTable DocType = "record_table"
	// DocTypeAttachment is a binary file referenced by other evidence.
	DocTypeAttachment DocType = "attachment"
	// DocTypeSpreadsheet is a spreadsheet container handed to the
	// attachment store for deduplicated retention.
	DocTypeSpreadsheet DocType = "spreadsheet"
	// DocTypeUnknown is anything the classifier could not place.
	DocTypeUnknown DocType = "unknown"
)

// Valid reports whether t is one of the known classifications.
func (t DocType) Valid() bool {
	switch t {
	case DocTypeEmail, DocTypeRecordTable, DocTypeAttachment, DocTypeSpreadsheet, DocTypeUnknown:
		return true
	}
	return false
}

// Classification describes what a document is and in which format.
type Classification struct {
	// Type is the document class driving matching and timeline logic.
	Type DocType

	// Format is the textual layout ("email", "numbered", "csv", ...).
	Format string

	// Context carries free-form classifier notes ("ofw_export",
	// "forwarded_thread") that later stages may refine.
	Context string
}

// Fingerprint identifies a document's content independent of its name.
type Fingerprint struct {
	// ContentHash is the SHA-256 digest of the raw bytes.
	ContentHash string

	// MetadataHash digests the name/size/mtime tuple.
	MetadataHash string

	// CreationSignature is the creation timestamp used for temporal
	// proximity scoring. Zero when the filesystem could not supply one.
	CreationSignature time.Time
}

// Document is a unit of evidence under review.
// Classification and relationship sets are mutated in place as later
// pipeline stages learn more; a document is never destroyed during a run.
type Document struct {
	// ID is the stable identifier for the document.
	ID string

	// OriginalName is the name the document arrived with.
	OriginalName string

	// Path is the storage location of the original bytes.
	Path string

	// Content is the full text after extraction, empty for binaries.
	Content string

	// SizeBytes is the size of the original file.
	SizeBytes int64

	// Fingerprint identifies the content.
	Fingerprint Fingerprint

	// Classification is what the router decided this document is.
	Classification Classification

	// Companions lists peer documents of equal standing.
	Companions []string

	// ContextDocs lists documents that supply context for this one.
	ContextDocs []string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last touched by a stage.
	UpdatedAt time.Time
}

// Chunk is a bounded-size, boundary-respecting segment of a document's
// text. Chunks for one document are totally ordered by Position and,
// concatenated with declared overlaps removed, reproduce the document's
// normalised text exactly. Immutable once created.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Text is the chunk's content.
	Text string

	// Position is the 0-based ordinal within the document.
	Position int

	// EstimatedTokens is the token estimate for Text.
	EstimatedTokens int

	// Type is the semantic unit kind ("message" or "email").
	Type string

	// Section is the human-readable section label ("Message 3").
	Section string

	// Continues is true when this chunk carries overlap from its
	// predecessor because a single unit was force-split.
	Continues bool

	// OverlapTokens is the token count shared with the predecessor.
	// At least the configured minimum whenever Continues is set.
	OverlapTokens int

	// ThreadID and EmailID group email-format chunks by conversation.
	ThreadID int
	EmailID  int

	// Headers holds the header fields seen in this chunk (lowercase keys).
	Headers map[string]string

	// References lists message identifiers this chunk refers to.
	References []string
}
