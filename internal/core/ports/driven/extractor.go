package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// DocumentFields are the structured fields extracted from an email or
// record-table document for matching.
type DocumentFields struct {
	Subject string
	From    string
	To      string

	// Date is nil when no parseable date was present.
	Date *time.Time
}

// ContentExtractor pulls text and structured fields out of classified
// documents. Format-specific binary extraction (PDF, ODS) lives behind
// implementations of this port, never in the core.
//
// Absence is reported, not thrown: a nil result with a nil error means
// the extractor ran but found nothing usable, and callers must degrade
// (zero confidence) rather than abort.
type ContentExtractor interface {
	// ExtractContent returns the matchable text of a document:
	// body text for emails and record tables, the original filename
	// for binary attachments.
	ExtractContent(ctx context.Context, doc *domain.Document) (string, error)

	// ExtractFields returns the subject/from/to/date tuple for email
	// and record-table documents. Nil for other classifications and
	// for content the extractor could not parse.
	ExtractFields(ctx context.Context, doc *domain.Document) (*DocumentFields, error)
}
