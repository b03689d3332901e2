package extractors

import (
	"context"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.ContentExtractor = (*Router)(nil)

// Router dispatches extraction to the implementation registered for a
// document's classification. Unknown classifications fall back to the
// email extractor, which degrades to a nil result on unparseable text.
type Router struct {
	email      driven.ContentExtractor
	record     driven.ContentExtractor
	attachment driven.ContentExtractor
}

// NewRouter creates a router over the per-classification extractors.
func NewRouter(email, record, attachment driven.ContentExtractor) *Router {
	return &Router{
		email:      email,
		record:     record,
		attachment: attachment,
	}
}

func (r *Router) pick(doc *domain.Document) driven.ContentExtractor {
	switch doc.Classification.Type {
	case domain.DocTypeRecordTable:
		return r.record
	case domain.DocTypeAttachment, domain.DocTypeSpreadsheet:
		return r.attachment
	default:
		return r.email
	}
}

// ExtractContent dispatches to the classification's extractor.
func (r *Router) ExtractContent(ctx context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", domain.ErrInvalidInput
	}
	return r.pick(doc).ExtractContent(ctx, doc)
}

// ExtractFields dispatches to the classification's extractor.
func (r *Router) ExtractFields(ctx context.Context, doc *domain.Document) (*driven.DocumentFields, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	return r.pick(doc).ExtractFields(ctx, doc)
}
