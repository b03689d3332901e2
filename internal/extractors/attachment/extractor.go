// Package attachment extracts matchable fields from binary attachments.
// Binary content is never parsed here; the filename and filesystem
// timestamps are the only signal available.
package attachment

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

// Extractor handles binary attachments and spreadsheets.
type Extractor struct{}

// New creates a new attachment extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractContent returns the original filename, the only matchable text
// a binary attachment carries.
func (e *Extractor) ExtractContent(_ context.Context, doc *domain.Document) (string, error) {
	if doc.OriginalName == "" {
		return "", domain.ErrContentUnavailable
	}
	return doc.OriginalName, nil
}

// ExtractFields derives fields from the filename and creation
// signature. From and To are never available for binaries.
func (e *Extractor) ExtractFields(_ context.Context, doc *domain.Document) (*driven.DocumentFields, error) {
	if doc.OriginalName == "" {
		return nil, nil
	}

	name := doc.OriginalName
	name = strings.TrimSuffix(name, filepath.Ext(name))

	fields := &driven.DocumentFields{Subject: name}
	if !doc.Fingerprint.CreationSignature.IsZero() {
		created := doc.Fingerprint.CreationSignature
		fields.Date = &created
	}

	return fields, nil
}
