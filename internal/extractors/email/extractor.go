// Package email extracts matchable fields from email text.
package email

import (
	"context"
	"strings"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
	"github.com/custodia-labs/casetrail-cli/internal/extractors"
)

// headerScanLimit bounds how far into the text headers are looked for.
// Forwarded threads repeat header blocks deep in the body; only the
// first block describes this document.
const headerScanLimit = 50

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

// Extractor handles email documents.
type Extractor struct{}

// New creates a new email extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractContent returns the email body text.
func (e *Extractor) ExtractContent(_ context.Context, doc *domain.Document) (string, error) {
	if doc.Content == "" {
		return "", domain.ErrContentUnavailable
	}
	return doc.Content, nil
}

// ExtractFields scans the leading lines for Subject, From, To and Date
// headers. Returns nil when no header at all is present.
func (e *Extractor) ExtractFields(_ context.Context, doc *domain.Document) (*driven.DocumentFields, error) {
	if doc.Content == "" {
		return nil, nil
	}

	lines := strings.Split(doc.Content, "\n")
	if len(lines) > headerScanLimit {
		lines = lines[:headerScanLimit]
	}

	fields := &driven.DocumentFields{}
	found := false
	for _, line := range lines {
		key, value, ok := splitHeader(line)
		if !ok {
			continue
		}
		switch key {
		case "subject":
			if fields.Subject == "" {
				fields.Subject = value
				found = true
			}
		case "from", "sent from":
			if fields.From == "" {
				fields.From = extractors.NormaliseAddress(value)
				found = true
			}
		case "to", "sent to":
			if fields.To == "" {
				fields.To = extractors.NormaliseAddress(value)
				found = true
			}
		case "date", "sent":
			if fields.Date == nil {
				fields.Date = extractors.ParseDate(value)
				found = true
			}
		}
	}

	if !found {
		return nil, nil
	}
	return fields, nil
}

// splitHeader parses a "Key: value" line into a lowercase key.
func splitHeader(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	if strings.ContainsAny(key, " \t") && key != "sent from" && key != "sent to" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}
