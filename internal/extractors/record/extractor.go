// Package record extracts matchable fields from tabular message logs.
package record

import (
	"context"
	"encoding/csv"
	"strings"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
	"github.com/custodia-labs/casetrail-cli/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

// Extractor handles CSV and TSV message-log exports.
type Extractor struct{}

// New creates a new record-table extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractContent returns the table text as-is.
func (e *Extractor) ExtractContent(_ context.Context, doc *domain.Document) (string, error) {
	if doc.Content == "" {
		return "", domain.ErrContentUnavailable
	}
	return doc.Content, nil
}

// ExtractFields reads the header row to locate subject, sender,
// recipient and date columns, then pulls values from the first data
// row. Returns nil when the table has no recognisable columns or no
// data rows.
func (e *Extractor) ExtractFields(_ context.Context, doc *domain.Document) (*driven.DocumentFields, error) {
	if doc.Content == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(doc.Content))
	reader.FieldsPerRecord = -1
	if firstLine, _, ok := strings.Cut(doc.Content, "\n"); ok || firstLine != "" {
		if strings.Contains(firstLine, "\t") {
			reader.Comma = '\t'
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, nil
	}

	cols := columnIndexes(header)
	if len(cols) == 0 {
		return nil, nil
	}

	row, err := reader.Read()
	if err != nil {
		return nil, nil
	}

	fields := &driven.DocumentFields{}
	if i, ok := cols["subject"]; ok && i < len(row) {
		fields.Subject = strings.TrimSpace(row[i])
	}
	if i, ok := cols["from"]; ok && i < len(row) {
		fields.From = extractors.NormaliseAddress(row[i])
	}
	if i, ok := cols["to"]; ok && i < len(row) {
		fields.To = extractors.NormaliseAddress(row[i])
	}
	if i, ok := cols["date"]; ok && i < len(row) {
		fields.Date = extractors.ParseDate(row[i])
	}

	return fields, nil
}

// columnIndexes maps canonical field names to header positions.
// Header matching is by lowercase substring so "Sent Date" and
// "date_sent" both resolve to the date column.
func columnIndexes(header []string) map[string]int {
	cols := make(map[string]int)
	assign := func(name string, idx int) {
		if _, ok := cols[name]; !ok {
			cols[name] = idx
		}
	}

	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(h, "subject"):
			assign("subject", i)
		case strings.Contains(h, "from") || strings.Contains(h, "sender"):
			assign("from", i)
		case strings.Contains(h, "to") || strings.Contains(h, "recipient"):
			assign("to", i)
		case strings.Contains(h, "date") || strings.Contains(h, "sent"):
			assign("date", i)
		}
	}

	return cols
}
