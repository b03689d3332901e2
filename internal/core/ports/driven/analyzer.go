package driven

import (
	"context"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// Analyzer is the opaque semantic analysis backend.
// Given raw text it returns key points, entities, entity relationships
// and patterns with confidence scores. The engine never second-guesses
// the backend's reasoning; it only checks required fields are present
// before building metadata from the response.
//
// The heuristic regex implementation and any remote service sit behind
// this same interface so a stronger backend can be substituted without
// touching callers.
type Analyzer interface {
	// Analyze annotates a text span.
	Analyze(ctx context.Context, text string) (*domain.Analysis, error)
}
