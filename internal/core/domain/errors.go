package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCannotProcess indicates validation produced a fatal finding.
	// Callers must not chunk or analyse a document carrying this error.
	ErrCannotProcess = errors.New("document cannot be processed")

	// ErrContentUnavailable indicates content or field extraction failed
	// for a document. Matching degrades to zero confidence instead of
	// aborting the batch.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrUnsupportedType indicates an unknown document classification.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrAnalyzerUnavailable indicates the analysis backend is not
	// configured. Semantic annotation is disabled without it.
	ErrAnalyzerUnavailable = errors.New("analysis backend unavailable")

	// ErrMalformedAnalysis indicates the analysis backend returned a
	// response missing required fields.
	ErrMalformedAnalysis = errors.New("malformed analysis response")
)
