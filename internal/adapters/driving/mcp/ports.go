package mcp

import (
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ingest validates and processes evidence files.
	Ingest driving.IngestService

	// Timeline exposes the assembled timeline and attachment stats.
	Timeline driving.TimelineService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Timeline == nil {
		return ErrMissingTimelineService
	}
	return nil
}
