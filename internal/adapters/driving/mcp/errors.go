// Package mcp provides an MCP (Model Context Protocol) server adapter
// for CaseTrail. It enables AI assistants like Claude to validate
// evidence, build timelines and inspect attachment storage.
package mcp

import "errors"

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("mcp: ingest service is required")

// ErrMissingTimelineService is returned when the timeline service is not provided.
var ErrMissingTimelineService = errors.New("mcp: timeline service is required")
