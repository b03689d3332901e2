package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for CaseTrail resources.
	uriScheme = "casetrail://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the full assembled timeline.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "timeline",
		Name:        "timeline",
		Description: "The full assembled evidence timeline, ordered by event date",
		MIMEType:    "application/json",
	}, s.handleTimelineResource)

	// Template for a single document's timeline event.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "events/{documentId}",
		Name:        "document-event",
		Description: "The timeline event for a specific document",
		MIMEType:    "application/json",
	}, s.handleEventResource)
}

// handleTimelineResource returns the full timeline as JSON.
func (s *Server) handleTimelineResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	events, err := s.ports.Timeline.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling timeline: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleEventResource returns one document's timeline event.
func (s *Server) handleEventResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	events, err := s.ports.Timeline.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	for i := range events {
		if events[i].DocumentID != docID {
			continue
		}
		data, err := json.MarshalIndent(events[i], "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling event: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	}

	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// extractDocumentID extracts the document ID from a URI like casetrail://events/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "events/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
