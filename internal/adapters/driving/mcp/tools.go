package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

// ValidateInput is the input schema for the validate_document tool.
type ValidateInput struct {
	Content string `json:"content" jsonschema:"the raw document content to validate"`
	Type    string `json:"type,omitempty" jsonschema:"declared document type (email, record_table, attachment, spreadsheet)"`
}

// ValidateOutput is the output schema for the validate_document tool.
type ValidateOutput struct {
	CanProcess      bool     `json:"can_process"`
	SizeCategory    string   `json:"size_category"`
	EstimatedTokens int      `json:"estimated_tokens"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// TimelineInput is the input schema for the build_timeline tool.
type TimelineInput struct {
	Paths []string `json:"paths" jsonschema:"evidence file paths to ingest and correlate"`
}

// TimelineOutput is the output schema for the build_timeline tool.
type TimelineOutput struct {
	Events   []EventOutput `json:"events"`
	Rejected int           `json:"rejected"`
}

// EventOutput is one timeline entry.
type EventOutput struct {
	DocumentID string   `json:"document_id"`
	EventDate  string   `json:"event_date,omitempty"`
	Type       string   `json:"type"`
	Actors     []string `json:"actors,omitempty"`
	Related    int      `json:"related_documents"`
}

// StatsInput is the input schema for the attachment_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the attachment_stats tool.
type StatsOutput struct {
	UniqueFiles     int     `json:"unique_files"`
	TotalReferences int     `json:"total_references"`
	TotalBytes      int64   `json:"total_bytes"`
	DedupRatio      float64 `json:"deduplication_ratio"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_document",
		Description: "Validate evidence content without ingesting it",
	}, s.handleValidate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_timeline",
		Description: "Ingest evidence files and build a cross-referenced timeline",
	}, s.handleBuildTimeline)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "attachment_stats",
		Description: "Report deduplicated attachment storage statistics",
	}, s.handleAttachmentStats)
}

// handleValidate handles the validate_document tool invocation.
func (s *Server) handleValidate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	declared := domain.DocType(input.Type)
	if declared == "" {
		declared = domain.DocTypeUnknown
	}
	if !declared.Valid() {
		return nil, ValidateOutput{}, domain.ErrInvalidInput
	}

	report, err := s.ports.Ingest.Validate(ctx, input.Content, declared)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	return nil, ValidateOutput{
		CanProcess:      report.CanProcess,
		SizeCategory:    string(report.Size.Category),
		EstimatedTokens: report.Size.EstimatedTokens,
		Errors:          report.Errors,
		Warnings:        report.Warnings,
	}, nil
}

// handleBuildTimeline handles the build_timeline tool invocation.
func (s *Server) handleBuildTimeline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TimelineInput,
) (*mcp.CallToolResult, TimelineOutput, error) {
	if len(input.Paths) == 0 {
		return nil, TimelineOutput{}, errors.New("at least one path is required")
	}

	results, events, err := s.ports.Ingest.ProcessBatch(ctx, input.Paths)
	if err != nil {
		return nil, TimelineOutput{}, err
	}

	output := TimelineOutput{
		Events:   make([]EventOutput, len(events)),
		Rejected: len(results) - len(events),
	}
	for i := range events {
		output.Events[i] = eventOutput(&events[i])
	}

	return nil, output, nil
}

// handleAttachmentStats handles the attachment_stats tool invocation.
func (s *Server) handleAttachmentStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Timeline.StorageStats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	return nil, StatsOutput{
		UniqueFiles:     stats.UniqueFiles,
		TotalReferences: stats.TotalReferences,
		TotalBytes:      stats.TotalBytes,
		DedupRatio:      stats.DedupRatio,
	}, nil
}

func eventOutput(event *domain.TimelineEvent) EventOutput {
	out := EventOutput{
		DocumentID: event.DocumentID,
		Type:       event.EventInfo.Type,
		Actors:     event.EventInfo.Actors,
		Related:    len(event.Relationships.RelatedDocuments),
	}
	if event.TemporalInfo.EventDate != nil {
		out.EventDate = event.TemporalInfo.EventDate.Format(time.DateOnly)
	}
	return out
}
