package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
)

func newTestServer(t *testing.T, ingest *mockIngestService, timeline *mockTimelineService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Ingest: ingest, Timeline: timeline})
	require.NoError(t, err)
	return server
}

func TestServer_handleValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns report summary", func(t *testing.T) {
		ingest := &mockIngestService{report: &domain.ValidationReport{
			Size: domain.SizeCheck{
				Category:        domain.SizeSingleChunk,
				EstimatedTokens: 120,
			},
			CanProcess: true,
			Warnings:   []string{"3 lines exceeding maximum length"},
		}}
		server := newTestServer(t, ingest, &mockTimelineService{})

		_, output, err := server.handleValidate(ctx, nil, ValidateInput{Content: "From: a@b.c", Type: "email"})
		require.NoError(t, err)

		assert.True(t, output.CanProcess)
		assert.Equal(t, "single_chunk", output.SizeCategory)
		assert.Equal(t, 120, output.EstimatedTokens)
		assert.Len(t, output.Warnings, 1)
	})

	t.Run("invalid declared type", func(t *testing.T) {
		server := newTestServer(t, &mockIngestService{}, &mockTimelineService{})

		_, _, err := server.handleValidate(ctx, nil, ValidateInput{Content: "x", Type: "parchment"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty type defaults to unknown", func(t *testing.T) {
		ingest := &mockIngestService{report: &domain.ValidationReport{CanProcess: true}}
		server := newTestServer(t, ingest, &mockTimelineService{})

		_, output, err := server.handleValidate(ctx, nil, ValidateInput{Content: "plain text"})
		require.NoError(t, err)
		assert.True(t, output.CanProcess)
	})
}

func TestServer_handleBuildTimeline(t *testing.T) {
	ctx := context.Background()

	t.Run("returns events", func(t *testing.T) {
		date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		ingest := &mockIngestService{
			results: []driving.IngestResult{{}, {}},
			events: []domain.TimelineEvent{{
				DocumentID:   "doc-1",
				TemporalInfo: domain.TemporalInfo{EventDate: &date},
				EventInfo: domain.EventInfo{
					Type:   "communication",
					Actors: []string{"alice@example.com"},
				},
			}},
		}
		server := newTestServer(t, ingest, &mockTimelineService{})

		_, output, err := server.handleBuildTimeline(ctx, nil, TimelineInput{Paths: []string{"/a", "/b"}})
		require.NoError(t, err)

		require.Len(t, output.Events, 1)
		assert.Equal(t, "doc-1", output.Events[0].DocumentID)
		assert.Equal(t, "2024-03-15", output.Events[0].EventDate)
		assert.Equal(t, 1, output.Rejected)
	})

	t.Run("empty paths rejected", func(t *testing.T) {
		server := newTestServer(t, &mockIngestService{}, &mockTimelineService{})

		_, _, err := server.handleBuildTimeline(ctx, nil, TimelineInput{})
		assert.Error(t, err)
	})

	t.Run("batch error propagates", func(t *testing.T) {
		ingest := &mockIngestService{err: errors.New("disk full")}
		server := newTestServer(t, ingest, &mockTimelineService{})

		_, _, err := server.handleBuildTimeline(ctx, nil, TimelineInput{Paths: []string{"/a"}})
		assert.Error(t, err)
	})
}

func TestServer_handleAttachmentStats(t *testing.T) {
	ctx := context.Background()

	timeline := &mockTimelineService{stats: &domain.StoreStats{
		UniqueFiles:     3,
		TotalReferences: 7,
		TotalBytes:      4096,
		DedupRatio:      7.0 / 3.0,
	}}
	server := newTestServer(t, &mockIngestService{}, timeline)

	_, output, err := server.handleAttachmentStats(ctx, nil, StatsInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, output.UniqueFiles)
	assert.Equal(t, 7, output.TotalReferences)
	assert.Equal(t, int64(4096), output.TotalBytes)
	assert.InDelta(t, 2.333, output.DedupRatio, 0.001)
}
