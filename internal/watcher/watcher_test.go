package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driving"
)

// recordingIngest records processed paths and returns a fixed result.
type recordingIngest struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recordingIngest) Validate(_ context.Context, _ string, _ domain.DocType) (*domain.ValidationReport, error) {
	return nil, nil
}

func (r *recordingIngest) ProcessFile(_ context.Context, path string, _ domain.DocType) (*driving.IngestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	if r.err != nil {
		return nil, r.err
	}
	return &driving.IngestResult{Document: &domain.Document{ID: "doc-1"}}, nil
}

func (r *recordingIngest) ProcessBatch(_ context.Context, _ []string) ([]driving.IngestResult, []domain.TimelineEvent, error) {
	return nil, nil, nil
}

func (r *recordingIngest) Status(_ context.Context) (*driving.BatchStatus, error) {
	return &driving.BatchStatus{}, nil
}

func (r *recordingIngest) processed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

func TestWatcher_IngestsNewFile(t *testing.T) {
	dir := t.TempDir()
	ingest := &recordingIngest{}
	w := New(dir, ingest, WithSettle(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := w.Watch(ctx)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "email1.txt")
	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(path, []byte("From: a@b.c\n\nhello"), 0o644)
	}()

	select {
	case event := <-events:
		assert.Equal(t, path, event.Path)
		assert.NoError(t, event.Err)
		require.NotNil(t, event.Result)
		assert.Equal(t, "doc-1", event.Result.Document.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for intake event")
	}

	assert.Equal(t, []string{path}, ingest.processed())
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	ingest := &recordingIngest{}
	w := New(dir, ingest, WithSettle(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := w.Watch(ctx)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".partial"), []byte("x"), 0o644))

	select {
	case event := <-events:
		t.Fatalf("unexpected event for %s", event.Path)
	case <-time.After(200 * time.Millisecond):
	}

	assert.Empty(t, ingest.processed())
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	ingest := &recordingIngest{}
	w := New(dir, ingest, WithSettle(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := w.Watch(ctx)
	require.NoError(t, err)
	defer w.Close()

	// A burst of writes to the same file yields one ingestion.
	path := filepath.Join(dir, "growing.txt")
	go func() {
		for i := 0; i < 5; i++ {
			os.WriteFile(path, []byte("chunk"), 0o644)
			time.Sleep(10 * time.Millisecond)
		}
	}()

	select {
	case event := <-events:
		assert.Equal(t, path, event.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for intake event")
	}

	select {
	case event := <-events:
		t.Fatalf("unexpected second event for %s", event.Path)
	case <-time.After(300 * time.Millisecond):
	}

	assert.Len(t, ingest.processed(), 1)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New("/nonexistent/intake", &recordingIngest{})

	events, err := w.Watch(context.Background())
	assert.Error(t, err)
	assert.Nil(t, events)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, &recordingIngest{})

	_, err := w.Watch(context.Background())
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
