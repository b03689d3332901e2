package attachments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "attachments"))
	require.NoError(t, err)
	return s
}

func TestStoreAndInfo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	src := writeSource(t, t.TempDir(), "agreement.pdf", "pdf bytes")

	stored, err := s.Store(ctx, src, "doc-1")
	require.NoError(t, err)
	assert.Len(t, stored.Hash, 64)
	assert.FileExists(t, stored.Path)
	assert.Equal(t, ".pdf", filepath.Ext(stored.Path))

	info, err := s.Info(ctx, stored.Hash)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "agreement.pdf", info.OriginalName)
	assert.Equal(t, stored.Hash, info.ContentHash)
	assert.False(t, info.CreatedAt.IsZero())
}

func TestStoreDeduplicatesIdenticalContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dir := t.TempDir()

	// Same bytes under two names, referenced by two documents.
	srcA := writeSource(t, dir, "scan_v1.pdf", "identical bytes")
	srcB := writeSource(t, dir, "scan_final.pdf", "identical bytes")

	storedA, err := s.Store(ctx, srcA, "doc-1")
	require.NoError(t, err)
	storedB, err := s.Store(ctx, srcB, "doc-2")
	require.NoError(t, err)

	assert.Equal(t, storedA.Hash, storedB.Hash)
	assert.Equal(t, storedA.Path, storedB.Path)

	refs, err := s.References(ctx, storedA.Hash)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"doc-1", "doc-2"}, refs)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UniqueFiles)
	assert.Equal(t, 2, stats.TotalReferences)
	assert.Equal(t, 2.0, stats.DedupRatio)

	// First arrival's name is kept.
	info, err := s.Info(ctx, storedA.Hash)
	require.NoError(t, err)
	assert.Equal(t, "scan_v1.pdf", info.OriginalName)
}

func TestStoreSameDocumentTwiceIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	src := writeSource(t, t.TempDir(), "a.pdf", "bytes")

	stored, err := s.Store(ctx, src, "doc-1")
	require.NoError(t, err)
	_, err = s.Store(ctx, src, "doc-1")
	require.NoError(t, err)

	refs, err := s.References(ctx, stored.Hash)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, refs)
}

func TestRemoveReference(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	src := writeSource(t, t.TempDir(), "a.pdf", "bytes")

	stored, err := s.Store(ctx, src, "doc-1")
	require.NoError(t, err)
	_, err = s.Store(ctx, src, "doc-2")
	require.NoError(t, err)

	require.NoError(t, s.RemoveReference(ctx, stored.Hash, "doc-1"))

	// Binary survives while a reference remains.
	assert.FileExists(t, stored.Path)
	refs, err := s.References(ctx, stored.Hash)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-2"}, refs)

	require.NoError(t, s.RemoveReference(ctx, stored.Hash, "doc-2"))

	// Last reference gone deletes binary and record.
	assert.NoFileExists(t, stored.Path)
	info, err := s.Info(ctx, stored.Hash)
	require.NoError(t, err)
	assert.Nil(t, info)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.UniqueFiles)
	assert.Zero(t, stats.TotalReferences)
}

func TestRemoveReferenceUnknownIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	assert.NoError(t, s.RemoveReference(ctx, "deadbeef", "doc-1"))
}

func TestReferencesUnknownHashIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	refs, err := s.References(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestMetadataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	base := filepath.Join(t.TempDir(), "attachments")

	s, err := New(base)
	require.NoError(t, err)
	src := writeSource(t, t.TempDir(), "a.pdf", "bytes")
	stored, err := s.Store(ctx, src, "doc-1")
	require.NoError(t, err)

	reopened, err := New(base)
	require.NoError(t, err)

	info, err := reopened.Info(ctx, stored.Hash)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "a.pdf", info.OriginalName)

	refs, err := reopened.References(ctx, stored.Hash)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, refs)
}

func TestStatsEmptyStore(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.UniqueFiles)
	assert.Zero(t, stats.TotalBytes)
	assert.Zero(t, stats.DedupRatio)
}
