package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("analysis.backend", "heuristic"))
	require.NoError(t, s.Set("chunker.target_tokens", 150))
	require.NoError(t, s.Set("watch.enabled", true))

	assert.Equal(t, "heuristic", s.GetString("analysis.backend"))
	assert.Equal(t, 150, s.GetInt("chunker.target_tokens"))
	assert.True(t, s.GetBool("watch.enabled"))

	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestTypeMismatchReturnsZeroValue(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("key", "not an int"))
	assert.Zero(t, s.GetInt("key"))
	assert.False(t, s.GetBool("key"))
}

func TestPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("analysis.backend", "remote"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "remote", reopened.GetString("analysis.backend"))
}

func TestLoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[analysis]\nbackend = \"remote\"\n\n[analysis.remote]\nbase_url = \"https://api.example.com\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "remote", s.GetString("analysis.backend"))
	assert.Equal(t, "https://api.example.com", s.GetString("analysis.remote.base_url"))
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), s.Path())
}
