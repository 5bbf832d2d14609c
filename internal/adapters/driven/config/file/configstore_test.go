package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_EmptyDirectory(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "", store.GetString("embedding.backend"))
	assert.Equal(t, 0, store.GetInt("embedding.batch_size"))
	assert.False(t, store.GetBool("missing.flag"))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.backend", "ollama"))
	require.NoError(t, store.Set("embedding.batch_size", 16))

	assert.Equal(t, "ollama", store.GetString("embedding.backend"))
	assert.Equal(t, 16, store.GetInt("embedding.batch_size"))
}

func TestConfigStore_LoadsNestedTOMLAsDotKeys(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
backend = "openai"
batch_size = 64

[ollama]
base_url = "http://localhost:11434"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, "openai", store.GetString("embedding.backend"))
	assert.Equal(t, 64, store.GetInt("embedding.batch_size"))
	assert.Equal(t, "http://localhost:11434", store.GetString("ollama.base_url"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("segmenter.markers", "vi"))

	second, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "vi", second.GetString("segmenter.markers"))
}

func TestConfigStore_WrongTypeReturnsZeroValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("key", "not a number"))

	assert.Equal(t, 0, store.GetInt("key"))
	assert.False(t, store.GetBool("key"))
}
