package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Directory(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docbot.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	assert.DirExists(t, filepath.Dir(path))
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := NewConfigStore(filepath.Join(file, "sub"))

	assert.Error(t, err)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[[ not toml"), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "groq:llama-3.1-8b-instant"))
	require.NoError(t, store.Set("retrieval.top_k", 7))
	require.NoError(t, store.Set("server.debug", true))
	require.NoError(t, store.Set("server.allow_origins", []string{"a", "b"}))

	assert.Equal(t, "groq:llama-3.1-8b-instant", store.GetString("llm.model"))
	assert.Equal(t, 7, store.GetInt("retrieval.top_k"))
	assert.True(t, store.GetBool("server.debug"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("server.allow_origins"))

	assert.Empty(t, store.GetString("retrieval.top_k"), "wrong type reads as zero")
	assert.Zero(t, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("llm.model"))
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "ollama:llama3.2"))
	require.NoError(t, store.Set("providers.groq.api_key", "gsk"))
	require.NoError(t, store.Set("retrieval.top_k", 3))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "[providers.groq]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama:llama3.2", reloaded.GetString("llm.model"))
	assert.Equal(t, "gsk", reloaded.GetString("providers.groq.api_key"))
	assert.Equal(t, 3, reloaded.GetInt("retrieval.top_k"))
	assert.Equal(t, []string{"llm.model", "providers.groq.api_key", "retrieval.top_k"}, reloaded.Keys())
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[llm]
model = "cerebras:llama3.1-8b"
fallback_model = "groq:llama-3.1-8b-instant"

[index]
backend = "chroma"
url = "http://chroma:8001"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "cerebras:llama3.1-8b", store.GetString("llm.model"))
	assert.Equal(t, "chroma", store.GetString("index.backend"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("retrieval.top_k", n)
			_ = store.GetInt("retrieval.top_k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("retrieval.top_k")
	assert.True(t, ok)
}

func TestFlattenAndNest(t *testing.T) {
	nested := map[string]any{
		"llm":       map[string]any{"model": "m", "timeout": "30s"},
		"providers": map[string]any{"groq": map[string]any{"api_key": "k"}},
		"top":       int64(1),
	}

	flat := flattenMap(nested, "")

	want := map[string]any{
		"llm.model":              "m",
		"llm.timeout":            "30s",
		"providers.groq.api_key": "k",
		"top":                    int64(1),
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("flattenMap mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(nested, nestMap(flat)); diff != "" {
		t.Errorf("nestMap mismatch (-want +got):\n%s", diff)
	}
}

func TestNestMap_ValueWinsOverTable(t *testing.T) {
	got := nestMap(map[string]any{"llm": "x", "llm.model": "m"})

	assert.Equal(t, map[string]any{"llm": "x"}, got)
}
