package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

func testDefaults() map[string]string {
	return map[string]string{
		driven.PromptTriageSystem: "identify the document",
		driven.PromptAnswerUser:   "Question: %s\nContext: %s",
	}
}

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("", nil)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".docbot", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := store.Load(driven.PromptTriageSystem)
	require.NoError(t, err)

	for _, f := range []string{"triage_system.txt", "answer_user.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "`answer_user.txt`")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Q=%s C=%s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer_user.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerUser)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, _ = store.Load(driven.PromptTriageSystem)
	require.NoError(t, os.Remove(filepath.Join(dir, "triage_system.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptTriageSystem)

	require.NoError(t, err)
	assert.Equal(t, "identify the document", prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nonexistent_prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"), testDefaults())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptTriageSystem)
	require.NoError(t, err)
	assert.Equal(t, "identify the document", prompt)

	_, err = store.Load("unknown")
	assert.Error(t, err)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newTestPromptStore(t)
	first, err := store.Load(driven.PromptTriageSystem)
	require.NoError(t, err)

	path := filepath.Join(dir, "triage_system.txt")
	require.NoError(t, os.WriteFile(path, []byte("  edited  \n"), 0600))

	cached, err := store.Load(driven.PromptTriageSystem)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptTriageSystem)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triage_system.txt")
	require.NoError(t, os.WriteFile(path, []byte("mine"), 0600))

	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptAnswerUser)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make(chan string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptAnswerUser)
			assert.NoError(t, err)
			results <- prompt
		}()
	}
	wg.Wait()
	close(results)

	for prompt := range results {
		assert.Equal(t, "Question: %s\nContext: %s", prompt)
	}
}

func TestPromptStore_WatchReloadsOnEdit(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, err := store.Load(driven.PromptTriageSystem)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	path := filepath.Join(dir, "triage_system.txt")
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("hot reloaded"), 0600)
		prompt, _ := store.Load(driven.PromptTriageSystem)
		return prompt == "hot reloaded"
	}, 5*time.Second, 50*time.Millisecond)
}
