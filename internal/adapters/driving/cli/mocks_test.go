package cli

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/custodia-labs/docbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/docbot/internal/core/domain"
)

// --- Mock implementations ---

type mockAssistant struct {
	mu        sync.Mutex
	questions []string
	histories [][]domain.Message
	reply     func(message string) domain.Reply
	docs      []domain.DocumentDescriptor
	docsErr   error
}

func (m *mockAssistant) Ask(_ context.Context, message string, history []domain.Message) domain.Reply {
	m.mu.Lock()
	m.questions = append(m.questions, message)
	m.histories = append(m.histories, append([]domain.Message(nil), history...))
	m.mu.Unlock()
	if m.reply != nil {
		return m.reply(message)
	}
	return domain.Reply{Text: "answer to " + message, Outcome: domain.OutcomeAnswered}
}

func (m *mockAssistant) Documents(_ context.Context) ([]domain.DocumentDescriptor, error) {
	return m.docs, m.docsErr
}

func (m *mockAssistant) Initialize(_ context.Context) error { return nil }

func (m *mockAssistant) Status(_ context.Context) domain.Status {
	return domain.Status{Initialized: true, Documents: len(m.docs)}
}

type mockSettings struct {
	values map[string]string
	setErr error
}

func newMockSettings() *mockSettings {
	return &mockSettings{values: map[string]string{
		"llm.model":              "groq:llama-3.1-8b-instant",
		"providers.groq.api_key": "",
	}}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Validate() error { return nil }

func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettings) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *mockSettings) Value(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", errors.New("unknown setting")
	}
	return v, nil
}

type mockSources map[string]string

func (m mockSources) Source(key string) string {
	if s, ok := m[key]; ok {
		return s
	}
	return "default"
}

type mockIngest struct {
	paths  []string
	opts   domain.IngestOptions
	report *domain.IngestReport
	err    error
}

func (m *mockIngest) Ingest(_ context.Context, paths []string, opts domain.IngestOptions) (*domain.IngestReport, error) {
	m.paths = paths
	m.opts = opts
	return m.report, m.err
}

func testCatalog() []domain.DocumentDescriptor {
	return []domain.DocumentDescriptor{
		{Key: "PCGH_2021", Code: "PCGH", Year: "2021", Standard: "Pliego General"},
		{Key: "RITE_2007", Code: "RITE", Year: "2007", Standard: "Reglamento Instalaciones"},
	}
}

// setupTestApp installs a with test doubles as the process-wide App.
func setupTestApp(t *testing.T, a *App) {
	t.Helper()
	if a.settings == nil {
		a.settings = newMockSettings()
	}
	currentMu.Lock()
	current = a
	currentMu.Unlock()

	t.Cleanup(func() {
		currentMu.Lock()
		current = nil
		currentMu.Unlock()
	})
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

// executeWithInput is execute with input as stdin.
func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables shared between commands.
func resetFlags() {
	askJSON = false
	catalogFormat = "text"
	chatPlain = false
	ingestReplace = false
	ingestBatchSize = 50
	ingestSplitter = "markdown"
	ingestChunkSize = 0
	ingestOverlap = -1
	serveAddr = ""
	serveJSONLogs = false
	serveNoMCP = false
}

func okChecks(_ context.Context, _ *domain.AppSettings) []ai.CheckResult {
	return []ai.CheckResult{{Name: "llm groq:llama-3.1-8b-instant"}}
}
