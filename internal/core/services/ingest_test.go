package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngest_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "PCGH_2025_Eurovent.md", "# PCGH\n\nHeating capacity.\n\n| Model | kW |\n|---|---|\n| A | 12 |")
	writeFile(t, dir, "notes.md", "Loose notes.")
	writeFile(t, dir, "image.png", "binary")
	writeFile(t, dir, ".hidden/secret.md", "skip me")

	embed := &mockEmbeddingService{}
	writer := &mockWriter{}
	svc := NewIngestService(paragraphSplitter{}, embed, writer)

	report, err := svc.Ingest(context.Background(), []string{dir}, domain.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 4, report.Chunks)
	assert.Equal(t, 1, report.Tables)
	assert.Equal(t, []string{"PCGH_2025_Eurovent", "notes.md"}, report.Documents)
	require.Len(t, writer.chunks, 4)

	first := writer.chunks[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, first.Embedding)
	assert.Equal(t, "PCGH_2025_Eurovent", first.Metadata.DocumentKey())
	assert.Equal(t, "PCGH", first.Metadata.DocumentCode())
	assert.Equal(t, "0", first.Metadata[domain.MetaChunkIndex])
	assert.Equal(t, "text", first.Metadata[domain.MetaChunkType])

	table := writer.chunks[2]
	assert.Equal(t, "table", table.Metadata[domain.MetaChunkType])
	assert.Equal(t, "2", table.Metadata[domain.MetaChunkIndex])

	loose := writer.chunks[3]
	assert.Empty(t, loose.Metadata.DocumentKey())
	assert.Equal(t, "notes.md", loose.Metadata.Source())

	ids := make(map[string]bool)
	for _, c := range writer.chunks {
		assert.False(t, ids[c.ID], "duplicate chunk id")
		ids[c.ID] = true
	}
}

func TestIngest_Batches(t *testing.T) {
	dir := t.TempDir()
	paragraphs := make([]string, 7)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("Paragraph %d.", i)
	}
	writeFile(t, dir, "GC_2026_Oposiciones.md", strings.Join(paragraphs, "\n\n"))

	embed := &mockEmbeddingService{}
	svc := NewIngestService(paragraphSplitter{}, embed, &mockWriter{})

	report, err := svc.Ingest(context.Background(), []string{dir}, domain.IngestOptions{BatchSize: 3})

	require.NoError(t, err)
	assert.Equal(t, 7, report.Chunks)
	assert.Equal(t, []int{3, 3, 1}, embed.batchSizes)
}

func TestIngest_ReplaceResetsIndex(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "GC_2026_Oposiciones.md", "Text.")
	writer := &mockWriter{}
	svc := NewIngestService(paragraphSplitter{}, &mockEmbeddingService{}, writer)

	_, err := svc.Ingest(context.Background(), []string{path}, domain.IngestOptions{Replace: true})

	require.NoError(t, err)
	assert.Equal(t, 1, writer.resets)
	assert.Len(t, writer.chunks, 1)
}

func TestIngest_ExplicitNonMarkdownIsSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a,b")
	writer := &mockWriter{}
	svc := NewIngestService(paragraphSplitter{}, &mockEmbeddingService{}, writer)

	report, err := svc.Ingest(context.Background(), []string{path}, domain.IngestOptions{Replace: true})

	require.NoError(t, err)
	assert.Equal(t, []string{path}, report.Skipped)
	assert.Zero(t, report.Files)
	assert.Zero(t, writer.resets)
}

func TestIngest_MissingPath(t *testing.T) {
	svc := NewIngestService(paragraphSplitter{}, &mockEmbeddingService{}, &mockWriter{})

	_, err := svc.Ingest(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, domain.IngestOptions{})

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngest_EmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "GC_2026_Oposiciones.md", "Text.")
	svc := NewIngestService(paragraphSplitter{}, &mockEmbeddingService{embedErr: errors.New("ollama down")}, &mockWriter{})

	_, err := svc.Ingest(context.Background(), []string{dir}, domain.IngestOptions{})

	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIngest_RequiresCollaborators(t *testing.T) {
	svc := NewIngestService(nil, nil, nil)

	_, err := svc.Ingest(context.Background(), []string{"."}, domain.IngestOptions{})

	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestIngest_NoPaths(t *testing.T) {
	svc := NewIngestService(paragraphSplitter{}, &mockEmbeddingService{}, &mockWriter{})

	_, err := svc.Ingest(context.Background(), nil, domain.IngestOptions{})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
