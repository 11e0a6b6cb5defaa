package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
	"github.com/custodia-labs/docbot/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultIngestBatchSize is the number of chunks embedded per call.
const DefaultIngestBatchSize = 50

// chunkTypeTable marks chunks holding a whole table.
const chunkTypeTable = "table"

// IngestService loads markdown files into the chunk index.
type IngestService struct {
	splitter  driven.Splitter
	embedding driven.EmbeddingService
	writer    driven.ChunkWriter
}

// NewIngestService creates an ingest service.
func NewIngestService(splitter driven.Splitter, embedding driven.EmbeddingService, writer driven.ChunkWriter) *IngestService {
	return &IngestService{
		splitter:  splitter,
		embedding: embedding,
		writer:    writer,
	}
}

// Ingest reads every markdown file under paths, splits it, embeds the
// chunks in batches and stores them.
func (s *IngestService) Ingest(ctx context.Context, paths []string, opts domain.IngestOptions) (*domain.IngestReport, error) {
	if s.splitter == nil || s.embedding == nil || s.writer == nil {
		return nil, fmt.Errorf("%w: ingestion requires a splitter, an embedding service and a writable index",
			domain.ErrConfiguration)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths to ingest", domain.ErrInvalidInput)
	}

	logger.Section("Ingestion")
	report := &domain.IngestReport{}

	files, err := collectMarkdown(paths, report)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return report, nil
	}

	if opts.Replace {
		logger.Info("Clearing existing chunks")
		if err := s.writer.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
	}

	var chunks []domain.Chunk
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		doc := domain.NewSourceDocument(path, string(content))
		docChunks := s.split(doc)
		logger.Info("  %s: %d chunks", filepath.Base(path), len(docChunks))

		for _, c := range docChunks {
			if c.Metadata[domain.MetaChunkType] == chunkTypeTable {
				report.Tables++
			}
		}
		chunks = append(chunks, docChunks...)
		report.Files++

		name := doc.Metadata.DocumentKey()
		if name == "" {
			name = doc.Metadata.Source()
		}
		report.Documents = append(report.Documents, name)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultIngestBatchSize
	}
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		if err := s.store(ctx, chunks[start:end]); err != nil {
			return report, err
		}
		report.Chunks = end
		logger.Debug("Stored %d/%d chunks", end, len(chunks))
	}

	logger.Info("Ingested %d files, %d chunks (%d tables)", report.Files, report.Chunks, report.Tables)
	return report, nil
}

// split cuts a document and copies its metadata onto every chunk.
func (s *IngestService) split(doc domain.SourceDocument) []domain.Chunk {
	segments := s.splitter.Split(doc.Content)
	chunks := make([]domain.Chunk, 0, len(segments))
	for i, seg := range segments {
		meta := make(domain.ChunkMetadata, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta[domain.MetaChunkIndex] = strconv.Itoa(i)
		meta[domain.MetaChunkType] = seg.Type

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			Text:     seg.Text,
			Metadata: meta,
		})
	}
	return chunks
}

// store embeds one batch and writes it.
func (s *IngestService) store(ctx context.Context, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
	}
	for i := range batch {
		batch[i].Embedding = vectors[i]
	}

	if err := s.writer.Add(ctx, batch); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	return nil
}

// collectMarkdown expands directories and filters to .md files. Files
// given explicitly that are not markdown are recorded as skipped.
func collectMarkdown(paths []string, report *domain.IngestReport) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, p)
			}
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		if !info.IsDir() {
			if isMarkdown(p) {
				files = append(files, p)
			} else {
				report.Skipped = append(report.Skipped, p)
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isMarkdown(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}
