package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// Retriever runs filtered similarity search over the chunk index.
type Retriever struct {
	index     driven.ChunkIndex
	topK      int
	threshold float64
}

// NewRetriever creates a retriever. A non-positive topK defaults to 5.
func NewRetriever(index driven.ChunkIndex, topK int, threshold float64) *Retriever {
	if topK <= 0 {
		topK = domain.DefaultAppSettings().Retrieval.TopK
	}
	return &Retriever{
		index:     index,
		topK:      topK,
		threshold: threshold,
	}
}

// Chunks returns the chunks at or above the similarity threshold, in the
// order the index returned them. documentKey scopes the search to one
// document; empty searches the whole corpus.
func (r *Retriever) Chunks(ctx context.Context, query, documentKey string) ([]domain.RetrievedChunk, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, top_k=%d, threshold=%.2f, filter=%q", query, r.topK, r.threshold, documentKey)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return nil, nil
	}

	hits, err := r.index.Query(ctx, query, r.topK, documentKey)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	logger.Debug("Index returned %d hits", len(hits))

	chunks := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		c := domain.NewRetrievedChunk(hit.Text, hit.Metadata, hit.Distance)
		if c.Similarity < r.threshold {
			logger.Debug("Dropping %s chunk with similarity %.3f", c.DocumentCode, c.Similarity)
			continue
		}
		chunks = append(chunks, c)
	}

	logger.Info("Retrieved %d chunks above threshold", len(chunks))
	return chunks, nil
}

// Search returns the formatted context for a query. An empty string means
// nothing relevant was found, which is a normal outcome.
func (r *Retriever) Search(ctx context.Context, query, documentKey string) (string, error) {
	chunks, err := r.Chunks(ctx, query, documentKey)
	if err != nil {
		return "", err
	}
	return domain.JoinContext(chunks), nil
}
