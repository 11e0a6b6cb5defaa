package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// Ensure ChunkIndex implements the interfaces.
var (
	_ driven.ChunkIndex  = (*ChunkIndex)(nil)
	_ driven.ChunkWriter = (*ChunkIndex)(nil)
)

// ChunkIndex is an in-memory implementation of driven.ChunkIndex.
// Queries are embedded with the configured service and scored by
// cosine distance against every stored chunk.
type ChunkIndex struct {
	embedder driven.EmbeddingService

	mu     sync.RWMutex
	chunks []domain.Chunk
	ids    map[string]int
}

// NewChunkIndex creates an empty in-memory chunk index.
func NewChunkIndex(embedder driven.EmbeddingService) *ChunkIndex {
	return &ChunkIndex{
		embedder: embedder,
		ids:      make(map[string]int),
	}
}

// Add stores chunks. A chunk whose ID already exists replaces it in place.
func (i *ChunkIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", c.ID)
		}
		if pos, ok := i.ids[c.ID]; ok {
			i.chunks[pos] = c
			continue
		}
		i.ids[c.ID] = len(i.chunks)
		i.chunks = append(i.chunks, c)
	}
	return nil
}

// Reset removes every stored chunk.
func (i *ChunkIndex) Reset(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.chunks = nil
	i.ids = make(map[string]int)
	return nil
}

// AllMetadata returns the metadata of up to limit chunks in insertion order.
func (i *ChunkIndex) AllMetadata(_ context.Context, limit int) ([]domain.ChunkMetadata, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	n := len(i.chunks)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.ChunkMetadata, n)
	for j := 0; j < n; j++ {
		out[j] = i.chunks[j].Metadata
	}
	return out, nil
}

// Query embeds text and returns the k nearest chunks of the document.
func (i *ChunkIndex) Query(ctx context.Context, text string, k int, documentKey string) ([]driven.IndexHit, error) {
	if i.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service", domain.ErrIndexUnavailable)
	}
	query, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	i.mu.RLock()
	candidates := make([]vector.Scored[domain.Chunk], 0, len(i.chunks))
	for _, c := range i.chunks {
		if !c.Metadata.MatchesDocument(documentKey) {
			continue
		}
		candidates = append(candidates, vector.Scored[domain.Chunk]{
			Item:     c,
			Distance: vector.CosineDistance(query, c.Embedding),
		})
	}
	i.mu.RUnlock()

	nearest := vector.Nearest(candidates, k)
	hits := make([]driven.IndexHit, len(nearest))
	for j, s := range nearest {
		hits[j] = driven.IndexHit{Text: s.Item.Text, Metadata: s.Item.Metadata, Distance: s.Distance}
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (i *ChunkIndex) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.chunks), nil
}

// Close releases resources.
func (i *ChunkIndex) Close() error {
	return nil
}
