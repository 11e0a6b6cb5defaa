package driven

import (
	"context"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

// ChunkIndex is the similarity search service over document chunks.
// The core treats it as a black box: it never re-ranks hits.
type ChunkIndex interface {
	// AllMetadata returns the metadata of up to limit stored chunks.
	AllMetadata(ctx context.Context, limit int) ([]domain.ChunkMetadata, error)

	// Query returns the k chunks nearest to text, optionally restricted to
	// one document (empty documentKey = whole corpus). Hits are in the
	// index's own order, typically nearest first.
	Query(ctx context.Context, text string, k int, documentKey string) ([]IndexHit, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// ChunkWriter is implemented by indexes that accept ingested chunks.
type ChunkWriter interface {
	// Add stores chunks with their embeddings.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Reset removes every stored chunk.
	Reset(ctx context.Context) error
}

// IndexHit is one similarity search result.
type IndexHit struct {
	// Text is the chunk content.
	Text string

	// Metadata identifies the owning document.
	Metadata domain.ChunkMetadata

	// Distance is the index's distance metric (cosine distance for built-in backends).
	Distance float64
}
