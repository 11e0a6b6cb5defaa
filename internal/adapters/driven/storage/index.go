// Package storage selects the chunk index backend.
package storage

import (
	"fmt"

	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/chroma"
	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// Index is a chunk index that also accepts ingested chunks.
type Index interface {
	driven.ChunkIndex
	driven.ChunkWriter
}

// OpenIndex opens the backend named by settings. Queries are embedded
// with embedder.
func OpenIndex(settings *domain.AppSettings, embedder driven.EmbeddingService) (Index, error) {
	cfg := settings.Index
	switch cfg.Backend {
	case domain.IndexBackendSQLite:
		store, err := sqlite.NewStore(cfg.DataDir, embedder)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		return store, nil

	case domain.IndexBackendChroma:
		return chroma.New(chroma.Config{
			URL:        cfg.URL,
			Tenant:     cfg.Tenant,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		}, embedder), nil

	case domain.IndexBackendMemory:
		return memory.NewChunkIndex(embedder), nil

	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrConfiguration, cfg.Backend)
	}
}
