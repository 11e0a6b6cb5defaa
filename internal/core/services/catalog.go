package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// DiscoverCatalog builds the catalog from stored chunk metadata.
// Chunks that identify no document are ignored. An empty index yields
// an empty catalog, not an error.
func DiscoverCatalog(ctx context.Context, index driven.ChunkIndex, limit int) (*domain.Catalog, error) {
	logger.Section("Catalog Discovery")

	metas, err := index.AllMetadata(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: read chunk metadata: %w", domain.ErrIndexUnavailable, err)
	}

	descriptors := make([]domain.DocumentDescriptor, 0, len(metas))
	for _, m := range metas {
		if d, ok := m.Descriptor(); ok {
			descriptors = append(descriptors, d)
		}
	}

	catalog := domain.NewCatalog(descriptors)
	logger.Info("Discovered %d documents from %d chunks", catalog.Len(), len(metas))
	for _, d := range catalog.Descriptors() {
		logger.Debug("  %s: %s", d.Key, d.Description())
	}
	return catalog, nil
}
