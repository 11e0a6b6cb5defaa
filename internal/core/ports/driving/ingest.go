package driving

import (
	"context"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

// IngestService loads markdown documents into the chunk index.
type IngestService interface {
	// Ingest reads, splits, embeds and stores the given files or directories.
	Ingest(ctx context.Context, paths []string, opts domain.IngestOptions) (*domain.IngestReport, error)
}
