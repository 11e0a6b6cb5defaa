package driving

import (
	"context"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

// AssistantService answers questions about the document corpus.
type AssistantService interface {
	// Ask answers one user message given the caller-held transcript.
	// It never fails: errors are rendered into the reply text.
	Ask(ctx context.Context, message string, history []domain.Message) domain.Reply

	// Documents returns the catalog in catalog order.
	Documents(ctx context.Context) ([]domain.DocumentDescriptor, error)

	// Initialize discovers the catalog once. Concurrent callers share one attempt.
	Initialize(ctx context.Context) error

	// Status reports readiness.
	Status(ctx context.Context) domain.Status
}
