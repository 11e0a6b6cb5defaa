package mcp

import (
	"context"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

// --- Mock implementations ---

// mockAssistant is a mock implementation of driving.AssistantService.
type mockAssistant struct {
	reply   domain.Reply
	docs    []domain.DocumentDescriptor
	docsErr error

	gotMessage string
	gotHistory []domain.Message
}

func (m *mockAssistant) Ask(_ context.Context, message string, history []domain.Message) domain.Reply {
	m.gotMessage = message
	m.gotHistory = history
	return m.reply
}

func (m *mockAssistant) Documents(_ context.Context) ([]domain.DocumentDescriptor, error) {
	return m.docs, m.docsErr
}

func (m *mockAssistant) Initialize(_ context.Context) error { return nil }

func (m *mockAssistant) Status(_ context.Context) domain.Status { return domain.Status{} }

func testCatalog() []domain.DocumentDescriptor {
	return []domain.DocumentDescriptor{
		{Key: "PCGH_2025_Eurovent", Code: "PCGH", Year: "2025", Standard: "Eurovent"},
		{Key: "RXA_2024_AHRI", Code: "RXA", Year: "2024", Standard: "AHRI"},
	}
}
