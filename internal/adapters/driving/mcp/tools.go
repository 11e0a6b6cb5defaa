package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

// HistoryMessage is one prior transcript turn.
type HistoryMessage struct {
	Role    string `json:"role" jsonschema:"user or assistant"`
	Content string `json:"content" jsonschema:"the message text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Message string           `json:"message" jsonschema:"the question to answer"`
	History []HistoryMessage `json:"history,omitempty" jsonschema:"prior turns of the conversation, oldest first"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Response string `json:"response"`
	Outcome  string `json:"outcome"`
	Document string `json:"document,omitempty"`
	Language string `json:"language,omitempty"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// DocumentOutput describes one catalog entry.
type DocumentOutput struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask",
		Description: "Answer a question using the indexed technical documents. " +
			"Pass earlier turns as history so follow-up questions and clarification replies resolve.",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents available in the knowledge base",
	}, s.handleListDocuments)
}

// handleAsk handles the ask tool invocation. Pipeline failures are
// returned as tool errors carrying the rendered reply text.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	reply := s.ports.Assistant.Ask(ctx, input.Message, toHistory(input.History))
	output := AskOutput{
		Response: reply.Text,
		Outcome:  string(reply.Outcome),
		Document: reply.Document,
		Language: string(reply.Language),
	}

	if reply.Outcome == domain.OutcomeError {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: reply.Text}},
		}, output, nil
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Assistant.Documents(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	output := ListDocumentsOutput{
		Documents: toDocumentOutputs(docs),
		Count:     len(docs),
	}
	return nil, output, nil
}

func toHistory(in []HistoryMessage) []domain.Message {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Message, len(in))
	for i, m := range in {
		out[i] = domain.Message{Role: domain.Role(m.Role), Content: m.Content}
	}
	return out
}

func toDocumentOutputs(docs []domain.DocumentDescriptor) []DocumentOutput {
	out := make([]DocumentOutput, len(docs))
	for i, d := range docs {
		out[i] = DocumentOutput{Key: d.Key, Description: d.Description()}
	}
	return out
}
