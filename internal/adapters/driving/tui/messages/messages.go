// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/docbot/internal/core/domain"
)

// ReplyReceived carries the assistant's reply to Question.
type ReplyReceived struct {
	Question string
	Reply    domain.Reply
}

// DocumentsLoaded carries the catalog for the documents panel.
type DocumentsLoaded struct {
	Documents []domain.DocumentDescriptor
	Err       error
}

// ViewChanged is sent when switching between the chat and the documents panel.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewDocuments lists the catalog.
	ViewDocuments
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	default:
		return "unknown"
	}
}
