// Package tui provides an interactive terminal chat for docbot.
// It implements a driving adapter following hexagonal architecture principles:
// the transcript lives in the UI and is replayed as history on every question.
package tui

import (
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Assistant answers questions and lists documents.
	Assistant driving.AssistantService

	// Model is the model reference shown in the status bar.
	Model string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}
