package mcp

import (
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Assistant answers questions and exposes the catalog.
	Assistant driving.AssistantService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}
