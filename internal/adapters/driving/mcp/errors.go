// Package mcp provides an MCP (Model Context Protocol) server adapter for docbot.
// It lets AI assistants ask questions about the document corpus and browse
// the document catalog.
package mcp

import "errors"

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("mcp: assistant service is required")
