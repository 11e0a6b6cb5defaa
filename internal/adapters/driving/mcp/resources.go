package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for docbot resources.
const uriScheme = "docbot://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "catalog",
		Name:        "catalog",
		Description: "Documents available in the knowledge base",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{key}",
		Name:        "document",
		Description: "Descriptor of a single document",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

// documentInfo is the JSON shape of a catalog entry.
type documentInfo struct {
	Key         string `json:"key"`
	Code        string `json:"code"`
	Year        string `json:"year,omitempty"`
	Standard    string `json:"standard,omitempty"`
	Description string `json:"description"`
}

// handleCatalogResource returns every document in catalog order.
func (s *Server) handleCatalogResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Assistant.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]documentInfo, len(docs))
	for i, d := range docs {
		infos[i] = documentInfo{
			Key:         d.Key,
			Code:        d.Code,
			Year:        d.Year,
			Standard:    d.Standard,
			Description: d.Description(),
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleDocumentResource returns the descriptor for docbot://documents/{key}.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key := extractDocumentKey(req.Params.URI)
	if key == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Assistant.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	for _, d := range docs {
		if d.Key == key {
			return jsonResource(req.Params.URI, documentInfo{
				Key:         d.Key,
				Code:        d.Code,
				Year:        d.Year,
				Standard:    d.Standard,
				Description: d.Description(),
			})
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentKey extracts the key from a URI like docbot://documents/{key}.
func extractDocumentKey(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
