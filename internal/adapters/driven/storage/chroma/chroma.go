// Package chroma provides a chunk index backed by a Chroma server's REST API.
package chroma

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docbot/internal/adapters/driven/llm/llmhttp"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// Ensure Index implements the interfaces.
var (
	_ driven.ChunkIndex  = (*Index)(nil)
	_ driven.ChunkWriter = (*Index)(nil)
)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:8001"
	DefaultTenant     = "default_tenant"
	DefaultDatabase   = "default_database"
	DefaultCollection = "technical_manuals"
	DefaultTimeout    = 30 * time.Second
)

// Config holds configuration for the Chroma index.
type Config struct {
	// URL is the server base URL (default: http://localhost:8001).
	URL string

	// Tenant is the Chroma tenant (default: default_tenant).
	Tenant string

	// Database is the Chroma database (default: default_database).
	Database string

	// Collection holds the document chunks (default: technical_manuals).
	Collection string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Index talks to one Chroma collection. Queries are embedded client-side
// with the configured embedding service.
type Index struct {
	http     *llmhttp.Client
	base     string
	name     string
	embedder driven.EmbeddingService

	mu           sync.Mutex
	collectionID string
}

type collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createRequest struct {
	Name        string         `json:"name"`
	GetOrCreate bool           `json:"get_or_create"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type getRequest struct {
	Limit   int      `json:"limit,omitempty"`
	Include []string `json:"include"`
}

type getResponse struct {
	IDs       []string         `json:"ids"`
	Metadatas []map[string]any `json:"metadatas"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Where           map[string]any `json:"where,omitempty"`
	Include         []string       `json:"include"`
}

type queryResponse struct {
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

type addRequest struct {
	IDs        []string            `json:"ids"`
	Embeddings [][]float32         `json:"embeddings"`
	Documents  []string            `json:"documents"`
	Metadatas  []map[string]string `json:"metadatas"`
}

// New creates a Chroma index client. The collection is resolved lazily.
func New(cfg Config, embedder driven.EmbeddingService) *Index {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Tenant == "" {
		cfg.Tenant = DefaultTenant
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	base := fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s/collections",
		strings.TrimSuffix(cfg.URL, "/"), url.PathEscape(cfg.Tenant), url.PathEscape(cfg.Database))
	return &Index{
		http:     llmhttp.NewClient("chroma", cfg.Timeout, nil, nil),
		base:     base,
		name:     cfg.Collection,
		embedder: embedder,
	}
}

// collection returns the collection ID, creating the collection if needed.
func (i *Index) collection(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.collectionID != "" {
		return i.collectionID, nil
	}
	var c collection
	req := createRequest{Name: i.name, GetOrCreate: true, Metadata: map[string]any{"hnsw:space": "cosine"}}
	if err := i.http.PostJSON(ctx, i.base, req, &c); err != nil {
		return "", fmt.Errorf("%w: open collection %s: %w", domain.ErrIndexUnavailable, i.name, err)
	}
	logger.Debug("Chroma collection %s resolved to %s", i.name, c.ID)
	i.collectionID = c.ID
	return c.ID, nil
}

// AllMetadata returns the metadata of up to limit chunks.
func (i *Index) AllMetadata(ctx context.Context, limit int) ([]domain.ChunkMetadata, error) {
	id, err := i.collection(ctx)
	if err != nil {
		return nil, err
	}
	var resp getResponse
	req := getRequest{Limit: limit, Include: []string{"metadatas"}}
	if err := i.http.PostJSON(ctx, i.base+"/"+id+"/get", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	out := make([]domain.ChunkMetadata, len(resp.Metadatas))
	for j, m := range resp.Metadatas {
		out[j] = toMetadata(m)
	}
	return out, nil
}

// Query embeds text and returns the server's k nearest chunks. A document
// filter matches the structured key, the legacy key or the source filename.
func (i *Index) Query(ctx context.Context, text string, k int, documentKey string) ([]driven.IndexHit, error) {
	if i.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service", domain.ErrIndexUnavailable)
	}
	vec, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	id, err := i.collection(ctx)
	if err != nil {
		return nil, err
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{vec},
		NResults:        k,
		Where:           documentWhere(documentKey),
		Include:         []string{"documents", "metadatas", "distances"},
	}
	var resp queryResponse
	if err := i.http.PostJSON(ctx, i.base+"/"+id+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if len(resp.Documents) == 0 {
		return nil, nil
	}

	docs := resp.Documents[0]
	hits := make([]driven.IndexHit, len(docs))
	for j, doc := range docs {
		hits[j] = driven.IndexHit{Text: doc, Metadata: domain.ChunkMetadata{}}
		if len(resp.Metadatas) > 0 && j < len(resp.Metadatas[0]) {
			hits[j].Metadata = toMetadata(resp.Metadatas[0][j])
		}
		if len(resp.Distances) > 0 && j < len(resp.Distances[0]) {
			hits[j].Distance = resp.Distances[0][j]
		}
	}
	return hits, nil
}

func documentWhere(key string) map[string]any {
	if key == "" {
		return nil
	}
	return map[string]any{"$or": []map[string]any{
		{domain.MetaDocumentKey: key},
		{domain.MetaLegacyDocumentKey: key},
		{domain.MetaSource: key + ".md"},
	}}
}

// Add uploads chunks with their embeddings.
func (i *Index) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	id, err := i.collection(ctx)
	if err != nil {
		return err
	}

	req := addRequest{
		IDs:        make([]string, len(chunks)),
		Embeddings: make([][]float32, len(chunks)),
		Documents:  make([]string, len(chunks)),
		Metadatas:  make([]map[string]string, len(chunks)),
	}
	for j, c := range chunks {
		req.IDs[j] = c.ID
		req.Embeddings[j] = c.Embedding
		req.Documents[j] = c.Text
		req.Metadatas[j] = c.Metadata
	}
	if err := i.http.PostJSON(ctx, i.base+"/"+id+"/add", req, nil); err != nil {
		return fmt.Errorf("%w: add chunks: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Reset drops the collection. It is recreated on next use.
func (i *Index) Reset(ctx context.Context) error {
	err := i.http.Delete(ctx, i.base+"/"+url.PathEscape(i.name))
	if err != nil && !llmhttp.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("%w: delete collection: %w", domain.ErrIndexUnavailable, err)
	}
	i.mu.Lock()
	i.collectionID = ""
	i.mu.Unlock()
	return nil
}

// Count returns the number of stored chunks.
func (i *Index) Count(ctx context.Context) (int, error) {
	id, err := i.collection(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := i.http.GetJSON(ctx, i.base+"/"+id+"/count", &n); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return n, nil
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

// toMetadata flattens Chroma's typed metadata values to strings.
func toMetadata(m map[string]any) domain.ChunkMetadata {
	out := make(domain.ChunkMetadata, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		case nil:
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
