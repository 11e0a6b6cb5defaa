package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ChunkIndex  = (*Store)(nil)
	_ driven.ChunkWriter = (*Store)(nil)
)

// dbFile is the database file name inside the data directory.
const dbFile = "chunks.db"

// Store is a SQLite chunk index. Queries are embedded with the configured
// embedding service.
type Store struct {
	db       *sql.DB
	path     string
	embedder driven.EmbeddingService
}

// NewStore opens (or creates) the chunk database in dataDir.
// If dataDir is empty, defaults to ~/.docbot/data.
func NewStore(dataDir string, embedder driven.EmbeddingService) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docbot", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:       db,
		path:     dbPath,
		embedder: embedder,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_chunks.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Add stores chunks with their embeddings. Existing IDs are overwritten.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, content, document_key, source, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			document_key = excluded.document_key,
			source = excluded.source,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Text, chunk.Metadata.DocumentKey(),
			chunk.Metadata.Source(), string(metadataJSON), vector.Encode(chunk.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Reset removes every stored chunk.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// AllMetadata returns the metadata of up to limit chunks in insertion order.
func (s *Store) AllMetadata(ctx context.Context, limit int) ([]domain.ChunkMetadata, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, "SELECT metadata FROM chunks ORDER BY seq LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying chunk metadata: %w", err)
	}
	defer rows.Close()

	var out []domain.ChunkMetadata //nolint:prealloc // size unknown from query
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning chunk metadata: %w", err)
		}
		meta, err := decodeMetadata(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk metadata: %w", err)
	}
	return out, nil
}

// Query embeds text and returns the k nearest chunks of the document.
func (s *Store) Query(ctx context.Context, text string, k int, documentKey string) ([]driven.IndexHit, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service", domain.ErrIndexUnavailable)
	}
	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	var rows *sql.Rows
	if documentKey == "" {
		rows, err = s.db.QueryContext(ctx, "SELECT content, metadata, embedding FROM chunks ORDER BY seq")
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT content, metadata, embedding FROM chunks
			WHERE document_key = ? OR source = ? OR source = ?
			ORDER BY seq
		`, documentKey, documentKey, documentKey+".md")
	}
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var candidates []vector.Scored[driven.IndexHit]
	for rows.Next() {
		var (
			content, raw string
			blob         []byte
		)
		if err := rows.Scan(&content, &raw, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		meta, err := decodeMetadata(raw)
		if err != nil {
			return nil, err
		}
		distance := vector.CosineDistance(query, vector.Decode(blob))
		candidates = append(candidates, vector.Scored[driven.IndexHit]{
			Item:     driven.IndexHit{Text: content, Metadata: meta, Distance: distance},
			Distance: distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	nearest := vector.Nearest(candidates, k)
	hits := make([]driven.IndexHit, len(nearest))
	for i, c := range nearest {
		hits[i] = c.Item
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

func decodeMetadata(raw string) (domain.ChunkMetadata, error) {
	meta := domain.ChunkMetadata{}
	if raw == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
	}
	return meta, nil
}
