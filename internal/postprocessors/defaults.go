package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/postprocessors/chunker"
)

// DefaultSplitter is the splitter used when none is named.
const DefaultSplitter = "markdown"

// RegisterDefaults registers the built-in splitters.
func RegisterDefaults(r *Registry) {
	r.Register(DefaultSplitter, buildMarkdownSplitter)
}

// DefaultRegistry returns a registry with the built-in splitters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildMarkdownSplitter creates the table-preserving splitter.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildMarkdownSplitter(cfg map[string]any) (driven.Splitter, error) {
	var opts []chunker.Option

	size, ok, err := intFromConfig(cfg, "chunk_size")
	if err != nil {
		return nil, err
	}
	if ok {
		if size <= 0 {
			return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrConfiguration, size)
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}

	overlap, ok, err := intFromConfig(cfg, "overlap")
	if err != nil {
		return nil, err
	}
	if ok {
		if overlap < 0 {
			return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfiguration, overlap)
		}
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// intFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func intFromConfig(cfg map[string]any, key string) (int, bool, error) {
	val, ok := cfg[key]
	if !ok || val == nil {
		return 0, false, nil
	}

	switch v := val.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		return int(v), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be a number, got %T", domain.ErrConfiguration, key, val)
	}
}
