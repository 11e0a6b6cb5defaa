// Package postprocessors builds the document splitters used by ingestion.
package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// BuilderFunc creates a Splitter from generic config.
// Config is a map of splitter-specific settings from flags or the config file.
type BuilderFunc func(cfg map[string]any) (driven.Splitter, error)

// Registry maps splitter names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder under name, replacing any previous one.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a splitter by name with the given config.
func (r *Registry) Build(name string, cfg map[string]any) (driven.Splitter, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown splitter %q", domain.ErrConfiguration, name)
	}
	return builder(cfg)
}

// Has reports whether a splitter with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered splitter names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
