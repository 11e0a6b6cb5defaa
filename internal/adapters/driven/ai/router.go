package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.LLMService = (*Router)(nil)

// Factory builds the adapter for one provider.
type Factory func(ctx context.Context, provider domain.AIProvider) (driven.LLMService, error)

// Router is an LLMService that dispatches "provider:model" references to
// per-provider adapters. Adapters are created on first use and reused.
// A provider whose adapter cannot be built is retried on the next request.
type Router struct {
	factory      Factory
	defaultModel string

	mu       sync.Mutex
	services map[domain.AIProvider]driven.LLMService
}

// NewRouter creates a router whose adapters come from settings.
func NewRouter(settings *domain.AppSettings) *Router {
	return NewRouterWithFactory(settings.LLM.Model, func(ctx context.Context, p domain.AIProvider) (driven.LLMService, error) {
		return CreateLLMService(ctx, p, "", settings)
	})
}

// NewRouterWithFactory creates a router with a custom adapter factory.
func NewRouterWithFactory(defaultModel string, factory Factory) *Router {
	return &Router{
		factory:      factory,
		defaultModel: defaultModel,
		services:     make(map[domain.AIProvider]driven.LLMService),
	}
}

// Complete resolves req.Model (or the default model) and forwards the
// request with the bare model name to the provider's adapter.
func (r *Router) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	raw := req.Model
	if raw == "" {
		raw = r.defaultModel
	}
	ref := domain.ParseModelRef(raw)
	if ref.Provider == "" || ref.Model == "" {
		return "", fmt.Errorf("%w: invalid model reference %q (want provider:model)", domain.ErrConfiguration, raw)
	}

	svc, err := r.service(ctx, ref.Provider)
	if err != nil {
		return "", err
	}

	req.Model = ref.Model
	return svc.Complete(ctx, req)
}

func (r *Router) service(ctx context.Context, provider domain.AIProvider) (driven.LLMService, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.services[provider]; ok {
		return svc, nil
	}
	svc, err := r.factory(ctx, provider)
	if err != nil {
		if !errors.Is(err, domain.ErrConfiguration) {
			err = fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		return nil, err
	}
	r.services[provider] = svc
	return svc, nil
}

// ModelName returns the default model reference.
func (r *Router) ModelName() string {
	return r.defaultModel
}

// Ping checks the provider serving the default model.
func (r *Router) Ping(ctx context.Context) error {
	ref := domain.ParseModelRef(r.defaultModel)
	if ref.Provider == "" {
		return fmt.Errorf("%w: invalid model reference %q", domain.ErrConfiguration, r.defaultModel)
	}
	svc, err := r.service(ctx, ref.Provider)
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close closes every adapter created so far.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for p, svc := range r.services {
		if err := svc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", p, err))
		}
		delete(r.services, p)
	}
	return errors.Join(errs...)
}
