package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// ModelCall invokes a model by reference. The executor supplies the model;
// everything else about the invocation must be identical between calls.
type ModelCall[T any] func(ctx context.Context, model string) (T, error)

// ModelExecutor runs model calls with a single-hop fallback on rate limiting.
// There is no backoff and no chaining: the fallback result is final.
type ModelExecutor struct {
	primary  string
	fallback string
	metrics  driven.Metrics
}

// NewModelExecutor creates an executor. An empty fallback disables fallback.
// metrics may be nil.
func NewModelExecutor(primary, fallback string, metrics driven.Metrics) *ModelExecutor {
	return &ModelExecutor{
		primary:  primary,
		fallback: strings.TrimSpace(fallback),
		metrics:  metrics,
	}
}

// Primary returns the primary model reference.
func (e *ModelExecutor) Primary() string {
	return e.primary
}

// Fallback returns the fallback model reference (may be empty).
func (e *ModelExecutor) Fallback() string {
	return e.fallback
}

// Execute runs call with the primary model. When that fails with a rate
// limit and a fallback is configured, call runs exactly once more with the
// fallback model and its outcome is returned as-is. Any other failure, or a
// rate limit without fallback, is returned unchanged.
func Execute[T any](ctx context.Context, e *ModelExecutor, step string, call ModelCall[T]) (T, error) {
	result, err := call(ctx, e.primary)
	e.observe(e.primary, step, err)
	if err == nil {
		return result, nil
	}

	if !IsRateLimited(err) || e.fallback == "" {
		return result, err
	}

	logger.Warn("%s: model %s rate limited, retrying with %s: %v", step, e.primary, e.fallback, err)
	if e.metrics != nil {
		e.metrics.ObserveFallback(step)
	}

	result, err = call(ctx, e.fallback)
	e.observe(e.fallback, step, err)
	return result, err
}

func (e *ModelExecutor) observe(model, step string, err error) {
	if e.metrics != nil {
		e.metrics.ObserveModelCall(model, step, err)
	}
}

// IsRateLimited reports whether err, or any error it wraps, mentions
// "429" or "rate" (case-insensitive).
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate") {
		return true
	}
	switch x := err.(type) { //nolint:errorlint // walking the wrap chain explicitly
	case interface{ Unwrap() error }:
		return IsRateLimited(x.Unwrap())
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if IsRateLimited(inner) {
				return true
			}
		}
	}
	return false
}
