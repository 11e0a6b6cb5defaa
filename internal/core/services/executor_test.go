package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

// recordingCall returns a ModelCall that records models and answers
// from results keyed by model.
func recordingCall(models *[]string, results map[string]error) ModelCall[string] {
	return func(_ context.Context, model string) (string, error) {
		*models = append(*models, model)
		if err := results[model]; err != nil {
			return "", err
		}
		return "answer from " + model, nil
	}
}

func TestExecute_PrimarySucceeds(t *testing.T) {
	exec := NewModelExecutor("groq:primary", "groq:fallback", nil)
	var models []string

	out, err := Execute(context.Background(), exec, "synthesis", recordingCall(&models, nil))

	require.NoError(t, err)
	assert.Equal(t, "answer from groq:primary", out)
	assert.Equal(t, []string{"groq:primary"}, models)
}

func TestExecute_RateLimitedFallsBackOnce(t *testing.T) {
	metrics := &mockMetrics{}
	exec := NewModelExecutor("groq:primary", "cerebras:fallback", metrics)
	var models []string

	out, err := Execute(context.Background(), exec, "synthesis", recordingCall(&models, map[string]error{
		"groq:primary": errors.New("429 Too Many Requests"),
	}))

	require.NoError(t, err)
	assert.Equal(t, "answer from cerebras:fallback", out)
	assert.Equal(t, []string{"groq:primary", "cerebras:fallback"}, models)
	assert.Equal(t, []string{"synthesis"}, metrics.fallbacks)
	assert.Equal(t, []string{"synthesis/groq:primary", "synthesis/cerebras:fallback"}, metrics.calls)
}

func TestExecute_FallbackFailureIsFinal(t *testing.T) {
	exec := NewModelExecutor("groq:primary", "groq:fallback", nil)
	var models []string
	fallbackErr := errors.New("rate limit reached on fallback")

	_, err := Execute(context.Background(), exec, "disambiguation", recordingCall(&models, map[string]error{
		"groq:primary":  errors.New("rate limit reached"),
		"groq:fallback": fallbackErr,
	}))

	require.ErrorIs(t, err, fallbackErr)
	assert.Len(t, models, 2)
}

func TestExecute_RateLimitedWithoutFallback(t *testing.T) {
	exec := NewModelExecutor("groq:primary", "", nil)
	var models []string
	primaryErr := errors.New("HTTP 429")

	_, err := Execute(context.Background(), exec, "synthesis", recordingCall(&models, map[string]error{
		"groq:primary": primaryErr,
	}))

	require.ErrorIs(t, err, primaryErr)
	assert.Equal(t, []string{"groq:primary"}, models)
}

func TestExecute_OtherErrorsAreNotRetried(t *testing.T) {
	exec := NewModelExecutor("groq:primary", "groq:fallback", nil)
	var models []string
	authErr := errors.New("invalid api key")

	_, err := Execute(context.Background(), exec, "synthesis", recordingCall(&models, map[string]error{
		"groq:primary": authErr,
	}))

	require.ErrorIs(t, err, authErr)
	assert.Equal(t, []string{"groq:primary"}, models)
}

func TestExecute_WhitespaceFallbackIsDisabled(t *testing.T) {
	exec := NewModelExecutor("groq:primary", "   ", nil)
	assert.Empty(t, exec.Fallback())
	assert.Equal(t, "groq:primary", exec.Primary())
}

// opaqueError hides its cause from Error().
type opaqueError struct {
	cause error
}

func (e opaqueError) Error() string { return "model call failed" }

func (e opaqueError) Unwrap() error { return e.cause }

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status code", errors.New("status 429"), true},
		{"rate word", errors.New("Rate limit exceeded"), true},
		{"sentinel", fmt.Errorf("%w: groq", domain.ErrRateLimited), true},
		{"wrapped cause", opaqueError{cause: errors.New("HTTP 429")}, true},
		{"joined cause", opaqueError{cause: errors.Join(errors.New("timeout"), errors.New("ratelimited"))}, true},
		{"unrelated", errors.New("connection refused"), false},
		{"unrelated wrapped", opaqueError{cause: errors.New("bad gateway")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}
