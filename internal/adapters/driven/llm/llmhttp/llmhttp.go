// Package llmhttp holds the HTTP plumbing shared by the model provider
// adapters: client-side pacing, JSON round trips and status mapping.
package llmhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is echoed.
const maxErrorBody = 512

// Limiter paces outbound requests with a token bucket.
// A nil *Limiter never blocks.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter allows requestsPerMinute requests per minute with a burst of
// one. A non-positive rate returns nil (unlimited).
func NewLimiter(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &Limiter{bucket: rate.NewLimiter(rate.Every(every), 1)}
}

// Wait blocks until a request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}

// Client sends JSON requests to one provider.
type Client struct {
	// Provider names the upstream in error messages.
	Provider string

	// HTTP is the underlying client.
	HTTP *http.Client

	// Limiter paces requests (may be nil).
	Limiter *Limiter

	// Headers are set on every request.
	Headers map[string]string
}

// NewClient creates a client with the given timeout.
func NewClient(provider string, timeout time.Duration, limiter *Limiter, headers map[string]string) *Client {
	return &Client{
		Provider: provider,
		HTTP:     &http.Client{Timeout: timeout},
		Limiter:  limiter,
		Headers:  headers,
	}
}

// PostJSON marshals in, posts it to url and decodes a 2xx reply into out.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, bytes.NewReader(body), out)
}

// Delete sends a DELETE request to url.
func (c *Client) Delete(ctx context.Context, url string) error {
	return c.do(ctx, http.MethodDelete, url, http.NoBody, nil)
}

// GetJSON fetches url and decodes a 2xx reply into out (out may be nil).
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, http.NoBody, out)
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: wait for rate limiter: %w", c.Provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", c.Provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.Provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusError(c.Provider, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.Provider, err)
	}
	return nil
}

// HTTPError is a non-2xx reply.
type HTTPError struct {
	Provider string
	Status   int
	Body     string
}

func (e *HTTPError) Error() string {
	if e.Status == http.StatusTooManyRequests {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, domain.ErrRateLimited, e.Status, e.Body)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Unwrap exposes domain.ErrRateLimited for 429 replies so callers can
// fall back to another model.
func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return nil
}

// StatusError builds the error for a non-2xx reply, truncating long bodies.
func StatusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return &HTTPError{Provider: provider, Status: status, Body: msg}
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}
