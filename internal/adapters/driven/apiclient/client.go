// Package apiclient is the JSON-over-HTTP client shared by the model
// provider adapters. It retries transport failures, rate limits and
// server errors with capped exponential backoff, honouring Retry-After.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/logger"
)

// Defaults for Client.
const (
	DefaultRetries = 2
	baseDelay      = 200 * time.Millisecond
	maxDelay       = 5 * time.Second

	// errorBodyLimit bounds how much of an error response is quoted.
	errorBodyLimit = 512
)

// Client sends JSON requests to one provider.
type Client struct {
	// Name prefixes error messages ("ollama", "openai").
	Name string

	BaseURL string
	HTTP    *http.Client

	// Header is added to every request, e.g. authentication.
	Header http.Header

	// Unavailable is the sentinel wrapped into every failure, so callers
	// can tell an unreachable embedder from an unreachable LLM.
	Unavailable error

	// Retries is the number of extra attempts after a retryable failure.
	// Negative disables retrying.
	Retries int
}

// New creates a client with DefaultRetries and the given timeout.
func New(name, baseURL string, timeout time.Duration, unavailable error) *Client {
	return &Client{
		Name:        name,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTP:        &http.Client{Timeout: timeout},
		Header:      http.Header{},
		Unavailable: unavailable,
		Retries:     DefaultRetries,
	}
}

// PostJSON sends in as JSON to path and decodes a 200 response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", c.Name, err)
	}
	raw, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: decoding response: %w", c.Unavailable, c.Name, err)
	}
	return nil
}

// Ping issues a GET to path and expects 200. It does not retry.
func (c *Client) Ping(ctx context.Context, path string) error {
	once := *c
	once.Retries = -1
	_, err := once.do(ctx, http.MethodGet, path, nil)
	return err
}

// statusError is a non-200 response.
type statusError struct {
	code       int
	body       string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("status %d", e.code)
	}
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		raw, err := c.once(ctx, method, path, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var se *statusError
		isStatus := errors.As(err, &se)
		if (isStatus && !se.retryable()) || ctx.Err() != nil || attempt >= c.Retries {
			break
		}

		delay := backoff(attempt)
		if isStatus && se.retryAfter > 0 {
			delay = min(se.retryAfter, maxDelay)
		}
		logger.Debug("%s: %s %s failed (%v), retrying in %s", c.Name, method, path, err, delay)
		if err := sleep(ctx, delay); err != nil {
			break
		}
	}
	return nil, c.wrap(lastErr)
}

func (c *Client) once(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.Header {
		req.Header[k] = vs
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{
			code:       resp.StatusCode,
			body:       strings.TrimSpace(string(raw[:min(len(raw), errorBodyLimit)])),
			retryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return raw, nil
}

func (c *Client) wrap(err error) error {
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s: %w", c.Unavailable, c.Name, domain.ErrRateLimited)
	}
	return fmt.Errorf("%w: %s: %w", c.Unavailable, c.Name, err)
}

// backoff returns 200ms doubled per attempt, capped at maxDelay.
func backoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxDelay
	}
	return min(baseDelay<<attempt, maxDelay)
}

// retryAfter parses the delay-seconds form of Retry-After.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
