package web

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the default number of requests per second.
	DefaultRate = 1.0

	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"

	// maxRetryAfter caps how long a server may ask us to back off.
	maxRetryAfter = 2 * time.Minute
)

// RateLimiter throttles requests with a token bucket and honours
// Retry-After from 429 and 503 responses.
type RateLimiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	blocked time.Time
}

// NewRateLimiter allows perSecond requests per second with a burst of one.
// A non-positive rate means DefaultRate.
func NewRateLimiter(perSecond float64) *RateLimiter {
	if perSecond <= 0 {
		perSecond = DefaultRate
	}
	return &RateLimiter{bucket: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Wait blocks until the next request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	blocked := r.blocked
	r.mu.Unlock()

	if d := time.Until(blocked); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return r.bucket.Wait(ctx)
}

// Observe records a back-off request from resp. It reports whether the
// response was a throttling response.
func (r *RateLimiter) Observe(resp *http.Response) bool {
	if resp == nil {
		return false
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return false
	}

	wait := retryAfter(resp.Header.Get(HeaderRetryAfter), time.Now())
	if wait > 0 {
		r.mu.Lock()
		r.blocked = time.Now().Add(wait)
		r.mu.Unlock()
	}
	return resp.StatusCode == http.StatusTooManyRequests || wait > 0
}

// retryAfter parses a Retry-After value relative to now, capped at
// maxRetryAfter. Unparseable values yield zero.
func retryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	var d time.Duration
	if seconds, err := strconv.Atoi(value); err == nil {
		d = time.Duration(seconds) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	}
	if d < 0 {
		return 0
	}
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}
