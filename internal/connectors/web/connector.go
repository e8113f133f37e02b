// Package web fetches pages from a fixed list of trusted medical sites.
//
// Requests are throttled by a token bucket and made conditional on the
// ETag and Last-Modified of the cached copy; a 304 reuses the cached body.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/logger"
)

const (
	// DefaultTimeout bounds one page fetch.
	DefaultTimeout = 30 * time.Second

	// MaxBodySize is the largest page body read.
	MaxBodySize = 10 << 20

	// DefaultUserAgent identifies the fetcher.
	DefaultUserAgent = "medibot/1.0 (+trusted medical sources)"
)

// DefaultURLs are the trusted pages ingested when none are configured.
var DefaultURLs = []string{
	"https://medlineplus.gov/heartattack.html",
	"https://medlineplus.gov/diabetes.html",
	"https://medlineplus.gov/hairloss.html",
	"https://www.who.int/news-room/fact-sheets/detail/cancer",
}

// ErrWatchUnsupported is returned by Watch; web pages are refreshed by
// scheduled full syncs.
var ErrWatchUnsupported = errors.New("web: watch is not supported")

// Config configures the web connector.
type Config struct {
	URLs       []string
	RatePerSec float64
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

var _ driven.Connector = (*Connector)(nil)

// Connector fetches the configured URLs.
type Connector struct {
	urls      []string
	cache     driven.PageCache
	limiter   *RateLimiter
	client    *http.Client
	userAgent string
}

// New creates a web connector. cache may be nil to disable conditional
// requests.
func New(cfg Config, cache driven.PageCache) *Connector {
	urls := cfg.URLs
	if len(urls) == 0 {
		urls = DefaultURLs
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Connector{
		urls:      append([]string(nil), urls...),
		cache:     cache,
		limiter:   NewRateLimiter(cfg.RatePerSec),
		client:    client,
		userAgent: ua,
	}
}

// Name identifies the connector in logs and reports.
func (c *Connector) Name() string { return "web" }

// Provenance returns the tag stamped on every document.
func (c *Connector) Provenance() domain.Provenance { return domain.ProvenanceWeb }

// Capabilities reports what the connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsRateLimiting:     true,
		SupportsConditionalFetch: c.cache != nil,
	}
}

// URLs returns the configured page list.
func (c *Connector) URLs() []string {
	return append([]string(nil), c.urls...)
}

// Validate checks that every URL is absolute http or https.
func (c *Connector) Validate(_ context.Context) error {
	for _, raw := range c.urls {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("web: invalid url %q: %w", raw, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: web: url %q must be absolute http(s)", domain.ErrInvalidInput, raw)
		}
	}
	return nil
}

// FullSync fetches every URL in order. A failed page is reported on the
// error channel and the sync continues with the next one.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error)

	go func() {
		defer close(docs)
		defer close(errs)

		for _, pageURL := range c.urls {
			raw, err := c.Fetch(ctx, pageURL)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
				continue
			}
			select {
			case docs <- *raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	return docs, errs
}

// Fetch retrieves one page, revalidating the cached copy when there is one.
func (c *Connector) Fetch(ctx context.Context, pageURL string) (*domain.RawDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	cached := c.cachedPage(pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("web: build request %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8")
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if cached != nil && ctx.Err() == nil {
			logger.Warn("fetch %s failed, using cached copy: %v", pageURL, err)
			return toRaw(cached, "stale"), nil
		}
		return nil, fmt.Errorf("web: fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if c.limiter.Observe(resp) {
		return nil, fmt.Errorf("web: fetch %s: %w (status %d)", pageURL, domain.ErrRateLimited, resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotModified && cached != nil:
		logger.Debug("web: %s not modified", pageURL)
		cached.FetchedAt = time.Now().UTC()
		c.storePage(cached)
		return toRaw(cached, "revalidated"), nil

	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("web: fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("web: read %s: %w", pageURL, err)
	}

	page := &driven.CachedPage{
		URL:          pageURL,
		Body:         body,
		ContentType:  contentType(resp.Header.Get("Content-Type")),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    time.Now().UTC(),
	}
	c.storePage(page)
	return toRaw(page, "fetched"), nil
}

// Watch is not supported for web pages.
func (c *Connector) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	return nil, ErrWatchUnsupported
}

// Close releases idle connections.
func (c *Connector) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Connector) cachedPage(pageURL string) *driven.CachedPage {
	if c.cache == nil {
		return nil
	}
	page, err := c.cache.Get(pageURL)
	if err != nil {
		logger.Warn("page cache read %s: %v", pageURL, err)
		return nil
	}
	return page
}

func (c *Connector) storePage(page *driven.CachedPage) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(page); err != nil {
		logger.Warn("page cache write %s: %v", page.URL, err)
	}
}

func toRaw(page *driven.CachedPage, status string) *domain.RawDocument {
	return &domain.RawDocument{
		Provenance: domain.ProvenanceWeb,
		URI:        page.URL,
		MIMEType:   page.ContentType,
		Content:    page.Body,
		Metadata: map[string]any{
			"fetch_status": status,
			"fetched_at":   page.FetchedAt.Format(time.RFC3339),
		},
	}
}

// contentType defaults to text/html when the server sends none.
func contentType(header string) string {
	if strings.TrimSpace(header) == "" {
		return "text/html"
	}
	return header
}
