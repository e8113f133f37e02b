package driven

import "time"

// CachedPage is a fetched web page kept between ingestion runs.
type CachedPage struct {
	URL          string    `json:"url"`
	Body         []byte    `json:"body"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// PageCache stores fetched pages by URL for conditional revalidation.
type PageCache interface {
	// Get returns the cached page, or nil if the URL was never cached.
	Get(url string) (*CachedPage, error)

	// Put stores or replaces the page.
	Put(page *CachedPage) error

	// Delete removes the page.
	Delete(url string) error

	// Close releases resources.
	Close() error
}
