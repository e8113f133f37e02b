package memory

import (
	"sync"

	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// Ensure PageCache implements the interface.
var _ driven.PageCache = (*PageCache)(nil)

// PageCache keeps fetched pages in a map.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]driven.CachedPage
}

// NewPageCache creates an empty page cache.
func NewPageCache() *PageCache {
	return &PageCache{pages: make(map[string]driven.CachedPage)}
}

// Get returns the cached page or nil.
func (c *PageCache) Get(url string) (*driven.CachedPage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	page, ok := c.pages[url]
	if !ok {
		return nil, nil
	}
	return &page, nil
}

// Put stores the page.
func (c *PageCache) Put(page *driven.CachedPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[page.URL] = *page
	return nil
}

// Delete removes the page.
func (c *PageCache) Delete(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, url)
	return nil
}

// Close is a no-op.
func (c *PageCache) Close() error {
	return nil
}
