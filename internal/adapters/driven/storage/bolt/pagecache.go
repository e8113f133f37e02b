// Package bolt caches fetched web pages in a bbolt database so that
// refreshes can send conditional requests and reuse bodies on 304.
package bolt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// FileName is the cache file inside the data directory.
const FileName = "pages.db"

var bucketPages = []byte("pages")

// Ensure PageCache implements the interface.
var _ driven.PageCache = (*PageCache)(nil)

// PageCache stores pages as JSON keyed by URL.
type PageCache struct {
	db *bbolt.DB
}

// Open opens or creates the cache in dataDir.
func Open(dataDir string) (*PageCache, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, FileName), 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening page cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating page bucket: %w", err)
	}

	return &PageCache{db: db}, nil
}

// Get returns the cached page for url, or nil when absent.
func (c *PageCache) Get(url string) (*driven.CachedPage, error) {
	var page *driven.CachedPage
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPages).Get([]byte(url))
		if data == nil {
			return nil
		}
		page = &driven.CachedPage{}
		return json.Unmarshal(data, page)
	})
	if err != nil {
		return nil, fmt.Errorf("reading cached page %s: %w", url, err)
	}
	return page, nil
}

// Put stores page under its URL.
func (c *PageCache) Put(page *driven.CachedPage) error {
	if page == nil || page.URL == "" {
		return domain.ErrInvalidInput
	}
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encoding cached page: %w", err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPages).Put([]byte(page.URL), data)
	})
}

// Delete removes the page for url. Deleting a missing key is not an error.
func (c *PageCache) Delete(url string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPages).Delete([]byte(url))
	})
}

// Len returns the number of cached pages.
func (c *PageCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketPages).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the database.
func (c *PageCache) Close() error {
	return c.db.Close()
}
