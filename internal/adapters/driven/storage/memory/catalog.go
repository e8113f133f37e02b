package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.Catalog = (*Catalog)(nil)

// Catalog is an in-memory implementation of driven.Catalog.
type Catalog struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]int
	runs      []domain.IngestReport
}

// NewCatalog creates an empty in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]int),
	}
}

// SaveDocument stores or replaces a document and records its chunk count.
func (c *Catalog) SaveDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[doc.ID] = *doc
	c.chunks[doc.ID] = len(chunks)
	return nil
}

// DeleteDocument removes a document.
func (c *Catalog) DeleteDocument(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(c.documents, id)
	delete(c.chunks, id)
	return nil
}

// DeleteByURI removes the document ingested from uri.
func (c *Catalog) DeleteByURI(_ context.Context, uri string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, doc := range c.documents {
		if doc.URI == uri {
			delete(c.documents, id)
			delete(c.chunks, id)
			return id, nil
		}
	}
	return "", domain.ErrNotFound
}

// GetDocument retrieves a document by ID.
func (c *Catalog) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns summaries sorted by URI. An empty provenance lists all.
func (c *Catalog) ListDocuments(_ context.Context, provenance domain.Provenance) ([]domain.DocumentSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.DocumentSummary, 0, len(c.documents))
	for id, doc := range c.documents {
		if provenance != "" && doc.Provenance != provenance {
			continue
		}
		out = append(out, domain.DocumentSummary{
			ID:         id,
			Provenance: doc.Provenance,
			URI:        doc.URI,
			Title:      doc.Title,
			Chunks:     c.chunks[id],
			UpdatedAt:  doc.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, nil
}

// SaveRun stores an ingestion report.
func (c *Catalog) SaveRun(_ context.Context, report *domain.IngestReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, *report)
	return nil
}

// LastRun returns the most recently saved report.
func (c *Catalog) LastRun(_ context.Context) (*domain.IngestReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.runs) == 0 {
		return nil, nil
	}
	run := c.runs[len(c.runs)-1]
	return &run, nil
}

// Stats returns counts per provenance and the last run.
func (c *Catalog) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	last, _ := c.LastRun(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := &domain.CatalogStats{Documents: make(map[domain.Provenance]int), LastRun: last}
	for id, doc := range c.documents {
		stats.Documents[doc.Provenance]++
		stats.Chunks += c.chunks[id]
	}
	return stats, nil
}

// Reset removes everything.
func (c *Catalog) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents = make(map[string]domain.Document)
	c.chunks = make(map[string]int)
	c.runs = nil
	return nil
}
