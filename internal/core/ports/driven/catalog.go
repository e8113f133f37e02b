package driven

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// Catalog records what has been ingested. It is bookkeeping only: the ask
// path never reads it, and the vector index stays the source of truth for
// retrieval.
type Catalog interface {
	// SaveDocument stores or replaces a document and its chunks.
	SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteByURI removes the document ingested from uri, returning its ID.
	// Returns domain.ErrNotFound if nothing was ingested from uri.
	DeleteByURI(ctx context.Context, uri string) (string, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns summaries, optionally filtered by provenance.
	ListDocuments(ctx context.Context, provenance domain.Provenance) ([]domain.DocumentSummary, error)

	// SaveRun stores an ingestion run report.
	SaveRun(ctx context.Context, report *domain.IngestReport) error

	// LastRun returns the most recent run, or nil if there is none.
	LastRun(ctx context.Context) (*domain.IngestReport, error)

	// Stats returns document and chunk counts.
	Stats(ctx context.Context) (*domain.CatalogStats, error)

	// Reset removes every document, chunk and run.
	Reset(ctx context.Context) error
}
