package driving

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// IngestService builds the knowledge base from the configured sources.
type IngestService interface {
	// Ingest runs every connector once and indexes what they produce.
	Ingest(ctx context.Context, opts domain.IngestOptions) (*domain.IngestReport, error)

	// Watch re-ingests changed items until ctx is cancelled.
	Watch(ctx context.Context) error
}

// CatalogService reports on what has been ingested.
type CatalogService interface {
	// Stats returns document, chunk and index counts with the last run.
	Stats(ctx context.Context) (*domain.CatalogStats, error)

	// ListDocuments returns ingested documents, optionally by provenance.
	ListDocuments(ctx context.Context, provenance domain.Provenance) ([]domain.DocumentSummary, error)

	// GetDocument returns one ingested document.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
}

// EvalService runs golden question sets against the ask pipeline.
type EvalService interface {
	// Run asks every case and compares the outcome with the expectation.
	Run(ctx context.Context, set *domain.GoldenSet) (*domain.EvalReport, error)
}
