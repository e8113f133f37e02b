package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService reports what has been ingested.
type CatalogService struct {
	catalog driven.Catalog
	index   driven.VectorIndex
	tasks   driven.SchedulerStore
}

// recentRefreshes is how many refresh runs Stats reports.
const recentRefreshes = 5

// NewCatalogService creates a catalog service. index may be nil when the
// vector index has not been opened.
func NewCatalogService(catalog driven.Catalog, index driven.VectorIndex) *CatalogService {
	return &CatalogService{catalog: catalog, index: index}
}

// WithSchedulerStore makes Stats include the scheduled refresh state.
func (s *CatalogService) WithSchedulerStore(tasks driven.SchedulerStore) *CatalogService {
	s.tasks = tasks
	return s
}

// Stats returns catalog counts, the index size and the last run.
func (s *CatalogService) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	stats, err := s.catalog.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	if s.index != nil {
		stats.IndexedChunks = s.index.Count()
	}
	if stats.LastRun == nil {
		run, err := s.catalog.LastRun(ctx)
		if err != nil {
			return nil, fmt.Errorf("last run: %w", err)
		}
		stats.LastRun = run
	}
	if s.tasks != nil {
		if stats.Refresh, err = s.refresh(ctx); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (s *CatalogService) refresh(ctx context.Context) (*domain.RefreshStatus, error) {
	task, err := s.tasks.GetTask(ctx, domain.TaskIDRefresh)
	if err != nil || task == nil {
		return nil, err
	}
	recent, err := s.tasks.History(ctx, task.ID, recentRefreshes)
	if err != nil {
		return nil, fmt.Errorf("refresh history: %w", err)
	}
	return &domain.RefreshStatus{Task: task, Recent: recent}, nil
}

// ListDocuments returns ingested documents. An empty provenance lists all.
func (s *CatalogService) ListDocuments(ctx context.Context, provenance domain.Provenance) ([]domain.DocumentSummary, error) {
	if provenance != "" && !provenance.IsValid() {
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, provenance)
	}
	return s.catalog.ListDocuments(ctx, provenance)
}

// GetDocument returns one ingested document.
func (s *CatalogService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.catalog.GetDocument(ctx, id)
}
