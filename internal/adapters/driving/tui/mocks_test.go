package tui

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// MockAskService is a mock implementation of driving.AskService.
type MockAskService struct {
	Answer *domain.Answer
	Err    error
}

func (m *MockAskService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return m.Answer, m.Err
}

// MockCatalogService is a mock implementation of driving.CatalogService.
type MockCatalogService struct {
	StatsResult *domain.CatalogStats
	Err         error
}

func (m *MockCatalogService) Stats(_ context.Context) (*domain.CatalogStats, error) {
	return m.StatsResult, m.Err
}

func (m *MockCatalogService) ListDocuments(_ context.Context, _ domain.Provenance) ([]domain.DocumentSummary, error) {
	return nil, m.Err
}

func (m *MockCatalogService) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}
