package mcp

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

var (
	_ driving.AskService     = (*mockAskService)(nil)
	_ driving.CatalogService = (*mockCatalogService)(nil)
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	err    error
	asked  []string
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	return m.answer, m.err
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	documents      []domain.DocumentSummary
	document       *domain.Document
	err            error
	lastProvenance domain.Provenance
}

func (m *mockCatalogService) Stats(_ context.Context) (*domain.CatalogStats, error) {
	return &domain.CatalogStats{}, m.err
}

func (m *mockCatalogService) ListDocuments(_ context.Context, provenance domain.Provenance) ([]domain.DocumentSummary, error) {
	m.lastProvenance = provenance
	if m.err != nil {
		return nil, m.err
	}
	if provenance == "" {
		return m.documents, nil
	}
	var out []domain.DocumentSummary
	for _, d := range m.documents {
		if d.Provenance == provenance {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockCatalogService) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.document == nil || m.document.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.document, nil
}
