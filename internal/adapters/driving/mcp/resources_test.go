package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

func TestResourceURIs(t *testing.T) {
	tests := []struct {
		uri        string
		provenance domain.Provenance
		listing    bool
		documentID string
	}{
		{uri: "medibot://sources", listing: true},
		{uri: "medibot://sources/pdf", provenance: domain.ProvenancePDF, listing: true},
		{uri: "medibot://sources/"},
		{uri: "medibot://sources/pdf/extra"},
		{uri: "file://sources/pdf"},
		{uri: "medibot://documents/doc-456", documentID: "doc-456"},
		{uri: "file://documents/doc-456"},
		{uri: ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			p, ok := extractProvenance(tt.uri)
			assert.Equal(t, tt.listing, ok)
			assert.Equal(t, tt.provenance, p)
			assert.Equal(t, tt.documentID, extractDocumentID(tt.uri))
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func sampleCatalog() *mockCatalogService {
	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &mockCatalogService{
		documents: []domain.DocumentSummary{
			{ID: "d1", Provenance: domain.ProvenancePDF, URI: "/data/gale.pdf", Title: "Gale Encyclopedia", Chunks: 120, UpdatedAt: updated},
			{ID: "d2", Provenance: domain.ProvenanceWeb, URI: "https://medlineplus.gov/diabetes.html", Title: "Diabetes", Chunks: 8, UpdatedAt: updated},
		},
		document: &domain.Document{ID: "d2", Content: "Diabetes is a disease in which blood glucose is too high."},
	}
}

func TestServer_SourcesResource(t *testing.T) {
	tests := []struct {
		name     string
		catalog  *mockCatalogService
		uri      string
		contains []string
		excludes []string
		filtered domain.Provenance
		wantErr  string
	}{
		{
			name:     "no catalog",
			uri:      "medibot://sources",
			contains: []string{"[]"},
		},
		{
			name:     "every document",
			catalog:  sampleCatalog(),
			uri:      "medibot://sources",
			contains: []string{"Gale Encyclopedia", "https://medlineplus.gov/diabetes.html", `"provenance": "trusted_web"`},
		},
		{
			name:     "one kind",
			catalog:  sampleCatalog(),
			uri:      "medibot://sources/pdf",
			contains: []string{"Gale Encyclopedia"},
			excludes: []string{"medlineplus"},
			filtered: domain.ProvenancePDF,
		},
		{
			name:    "unknown kind",
			catalog: &mockCatalogService{err: domain.ErrInvalidInput},
			uri:     "medibot://sources/books",
			wantErr: "",
		},
		{
			name:    "catalog failure",
			catalog: &mockCatalogService{err: errors.New("database error")},
			uri:     "medibot://sources",
			wantErr: "listing documents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ports := &Ports{Ask: &mockAskService{}}
			if tt.catalog != nil {
				ports.Catalog = tt.catalog
			}
			server, err := NewServer(ports)
			require.NoError(t, err)

			result, err := server.handleSourcesResource(context.Background(), readRequest(tt.uri))

			if tt.catalog != nil && tt.catalog.err != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, result.Contents, 1)
			assert.Equal(t, "application/json", result.Contents[0].MIMEType)
			for _, s := range tt.contains {
				assert.Contains(t, result.Contents[0].Text, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, result.Contents[0].Text, s)
			}
			if tt.catalog != nil {
				assert.Equal(t, tt.filtered, tt.catalog.lastProvenance)
			}
		})
	}
}

func TestServer_DocumentResource(t *testing.T) {
	tests := []struct {
		name    string
		catalog *mockCatalogService
		uri     string
		wantErr bool
	}{
		{name: "no catalog", uri: "medibot://documents/d2", wantErr: true},
		{name: "content", catalog: sampleCatalog(), uri: "medibot://documents/d2"},
		{name: "unknown document", catalog: sampleCatalog(), uri: "medibot://documents/missing", wantErr: true},
		{name: "bad uri", catalog: sampleCatalog(), uri: "medibot://invalid/uri", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ports := &Ports{Ask: &mockAskService{}}
			if tt.catalog != nil {
				ports.Catalog = tt.catalog
			}
			server, err := NewServer(ports)
			require.NoError(t, err)

			result, err := server.handleDocumentContentResource(context.Background(), readRequest(tt.uri))

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, result.Contents, 1)
			assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
			assert.Contains(t, result.Contents[0].Text, "blood glucose")
		})
	}
}
