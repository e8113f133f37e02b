package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

func TestStatusCmd(t *testing.T) {
	tests := []struct {
		name     string
		stats    *domain.CatalogStats
		wantText []string
	}{
		{
			name: "populated",
			stats: &domain.CatalogStats{
				Documents:     map[domain.Provenance]int{domain.ProvenancePDF: 3, domain.ProvenanceCSV: 41},
				Chunks:        120,
				IndexedChunks: 120,
				LastRun:       testReport(),
			},
			wantText: []string{"Total:", "44", "Indexed chunks:    120", "Documents: 6, chunks: 57, errors: 1"},
		},
		{
			name:     "empty",
			stats:    &domain.CatalogStats{Documents: map[domain.Provenance]int{}},
			wantText: []string{"The knowledge base is empty", "never"},
		},
		{
			name: "scheduled refresh",
			stats: &domain.CatalogStats{
				Documents: map[domain.Provenance]int{},
				Refresh: &domain.RefreshStatus{
					Task: &domain.ScheduledTask{Schedule: "0 3 * * *", LastError: "embedder unavailable"},
					Recent: []domain.TaskResult{
						{StartedAt: time.Now(), EndedAt: time.Now().Add(time.Minute), ItemsProcessed: 12},
					},
				},
			},
			wantText: []string{"[Scheduled refresh]", "Schedule: 0 3 * * *", "Next run: disabled", "Last error: embedder unavailable", "failed", "12 documents"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &fakeOpener{svc: &Services{Home: "/home/u/.medibot", Catalog: &mockCatalogService{stats: tt.stats}}}

			out, err := runCommand(t, o, "", "status")

			require.NoError(t, err)
			assert.Equal(t, PurposeInspect, o.requests[0].Purpose)
			assert.Contains(t, out, "Home: /home/u/.medibot")
			for _, want := range tt.wantText {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestStatusCmd_Documents(t *testing.T) {
	catalog := &mockCatalogService{docs: []domain.DocumentSummary{{
		ID:         "d1",
		Provenance: domain.ProvenanceWeb,
		URI:        "https://medlineplus.gov/diabetes.html",
		Title:      "Diabetes",
		Chunks:     12,
		UpdatedAt:  time.Now(),
	}}}
	o := &fakeOpener{svc: &Services{Catalog: catalog}}

	out, err := runCommand(t, o, "", "status", "--documents", "--source", "trusted_web")

	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceWeb, catalog.provenance)
	assert.Contains(t, out, "https://medlineplus.gov/diabetes.html")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestStatusCmd_JSON(t *testing.T) {
	stats := &domain.CatalogStats{Documents: map[domain.Provenance]int{domain.ProvenancePDF: 1}, Chunks: 4}
	o := &fakeOpener{svc: &Services{Catalog: &mockCatalogService{stats: stats}}}

	out, err := runCommand(t, o, "", "status", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"pdf": 1`)
	assert.Contains(t, out, `"Chunks": 4`)
}
