package domain

import "time"

// IngestOptions controls one ingestion run.
type IngestOptions struct {
	// Reset clears the index and catalog before ingesting.
	Reset bool

	// Provenances restricts the run to the given source kinds.
	// Empty means all sources.
	Provenances []Provenance
}

// Includes reports whether the run should read sources of kind p.
func (o IngestOptions) Includes(p Provenance) bool {
	if len(o.Provenances) == 0 {
		return true
	}
	for _, want := range o.Provenances {
		if want == p {
			return true
		}
	}
	return false
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// RunID identifies the run in the catalog.
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// EndedAt is when the run finished.
	EndedAt time.Time

	// Documents counts indexed documents per provenance.
	Documents map[Provenance]int

	// Chunks is the number of chunks added to the index.
	Chunks int

	// Skipped counts documents that normalised to empty text.
	Skipped int

	// Errors holds one message per failed item.
	Errors []string
}

// NewIngestReport returns an empty report started at now.
func NewIngestReport(runID string, now time.Time) *IngestReport {
	return &IngestReport{
		RunID:     runID,
		StartedAt: now,
		Documents: make(map[Provenance]int),
	}
}

// TotalDocuments returns the number of indexed documents across provenances.
func (r *IngestReport) TotalDocuments() int {
	total := 0
	for _, n := range r.Documents {
		total += n
	}
	return total
}

// Duration returns how long the run took.
func (r *IngestReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// CatalogStats summarises what is currently ingested.
type CatalogStats struct {
	// Documents counts catalogued documents per provenance.
	Documents map[Provenance]int

	// Chunks is the total number of catalogued chunks.
	Chunks int

	// IndexedChunks is the number of vectors held by the index.
	IndexedChunks int

	// LastRun is the most recent ingestion run, nil if none.
	LastRun *IngestReport

	// Refresh is the scheduled refresh, nil if it never ran as a daemon.
	Refresh *RefreshStatus
}

// DocumentSummary is a catalog listing entry.
type DocumentSummary struct {
	ID         string
	Provenance Provenance
	URI        string
	Title      string
	Chunks     int
	UpdatedAt  time.Time
}
