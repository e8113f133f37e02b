package driven

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// Connector fetches raw documents from one kind of trusted source.
// Every document it emits carries the connector's provenance tag.
type Connector interface {
	// Name identifies the connector in logs and reports.
	Name() string

	// Provenance returns the tag stamped on every emitted document.
	Provenance() domain.Provenance

	// Capabilities describes what the connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks that the source is usable before a sync.
	// For the filesystem this checks the directory exists; for the web it
	// checks the URL list is well formed.
	Validate(ctx context.Context) error

	// FullSync fetches all documents from the source.
	// Both channels are closed when the sync finishes or ctx is cancelled.
	// A per-item failure is reported on the error channel and the sync continues.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch listens for changes until ctx is cancelled.
	// Only available if SupportsWatch is true.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsWatch indicates the connector can push change events.
	SupportsWatch bool

	// SupportsRateLimiting indicates the connector throttles its requests.
	SupportsRateLimiting bool

	// SupportsConditionalFetch indicates the connector revalidates cached
	// content instead of refetching it.
	SupportsConditionalFetch bool
}
