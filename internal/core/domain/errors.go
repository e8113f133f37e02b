package domain

import "errors"

// Sentinel errors shared across layers. Adapters wrap them with %w so
// callers can branch with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType covers unknown connectors, normalisers, MIME types
	// and providers.
	ErrUnsupportedType  = errors.New("unsupported type")
	ErrIngestInProgress = errors.New("ingest in progress")
	ErrNothingIndexed   = errors.New("nothing was indexed")

	// ErrIndexNotFound refuses startup of the answer path.
	ErrIndexNotFound = errors.New("vector index not found, run 'medibot ingest' first")
	ErrIndexEmpty    = errors.New("vector index is empty")

	ErrLLMUnavailable       = errors.New("LLM service unavailable")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	ErrDimensionMismatch    = errors.New("embedding dimension mismatch")

	ErrConnectorClosed = errors.New("connector closed")
	ErrRateLimited     = errors.New("rate limited")
	ErrInvalidSchedule = errors.New("invalid schedule expression")
)
