package driven

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// VectorIndex stores chunk embeddings for nearest-neighbour lookup.
// Implementations persist to a configured directory. Readers must be safe
// for concurrent use; Add and Reset are called only by ingestion.
type VectorIndex interface {
	// Add stores chunks with their embeddings. Chunks without an embedding
	// are rejected.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Search returns at most k passages ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]domain.Passage, error)

	// DeleteDocument removes all chunks of a document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Count returns the number of stored chunks.
	Count() int

	// Reset removes every stored chunk.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
