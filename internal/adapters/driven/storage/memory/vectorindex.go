package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory brute-force cosine index for tests and
// throwaway runs.
type VectorIndex struct {
	mu      sync.RWMutex
	dim     int
	entries []indexEntry
}

type indexEntry struct {
	chunk  domain.Chunk
	vector []float32
}

// NewVectorIndex creates an empty in-memory index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Add stores chunks, replacing entries with the same chunk ID.
// All vectors must share the dimension of the first one added.
func (v *VectorIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %s: %w: missing embedding", c.ID, domain.ErrInvalidInput)
		}
		if v.dim == 0 {
			v.dim = len(c.Embedding)
		}
		if len(c.Embedding) != v.dim {
			return fmt.Errorf("chunk %s: %w: got %d, want %d", c.ID, domain.ErrDimensionMismatch, len(c.Embedding), v.dim)
		}
	}

	for _, c := range chunks {
		entry := indexEntry{chunk: c, vector: normalise(c.Embedding)}
		if i := v.find(c.ID); i >= 0 {
			v.entries[i] = entry
			continue
		}
		v.entries = append(v.entries, entry)
	}
	return nil
}

// Search returns the k most similar chunks. Ties keep insertion order.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]domain.Passage, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != v.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", domain.ErrDimensionMismatch, len(query), v.dim)
	}

	q := normalise(query)
	passages := make([]domain.Passage, len(v.entries))
	for i, e := range v.entries {
		passages[i] = domain.Passage{
			ChunkID:    e.chunk.ID,
			Content:    e.chunk.Content,
			Provenance: e.chunk.Provenance,
			Score:      dot(q, e.vector),
			Metadata:   e.chunk.StringMetadata(),
		}
	}
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	if k < len(passages) {
		passages = passages[:k]
	}
	return passages, nil
}

// DeleteDocument removes every chunk of a document.
func (v *VectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	kept := v.entries[:0]
	for _, e := range v.entries {
		if e.chunk.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	v.entries = kept
	return nil
}

// Count returns the number of stored chunks.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// Reset removes every chunk and forgets the dimension.
func (v *VectorIndex) Reset(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = nil
	v.dim = 0
	return nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}

func (v *VectorIndex) find(chunkID string) int {
	for i, e := range v.entries {
		if e.chunk.ID == chunkID {
			return i
		}
	}
	return -1
}

func normalise(vec []float32) []float32 {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range vec {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
