package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/logger"
)

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 3

// Retriever fetches the passages nearest to a question.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetriever creates a retriever over an embedding service and index.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the question and returns at most k passages ordered by
// descending similarity. A k below 1 is treated as DefaultTopK.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.Passage, error) {
	if k < 1 {
		k = DefaultTopK
	}
	defer logger.Timed("Retrieve")()

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	passages, err := r.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > k {
		passages = passages[:k]
	}

	for i, p := range passages {
		logger.Debug("  %d. [%s] score=%.3f %q", i+1, p.Provenance, p.Score, preview(p.Content, 60))
	}
	return passages, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
