package driven

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// PostProcessor is one step between a normalised document and its index
// chunks. A step may rewrite doc.Content (cleaning) or derive chunks from
// it (splitting); it returns the chunks the next step receives.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs the configured steps on one document.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
