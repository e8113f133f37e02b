package driving

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// AskService answers medical questions from the indexed knowledge base.
type AskService interface {
	// Ask runs the full pipeline for one question.
	// Validation failures and gate refusals are returned as Answers with
	// the matching Outcome, never as errors. Errors come only from the
	// embedding service, the index or the generative model.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}
