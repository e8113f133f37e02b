package driven

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// EmbeddingService turns text into vectors. It must be deterministic:
// chunks embedded at ingestion and questions embedded at ask time are
// compared directly.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// LLMService completes prompts. The answer pipeline only reaches it once
// the relevance gate has passed.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions bound one completion. Zero values leave the provider
// default in place.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// AIConfigValidator checks that model settings reach a working provider
// before they are saved.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
