package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before they are saved: the
// provider must offer the capability, and the service must answer a ping
// within Timeout.
type ConfigValidator struct {
	Timeout time.Duration
}

// NewConfigValidator creates a validator with the default ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{Timeout: pingTimeout}
}

// ValidateEmbedding pings the embedding provider described by config.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil {
		return fmt.Errorf("%w: no embedding settings", domain.ErrInvalidInput)
	}
	if !config.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: %s does not provide embeddings", domain.ErrInvalidInput, config.Provider)
	}

	ctx, cancel := context.WithTimeout(context.Background(), v.Timeout)
	defer cancel()

	svc, err := CreateEmbeddingService(ctx, config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer svc.Close()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLM pings the generation provider described by config.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return fmt.Errorf("%w: no LLM settings", domain.ErrInvalidInput)
	}
	if !config.Provider.SupportsGeneration() {
		return fmt.Errorf("%w: %q does not generate text", domain.ErrInvalidInput, config.Provider)
	}

	ctx, cancel := context.WithTimeout(context.Background(), v.Timeout)
	defer cancel()

	svc, err := CreateLLMService(ctx, config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer svc.Close()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return nil
}
