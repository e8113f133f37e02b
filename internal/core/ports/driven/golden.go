package driven

import "github.com/custodia-labs/medibot/internal/core/domain"

// GoldenLoader reads an evaluation set.
type GoldenLoader interface {
	// Load parses the golden set at path.
	Load(path string) (*domain.GoldenSet, error)
}
