package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrUnsupportedType, ErrIngestInProgress,
		ErrNothingIndexed, ErrIndexNotFound, ErrIndexEmpty, ErrLLMUnavailable,
		ErrEmbeddingUnavailable, ErrDimensionMismatch, ErrConnectorClosed,
		ErrRateLimited, ErrInvalidSchedule,
	}

	messages := make(map[string]bool, len(all))
	for _, err := range all {
		assert.False(t, messages[err.Error()], "duplicate message %q", err)
		messages[err.Error()] = true
	}
}

func TestErrIndexNotFound_TellsUserWhatToRun(t *testing.T) {
	err := fmt.Errorf("open index: %w", ErrIndexNotFound)

	assert.True(t, errors.Is(err, ErrIndexNotFound))
	assert.False(t, errors.Is(err, ErrIndexEmpty))
	assert.Contains(t, err.Error(), "medibot ingest")
}
