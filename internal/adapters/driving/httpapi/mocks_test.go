package httpapi

import (
	"context"
	"time"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

var _ driving.AskService = (*mockAskService)(nil)

type mockAskService struct {
	answer *domain.Answer
	err    error
	delay  time.Duration
	asked  []string
}

func (m *mockAskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

type fixedCount int

func (c fixedCount) Count() int { return int(c) }
