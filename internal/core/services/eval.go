package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
	"github.com/custodia-labs/medibot/internal/logger"
)

// Ensure EvalService implements the interface.
var _ driving.EvalService = (*EvalService)(nil)

// EvalService replays golden questions through the ask pipeline.
type EvalService struct {
	ask driving.AskService
}

// NewEvalService creates an evaluation service over an ask service.
func NewEvalService(ask driving.AskService) *EvalService {
	return &EvalService{ask: ask}
}

// Run asks every case in order. A case fails when the outcome differs from
// its expectation or, for answers, when a required substring is missing.
// Errors from the ask pipeline abort the run.
func (s *EvalService) Run(ctx context.Context, set *domain.GoldenSet) (*domain.EvalReport, error) {
	if set == nil || len(set.Cases) == 0 {
		return nil, fmt.Errorf("%w: empty golden set", domain.ErrInvalidInput)
	}

	logger.Section("Eval " + set.Name)
	report := &domain.EvalReport{Name: set.Name, Results: make([]domain.EvalResult, 0, len(set.Cases))}

	for _, c := range set.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		answer, err := s.ask.Ask(ctx, c.Question)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.ID, err)
		}

		result := Judge(c, answer)
		logger.Debug("Case %s: outcome=%s passed=%v %s", c.ID, result.Outcome, result.Passed, result.Reason)
		report.Results = append(report.Results, result)
	}

	logger.Info("Eval %s: %d passed, %d failed", set.Name, report.Passed(), report.Failed())
	return report, nil
}

// Judge compares one answer with its golden case.
func Judge(c domain.GoldenCase, answer *domain.Answer) domain.EvalResult {
	result := domain.EvalResult{
		Case:    c,
		Outcome: answer.Outcome,
		Answer:  answer.Text,
	}

	switch c.Expect {
	case domain.ExpectRefuse:
		if answer.Outcome != domain.OutcomeRefused {
			result.Reason = fmt.Sprintf("expected refusal, got %s", answer.Outcome)
			return result
		}
	default:
		if answer.Outcome != domain.OutcomeAnswered {
			result.Reason = fmt.Sprintf("expected answer, got %s", answer.Outcome)
			return result
		}
		lower := strings.ToLower(answer.Text)
		var missing []string
		for _, want := range c.MustContain {
			if !strings.Contains(lower, strings.ToLower(want)) {
				missing = append(missing, want)
			}
		}
		if len(missing) > 0 {
			result.Reason = "missing " + strings.Join(missing, ", ")
			return result
		}
	}

	result.Passed = true
	return result
}
