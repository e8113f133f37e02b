package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
	"github.com/custodia-labs/medibot/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService answers questions from the vector index. Generation happens
// only after the relevance gate has accepted the retrieved passages.
type AskService struct {
	retriever *Retriever
	llm       driven.LLMService
	prompts   *PromptBuilder
	settings  domain.AskSettings
}

// NewAskService creates the ask pipeline.
// The prompts parameter is optional; nil uses the compiled-in template.
func NewAskService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	llm driven.LLMService,
	prompts driven.PromptStore,
	settings domain.AskSettings,
) *AskService {
	return &AskService{
		retriever: NewRetriever(embedder, index),
		llm:       llm,
		prompts:   NewPromptBuilder(prompts),
		settings:  settings,
	}
}

// Ask runs validation, retrieval, the relevance gate, context assembly,
// generation and sanitising for one question.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Ask")
	question = strings.TrimSpace(question)
	if question == "" {
		logger.Debug("Empty question, rejecting")
		return &domain.Answer{Text: domain.InvalidQuestionMessage, Outcome: domain.OutcomeInvalid}, nil
	}
	logger.Debug("Question: %q", question)

	passages, err := s.retriever.Retrieve(ctx, question, s.settings.TopK)
	if err != nil {
		return nil, err
	}

	decision := EvaluateRelevance(question, passages, s.settings.MinMatches)
	answer := &domain.Answer{
		Question: question,
		Keywords: decision.Keywords,
		Matches:  decision.Matches,
		Passages: passages,
	}
	if !decision.Passed {
		logger.Info("Refusing: %d of %d passages match %v", decision.Matches, len(passages), decision.Keywords)
		return refuse(answer), nil
	}

	evidence := AssembleContext(passages, s.settings.MaxContextChars)
	logger.Debug("Context: %d characters from %d passages", len([]rune(evidence)), len(passages))

	prompt := s.prompts.Build(evidence, question)

	done := logger.Timed("Generate")
	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.maxTokens(),
		Temperature: s.settings.Temperature,
	})
	done()
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	text := Sanitize(raw)
	if text == "" {
		logger.Warn("Model returned an empty answer, refusing")
		return refuse(answer), nil
	}

	answer.Text = text
	answer.Outcome = domain.OutcomeAnswered
	return answer, nil
}

func (s *AskService) maxTokens() int {
	if s.settings.MaxTokens > 0 {
		return s.settings.MaxTokens
	}
	return domain.DefaultAskSettings().MaxTokens
}

func refuse(answer *domain.Answer) *domain.Answer {
	answer.Text = domain.RefusalAnswer
	answer.Outcome = domain.OutcomeRefused
	return answer
}
