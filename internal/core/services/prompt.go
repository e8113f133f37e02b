package services

import (
	"strings"

	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/logger"
)

// BuildPrompt renders the default answer template with context and question
// inserted verbatim.
func BuildPrompt(context, question string) string {
	return renderPrompt(driven.DefaultMedicalAnswerPrompt, context, question)
}

// PromptBuilder renders the answer template loaded from a PromptStore.
// A template without both placeholders is ignored in favour of the default.
type PromptBuilder struct {
	store driven.PromptStore
}

// NewPromptBuilder creates a prompt builder. store may be nil.
func NewPromptBuilder(store driven.PromptStore) *PromptBuilder {
	return &PromptBuilder{store: store}
}

// Build renders the current answer template.
func (b *PromptBuilder) Build(context, question string) string {
	return renderPrompt(b.template(), context, question)
}

func (b *PromptBuilder) template() string {
	if b == nil || b.store == nil {
		return driven.DefaultMedicalAnswerPrompt
	}
	tmpl, err := b.store.Load(driven.PromptMedicalAnswer)
	if err != nil {
		logger.Warn("Loading prompt %s: %v, using default", driven.PromptMedicalAnswer, err)
		return driven.DefaultMedicalAnswerPrompt
	}
	if !strings.Contains(tmpl, driven.PlaceholderContext) || !strings.Contains(tmpl, driven.PlaceholderQuestion) {
		logger.Warn("Prompt %s lacks %s or %s, using default",
			driven.PromptMedicalAnswer, driven.PlaceholderContext, driven.PlaceholderQuestion)
		return driven.DefaultMedicalAnswerPrompt
	}
	return tmpl
}

// renderPrompt substitutes both placeholders in one pass so text inside the
// context or question is never expanded again.
func renderPrompt(tmpl, context, question string) string {
	return strings.NewReplacer(
		driven.PlaceholderContext, context,
		driven.PlaceholderQuestion, question,
	).Replace(tmpl)
}
