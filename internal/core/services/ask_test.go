package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/medibot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/medibot/internal/core/domain"
)

const fivePartAnswer = `1. Overview
A heart attack happens when blood flow to the heart is blocked.

2. Causes
Most heart attacks are caused by coronary artery disease.

3. Symptoms
Chest pain, shortness of breath and cold sweat.

4. Treatment / Management
Emergency treatment restores blood flow.

5. When to see a doctor
Call emergency services right away if you have chest pain.`

// indexCorpus embeds texts with the hashing embedder into a memory index.
func indexCorpus(t *testing.T, texts map[domain.Provenance][]string) (*hashing.EmbeddingService, *memory.VectorIndex) {
	t.Helper()
	ctx := context.Background()
	embedder := hashing.NewEmbeddingService(0)
	index := memory.NewVectorIndex()

	for prov, list := range texts {
		for i, text := range list {
			vec, err := embedder.Embed(ctx, text)
			require.NoError(t, err)
			docID := fmt.Sprintf("%s-%d", prov, i)
			require.NoError(t, index.Add(ctx, []domain.Chunk{{
				ID:         docID + "-0",
				DocumentID: docID,
				Provenance: prov,
				Content:    text,
				Embedding:  vec,
			}}))
		}
	}
	return embedder, index
}

func newTestAskService(llm *mockLLM, embedder *mockEmbedder, index *mockIndex) *AskService {
	return NewAskService(embedder, index, llm, nil, domain.DefaultAskSettings())
}

func TestAskService_InvalidQuestion(t *testing.T) {
	for _, q := range []string{"", "   ", "\n\t"} {
		embedder := &mockEmbedder{vec: []float32{1}}
		index := &mockIndex{}
		llm := &mockLLM{}

		answer, err := newTestAskService(llm, embedder, index).Ask(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeInvalid, answer.Outcome)
		assert.Equal(t, domain.InvalidQuestionMessage, answer.Text)
		assert.Zero(t, embedder.calls)
		assert.Zero(t, index.searched)
		assert.Zero(t, llm.calls)
	}
}

func TestAskService_EmptyRetrievalRefuses(t *testing.T) {
	llm := &mockLLM{response: "should not be used"}
	answer, err := newTestAskService(llm, &mockEmbedder{vec: []float32{1}}, &mockIndex{}).
		Ask(context.Background(), "What is diabetes?")

	require.NoError(t, err)
	assert.True(t, answer.Refused())
	assert.Equal(t, domain.RefusalAnswer, answer.Text)
	assert.Zero(t, llm.calls)
}

func TestAskService_Answers(t *testing.T) {
	index := &mockIndex{passages: passages(
		"Diabetes is a chronic disease.\n\nIt affects blood sugar.",
		"Type 1 diabetes needs insulin.",
		"Exercise helps.",
	)}
	llm := &mockLLM{response: "Diabetes affects\n\nblood sugar. Document(page_content='x')"}

	answer, err := newTestAskService(llm, &mockEmbedder{vec: []float32{1}}, index).
		Ask(context.Background(), "  What is diabetes?  ")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAnswered, answer.Outcome)
	assert.Equal(t, "Diabetes affects<br>blood sugar.", answer.Text)
	assert.Equal(t, "What is diabetes?", answer.Question)
	assert.Equal(t, []string{"diabetes"}, answer.Keywords)
	assert.Equal(t, 2, answer.Matches)

	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.lastPrompt, "Diabetes is a chronic disease. It affects blood sugar.\n\nType 1 diabetes needs insulin.")
	assert.Contains(t, llm.lastPrompt, "Question:\nWhat is diabetes?")
	assert.Equal(t, 300, llm.lastOpts.MaxTokens)
	assert.InDelta(t, 0.2, llm.lastOpts.Temperature, 1e-9)
}

func TestAskService_EmptyGenerationRefuses(t *testing.T) {
	index := &mockIndex{passages: passages("diabetes one", "diabetes two")}
	llm := &mockLLM{response: " Document(x) "}

	answer, err := newTestAskService(llm, &mockEmbedder{vec: []float32{1}}, index).
		Ask(context.Background(), "diabetes")

	require.NoError(t, err)
	assert.True(t, answer.Refused())
}

func TestAskService_ExternalErrors(t *testing.T) {
	down := errors.New("connection refused")

	t.Run("embedding", func(t *testing.T) {
		_, err := newTestAskService(&mockLLM{}, &mockEmbedder{err: down}, &mockIndex{}).
			Ask(context.Background(), "diabetes")
		require.ErrorIs(t, err, down)
	})

	t.Run("generation", func(t *testing.T) {
		index := &mockIndex{passages: passages("diabetes one", "diabetes two")}
		_, err := newTestAskService(&mockLLM{err: down}, &mockEmbedder{vec: []float32{1}}, index).
			Ask(context.Background(), "diabetes")
		require.ErrorIs(t, err, down)
	})
}

func TestAskService_UnrelatedCorpusRefuses(t *testing.T) {
	embedder, index := indexCorpus(t, map[domain.Provenance][]string{
		domain.ProvenanceWeb: {
			"Cancer is a large group of diseases that can start in almost any organ or tissue of the body.",
			"Tobacco use, alcohol use, unhealthy diet and physical inactivity are risk factors for cancer.",
			"Treatment options include surgery, radiotherapy and chemotherapy.",
			"Early detection of cancer greatly improves the chances of survival.",
		},
	})
	llm := &mockLLM{response: "hallucinated answer"}
	svc := NewAskService(embedder, index, llm, nil, domain.DefaultAskSettings())

	answer, err := svc.Ask(context.Background(), "What causes hair loss?")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRefused, answer.Outcome)
	assert.Equal(t, domain.RefusalAnswer, answer.Text)
	assert.Equal(t, []string{"causes", "hair", "loss"}, answer.Keywords)
	assert.Zero(t, answer.Matches)
	assert.Len(t, answer.Passages, 3)
	assert.Zero(t, llm.calls)
}

func TestAskService_CancerQuestionAgainstHairLossCorpus(t *testing.T) {
	embedder, index := indexCorpus(t, map[domain.Provenance][]string{
		domain.ProvenanceWeb: {
			"Hair loss can affect just the scalp or the entire body and may be temporary or permanent.",
			"Hereditary hair loss with age is the most common cause of baldness.",
			"Some people let their hair loss run its course without covering it up.",
			"Stress, hormonal changes and some medications can lead to thinning hair.",
		},
	})
	llm := &mockLLM{response: "Chemotherapy."}
	svc := NewAskService(embedder, index, llm, nil, domain.DefaultAskSettings())

	answer, err := svc.Ask(context.Background(), "What is the treatment for cancer?")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRefused, answer.Outcome)
	assert.Equal(t, domain.RefusalAnswer, answer.Text)
	assert.Equal(t, []string{"treatment", "cancer"}, answer.Keywords)
	assert.Zero(t, answer.Matches)
	assert.Zero(t, llm.calls)
}

func TestAskService_HeartAttackFivePartAnswer(t *testing.T) {
	embedder, index := indexCorpus(t, map[domain.Provenance][]string{
		domain.ProvenanceWeb: {
			"A heart attack happens when the flow of blood to the heart is blocked.",
			"Heart attack symptoms include chest pain and shortness of breath.",
		},
		domain.ProvenancePDF: {
			"Treatment of a heart attack aims to restore blood flow quickly.",
			"Diabetes is a disease in which blood glucose levels are too high.",
		},
	})
	llm := &mockLLM{response: fivePartAnswer}
	svc := NewAskService(embedder, index, llm, nil, domain.DefaultAskSettings())

	for _, question := range []string{"What are the symptoms of a heart attack?", "What is a heart attack?"} {
		t.Run(question, func(t *testing.T) {
			llm.calls = 0
			answer, err := svc.Ask(context.Background(), question)

			require.NoError(t, err)
			assertFivePartAnswer(t, answer)
			assert.Equal(t, 1, llm.calls)
			assert.Contains(t, llm.lastPrompt, question)
		})
	}
}

func assertFivePartAnswer(t *testing.T, answer *domain.Answer) {
	t.Helper()
	assert.Equal(t, domain.OutcomeAnswered, answer.Outcome)
	assert.GreaterOrEqual(t, answer.Matches, 2)

	sections := []string{"1. Overview", "2. Causes", "3. Symptoms", "4. Treatment / Management", "5. When to see a doctor"}
	last := -1
	for _, s := range sections {
		i := strings.Index(answer.Text, s)
		require.GreaterOrEqual(t, i, 0, "missing section %q", s)
		assert.Greater(t, i, last, "section %q out of order", s)
		last = i
	}
	assert.NotContains(t, answer.Text, "\n")
}
