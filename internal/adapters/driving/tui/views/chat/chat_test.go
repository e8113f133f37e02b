package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medibot/internal/core/domain"
)

type mockAskService struct {
	answer *domain.Answer
	err    error
	asked  []string
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	return m.answer, m.err
}

func answered() *domain.Answer {
	return &domain.Answer{
		Question: "What is diabetes?",
		Text:     "1. Overview<br>Diabetes raises blood sugar.",
		Outcome:  domain.OutcomeAnswered,
		Passages: []domain.Passage{{
			ChunkID:    "c1",
			Provenance: domain.ProvenanceWeb,
			Score:      0.87,
			Metadata:   map[string]string{domain.MetaTitle: "Diabetes | MedlinePlus"},
		}},
	}
}

func newTestView(ask *mockAskService) *View {
	v := NewView(nil, nil, ask)
	v.SetDimensions(100, 30)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.False(t, v.Ready())
	assert.False(t, v.Thinking())
	assert.Equal(t, 0, v.Entries())
	assert.NotNil(t, v.Init())
}

func TestView_Send(t *testing.T) {
	ask := &mockAskService{answer: answered()}
	v := newTestView(ask)
	v.Input().SetValue("  What is diabetes?  ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, v.Thinking())
	assert.Equal(t, "", v.Input().Value())
	assert.Equal(t, status.StateThinking, v.StatusBar().State())
	assert.Contains(t, v.View(), "What is diabetes?")
}

func TestView_SendWhileThinkingIsIgnored(t *testing.T) {
	v := newTestView(&mockAskService{answer: answered()})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestView_AskQuestion(t *testing.T) {
	ask := &mockAskService{answer: answered()}
	v := newTestView(ask)

	msg := v.askQuestion("What is diabetes?")()

	received, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, "What is diabetes?", received.Question)
	assert.Equal(t, domain.OutcomeAnswered, received.Answer.Outcome)
	assert.Equal(t, []string{"What is diabetes?"}, ask.asked)
}

func TestView_AskQuestion_NoService(t *testing.T) {
	v := newTestView(nil)
	v.ask = nil

	msg := v.askQuestion("What is diabetes?")().(messages.AnswerReceived)

	assert.ErrorIs(t, msg.Err, ErrNoAskService)
}

func TestView_AnswerReceived(t *testing.T) {
	tests := []struct {
		name        string
		msg         messages.AnswerReceived
		contains    []string
		notContains []string
		wantState   status.State
	}{
		{
			name:        "answer renders as plain text",
			msg:         messages.AnswerReceived{Question: "What is diabetes?", Answer: answered()},
			contains:    []string{"> What is diabetes?", "1. Overview", "Diabetes raises blood sugar."},
			notContains: []string{"<br>", "MedlinePlus"},
			wantState:   status.StateReady,
		},
		{
			name: "refusal",
			msg: messages.AnswerReceived{
				Question: "Does cancer cause hair loss?",
				Answer:   &domain.Answer{Text: domain.RefusalAnswer, Outcome: domain.OutcomeRefused},
			},
			contains:    []string{domain.NoReliableInfoMessage, "Please consult a qualified healthcare professional."},
			notContains: []string{"<em>"},
			wantState:   status.StateRefused,
		},
		{
			name:      "error",
			msg:       messages.AnswerReceived{Question: "What is asthma?", Err: errors.New("llm unreachable")},
			contains:  []string{"Error: llm unreachable"},
			wantState: status.StateError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestView(&mockAskService{})

			v.Update(tt.msg)

			assert.False(t, v.Thinking())
			assert.Equal(t, 1, v.Entries())
			assert.Equal(t, tt.wantState, v.StatusBar().State())
			transcript := v.Transcript()
			for _, want := range tt.contains {
				assert.Contains(t, transcript, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, transcript, unwanted)
			}
		})
	}
}

func TestView_ToggleSources(t *testing.T) {
	v := newTestView(&mockAskService{})
	v.Update(messages.AnswerReceived{Question: "What is diabetes?", Answer: answered()})

	v.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.True(t, v.ShowSources())
	assert.Contains(t, v.Transcript(), "Diabetes | MedlinePlus (trusted_web, 0.87)")
}

func TestView_Clear(t *testing.T) {
	v := newTestView(&mockAskService{})
	v.Update(messages.AnswerReceived{Question: "What is diabetes?", Answer: answered()})

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, 0, v.Entries())
	assert.Contains(t, v.Transcript(), "trusted sources")
}

func TestView_StatsLoaded(t *testing.T) {
	v := newTestView(&mockAskService{})

	v.Update(messages.StatsLoaded{Stats: &domain.CatalogStats{IndexedChunks: 42}})
	assert.Equal(t, 42, v.StatusBar().Chunks())

	v.Update(messages.StatsLoaded{Err: errors.New("db locked")})
	assert.Equal(t, 42, v.StatusBar().Chunks())
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, nil, nil)

	v.SetDimensions(120, 40)

	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.Width())
	assert.Equal(t, 40, v.Height())
	assert.Equal(t, 120, v.StatusBar().Width())
}
