// Package chat provides the question and answer view of the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

// ErrNoAskService is returned when a question is sent without an ask service.
var ErrNoAskService = errors.New("chat: ask service not configured")

// Rows taken by everything except the transcript.
const chromeHeight = 7

// entry is one exchange in the transcript.
type entry struct {
	question string
	answer   *domain.Answer
	err      error
}

// View shows the transcript above the question input.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar
	viewport  viewport.Model
	spinner   spinner.Model

	ask driving.AskService
	ctx context.Context

	entries     []entry
	pending     string
	thinking    bool
	showSources bool

	width  int
	height int
	ready  bool
}

// NewView creates a chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, ask driving.AskService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		statusbar: status.NewBar(s, km),
		viewport:  viewport.New(80, 10),
		spinner:   sp,
		ask:       ask,
		ctx:       context.Background(),
	}
}

// WithContext sets the context used for ask requests.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init returns the initial command.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.StatsLoaded:
		if msg.Err == nil && msg.Stats != nil {
			v.statusbar.SetChunks(msg.Stats.IndexedChunks)
		}
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Send):
		if v.thinking {
			return v, nil
		}
		question := v.input.Submit()
		v.pending = question
		v.thinking = true
		v.statusbar.Clear()
		v.statusbar.SetState(status.StateThinking)
		return v, tea.Batch(v.askQuestion(question), v.spinner.Tick)

	case key.Matches(msg, v.keymap.ScrollUp), key.Matches(msg, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case key.Matches(msg, v.keymap.Clear):
		v.entries = nil
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keymap.Sources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// askQuestion runs the pipeline off the UI goroutine.
func (v *View) askQuestion(question string) tea.Cmd {
	return func() tea.Msg {
		if v.ask == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoAskService}
		}
		answer, err := v.ask.Ask(v.ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false
	v.pending = ""
	v.entries = append(v.entries, entry{
		question: strings.TrimSpace(msg.Question),
		answer:   msg.Answer,
		err:      msg.Err,
	})
	v.statusbar.Clear()
	switch {
	case msg.Err != nil:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	case msg.Answer != nil && msg.Answer.Outcome == domain.OutcomeRefused:
		v.statusbar.SetState(status.StateRefused)
	}
	v.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render("Answers come only from the indexed trusted sources. " +
			"Questions they do not cover are refused.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	var b strings.Builder
	for i, e := range v.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		question := e.question
		if question == "" {
			question = "(empty)"
		}
		b.WriteString(v.styles.Question.Render("> " + question))
		b.WriteString("\n")

		switch {
		case e.err != nil:
			b.WriteString(v.styles.Error.Render(wrap.Render("Error: " + e.err.Error())))
		case e.answer == nil:
		case e.answer.Outcome == domain.OutcomeAnswered:
			b.WriteString(v.styles.Answer.Render(wrap.Render(e.answer.PlainText())))
			if v.showSources {
				b.WriteString(v.renderSources(e.answer.Passages))
			}
		default:
			b.WriteString(v.styles.Refusal.Render(wrap.Render(e.answer.PlainText())))
		}
	}
	return b.String()
}

func (v *View) renderSources(passages []domain.Passage) string {
	var b strings.Builder
	for _, p := range passages {
		label := p.Title()
		if label == "" {
			label = p.URI()
		}
		if label == "" {
			label = p.ChunkID
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Source.Render(fmt.Sprintf("%s (%s, %.2f)", label, p.Provenance, p.Score)))
	}
	return b.String()
}

// View renders the chat.
func (v *View) View() string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("medibot"),
		v.styles.Muted.Render("Medical answers from trusted sources"),
	)

	pending := ""
	if v.thinking {
		pending = v.spinner.View() + " " + v.styles.Muted.Render(v.pending)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		v.viewport.View(),
		pending,
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the terminal dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.viewport.Width = width
	v.viewport.Height = max(height-chromeHeight, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether dimensions have been set.
func (v *View) Ready() bool {
	return v.ready
}

// Thinking reports whether a question is awaiting its answer.
func (v *View) Thinking() bool {
	return v.thinking
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Entries returns the number of answered exchanges.
func (v *View) Entries() int {
	return len(v.entries)
}

// ShowSources reports whether source lines are shown.
func (v *View) ShowSources() bool {
	return v.showSources
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}
