// Package input is the single-line question field of the chat.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/styles"
)

// Prompt labels the field.
const Prompt = "Ask a medical question: "

const (
	charLimit = 500
	minWidth  = 20
	// frame is the border and padding around the field.
	frame = 6
)

// QuestionInput is a text field that remembers submitted questions. Up and
// Down walk through them.
type QuestionInput struct {
	field  textinput.Model
	styles *styles.Styles

	history []string
	cursor  int // len(history) when not browsing
	draft   string
}

func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	f := textinput.New()
	f.Placeholder = "e.g. What are the symptoms of diabetes?"
	f.CharLimit = charLimit
	f.Width = 50
	f.Focus()
	return &QuestionInput{field: f, styles: s}
}

func (q *QuestionInput) Init() tea.Cmd { return textinput.Blink }

func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp:
			q.browse(-1)
			return q, nil
		case tea.KeyDown:
			q.browse(1)
			return q, nil
		}
	}
	var cmd tea.Cmd
	q.field, cmd = q.field.Update(msg)
	return q, cmd
}

// browse moves through history by step. Moving past the newest entry
// restores what was being typed.
func (q *QuestionInput) browse(step int) {
	next := q.cursor + step
	if next < 0 || next > len(q.history) {
		return
	}
	if q.cursor == len(q.history) {
		q.draft = q.field.Value()
	}
	q.cursor = next
	if next == len(q.history) {
		q.field.SetValue(q.draft)
	} else {
		q.field.SetValue(q.history[next])
	}
	q.field.CursorEnd()
}

// Submit returns the trimmed question, clears the field and records the
// question unless it is empty or repeats the last one.
func (q *QuestionInput) Submit() string {
	question := strings.TrimSpace(q.field.Value())
	if question != "" && (len(q.history) == 0 || q.history[len(q.history)-1] != question) {
		q.history = append(q.history, question)
	}
	q.cursor, q.draft = len(q.history), ""
	q.field.Reset()
	return question
}

func (q *QuestionInput) View() string {
	//nolint:misspell // lipgloss constant
	return lipgloss.JoinHorizontal(lipgloss.Center,
		q.styles.Title.Render(Prompt),
		q.styles.InputField.Render(q.field.View()))
}

func (q *QuestionInput) Value() string { return q.field.Value() }
func (q *QuestionInput) SetValue(v string) { q.field.SetValue(v) }
func (q *QuestionInput) History() []string { return q.history }

// SetWidth fits the field into width columns next to the label.
func (q *QuestionInput) SetWidth(width int) {
	q.field.Width = max(width-lipgloss.Width(Prompt)-frame, minWidth)
}
