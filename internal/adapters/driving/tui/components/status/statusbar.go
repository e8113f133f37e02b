// Package status provides the status bar of the chat TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	// StateRefused follows an answer the relevance gate refused.
	StateRefused State = "refused"
	StateError   State = "error"
)

// Bar shows the pipeline state on the left and key hints on the right.
// It is passive: the chat view drives it through the setters.
type Bar struct {
	styles  *styles.Styles
	hints   string
	state   State
	message string
	chunks  int
	width   int
}

// NewBar creates a status bar. Nil arguments select the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	hints := make([]string, 0, 4)
	for _, b := range km.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}

	return &Bar{
		styles: s,
		hints:  strings.Join(hints, " | "),
		state:  StateReady,
		width:  80,
	}
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left := s.status()
	right := s.styles.Muted.Render(s.hints)

	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) status() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateRefused:
		return s.styles.Refusal.UnsetPaddingLeft().Render("No reliable source found")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateReady:
	}
	if s.chunks == 0 {
		return s.styles.Muted.Render("Ready")
	}
	return s.styles.Normal.Render(fmt.Sprintf("%d passages indexed", s.chunks))
}

func (s *Bar) SetState(state State) { s.state = state }
func (s *Bar) State() State { return s.state }
func (s *Bar) SetMessage(message string) { s.message = message }
func (s *Bar) Message() string { return s.message }
func (s *Bar) SetChunks(count int) { s.chunks = count }
func (s *Bar) Chunks() int { return s.chunks }
func (s *Bar) SetWidth(width int) { s.width = width }
func (s *Bar) Width() int { return s.width }

// Clear resets the state and message. The chunk count is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
