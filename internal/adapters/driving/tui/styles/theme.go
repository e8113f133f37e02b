// Package styles provides the colour theme and styles of the chat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the chat palette. Answers and refusals get distinct colours so
// a refusal is never mistaken for medical advice.
type Theme struct {
	Accent  lipgloss.Color // titles and the prompt label
	Ask     lipgloss.Color // the user's questions
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Caution lipgloss.Color // refusals
	Danger  lipgloss.Color // errors
	Border  lipgloss.Color
	Bar     lipgloss.Color // status bar background
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#0E9F6E"),
		Ask:     lipgloss.Color("#06B6D4"),
		Text:    lipgloss.Color("#CDD6F4"),
		Muted:   lipgloss.Color("#6C7086"),
		Caution: lipgloss.Color("#F9E2AF"),
		Danger:  lipgloss.Color("#F38BA8"),
		Border:  lipgloss.Color("#45475A"),
		Bar:     lipgloss.Color("#181825"),
	}
}

// Styles holds the rendered styles for each part of the chat screen.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Transcript entries.
	Question lipgloss.Style
	Answer   lipgloss.Style
	Refusal  lipgloss.Style
	Source   lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme:      theme,
		Title:      fg(theme.Accent).Bold(true),
		Normal:     fg(theme.Text),
		Muted:      fg(theme.Muted),
		Error:      fg(theme.Danger),
		InputField: lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),

		Question: fg(theme.Ask).Bold(true),
		Answer:   fg(theme.Text).PaddingLeft(2),
		Refusal:  fg(theme.Caution).PaddingLeft(2),
		Source:   fg(theme.Muted).Italic(true).PaddingLeft(4),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
