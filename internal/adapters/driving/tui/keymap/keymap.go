// Package keymap holds the chat key bindings.
package keymap

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists every binding the chat reacts to. Anything else is typed
// into the question.
type KeyMap struct {
	Send       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Sources    key.Binding
	Clear      key.Binding
	Quit       key.Binding
}

// bind creates a binding whose help shows label for action.
func bind(label, action string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, action))
}

func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Send:       bind("enter", "ask", "enter"),
		ScrollUp:   bind("pgup", "scroll up", "pgup"),
		ScrollDown: bind("pgdn", "scroll down", "pgdown"),
		Sources:    bind("tab", "sources", "tab"),
		Clear:      bind("ctrl+l", "clear", "ctrl+l"),
		Quit:       bind("esc", "quit", "esc", "ctrl+c"),
	}
}

// ShortHelp is what the status bar advertises.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Sources, k.Clear, k.Quit}
}

func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.ScrollUp, k.ScrollDown},
		{k.Sources, k.Clear, k.Quit},
	}
}
