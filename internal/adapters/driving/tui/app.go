package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medibot/internal/adapters/driving/tui/views/chat"
)

var _ tea.Model = (*App)(nil)

// App is the bubbletea model. It owns quitting and the catalog lookup and
// hands everything else to the chat view.
type App struct {
	ports *Ports
	ctx   context.Context
	keys  *keymap.KeyMap
	chat  *chat.View
}

func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	keys := keymap.DefaultKeyMap()
	return &App{
		ports: ports,
		ctx:   context.Background(),
		keys:  keys,
		chat:  chat.NewView(styles.DefaultStyles(), keys, ports.Ask),
	}, nil
}

// WithContext sets the context of ask and catalog calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chat.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("medibot"), a.chat.Init(), a.loadStats())
}

// loadStats reads the index size, or returns nil without a catalog.
func (a *App) loadStats() tea.Cmd {
	if a.ports.Catalog == nil {
		return nil
	}
	return func() tea.Msg {
		stats, err := a.ports.Catalog.Stats(a.ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if !a.chat.Ready() {
		return "Initialising..."
	}
	return a.chat.View()
}

func (a *App) SetDimensions(width, height int) { a.chat.SetDimensions(width, height) }

func (a *App) Width() int { return a.chat.Width() }
func (a *App) Height() int { return a.chat.Height() }
func (a *App) Ready() bool { return a.chat.Ready() }
func (a *App) Chat() *chat.View { return a.chat }
