package cli

import (
	"fmt"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/medibot/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Chat with medibot in a full-screen terminal UI",
	Long: `Chat with medibot in a full-screen terminal UI. Answers show their
sources; refusals are shown in a distinct colour.

Keys:
  Enter       ask
  PgUp/PgDn   scroll
  Tab         show or hide sources
  Ctrl+L      clear
  Esc         quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tui crashed: %v\n%s", r, debug.Stack())
		}
	}()

	svc, err := open(cmd, PurposeAsk)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	app, err := tui.NewApp(&tui.Ports{Ask: svc.Ask, Catalog: svc.Catalog})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	program := tea.NewProgram(app.WithContext(ctx), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
