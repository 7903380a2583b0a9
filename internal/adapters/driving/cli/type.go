package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/typetide/typetide/internal/adapters/driving/tui"
)

// typeCmd represents the type command.
var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Launch the live typing surface",
	Long: `Launch the interactive typing surface for typetide.

Words restyle as you type: each one resolves to a font family, weight,
style and colour, and the preview line updates as resolutions land.

Controls:
  (type)   Edit the text
  ctrl+r   Re-roll the last word (phrases re-roll as a unit)
  Esc      Quit`,
	RunE: runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
}

func runType(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if services.Input == nil {
		return errors.New("input handler not configured")
	}

	ports := tui.NewPorts(services.Input, services.Resolver)

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
