// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/typetide/typetide/internal/adapters/driving/tui/styles"
)

// TypeInput wraps a bubbles textinput for the live typing surface.
type TypeInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewTypeInput creates a new typing input component.
func NewTypeInput(s *styles.Styles) *TypeInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Start typing..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	return &TypeInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init initialises the input.
func (t *TypeInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (t *TypeInput) Update(msg tea.Msg) (*TypeInput, tea.Cmd) {
	var cmd tea.Cmd
	t.textinput, cmd = t.textinput.Update(msg)
	return t, cmd
}

// View renders the input field.
func (t *TypeInput) View() string {
	label := t.styles.Title.Render("Type: ")
	field := t.styles.InputField.Render(t.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (t *TypeInput) Value() string {
	return t.textinput.Value()
}

// SetValue sets the input value.
func (t *TypeInput) SetValue(value string) {
	t.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (t *TypeInput) Focus() tea.Cmd {
	return t.textinput.Focus()
}

// Focused returns whether the input is focused.
func (t *TypeInput) Focused() bool {
	return t.textinput.Focused()
}

// SetWidth sets the width of the input.
func (t *TypeInput) SetWidth(width int) {
	t.width = width
	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	t.textinput.Width = inputWidth
}

// Reset clears the input.
func (t *TypeInput) Reset() {
	t.textinput.Reset()
}
