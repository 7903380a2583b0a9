package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.Equal(t, lipgloss.Color("#7C3AED"), theme.Primary)
	assert.Equal(t, lipgloss.Color("#F38BA8"), theme.Error)
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
}

func TestWordStyle(t *testing.T) {
	s := DefaultStyles()

	bold := s.WordStyle("#FF0000", 700, false, true)
	assert.True(t, bold.GetBold())
	assert.False(t, bold.GetItalic())
	assert.False(t, bold.GetFaint())

	italic := s.WordStyle("#00FF00", 400, true, true)
	assert.False(t, italic.GetBold())
	assert.True(t, italic.GetItalic())

	pendingLoad := s.WordStyle("#0000FF", 400, false, false)
	assert.True(t, pendingLoad.GetFaint())
}
