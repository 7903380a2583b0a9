package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typetide/typetide/internal/adapters/driving/tui/messages"
	"github.com/typetide/typetide/internal/core/domain"
)

// stubInput records the calls the typing surface makes.
type stubInput struct {
	texts        []string
	subscribed   bool
	unsubscribed bool
	callback     func(domain.InputState)
}

func (s *stubInput) SetText(text string) {
	s.texts = append(s.texts, text)
}

func (s *stubInput) Snapshot() domain.InputState {
	return domain.InputState{}
}

func (s *stubInput) Subscribe(fn func(domain.InputState)) func() {
	s.subscribed = true
	s.callback = fn
	return func() { s.unsubscribed = true }
}

func (s *stubInput) MarkFontLoaded(string)                         {}
func (s *stubInput) UpdateVariant(string, domain.FontVariant)      {}
func (s *stubInput) SetPhraseLoading(string)                       {}
func (s *stubInput) ResolvePhraseGroup(string, domain.FontVariant) {}
func (s *stubInput) Close() error                                  { return nil }

func resolvedState(words ...string) domain.InputState {
	state := domain.InputState{}
	for i, w := range words {
		state.RawText += w + " "
		state.Words = append(state.Words, domain.WordState{
			Token: domain.WordToken{ID: w, Raw: w, Normalised: w, Position: i},
			Resolution: domain.WordResolution{
				Status: domain.ResolutionResolved,
				Variant: domain.FontVariant{
					Family: "Oswald",
					Weight: 700,
					Style:  domain.StyleNormal,
					Colour: domain.ColourIntent{Hue: 30, Chroma: 0.18, Lightness: 55},
				},
				Source: domain.SourceCache,
			},
			FontLoaded: true,
		})
	}
	return state
}

func TestNewApp_RequiresInputHandler(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingInputHandler)
}

func TestNewApp_SubscribesToPipeline(t *testing.T) {
	input := &stubInput{}
	app, err := NewApp(NewPorts(input, nil))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.True(t, input.subscribed)
}

func TestApp_StateUpdatedRefreshesSnapshot(t *testing.T) {
	input := &stubInput{}
	app, err := NewApp(NewPorts(input, nil))
	require.NoError(t, err)

	model, cmd := app.Update(messages.StateUpdated{State: resolvedState("fire")})

	updated := model.(*App)
	require.Len(t, updated.Snapshot().Words, 1)
	assert.Equal(t, "fire", updated.Snapshot().Words[0].Token.Raw)
	assert.NotNil(t, cmd, "should re-arm the state listener")
}

func TestApp_ViewRendersResolvedWords(t *testing.T) {
	input := &stubInput{}
	app, err := NewApp(NewPorts(input, nil))
	require.NoError(t, err)
	app.SetDimensions(80, 24)

	model, _ := app.Update(messages.StateUpdated{State: resolvedState("fire", "water")})
	view := model.(*App).View()

	assert.Contains(t, view, "fire")
	assert.Contains(t, view, "water")
	assert.Contains(t, view, "2 resolved")
	assert.Contains(t, view, "cache:2")
}

func TestApp_ViewBeforeReady(t *testing.T) {
	input := &stubInput{}
	app, err := NewApp(NewPorts(input, nil))
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_TypingPushesTextToPipeline(t *testing.T) {
	input := &stubInput{}
	app, err := NewApp(NewPorts(input, nil))
	require.NoError(t, err)
	app.SetDimensions(80, 24)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})

	require.NotEmpty(t, input.texts)
	assert.Equal(t, "hi", input.texts[len(input.texts)-1])
}

func TestApp_EscQuitsAndUnsubscribes(t *testing.T) {
	input := &stubInput{}
	app, err := NewApp(NewPorts(input, nil))
	require.NoError(t, err)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, input.unsubscribed)
}

func TestApp_PushStateCoalesces(t *testing.T) {
	input := &stubInput{}
	app, err := NewApp(NewPorts(input, nil))
	require.NoError(t, err)

	// Three snapshots with no reader: only the newest survives.
	input.callback(resolvedState("one"))
	input.callback(resolvedState("two"))
	input.callback(resolvedState("three"))

	state := <-app.updates
	require.Len(t, state.Words, 1)
	assert.Equal(t, "three", state.Words[0].Token.Raw)
}

func TestApp_ErrorShownInStatus(t *testing.T) {
	input := &stubInput{}
	app, err := NewApp(NewPorts(input, nil))
	require.NoError(t, err)
	app.SetDimensions(80, 24)

	model, _ := app.Update(messages.ErrorOccurred{Err: assert.AnError})
	view := model.(*App).View()

	assert.Contains(t, view, assert.AnError.Error())
}
