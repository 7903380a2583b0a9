package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/typetide/typetide/internal/adapters/driving/tui/components/input"
	"github.com/typetide/typetide/internal/adapters/driving/tui/messages"
	"github.com/typetide/typetide/internal/adapters/driving/tui/styles"
	"github.com/typetide/typetide/internal/core/domain"
)

// App is the live typing surface following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
//
// State changes from the styling pipeline arrive through a coalescing
// channel: the subscription callback keeps only the newest snapshot, so a
// burst of resolutions never backs up behind the render loop.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// input is the text entry component.
	input *input.TypeInput

	// snapshot is the latest pipeline state.
	snapshot domain.InputState

	// updates delivers coalesced snapshots from the subscription.
	updates chan domain.InputState

	// unsubscribe detaches the pipeline subscription.
	unsubscribe func()

	// lastText is the last text pushed to the pipeline, to skip no-op
	// key events (cursor movement, blink ticks).
	lastText string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new typing surface with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	a := &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  styles.DefaultStyles(),
		input:   input.NewTypeInput(nil),
		updates: make(chan domain.InputState, 1),
		width:   80,
		height:  24,
	}
	a.unsubscribe = ports.Input.Subscribe(a.pushState)
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// pushState publishes a snapshot, replacing any undelivered one.
func (a *App) pushState(state domain.InputState) {
	for {
		select {
		case a.updates <- state:
			return
		default:
			select {
			case <-a.updates:
			default:
			}
		}
	}
}

// waitForState blocks until the pipeline publishes a snapshot.
func (a *App) waitForState() tea.Cmd {
	return func() tea.Msg {
		return messages.StateUpdated{State: <-a.updates}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("typetide"),
		a.input.Init(),
		a.waitForState(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			a.unsubscribe()
			return a, tea.Quit
		case "ctrl+r":
			return a, a.rerollLastWord()
		}

		a.input, cmd = a.input.Update(msg)
		if text := a.input.Value(); text != a.lastText {
			a.lastText = text
			a.ports.Input.SetText(text)
		}
		return a, cmd

	case messages.StateUpdated:
		a.snapshot = msg.State
		return a, a.waitForState()

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		a.unsubscribe()
		return a, tea.Quit
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// rerollLastWord requests a fresh variant for the most recent word. Phrase
// members re-roll as a group so the unit never splinters.
func (a *App) rerollLastWord() tea.Cmd {
	if a.ports.Resolver == nil || len(a.snapshot.Words) == 0 {
		return nil
	}

	last := a.snapshot.Words[len(a.snapshot.Words)-1]
	if last.Resolution.Status != domain.ResolutionResolved {
		return nil
	}

	if groupID := last.PhraseGroupID; groupID != "" {
		var words []string
		for _, ws := range a.snapshot.Words {
			if ws.PhraseGroupID == groupID {
				words = append(words, ws.Token.Normalised)
			}
		}
		a.ports.Input.SetPhraseLoading(groupID)
		return func() tea.Msg {
			res, err := a.ports.Resolver.ResolvePhrase(a.ctx, words)
			if err != nil {
				return messages.ErrorOccurred{Err: err}
			}
			a.ports.Input.ResolvePhraseGroup(groupID, res.Variant)
			return nil
		}
	}

	wordID := last.Token.ID
	text := last.Token.Normalised
	return func() tea.Msg {
		res, err := a.ports.Resolver.ResolveWord(a.ctx, text)
		if err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		a.ports.Input.UpdateVariant(wordID, res.Variant)
		return nil
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("typetide"))
	b.WriteString("\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")
	b.WriteString(a.viewWords())
	b.WriteString("\n\n")
	b.WriteString(a.viewStatus())
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("esc quit · ctrl+r re-roll last word"))
	return b.String()
}

// viewWords renders the styled preview line, one styled span per word.
func (a *App) viewWords() string {
	if len(a.snapshot.Words) == 0 {
		return a.styles.Muted.Render("(styled text appears here)")
	}

	rendered := make([]string, 0, len(a.snapshot.Words))
	for _, ws := range a.snapshot.Words {
		rendered = append(rendered, a.renderWord(ws))
	}
	return strings.Join(rendered, " ")
}

func (a *App) renderWord(ws domain.WordState) string {
	switch ws.Resolution.Status {
	case domain.ResolutionLoading:
		return a.styles.Loading.Render(ws.Token.Raw)
	case domain.ResolutionResolved:
		v := ws.Resolution.Variant
		style := a.styles.WordStyle(v.Colour.Hex(), v.Weight, v.Style == domain.StyleItalic, ws.FontLoaded)
		return style.Render(ws.Token.Raw)
	case domain.ResolutionError:
		return a.styles.Error.Render(ws.Token.Raw)
	default:
		return a.styles.Muted.Render(ws.Token.Raw)
	}
}

// viewStatus summarises pipeline progress for the status line.
func (a *App) viewStatus() string {
	var pending, loading, resolved, failed int
	sources := map[domain.ResolutionSource]int{}
	for _, ws := range a.snapshot.Words {
		switch ws.Resolution.Status {
		case domain.ResolutionLoading:
			loading++
		case domain.ResolutionResolved:
			resolved++
			sources[ws.Resolution.Source]++
		case domain.ResolutionError:
			failed++
		default:
			pending++
		}
	}

	parts := []string{fmt.Sprintf("%d resolved", resolved)}
	if loading > 0 {
		parts = append(parts, fmt.Sprintf("%d loading", loading))
	}
	if pending > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", pending))
	}
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", failed))
	}
	for _, src := range []domain.ResolutionSource{domain.SourceVetted, domain.SourceCache, domain.SourceLLM} {
		if n := sources[src]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", src, n))
		}
	}
	status := strings.Join(parts, " · ")

	if a.err != nil {
		status += "  " + a.styles.Error.Render(a.err.Error())
	}
	return a.styles.StatusBar.Render(status)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Snapshot returns the latest pipeline state the app has rendered.
func (a *App) Snapshot() domain.InputState {
	return a.snapshot
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.SetWidth(width)
}
