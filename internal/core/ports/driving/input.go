package driving

import "github.com/typetide/typetide/internal/core/domain"

// InputHandler is the surface the rendering layer drives. All methods are
// safe for concurrent use; state reads return snapshots.
type InputHandler interface {
	// SetText replaces the input text, reconciling the word list and
	// scheduling resolution of pending words after the debounce window.
	SetText(text string)

	// Snapshot returns a copy of the current input state.
	Snapshot() domain.InputState

	// Subscribe registers a callback invoked with a fresh snapshot after
	// every state change. The returned function unsubscribes.
	Subscribe(fn func(domain.InputState)) (cancel func())

	// MarkFontLoaded records that the glyphs for the given word are
	// confirmed usable.
	MarkFontLoaded(wordID string)

	// UpdateVariant manually overrides the variant of one word, outside
	// the normal pending pipeline (re-roll).
	UpdateVariant(wordID string, variant domain.FontVariant)

	// SetPhraseLoading re-enters loading for every member of a phrase
	// group, ahead of a manual phrase re-roll.
	SetPhraseLoading(groupID string)

	// ResolvePhraseGroup applies a new variant to every member of a
	// phrase group atomically.
	ResolvePhraseGroup(groupID string, variant domain.FontVariant)

	// Close cancels in-flight work and stops timers.
	Close() error
}
