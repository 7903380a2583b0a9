package domain

// WordState couples a token with its resolution progress and font load
// status. FontLoaded is independent of the resolution status: a word can be
// resolved while its glyphs are still in flight.
type WordState struct {
	// Token is the identity-bearing word token.
	Token WordToken

	// Resolution is the current state-machine arm for this word.
	Resolution WordResolution

	// FontLoaded reports whether the glyphs of the resolved variant are
	// confirmed usable for this word's text.
	FontLoaded bool

	// PhraseGroupID is non-empty when this word was resolved as part of a
	// phrase; sibling members share the same id.
	PhraseGroupID string
}

// NewWordState creates a pending state for a freshly minted token.
func NewWordState(token WordToken) WordState {
	return WordState{
		Token:      token,
		Resolution: PendingResolution(),
	}
}

// InputState is the full reconciled state of the input text. The word list
// always matches the non-empty tokens of RawText, position for position.
type InputState struct {
	// RawText is the text exactly as typed.
	RawText string

	// Words holds one state per retained token; Words[i].Token.Position == i.
	Words []WordState
}

// Reconcile maps a fresh token list onto the previous word states,
// preserving identity and already-resolved work across an edit.
//
// Existing states are grouped by normalised text into FIFO pools. Each new
// token consumes the oldest unconsumed pool entry with the same normalised
// text, inheriting its id, resolution, font-load flag and phrase group; only
// raw text and position are refreshed. Tokens with no pool entry left start
// fresh in pending. Surplus old states are dropped. The matching is a
// deterministic O(n) multiset assignment, first seen first matched, which
// keeps a repeated word from binding twice.
func Reconcile(existing []WordState, tokens []WordToken) []WordState {
	pools := make(map[string][]int, len(existing))
	for i, ws := range existing {
		key := ws.Token.Normalised
		pools[key] = append(pools[key], i)
	}

	next := make([]WordState, 0, len(tokens))
	for _, tok := range tokens {
		pool := pools[tok.Normalised]
		if len(pool) > 0 {
			prev := existing[pool[0]]
			pools[tok.Normalised] = pool[1:]

			prev.Token.Raw = tok.Raw
			prev.Token.Position = tok.Position
			next = append(next, prev)
			continue
		}
		next = append(next, NewWordState(tok))
	}
	return next
}

// ApplyPhraseOverlay resolves every word in [start, end] as one unit: each
// member gets the shared variant, the same phrase group id, and a cleared
// font-load flag (the visual variant just changed and must be re-verified).
// The overlay is atomic with respect to the word list it is applied to.
func ApplyPhraseOverlay(words []WordState, start, end int, groupID string, variant FontVariant, source ResolutionSource) {
	for i := start; i <= end && i < len(words); i++ {
		if i < 0 {
			continue
		}
		words[i].Resolution = WordResolution{
			Status:  ResolutionResolved,
			Variant: variant,
			Source:  source,
		}
		words[i].PhraseGroupID = groupID
		words[i].FontLoaded = false
	}
}
