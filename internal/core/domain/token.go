package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// WordToken is a single word from the input text. Identity is assigned once,
// at first tokenisation, and preserved across edits by the reconciler; the
// position is reassigned on every edit without changing identity.
type WordToken struct {
	// ID is the opaque stable identifier for this token.
	ID string

	// Raw is the original text exactly as typed, punctuation included.
	Raw string

	// Normalised is the lowercased text with every character stripped that
	// is not a Unicode letter, digit, apostrophe or hyphen.
	Normalised string

	// Position is the dense 0-based index among retained tokens.
	Position int
}

// Tokenize splits raw text into word tokens. Splitting happens on whitespace
// runs; each maximal non-whitespace run becomes one token. Tokens whose
// normalised form is empty (pure punctuation) are dropped and consume no
// position slot. Raw, normalised and position values are deterministic for a
// given text; IDs are fresh on every call and only survive via Reconcile.
func Tokenize(text string) []WordToken {
	fields := strings.Fields(text)

	tokens := make([]WordToken, 0, len(fields))
	for _, raw := range fields {
		normalised := NormaliseWord(raw)
		if normalised == "" {
			continue
		}
		tokens = append(tokens, WordToken{
			ID:         uuid.NewString(),
			Raw:        raw,
			Normalised: normalised,
			Position:   len(tokens),
		})
	}
	return tokens
}

// NormaliseWord lowercases a word and strips everything that is not a
// Unicode letter, digit, apostrophe or hyphen.
func NormaliseWord(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsCapitalised reports whether the first letter of the raw word is upper
// case. Used for the optional capitalisation-sensitive cache keying, where
// "Paris" and "paris" cache independently.
func IsCapitalised(raw string) bool {
	for _, r := range raw {
		if !unicode.IsLetter(r) {
			continue
		}
		return unicode.IsUpper(r)
	}
	return false
}
