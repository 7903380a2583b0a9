package domain

import "strings"

// DetectedPhrase is a contiguous token run the detector judged to be one
// semantic or cultural unit. It is ephemeral: the cached phrase resolution
// is a separate entity keyed by the phrase text.
type DetectedPhrase struct {
	// Words are the normalised member words in order.
	Words []string

	// StartIndex is the inclusive index of the first member word.
	StartIndex int

	// EndIndex is the inclusive index of the last member word.
	EndIndex int

	// Reason is the detector's short justification, informational only.
	Reason string
}

// Text returns the space-joined phrase text.
func (p DetectedPhrase) Text() string {
	return strings.Join(p.Words, " ")
}

// Valid checks a phrase against the word list it was detected over:
// indices must be in range and the word count must match the span. The
// detector's backend is untrusted, so malformed phrases are discarded
// before use.
func (p DetectedPhrase) Valid(wordCount int) bool {
	if p.StartIndex < 0 || p.EndIndex < p.StartIndex || p.EndIndex >= wordCount {
		return false
	}
	return len(p.Words) == p.EndIndex-p.StartIndex+1
}

// ValidPhrases filters a detector response down to the phrases that pass
// Valid for the given word count, preserving order.
func ValidPhrases(phrases []DetectedPhrase, wordCount int) []DetectedPhrase {
	out := make([]DetectedPhrase, 0, len(phrases))
	for _, p := range phrases {
		if p.Valid(wordCount) {
			out = append(out, p)
		}
	}
	return out
}

// Intersects reports whether the phrase span covers the given word index.
func (p DetectedPhrase) Intersects(index int) bool {
	return index >= p.StartIndex && index <= p.EndIndex
}
