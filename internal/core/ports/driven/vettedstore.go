package driven

import "github.com/typetide/typetide/internal/core/domain"

// VettedStore is the curated mapping of words and phrases to
// human-approved variants. It is the highest-priority resolution tier.
// The store is read-only from the core's perspective: mutation happens
// through an out-of-scope authoring tool, and implementations may reload
// when the backing definition changes.
type VettedStore interface {
	// Lookup finds a vetted variant by exact, case-insensitive, trimmed
	// match on the word or phrase text.
	Lookup(subject string) (domain.FontVariant, bool)

	// Len returns the number of vetted entries currently loaded.
	Len() int

	// Close stops any background reloading.
	Close() error
}
