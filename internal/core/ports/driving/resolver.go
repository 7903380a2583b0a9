package driving

import (
	"context"

	"github.com/typetide/typetide/internal/core/domain"
)

// Resolution is a resolved variant together with the tier that produced it.
type Resolution struct {
	// Variant is the validated styling decision.
	Variant domain.FontVariant

	// Source is the tier that produced the variant.
	Source domain.ResolutionSource
}

// ResolverService resolves words and phrases to font variants through the
// tiered pipeline (vetted, then cache, then inference). It never fails:
// every error path degrades to a displayable fallback variant.
type ResolverService interface {
	// ResolveWord resolves one word.
	ResolveWord(ctx context.Context, raw string) (Resolution, error)

	// ResolvePhrase resolves a multi-word phrase as one unit.
	ResolvePhrase(ctx context.Context, words []string) (Resolution, error)

	// Fallback returns the fixed variant used when every tier fails.
	Fallback() domain.FontVariant
}

// PhraseService detects multi-word phrases in a normalised word list.
type PhraseService interface {
	// DetectPhrases returns validated phrases for the given words. It is
	// only meaningful for two or more words; failure returns an empty
	// list, never an error the caller must handle as fatal.
	DetectPhrases(ctx context.Context, words []string) ([]domain.DetectedPhrase, error)
}
