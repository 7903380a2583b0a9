package cli

import (
	"context"

	"github.com/typetide/typetide/internal/adapters/driven/storage/memory"
	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driving"
)

// stubResolver returns a fixed resolution for every word and phrase.
type stubResolver struct {
	resolution driving.Resolution
	err        error
}

var _ driving.ResolverService = (*stubResolver)(nil)

func (s *stubResolver) ResolveWord(_ context.Context, raw string) (driving.Resolution, error) {
	if raw == "" {
		return driving.Resolution{}, domain.ErrInvalidInput
	}
	return s.resolution, s.err
}

func (s *stubResolver) ResolvePhrase(_ context.Context, _ []string) (driving.Resolution, error) {
	return s.resolution, s.err
}

func (s *stubResolver) Fallback() domain.FontVariant {
	return s.resolution.Variant
}

// stubPhrases returns a fixed detection result.
type stubPhrases struct {
	phrases []domain.DetectedPhrase
	err     error
}

var _ driving.PhraseService = (*stubPhrases)(nil)

func (s *stubPhrases) DetectPhrases(_ context.Context, _ []string) ([]domain.DetectedPhrase, error) {
	return s.phrases, s.err
}

func testResolution() driving.Resolution {
	return driving.Resolution{
		Variant: domain.FontVariant{
			Family: "Oswald",
			Weight: 700,
			Style:  domain.StyleNormal,
			Colour: domain.ColourIntent{Hue: 30, Chroma: 0.18, Lightness: 55},
		},
		Source: domain.SourceCache,
	}
}

// setupTestServices swaps stub services in and returns a cleanup function
// that restores the previous wiring.
func setupTestServices() func() {
	previous := services
	services = Services{
		Resolver: &stubResolver{resolution: testResolution()},
		Phrases: &stubPhrases{phrases: []domain.DetectedPhrase{
			{Words: []string{"new", "york"}, StartIndex: 0, EndIndex: 1, Reason: "proper noun"},
		}},
		Cache: memory.NewCacheStore(),
	}
	return func() {
		services = previous
	}
}
