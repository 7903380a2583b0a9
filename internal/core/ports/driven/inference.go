package driven

import (
	"context"

	"github.com/typetide/typetide/internal/core/domain"
)

// VariantInference is the AI styling backend. This is an optional service:
// when nil, unknown words resolve to the fallback variant and phrase
// detection is disabled.
//
// Implementations may include:
//   - OpenAI (chat completions)
//   - Anthropic (messages)
//
// Responses are untrusted. The resolver clamps and validates every value
// before it becomes a FontVariant; in particular the returned family is
// not guaranteed to exist in the catalog.
type VariantInference interface {
	// InferVariant produces a styling suggestion for a word or phrase.
	InferVariant(ctx context.Context, req InferenceRequest) (InferredVariant, error)

	// DetectPhrases identifies contiguous runs of the given normalised
	// words that form one recognised cultural or semantic unit. Incidental
	// adjacency does not qualify. Indices in the response refer to the
	// input word list and must be validated by the caller.
	DetectPhrases(ctx context.Context, words []string) ([]domain.DetectedPhrase, error)

	// ModelVersion names the model, used to tag cache entries.
	ModelVersion() string

	// Ping validates the backend is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// InferenceRequest describes one styling inference.
type InferenceRequest struct {
	// Subject is the word or phrase to style.
	Subject string

	// Guidance is optional extra styling direction for the model.
	Guidance string

	// Phrase marks multi-word subjects, which use the phrase prompt.
	Phrase bool
}

// InferredVariant is the raw, unvalidated styling suggestion as decoded
// from the model response.
type InferredVariant struct {
	// Family is the suggested font family name, possibly not in the catalog.
	Family string

	// Weight is the suggested weight, possibly off the 100..900 grid.
	Weight int

	// Style is "normal" or "italic"; anything else reads as normal.
	Style string

	// Category is the model's font category hint, used for fallback when
	// the family cannot be matched.
	Category string

	// Hue, Chroma, Lightness are the OKLCH colour suggestion.
	Hue       float64
	Chroma    float64
	Lightness float64

	// Saturation carries the legacy HSL-era colour field some prompts
	// still emit. When present it is converted to chroma; the OKLCH
	// fields win if both are set.
	Saturation *float64
}
