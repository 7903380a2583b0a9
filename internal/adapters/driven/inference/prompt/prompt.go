// Package prompt builds the styling prompts shared by all inference
// backends and parses their JSON responses. Backends differ only in
// transport; the contract with the model lives here.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
)

// wordPromptTemplate asks for a styling decision for a single word.
// The response must be a bare JSON object so it can be decoded directly.
const wordPromptTemplate = `You are a typography assistant. Choose a font styling that visually evokes the meaning of the word below.

Word: %q
%s
Pick a widely available Google Fonts family. Weight is 100-900 in steps of 100. Colour is OKLCH: hue 0-360, chroma 0-0.4, lightness 30-90.
Category must be one of: sans-serif, serif, display, handwriting, monospace.

Respond with ONLY a JSON object, no prose, no code fences:
{"family": "...", "weight": 400, "style": "normal", "category": "...", "hue": 0, "chroma": 0, "lightness": 60}`

// phrasePromptTemplate styles a multi-word phrase as a single unit.
const phrasePromptTemplate = `You are a typography assistant. The words below form one phrase and must share one styling that evokes the phrase as a whole, not its individual words.

Phrase: %q
%s
Pick a widely available Google Fonts family. Weight is 100-900 in steps of 100. Colour is OKLCH: hue 0-360, chroma 0-0.4, lightness 30-90.
Category must be one of: sans-serif, serif, display, handwriting, monospace.

Respond with ONLY a JSON object, no prose, no code fences:
{"family": "...", "weight": 400, "style": "normal", "category": "...", "hue": 0, "chroma": 0, "lightness": 60}`

// detectPromptTemplate finds recognised multi-word units in a word list.
const detectPromptTemplate = `You are a typography assistant. Given an ordered list of words, find contiguous runs that form one recognised cultural or semantic unit (names, places, titles, idioms). Incidental adjacency such as "the big dog" does NOT qualify. Most inputs contain no phrases.

Words (JSON array, zero-indexed): %s

Respond with ONLY a JSON object, no prose, no code fences. Indices are inclusive and refer to the array above:
{"phrases": [{"words": ["..."], "start": 0, "end": 1, "reason": "..."}]}
Return {"phrases": []} when nothing qualifies.`

// Variant renders the styling prompt for a word or phrase request.
func Variant(req driven.InferenceRequest) string {
	guidance := ""
	if req.Guidance != "" {
		guidance = "Direction: " + req.Guidance + "\n"
	}
	if req.Phrase {
		return fmt.Sprintf(phrasePromptTemplate, req.Subject, guidance)
	}
	return fmt.Sprintf(wordPromptTemplate, req.Subject, guidance)
}

// Detect renders the phrase detection prompt for a normalised word list.
func Detect(words []string) (string, error) {
	encoded, err := json.Marshal(words)
	if err != nil {
		return "", fmt.Errorf("encode word list: %w", err)
	}
	return fmt.Sprintf(detectPromptTemplate, string(encoded)), nil
}

// variantResponse mirrors the JSON object the styling prompts request.
// Saturation is the legacy colour field older prompt revisions emitted.
type variantResponse struct {
	Family     string   `json:"family"`
	Weight     int      `json:"weight"`
	Style      string   `json:"style"`
	Category   string   `json:"category"`
	Hue        float64  `json:"hue"`
	Chroma     float64  `json:"chroma"`
	Lightness  float64  `json:"lightness"`
	Saturation *float64 `json:"saturation,omitempty"`
}

// detectResponse mirrors the JSON object the detection prompt requests.
type detectResponse struct {
	Phrases []struct {
		Words  []string `json:"words"`
		Start  int      `json:"start"`
		End    int      `json:"end"`
		Reason string   `json:"reason"`
	} `json:"phrases"`
}

// ParseVariant decodes a styling response. Values are passed through
// unvalidated; clamping and catalog matching happen in the resolver.
func ParseVariant(raw string) (driven.InferredVariant, error) {
	var resp variantResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return driven.InferredVariant{}, fmt.Errorf("decode styling response: %w", err)
	}
	if resp.Family == "" && resp.Category == "" {
		return driven.InferredVariant{}, fmt.Errorf("styling response names no family or category")
	}
	return driven.InferredVariant{
		Family:     resp.Family,
		Weight:     resp.Weight,
		Style:      resp.Style,
		Category:   resp.Category,
		Hue:        resp.Hue,
		Chroma:     resp.Chroma,
		Lightness:  resp.Lightness,
		Saturation: resp.Saturation,
	}, nil
}

// ParsePhrases decodes a detection response. Out-of-range or inconsistent
// spans are dropped here so callers only ever see phrases that refer to
// real indices in their word list.
func ParsePhrases(raw string, wordCount int) ([]domain.DetectedPhrase, error) {
	var resp detectResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return nil, fmt.Errorf("decode detection response: %w", err)
	}

	phrases := make([]domain.DetectedPhrase, 0, len(resp.Phrases))
	for _, p := range resp.Phrases {
		phrases = append(phrases, domain.DetectedPhrase{
			Words:      p.Words,
			StartIndex: p.Start,
			EndIndex:   p.End,
			Reason:     p.Reason,
		})
	}
	return domain.ValidPhrases(phrases, wordCount), nil
}

// stripFences removes a markdown code fence wrapper that some models add
// despite instructions, with or without a language tag.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.HasPrefix(s, "{") {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
