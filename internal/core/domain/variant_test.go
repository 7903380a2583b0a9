package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClampColour tests hue wrapping and chroma/lightness clamping
func TestClampColour(t *testing.T) {
	c := ClampColour(ColourIntent{Hue: 370, Chroma: 0.9, Lightness: 120})
	assert.InDelta(t, 10, c.Hue, 1e-9)
	assert.Equal(t, MaxChroma, c.Chroma)
	assert.Equal(t, MaxLightness, c.Lightness)

	c = ClampColour(ColourIntent{Hue: -30, Chroma: -1, Lightness: 0})
	assert.InDelta(t, 330, c.Hue, 1e-9)
	assert.Equal(t, 0.0, c.Chroma)
	assert.Equal(t, MinLightness, c.Lightness)

	c = ClampColour(ColourIntent{Hue: 360, Chroma: 0.2, Lightness: 55})
	assert.Equal(t, 0.0, c.Hue)
	assert.Equal(t, 0.2, c.Chroma)
	assert.Equal(t, 55.0, c.Lightness)
}

// TestColourIntent_Hex tests the OKLCH to sRGB conversion stays in form
func TestColourIntent_Hex(t *testing.T) {
	hex := ColourIntent{Hue: 30, Chroma: 0.15, Lightness: 65}.Hex()
	assert.True(t, strings.HasPrefix(hex, "#"))
	assert.Len(t, hex, 7)

	// Achromatic intents come out grey: equal channels.
	grey := ColourIntent{Hue: 0, Chroma: 0, Lightness: 60}.Hex()
	assert.Equal(t, grey[1:3], grey[3:5])
	assert.Equal(t, grey[3:5], grey[5:7])
}

// TestFontVariant_Key tests the loader key format
func TestFontVariant_Key(t *testing.T) {
	v := FontVariant{Family: "Playfair Display", Weight: 700, Style: StyleItalic}
	assert.Equal(t, "Playfair Display:700:italic", v.Key())
}

// TestFontVariant_Equal tests field-wise equality
func TestFontVariant_Equal(t *testing.T) {
	a := FontVariant{Family: "Lora", Weight: 400, Style: StyleNormal, Colour: ColourIntent{Hue: 1}}
	b := a
	assert.True(t, a.Equal(b))

	b.Colour.Hue = 2
	assert.False(t, a.Equal(b))
}

// TestClampWeight tests grid snapping into 100..900
func TestClampWeight(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 100},
		{100, 100},
		{149, 100},
		{150, 200},
		{400, 400},
		{850, 900},
		{9999, 900},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampWeight(tt.in), "weight %d", tt.in)
	}
}
