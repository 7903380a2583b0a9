package domain

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FontStyle is the slant of a font variant.
type FontStyle string

// Supported font styles.
const (
	StyleNormal FontStyle = "normal"
	StyleItalic FontStyle = "italic"
)

// ColourIntent is a perceptual colour in OKLCH. Hue wraps; chroma and
// lightness are clamped, never wrapped.
type ColourIntent struct {
	// Hue is the OKLCH hue angle in degrees, [0, 360).
	Hue float64

	// Chroma is the OKLCH chroma, [0, 0.4].
	Chroma float64

	// Lightness is the OKLCH lightness as a percentage, [30, 90].
	Lightness float64
}

// Colour intent bounds.
const (
	MaxChroma    = 0.4
	MinLightness = 30.0
	MaxLightness = 90.0
)

// ClampColour normalises a colour intent into its legal range: the hue is
// wrapped into [0, 360), chroma and lightness are clamped.
func ClampColour(c ColourIntent) ColourIntent {
	hue := math.Mod(c.Hue, 360)
	if hue < 0 {
		hue += 360
	}
	return ColourIntent{
		Hue:       hue,
		Chroma:    clampFloat(c.Chroma, 0, MaxChroma),
		Lightness: clampFloat(c.Lightness, MinLightness, MaxLightness),
	}
}

// Hex converts the colour intent to an sRGB hex string for rendering.
// Out-of-gamut colours are clamped channel-wise.
func (c ColourIntent) Hex() string {
	l := c.Lightness / 100
	hueRad := c.Hue * math.Pi / 180
	a := c.Chroma * math.Cos(hueRad)
	b := c.Chroma * math.Sin(hueRad)

	// OKLab to LMS, then LMS to linear sRGB (Björn Ottosson's matrices).
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	lc := l_ * l_ * l_
	mc := m_ * m_ * m_
	sc := s_ * s_ * s_

	r := 4.0767416621*lc - 3.3077115913*mc + 0.2309699292*sc
	g := -1.2684380046*lc + 2.6097574011*mc - 0.3413193965*sc
	bb := -0.0041960863*lc - 0.7034186147*mc + 1.7076147010*sc

	return colorful.LinearRgb(r, g, bb).Clamped().Hex()
}

// FontVariant is a complete styling decision for a word or phrase.
// It is immutable once produced; two variants are equal iff all fields match.
type FontVariant struct {
	// Family is the font family name. After validation it always names an
	// entry present in the catalog.
	Family string

	// Weight is the font weight, one of 100..900 in steps of 100.
	Weight int

	// Style is normal or italic.
	Style FontStyle

	// Colour is the perceptual colour intent for this variant.
	Colour ColourIntent
}

// Key returns the canonical variant key "family:weight:style" used by the
// font asset loader to track loaded character sets.
func (v FontVariant) Key() string {
	return fmt.Sprintf("%s:%d:%s", v.Family, v.Weight, v.Style)
}

// Equal reports whether two variants are identical in every field.
func (v FontVariant) Equal(o FontVariant) bool {
	return v == o
}

// ClampWeight snaps an arbitrary weight into the legal 100..900 range on a
// 100 step grid.
func ClampWeight(weight int) int {
	if weight < 100 {
		return 100
	}
	if weight > 900 {
		return 900
	}
	return ((weight + 50) / 100) * 100
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
