package driven

import "context"

// AssetRequest names one variant and the characters needed from it, as
// aggregated by the font loader for a single flush.
type AssetRequest struct {
	// Family is the font family name.
	Family string

	// Weight is the font weight.
	Weight int

	// Italic selects the italic face.
	Italic bool

	// Characters is the deduplicated set of characters to load, sorted.
	Characters string
}

// FontDelivery fetches font assets from the delivery service. One flush
// maps to one stylesheet URL; once Fetch returns without error all
// requested characters count as loaded for their variants, regardless of
// per-glyph granularity.
type FontDelivery interface {
	// StylesheetURL builds the single URL covering every request of a
	// flush. Identical request sets must produce identical URLs so the
	// loader can deduplicate fetches.
	StylesheetURL(requests []AssetRequest) string

	// Fetch retrieves and applies the stylesheet, blocking until the
	// assets are usable or the request fails.
	Fetch(ctx context.Context, url string) error
}
