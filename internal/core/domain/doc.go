// Package domain defines the core business entities for Typetide.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types of the word-styling pipeline:
//
//   - WordToken: A stable, identity-bearing token from the input text
//   - FontVariant: A complete styling decision (family, weight, style, colour)
//   - WordResolution: The per-token resolution state machine
//   - WordState / InputState: The reconciled state exposed to rendering
//   - DetectedPhrase: A contiguous token run styled as one unit
//   - CacheEntry: The persisted form of a resolved variant
//   - Catalog: The set of font families a variant may legally name
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, plus the value-level utilities
//     google/uuid (token identity), agnivade/levenshtein (catalog fuzzy
//     matching) and lucasb-eyer/go-colorful (colour conversion)
//   - Cannot Import: Any other internal/ package
package domain
