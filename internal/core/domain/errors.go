package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInferenceUnavailable indicates no inference backend is configured
	// or reachable. Resolution degrades to the fallback variant.
	ErrInferenceUnavailable = errors.New("inference unavailable")

	// ErrCacheUnavailable indicates the persistent cache store failed.
	// Lookups fall through to inference; writes are dropped.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrStaleResult indicates a resolution arrived for a superseded
	// request. It is discarded silently, never surfaced.
	ErrStaleResult = errors.New("stale result")

	// ErrUnknownFamily indicates an inference response named a font family
	// absent from the catalog, before fallback repair.
	ErrUnknownFamily = errors.New("unknown font family")

	// ErrFontDelivery indicates the font delivery service request failed.
	// Load callbacks still fire; rendering degrades to unstyled text.
	ErrFontDelivery = errors.New("font delivery failed")
)
