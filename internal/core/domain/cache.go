package domain

import (
	"strconv"
	"strings"
	"time"
)

// SchemaVersion tags cache entries with the variant schema that produced
// them. Bumping it invalidates every existing entry without an explicit
// eviction pass: mismatched entries read as absent.
const SchemaVersion = 3

// DetectionVersion tags cached phrase-detection results. Bumped when the
// detection prompt or contract changes.
const DetectionVersion = 2

// Cache key prefixes. Word and phrase resolutions and detection results
// live in separate namespaces of the same store.
const (
	wordKeyPrefix      = "word:"
	phraseKeyPrefix    = "phrase:"
	detectionKeyPrefix = "detect:"
)

// CacheEntry is the persisted form of a resolved variant. Entries are
// immutable after creation except for the hit counter.
type CacheEntry struct {
	// Variant is the stored styling decision.
	Variant FontVariant

	// SchemaVersion is the variant schema active when the entry was written.
	SchemaVersion int

	// ModelVersion names the inference model that produced the variant.
	ModelVersion string

	// CreatedAt is when the entry was first written.
	CreatedAt time.Time

	// HitCount is the number of cache hits served from this entry.
	HitCount int
}

// Fresh reports whether the entry matches the active schema and model
// versions. A stale entry is treated as absent, forcing re-resolution.
func (e CacheEntry) Fresh(schemaVersion int, modelVersion string) bool {
	return e.SchemaVersion == schemaVersion && e.ModelVersion == modelVersion
}

// WordCacheKey builds the cache key for a single word. With capSensitive
// set, capitalised words key separately ("Paris" vs "paris") so the two
// spellings may carry distinct styling.
func WordCacheKey(normalised string, capitalised, capSensitive bool) string {
	key := wordKeyPrefix + normalised
	if capSensitive && capitalised {
		key += ":cap"
	}
	return key
}

// PhraseCacheKey builds the cache key for a phrase resolution: lowercased
// member words, space-joined.
func PhraseCacheKey(words []string) string {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	return phraseKeyPrefix + strings.Join(lowered, " ")
}

// DetectionCacheKey builds the cache key for a phrase-detection result:
// the exact ordered word list, pipe-joined, under the detection version.
// The exact join means detection for ["new","york"] never aliases with
// ["new york"].
func DetectionCacheKey(words []string, version int) string {
	return detectionKeyPrefix + "v" + strconv.Itoa(version) + ":" + strings.Join(words, "|")
}
