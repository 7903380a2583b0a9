package driven

import (
	"context"
	"time"

	"github.com/typetide/typetide/internal/core/domain"
)

// RankedWord is one entry of the resolution popularity ranking.
type RankedWord struct {
	// Word is the normalised word or phrase text.
	Word string

	// Score is the accumulated resolution count.
	Score float64
}

// CacheStats summarises the contents of a cache store.
type CacheStats struct {
	// Entries is the number of live variant entries.
	Entries int

	// Detections is the number of cached detection results.
	Detections int

	// Hits is the sum of all entry hit counters.
	Hits int
}

// CacheStore is the persistent variant cache. The backing store is an
// opaque key-value capability; replication and eviction are the store
// operator's concern. Entries are invalidated by schema/model version
// mismatch, never evicted explicitly by the core.
//
// Writes for the same key are idempotent and commutative: values for one
// word under one schema+model version are deterministic enough that
// last-write-wins needs no locking.
type CacheStore interface {
	// Get retrieves an entry by key. The boolean reports presence; version
	// checking is the caller's job.
	Get(ctx context.Context, key string) (domain.CacheEntry, bool, error)

	// Set stores an entry under key with a time-to-live. A zero ttl stores
	// without expiry.
	Set(ctx context.Context, key string, entry domain.CacheEntry, ttl time.Duration) error

	// IncrementHits bumps the hit counter of an existing entry. A missing
	// key is not an error. This is a non-critical metric.
	IncrementHits(ctx context.Context, key string) error

	// RankWord adds delta to the word's popularity score in the ranking
	// sorted set.
	RankWord(ctx context.Context, word string, delta float64) error

	// TopWords returns the n highest-scored ranking entries, descending.
	TopWords(ctx context.Context, n int) ([]RankedWord, error)

	// GetDetection retrieves a cached phrase-detection result. The boolean
	// distinguishes "known result" (possibly empty) from "never checked",
	// so known-empty inputs are not re-queried.
	GetDetection(ctx context.Context, key string) ([]domain.DetectedPhrase, bool, error)

	// SetDetection stores a phrase-detection result. An empty slice is a
	// valid, distinct outcome and must round-trip as present.
	SetDetection(ctx context.Context, key string, phrases []domain.DetectedPhrase, ttl time.Duration) error

	// Stats summarises the store contents.
	Stats(ctx context.Context) (CacheStats, error)

	// Close releases store resources.
	Close() error
}
