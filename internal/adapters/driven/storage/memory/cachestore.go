// Package memory provides in-memory implementations of the driven storage
// ports. The cache store doubles as the orchestrator's synchronous
// client-side cache and as the test double for the persistent store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

type cachedEntry struct {
	entry     domain.CacheEntry
	expiresAt time.Time // zero means no expiry
}

type cachedDetection struct {
	phrases   []domain.DetectedPhrase
	expiresAt time.Time
}

// CacheStore is an in-memory implementation of driven.CacheStore.
type CacheStore struct {
	mu         sync.RWMutex
	entries    map[string]cachedEntry
	detections map[string]cachedDetection
	ranks      map[string]float64
}

// NewCacheStore creates an empty in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		entries:    make(map[string]cachedEntry),
		detections: make(map[string]cachedDetection),
		ranks:      make(map[string]float64),
	}
}

// Get retrieves an entry by key. Expired entries read as absent.
func (s *CacheStore) Get(_ context.Context, key string) (domain.CacheEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.entries[key]
	if !ok || expired(c.expiresAt) {
		return domain.CacheEntry{}, false, nil
	}
	return c.entry, true, nil
}

// Set stores an entry under key. A zero ttl stores without expiry.
func (s *CacheStore) Set(_ context.Context, key string, entry domain.CacheEntry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = cachedEntry{entry: entry, expiresAt: expiresAt}
	return nil
}

// IncrementHits bumps the hit counter of an existing entry.
// A missing key is a no-op.
func (s *CacheStore) IncrementHits(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.entries[key]
	if !ok {
		return nil
	}
	c.entry.HitCount++
	s.entries[key] = c
	return nil
}

// RankWord adds delta to the word's popularity score.
func (s *CacheStore) RankWord(_ context.Context, word string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranks[word] += delta
	return nil
}

// TopWords returns the n highest-scored words, descending. Ties order by
// word for determinism.
func (s *CacheStore) TopWords(_ context.Context, n int) ([]driven.RankedWord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]driven.RankedWord, 0, len(s.ranks))
	for word, score := range s.ranks {
		ranked = append(ranked, driven.RankedWord{Word: word, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Word < ranked[j].Word
	})
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// GetDetection retrieves a cached detection result. Presence is reported
// separately so a stored empty result is distinct from "never checked".
func (s *CacheStore) GetDetection(_ context.Context, key string) ([]domain.DetectedPhrase, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.detections[key]
	if !ok || expired(c.expiresAt) {
		return nil, false, nil
	}
	out := make([]domain.DetectedPhrase, len(c.phrases))
	copy(out, c.phrases)
	return out, true, nil
}

// SetDetection stores a detection result, empty included.
func (s *CacheStore) SetDetection(_ context.Context, key string, phrases []domain.DetectedPhrase, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	stored := make([]domain.DetectedPhrase, len(phrases))
	copy(stored, phrases)
	s.detections[key] = cachedDetection{phrases: stored, expiresAt: expiresAt}
	return nil
}

// Stats summarises the store contents. Expired entries do not count.
func (s *CacheStore) Stats(_ context.Context) (driven.CacheStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats driven.CacheStats
	for _, c := range s.entries {
		if expired(c.expiresAt) {
			continue
		}
		stats.Entries++
		stats.Hits += c.entry.HitCount
	}
	for _, c := range s.detections {
		if !expired(c.expiresAt) {
			stats.Detections++
		}
	}
	return stats, nil
}

// Close releases nothing for the memory store.
func (s *CacheStore) Close() error {
	return nil
}

func expired(at time.Time) bool {
	return !at.IsZero() && time.Now().After(at)
}
