// Package sqlite provides the persistent cache store backed by SQLite.
// The database is treated as an opaque key-value capability: replication
// and eviction are out of scope, invalidation happens by schema/model
// version mismatch on read.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// schema is applied on open. Variant entries, detection results and the
// popularity ranking live in separate tables of the same database.
const schema = `
CREATE TABLE IF NOT EXISTS variant_cache (
	key            TEXT PRIMARY KEY,
	family         TEXT NOT NULL,
	weight         INTEGER NOT NULL,
	style          TEXT NOT NULL,
	hue            REAL NOT NULL,
	chroma         REAL NOT NULL,
	lightness      REAL NOT NULL,
	schema_version INTEGER NOT NULL,
	model_version  TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	hit_count      INTEGER NOT NULL DEFAULT 0,
	expires_at     TEXT
);

CREATE TABLE IF NOT EXISTS detection_cache (
	key        TEXT PRIMARY KEY,
	phrases    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	expires_at TEXT
);

CREATE TABLE IF NOT EXISTS word_rank (
	word  TEXT PRIMARY KEY,
	score REAL NOT NULL DEFAULT 0
);
`

// CacheStore is a SQLite-backed implementation of driven.CacheStore.
type CacheStore struct {
	db   *sql.DB
	path string
}

// NewCacheStore opens (or creates) the cache database in dataDir.
// If dataDir is empty, defaults to ~/.typetide/data.
func NewCacheStore(dataDir string) (*CacheStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".typetide", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// WAL mode for concurrent readers while the fire-and-forget writers run.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &CacheStore{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *CacheStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *CacheStore) Path() string {
	return s.path
}

// Get retrieves an entry by key. Expired entries read as absent.
func (s *CacheStore) Get(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT family, weight, style, hue, chroma, lightness,
		       schema_version, model_version, created_at, hit_count, expires_at
		FROM variant_cache WHERE key = ?`, key)

	var (
		entry     domain.CacheEntry
		style     string
		createdAt string
		expiresAt sql.NullString
	)
	err := row.Scan(
		&entry.Variant.Family, &entry.Variant.Weight, &style,
		&entry.Variant.Colour.Hue, &entry.Variant.Colour.Chroma, &entry.Variant.Colour.Lightness,
		&entry.SchemaVersion, &entry.ModelVersion, &createdAt, &entry.HitCount, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}

	if expiredText(expiresAt) {
		return domain.CacheEntry{}, false, nil
	}

	entry.Variant.Style = domain.FontStyle(style)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		entry.CreatedAt = t
	}
	return entry, true, nil
}

// Set stores an entry under key, replacing any previous value.
// A zero ttl stores without expiry.
func (s *CacheStore) Set(ctx context.Context, key string, entry domain.CacheEntry, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO variant_cache
			(key, family, weight, style, hue, chroma, lightness,
			 schema_version, model_version, created_at, hit_count, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			family = excluded.family,
			weight = excluded.weight,
			style = excluded.style,
			hue = excluded.hue,
			chroma = excluded.chroma,
			lightness = excluded.lightness,
			schema_version = excluded.schema_version,
			model_version = excluded.model_version,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		key,
		entry.Variant.Family, entry.Variant.Weight, string(entry.Variant.Style),
		entry.Variant.Colour.Hue, entry.Variant.Colour.Chroma, entry.Variant.Colour.Lightness,
		entry.SchemaVersion, entry.ModelVersion,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano), entry.HitCount, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// IncrementHits bumps the hit counter of an existing entry.
// A missing key is a no-op.
func (s *CacheStore) IncrementHits(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE variant_cache SET hit_count = hit_count + 1 WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// RankWord adds delta to the word's popularity score.
func (s *CacheStore) RankWord(ctx context.Context, word string, delta float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO word_rank (word, score) VALUES (?, ?)
		ON CONFLICT(word) DO UPDATE SET score = score + excluded.score`,
		word, delta)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// TopWords returns the n highest-scored words, descending.
func (s *CacheStore) TopWords(ctx context.Context, n int) ([]driven.RankedWord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, score FROM word_rank ORDER BY score DESC, word ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	defer rows.Close()

	var ranked []driven.RankedWord
	for rows.Next() {
		var rw driven.RankedWord
		if err := rows.Scan(&rw.Word, &rw.Score); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
		}
		ranked = append(ranked, rw)
	}
	return ranked, rows.Err()
}

// GetDetection retrieves a cached detection result. Presence is reported
// separately so a stored empty result is distinct from "never checked".
func (s *CacheStore) GetDetection(ctx context.Context, key string) ([]domain.DetectedPhrase, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT phrases, expires_at FROM detection_cache WHERE key = ?`, key)

	var (
		payload   string
		expiresAt sql.NullString
	)
	err := row.Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	if expiredText(expiresAt) {
		return nil, false, nil
	}

	var phrases []domain.DetectedPhrase
	if err := json.Unmarshal([]byte(payload), &phrases); err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	if phrases == nil {
		phrases = []domain.DetectedPhrase{}
	}
	return phrases, true, nil
}

// SetDetection stores a detection result, empty included.
func (s *CacheStore) SetDetection(ctx context.Context, key string, phrases []domain.DetectedPhrase, ttl time.Duration) error {
	if phrases == nil {
		phrases = []domain.DetectedPhrase{}
	}
	payload, err := json.Marshal(phrases)
	if err != nil {
		return fmt.Errorf("encoding phrases: %w", err)
	}

	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO detection_cache (key, phrases, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			phrases = excluded.phrases,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		key, string(payload), time.Now().UTC().Format(time.RFC3339Nano), expiresAt)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Stats summarises the store contents. Expired rows do not count.
func (s *CacheStore) Stats(ctx context.Context) (driven.CacheStats, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var stats driven.CacheStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(hit_count), 0)
		FROM variant_cache
		WHERE expires_at IS NULL OR expires_at > ?`, now).
		Scan(&stats.Entries, &stats.Hits)
	if err != nil {
		return driven.CacheStats{}, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM detection_cache
		WHERE expires_at IS NULL OR expires_at > ?`, now).
		Scan(&stats.Detections)
	if err != nil {
		return driven.CacheStats{}, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	return stats, nil
}

func expiredText(at sql.NullString) bool {
	if !at.Valid {
		return false
	}
	t, err := time.Parse(time.RFC3339Nano, at.String)
	return err == nil && time.Now().After(t)
}
