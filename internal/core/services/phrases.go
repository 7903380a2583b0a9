package services

import (
	"context"
	"time"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/core/ports/driving"
	"github.com/typetide/typetide/internal/logger"
)

// Ensure PhraseDetector implements the interface.
var _ driving.PhraseService = (*PhraseDetector)(nil)

// PhraseDetector finds contiguous word runs that form one cultural or
// semantic unit (named entities, fixed idioms, established compounds).
// Detection results are cached by the exact ordered word list, and a
// known-empty result is a distinct outcome from "never checked" so
// known-empty inputs are not re-queried. Detection never fails the
// pipeline: inference errors yield an empty list.
type PhraseDetector struct {
	cache     driven.CacheStore
	inference driven.VariantInference
	timeout   time.Duration
}

// NewPhraseDetector creates a detector. Both the cache and the inference
// backend are optional (nil degrades to "no phrases").
func NewPhraseDetector(cache driven.CacheStore, inference driven.VariantInference) *PhraseDetector {
	return &PhraseDetector{
		cache:     cache,
		inference: inference,
		timeout:   domain.DefaultInferenceTimeout,
	}
}

// DetectPhrases returns validated phrases for the given normalised words.
// Detection only applies to two or more words.
func (d *PhraseDetector) DetectPhrases(ctx context.Context, words []string) ([]domain.DetectedPhrase, error) {
	if len(words) < 2 {
		return nil, nil
	}

	key := domain.DetectionCacheKey(words, domain.DetectionVersion)

	if d.cache != nil {
		phrases, found, err := d.cache.GetDetection(ctx, key)
		if err != nil {
			logger.Warn("detect: cache get: %v", err)
		} else if found {
			// Cached results were validated before storing, but the word
			// count check is cheap and the store is not trusted blindly.
			return domain.ValidPhrases(phrases, len(words)), nil
		}
	}

	if d.inference == nil {
		return nil, nil
	}

	detectCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	raw, err := d.inference.DetectPhrases(detectCtx, words)
	if err != nil {
		// No retry: treated as "no phrases", never fatal. The result is
		// deliberately not cached so a later cycle may try again.
		logger.Warn("detect: inference: %v", err)
		return nil, nil
	}

	phrases := domain.ValidPhrases(raw, len(words))
	logger.Debug("detect: %d phrase(s) in %d word(s)", len(phrases), len(words))

	if d.cache != nil {
		d.storeAsync(key, phrases)
	}
	return phrases, nil
}

// storeAsync caches a detection result, empty results included, without
// blocking the caller.
func (d *PhraseDetector) storeAsync(key string, phrases []domain.DetectedPhrase) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.cache.SetDetection(ctx, key, phrases, 0); err != nil {
			logger.Warn("detect: cache set: %v", err)
		}
	}()
}
