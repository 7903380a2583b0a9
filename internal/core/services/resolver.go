package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/core/ports/driving"
	"github.com/typetide/typetide/internal/logger"
)

// Ensure TieredResolver implements the interface.
var _ driving.ResolverService = (*TieredResolver)(nil)

// noModelVersion tags cache entries written while no inference backend is
// configured. Such entries never match a real model version, so they are
// re-resolved once a backend appears.
const noModelVersion = "none"

// TieredResolver resolves words and phrases through three tiers, short
// circuiting at the first hit:
//
//  1. vetted - curated, human-approved styling
//  2. cache  - previously inferred variants, version-checked
//  3. llm    - fresh inference, validated against the catalog
//
// Resolution never fails: every error path degrades to the fallback
// variant. The only error ResolveWord/ResolvePhrase return is the caller's
// own context cancellation, which the orchestrator treats as an abort
// rather than a failure.
type TieredResolver struct {
	vetted    driven.VettedStore
	cache     driven.CacheStore
	inference driven.VariantInference
	catalog   *domain.Catalog
	settings  domain.ResolverSettings

	limiter *rate.Limiter
	group   singleflight.Group
}

// NewTieredResolver creates a resolver. The vetted store, cache store and
// inference backend are each optional (nil skips that tier).
func NewTieredResolver(
	vetted driven.VettedStore,
	cache driven.CacheStore,
	inference driven.VariantInference,
	catalog *domain.Catalog,
	settings domain.ResolverSettings,
) *TieredResolver {
	if settings.InferenceTimeout <= 0 {
		settings.InferenceTimeout = domain.DefaultInferenceTimeout
	}

	var limiter *rate.Limiter
	if settings.InferenceRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(settings.InferenceRPS), 1)
	}

	return &TieredResolver{
		vetted:    vetted,
		cache:     cache,
		inference: inference,
		catalog:   catalog,
		settings:  settings,
		limiter:   limiter,
	}
}

// Fallback returns the fixed variant used when every tier fails: the
// default family, normal style, neutral colour.
func (r *TieredResolver) Fallback() domain.FontVariant {
	family := domain.DefaultFamily
	weight := 400
	if f, ok := r.catalog.Lookup(domain.DefaultFamily); ok {
		weight = f.SnapWeight(weight)
	}
	return domain.FontVariant{
		Family: family,
		Weight: weight,
		Style:  domain.StyleNormal,
		Colour: domain.ClampColour(domain.ColourIntent{Hue: 0, Chroma: 0, Lightness: 60}),
	}
}

// ResolveWord resolves a single word through the tiers.
func (r *TieredResolver) ResolveWord(ctx context.Context, raw string) (driving.Resolution, error) {
	subject := strings.ToLower(strings.TrimSpace(raw))
	if subject == "" {
		return driving.Resolution{Variant: r.Fallback(), Source: domain.SourceLLM}, domain.ErrInvalidInput
	}

	normalised := domain.NormaliseWord(raw)
	key := domain.WordCacheKey(normalised, domain.IsCapitalised(raw), r.settings.CapSensitive)

	return r.resolveSubject(ctx, subject, key, normalised, driven.InferenceRequest{Subject: raw})
}

// ResolvePhrase resolves a multi-word phrase as a single unit.
func (r *TieredResolver) ResolvePhrase(ctx context.Context, words []string) (driving.Resolution, error) {
	if len(words) == 0 {
		return driving.Resolution{Variant: r.Fallback(), Source: domain.SourceLLM}, domain.ErrInvalidInput
	}

	subject := strings.ToLower(strings.TrimSpace(strings.Join(words, " ")))
	key := domain.PhraseCacheKey(words)

	return r.resolveSubject(ctx, subject, key, subject, driven.InferenceRequest{
		Subject: strings.Join(words, " "),
		Phrase:  true,
	})
}

// resolveSubject runs the tiers for one subject. rankKey feeds the
// popularity ranking; cacheKey addresses the persistent entry.
func (r *TieredResolver) resolveSubject(
	ctx context.Context,
	subject, cacheKey, rankKey string,
	req driven.InferenceRequest,
) (driving.Resolution, error) {
	// Tier 1: vetted.
	if r.vetted != nil {
		if variant, ok := r.vetted.Lookup(subject); ok {
			logger.Debug("resolve %q: vetted hit", subject)
			r.rankAsync(rankKey)
			return driving.Resolution{Variant: variant, Source: domain.SourceVetted}, nil
		}
	}

	// Tier 2: persistent cache.
	if r.cache != nil {
		entry, found, err := r.cache.Get(ctx, cacheKey)
		if err != nil {
			// A broken cache falls through to inference.
			logger.Warn("resolve %q: cache get: %v", subject, err)
		} else if found && entry.Fresh(domain.SchemaVersion, r.modelVersion()) {
			logger.Debug("resolve %q: cache hit", subject)
			r.hitAsync(cacheKey, rankKey)
			return driving.Resolution{Variant: entry.Variant, Source: domain.SourceCache}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		// Already cancelled; do not start or join a flight on its behalf.
		return driving.Resolution{}, err
	}

	// Tier 3: inference, deduplicated across concurrent callers of the
	// same key. The flight runs detached from any single caller's
	// lifetime: a follower with a live context must not inherit the
	// leader's cancellation, so each caller checks only its own context
	// after the shared result lands.
	type result struct {
		variant domain.FontVariant
		fromLLM bool
	}
	v, groupErr, _ := r.group.Do(cacheKey, func() (any, error) {
		variant, ok := r.infer(context.WithoutCancel(ctx), req)
		return result{variant: variant, fromLLM: ok}, nil
	})
	if groupErr != nil {
		return driving.Resolution{}, groupErr
	}
	if err := ctx.Err(); err != nil {
		// This caller cancelled; the shared result may still serve the
		// other waiters.
		return driving.Resolution{}, err
	}

	res := v.(result)
	if res.fromLLM && r.cache != nil {
		r.persistAsync(cacheKey, rankKey, res.variant)
	}
	return driving.Resolution{Variant: res.variant, Source: domain.SourceLLM}, nil
}

// infer calls the inference backend and validates the response. The
// boolean reports a genuine inference result (worth caching) as opposed to
// the fallback variant.
func (r *TieredResolver) infer(ctx context.Context, req driven.InferenceRequest) (domain.FontVariant, bool) {
	if r.inference == nil {
		return r.Fallback(), false
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return r.Fallback(), false
		}
	}

	inferCtx, cancel := context.WithTimeout(ctx, r.settings.InferenceTimeout)
	defer cancel()

	inferred, err := r.inference.InferVariant(inferCtx, req)
	if err != nil {
		logger.Warn("infer %q: %v", req.Subject, err)
		return r.Fallback(), false
	}

	return r.Validate(inferred), true
}

// Validate turns an untrusted inference response into a catalog-legal
// variant. The family resolves exact, then fuzzy (edit distance scaled by
// name length), then any family in the suggested category, then the
// default family. The weight snaps to what the resolved family supports
// and italic downgrades to normal when the family has no italic face.
func (r *TieredResolver) Validate(inferred driven.InferredVariant) domain.FontVariant {
	family, ok := r.catalog.Lookup(inferred.Family)
	if !ok {
		family, ok = r.catalog.FuzzyLookup(inferred.Family)
		if ok {
			logger.Debug("validate: fuzzy matched %q to %q", inferred.Family, family.Name)
		}
	}
	if !ok && inferred.Category != "" {
		family, ok = r.catalog.AnyInCategory(inferred.Category)
	}
	if !ok {
		family, ok = r.catalog.Lookup(domain.DefaultFamily)
	}
	if !ok {
		// Catalog without the default family; take anything rather than
		// emit an unloadable name.
		if families := r.catalog.Families(); len(families) > 0 {
			family = families[0]
		} else {
			family = domain.CatalogFamily{Name: domain.DefaultFamily, Weights: []int{400}}
		}
	}

	style := domain.StyleNormal
	if inferred.Style == string(domain.StyleItalic) && family.HasItalic {
		style = domain.StyleItalic
	}

	colour := domain.ColourIntent{
		Hue:       inferred.Hue,
		Chroma:    inferred.Chroma,
		Lightness: inferred.Lightness,
	}
	// Legacy word-path responses carry HSL saturation instead of chroma.
	if inferred.Saturation != nil && inferred.Chroma == 0 {
		colour.Chroma = *inferred.Saturation / 100 * domain.MaxChroma
	}

	return domain.FontVariant{
		Family: family.Name,
		Weight: family.SnapWeight(domain.ClampWeight(inferred.Weight)),
		Style:  style,
		Colour: domain.ClampColour(colour),
	}
}

// modelVersion names the active inference model for cache tagging.
func (r *TieredResolver) modelVersion() string {
	if r.inference == nil {
		return noModelVersion
	}
	return r.inference.ModelVersion()
}

// persistAsync writes a fresh inference result to the cache without
// blocking the caller. Failures are logged and dropped; the cache is an
// optimisation, not a dependency.
func (r *TieredResolver) persistAsync(cacheKey, rankKey string, variant domain.FontVariant) {
	entry := domain.CacheEntry{
		Variant:       variant,
		SchemaVersion: domain.SchemaVersion,
		ModelVersion:  r.modelVersion(),
		CreatedAt:     time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.cache.Set(ctx, cacheKey, entry, r.settings.CacheTTL); err != nil {
			logger.Warn("cache set %q: %v", cacheKey, err)
		}
		if err := r.cache.RankWord(ctx, rankKey, 1); err != nil {
			logger.Warn("rank %q: %v", rankKey, err)
		}
	}()
}

// hitAsync bumps the hit counter and popularity score for a cache hit.
func (r *TieredResolver) hitAsync(cacheKey, rankKey string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.cache.IncrementHits(ctx, cacheKey); err != nil {
			logger.Warn("hit count %q: %v", cacheKey, err)
		}
		if err := r.cache.RankWord(ctx, rankKey, 1); err != nil {
			logger.Warn("rank %q: %v", rankKey, err)
		}
	}()
}

// rankAsync bumps only the popularity score (vetted hits have no cache
// entry to count against).
func (r *TieredResolver) rankAsync(rankKey string) {
	if r.cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.cache.RankWord(ctx, rankKey, 1); err != nil {
			logger.Warn("rank %q: %v", rankKey, err)
		}
	}()
}
