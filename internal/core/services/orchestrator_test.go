package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typetide/typetide/internal/adapters/driven/storage/memory"
	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/core/ports/driving"
)

const testDebounce = 10 * time.Millisecond

func testOrchestrator(t *testing.T, resolver *stubResolver, phrases *stubPhrases, fastCache *memory.CacheStore) *Orchestrator {
	t.Helper()
	delivery := &stubDelivery{}
	loader := NewFontLoader(delivery, domain.LoaderSettings{BatchWindow: testWindow})
	t.Cleanup(func() { loader.Close() })

	// Typed nil pointers must not reach the interface parameters, or the
	// orchestrator would see them as configured services.
	var phraseSvc driving.PhraseService
	if phrases != nil {
		phraseSvc = phrases
	}
	var cache driven.CacheStore
	if fastCache != nil {
		cache = fastCache
	}

	o := NewOrchestrator(resolver, phraseSvc, loader, cache, domain.OrchestratorSettings{Debounce: testDebounce})
	t.Cleanup(func() { o.Close() })
	return o
}

func allResolved(state domain.InputState) bool {
	if len(state.Words) == 0 {
		return false
	}
	for _, ws := range state.Words {
		if ws.Resolution.Status != domain.ResolutionResolved {
			return false
		}
	}
	return true
}

func TestSetText_ResolvesAfterDebounce(t *testing.T) {
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 700}}
	o := testOrchestrator(t, resolver, nil, nil)

	o.SetText("the quick fox")

	// Words appear immediately, pending.
	snap := o.Snapshot()
	require.Len(t, snap.Words, 3)
	for _, ws := range snap.Words {
		assert.Equal(t, domain.ResolutionPending, ws.Resolution.Status)
	}

	assert.Eventually(t, func() bool {
		return allResolved(o.Snapshot())
	}, eventually, time.Millisecond)

	snap = o.Snapshot()
	for _, ws := range snap.Words {
		assert.Equal(t, "Lora", ws.Resolution.Variant.Family)
		assert.Equal(t, domain.SourceLLM, ws.Resolution.Source)
	}

	// Glyphs flow through the loader and flip the font-loaded flag.
	assert.Eventually(t, func() bool {
		for _, ws := range o.Snapshot().Words {
			if !ws.FontLoaded {
				return false
			}
		}
		return true
	}, eventually, time.Millisecond)
}

func TestSetText_DebounceResetsOnEdit(t *testing.T) {
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 400}}
	o := testOrchestrator(t, resolver, nil, nil)

	// Keep typing faster than the debounce; nothing resolves meanwhile.
	for i := 0; i < 5; i++ {
		o.SetText("draft")
		time.Sleep(testDebounce / 2)
	}
	assert.Equal(t, 0, resolver.wordCallCount())

	assert.Eventually(t, func() bool {
		return allResolved(o.Snapshot())
	}, eventually, time.Millisecond)
	assert.Equal(t, 1, resolver.wordCallCount())
}

func TestSetText_EditPreservesResolvedWords(t *testing.T) {
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 400}}
	o := testOrchestrator(t, resolver, nil, nil)

	o.SetText("echo")
	assert.Eventually(t, func() bool {
		return allResolved(o.Snapshot())
	}, eventually, time.Millisecond)

	echoID := o.Snapshot().Words[0].Token.ID

	// Appending a word re-tokenizes but the settled word keeps identity
	// and resolution with no flicker back through pending.
	o.SetText("echo bravo")
	snap := o.Snapshot()
	require.Len(t, snap.Words, 2)
	assert.Equal(t, echoID, snap.Words[0].Token.ID)
	assert.Equal(t, domain.ResolutionResolved, snap.Words[0].Resolution.Status)
	assert.Equal(t, domain.ResolutionPending, snap.Words[1].Resolution.Status)

	assert.Eventually(t, func() bool {
		return allResolved(o.Snapshot())
	}, eventually, time.Millisecond)
	assert.Equal(t, 2, resolver.wordCallCount())
}

func TestSetText_RemovedWordCancelsResolution(t *testing.T) {
	resolver := &stubResolver{block: true}
	o := testOrchestrator(t, resolver, nil, nil)

	o.SetText("alpha")
	assert.Eventually(t, func() bool {
		return resolver.wordCallCount() == 1
	}, eventually, time.Millisecond)

	// The word vanishes while its resolution is in flight.
	o.SetText("")
	assert.Eventually(t, func() bool {
		return resolver.cancelCount() == 1
	}, eventually, time.Millisecond)
	assert.Empty(t, o.Snapshot().Words)
}

func TestProcess_FastCacheResolvesInstantly(t *testing.T) {
	fastCache := memory.NewCacheStore()
	require.NoError(t, fastCache.Set(context.Background(),
		domain.WordCacheKey("fox", false, false),
		domain.CacheEntry{
			Variant:       domain.FontVariant{Family: "Oswald", Weight: 600},
			SchemaVersion: domain.SchemaVersion,
		}, 0))

	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 400}}
	o := testOrchestrator(t, resolver, nil, fastCache)

	o.SetText("fox jumps")

	assert.Eventually(t, func() bool {
		return allResolved(o.Snapshot())
	}, eventually, time.Millisecond)

	snap := o.Snapshot()
	// The cached word resolved synchronously, marked instant; only the
	// unknown word went through the resolver.
	assert.Equal(t, "Oswald", snap.Words[0].Resolution.Variant.Family)
	assert.Equal(t, domain.InstantRequestID, snap.Words[0].Resolution.RequestID)
	assert.Equal(t, domain.SourceCache, snap.Words[0].Resolution.Source)
	assert.Equal(t, 1, resolver.wordCallCount())
}

func TestProcess_ResolvedWordPopulatesFastCache(t *testing.T) {
	fastCache := memory.NewCacheStore()
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 400}}
	o := testOrchestrator(t, resolver, nil, fastCache)

	o.SetText("echo")
	assert.Eventually(t, func() bool {
		_, found, err := fastCache.Get(context.Background(), domain.WordCacheKey("echo", false, false))
		return err == nil && found
	}, eventually, time.Millisecond)
}

func TestProcess_PhraseMembersShareGroupAndVariant(t *testing.T) {
	phrases := &stubPhrases{phrases: []domain.DetectedPhrase{
		{Words: []string{"george", "washington"}, StartIndex: 0, EndIndex: 1, Reason: "historical figure"},
	}}
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 500}}
	o := testOrchestrator(t, resolver, phrases, nil)

	o.SetText("george washington slept")

	assert.Eventually(t, func() bool {
		return allResolved(o.Snapshot())
	}, eventually, time.Millisecond)

	snap := o.Snapshot()
	require.Len(t, snap.Words, 3)

	// Both members carry the same group and the phrase variant.
	assert.NotEmpty(t, snap.Words[0].PhraseGroupID)
	assert.Equal(t, snap.Words[0].PhraseGroupID, snap.Words[1].PhraseGroupID)
	assert.Equal(t, snap.Words[0].Resolution.Variant, snap.Words[1].Resolution.Variant)
	assert.Empty(t, snap.Words[2].PhraseGroupID)

	// One phrase resolution plus one individual word.
	resolver.mu.Lock()
	phraseCalls, wordCalls := len(resolver.phraseCalls), len(resolver.wordCalls)
	resolver.mu.Unlock()
	assert.Equal(t, 1, phraseCalls)
	assert.Equal(t, 1, wordCalls)
}

func TestProcess_PhraseOverlayCoversFastCachedMember(t *testing.T) {
	fastCache := memory.NewCacheStore()
	require.NoError(t, fastCache.Set(context.Background(),
		domain.WordCacheKey("george", false, false),
		domain.CacheEntry{
			Variant:       domain.FontVariant{Family: "Oswald", Weight: 600},
			SchemaVersion: domain.SchemaVersion,
		}, 0))

	phrases := &stubPhrases{phrases: []domain.DetectedPhrase{
		{Words: []string{"george", "washington"}, StartIndex: 0, EndIndex: 1, Reason: "historical figure"},
	}}
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 500}}
	o := testOrchestrator(t, resolver, phrases, fastCache)

	o.SetText("george washington")

	assert.Eventually(t, func() bool {
		snap := o.Snapshot()
		return allResolved(snap) && snap.Words[0].PhraseGroupID != ""
	}, eventually, time.Millisecond)

	// The fast cache settles the first member before detection reports
	// the phrase, yet the overlay lands on both members as one unit:
	// same group, same variant.
	snap := o.Snapshot()
	require.Len(t, snap.Words, 2)
	assert.Equal(t, snap.Words[0].PhraseGroupID, snap.Words[1].PhraseGroupID)
	assert.Equal(t, "Lora", snap.Words[0].Resolution.Variant.Family)
	assert.Equal(t, snap.Words[0].Resolution.Variant, snap.Words[1].Resolution.Variant)
	assert.Equal(t, 1, resolver.phraseCallCount())
	assert.Equal(t, 0, resolver.wordCallCount())
}

func TestProcess_StalePhraseDetectionDiscarded(t *testing.T) {
	phrases := &stubPhrases{
		phrases: []domain.DetectedPhrase{
			{Words: []string{"george", "washington"}, StartIndex: 0, EndIndex: 1},
		},
		delay: 10 * testDebounce,
	}
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 500}}
	o := testOrchestrator(t, resolver, phrases, nil)

	o.SetText("george washington")
	assert.Eventually(t, func() bool {
		phrases.mu.Lock()
		defer phrases.mu.Unlock()
		return phrases.calls == 1
	}, eventually, time.Millisecond)

	// The text changes while detection is still in flight; the detected
	// span belongs to a word list that no longer exists.
	o.SetText("solo")

	assert.Eventually(t, func() bool {
		return allResolved(o.Snapshot())
	}, eventually, time.Millisecond)

	// Let the stale detection land; it must be dropped, not applied to
	// the replacement word list.
	time.Sleep(12 * testDebounce)

	snap := o.Snapshot()
	require.Len(t, snap.Words, 1)
	assert.Empty(t, snap.Words[0].PhraseGroupID)
	assert.Equal(t, "Lora", snap.Words[0].Resolution.Variant.Family)
	assert.Equal(t, 0, resolver.phraseCallCount())
}

func TestProcess_SlowWordSurvivesLaterTyping(t *testing.T) {
	resolver := &stubResolver{
		variant: domain.FontVariant{Family: "Lora", Weight: 400},
		delay:   5 * testDebounce,
	}
	o := testOrchestrator(t, resolver, nil, nil)

	o.SetText("alpha")
	assert.Eventually(t, func() bool {
		return resolver.wordCallCount() == 1
	}, eventually, time.Millisecond)

	// A new word arrives while the first resolution is in flight. The
	// cycle moves on, but the surviving token's request stays valid and
	// its result still lands; only word-list replacement is staleness,
	// not later typing.
	o.SetText("alpha beta")

	assert.Eventually(t, func() bool {
		return allResolved(o.Snapshot())
	}, eventually, time.Millisecond)

	snap := o.Snapshot()
	require.Len(t, snap.Words, 2)
	assert.Equal(t, "Lora", snap.Words[0].Resolution.Variant.Family)
	assert.Equal(t, "Lora", snap.Words[1].Resolution.Variant.Family)
	assert.Equal(t, 2, resolver.wordCallCount())
}

func TestUpdateVariant_LeavesPhraseGroup(t *testing.T) {
	phrases := &stubPhrases{phrases: []domain.DetectedPhrase{
		{Words: []string{"new", "york"}, StartIndex: 0, EndIndex: 1},
	}}
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 500}}
	o := testOrchestrator(t, resolver, phrases, nil)

	o.SetText("new york")
	assert.Eventually(t, func() bool {
		snap := o.Snapshot()
		return allResolved(snap) && snap.Words[0].PhraseGroupID != ""
	}, eventually, time.Millisecond)

	target := o.Snapshot().Words[0]
	override := domain.FontVariant{Family: "Oswald", Weight: 600}
	o.UpdateVariant(target.Token.ID, override)

	snap := o.Snapshot()
	assert.Equal(t, override, snap.Words[0].Resolution.Variant)
	assert.Empty(t, snap.Words[0].PhraseGroupID)
	// The sibling keeps its group membership.
	assert.NotEmpty(t, snap.Words[1].PhraseGroupID)
}

func TestPhraseGroupReRoll(t *testing.T) {
	phrases := &stubPhrases{phrases: []domain.DetectedPhrase{
		{Words: []string{"new", "york"}, StartIndex: 0, EndIndex: 1},
	}}
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 500}}
	o := testOrchestrator(t, resolver, phrases, nil)

	o.SetText("new york")
	assert.Eventually(t, func() bool {
		snap := o.Snapshot()
		return allResolved(snap) && snap.Words[0].PhraseGroupID != ""
	}, eventually, time.Millisecond)

	groupID := o.Snapshot().Words[0].PhraseGroupID

	o.SetPhraseLoading(groupID)
	for _, ws := range o.Snapshot().Words {
		assert.Equal(t, domain.ResolutionLoading, ws.Resolution.Status)
	}

	next := domain.FontVariant{Family: "Oswald", Weight: 700}
	o.ResolvePhraseGroup(groupID, next)
	for _, ws := range o.Snapshot().Words {
		assert.Equal(t, domain.ResolutionResolved, ws.Resolution.Status)
		assert.Equal(t, next, ws.Resolution.Variant)
		assert.False(t, ws.FontLoaded)
	}
}

func TestSubscribe(t *testing.T) {
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 400}}
	o := testOrchestrator(t, resolver, nil, nil)

	var mu sync.Mutex
	var updates []int
	cancel := o.Subscribe(func(state domain.InputState) {
		mu.Lock()
		updates = append(updates, len(state.Words))
		mu.Unlock()
	})

	o.SetText("one two")
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(updates) > 0 && updates[0] == 2
	}, eventually, time.Millisecond)

	// Wait for full quiescence so no in-flight notification races the
	// cancelled-subscriber assertion below.
	assert.Eventually(t, func() bool {
		for _, ws := range o.Snapshot().Words {
			if ws.Resolution.Status != domain.ResolutionResolved || !ws.FontLoaded {
				return false
			}
		}
		return true
	}, eventually, time.Millisecond)
	time.Sleep(2 * testWindow)

	cancel()
	mu.Lock()
	seen := len(updates)
	mu.Unlock()

	o.SetText("three")
	time.Sleep(2 * testDebounce)
	mu.Lock()
	assert.Equal(t, seen, len(updates))
	mu.Unlock()
}

func TestClose_StopsProcessing(t *testing.T) {
	resolver := &stubResolver{variant: domain.FontVariant{Family: "Lora", Weight: 400}}
	o := testOrchestrator(t, resolver, nil, nil)

	o.SetText("word")
	require.NoError(t, o.Close())

	time.Sleep(2 * testDebounce)
	assert.Equal(t, 0, resolver.wordCallCount())

	// Closed handlers ignore further input; the last state stands.
	o.SetText("more words")
	snap := o.Snapshot()
	assert.Equal(t, "word", snap.RawText)
	assert.Len(t, snap.Words, 1)
}
