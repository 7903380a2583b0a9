package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/logger"
)

// loaderBatch accumulates one variant's requests within a batch window.
type loaderBatch struct {
	variant   domain.FontVariant
	chars     map[rune]struct{} // characters not yet confirmed loaded
	callbacks []func()
}

// FontLoader ensures the glyphs a word needs are usable before the word is
// revealed. Requests arriving within the batch window coalesce into one
// stylesheet fetch per flush, unioning characters per variant; identical
// flush URLs are fetched at most once. Callbacks fire on success and on
// failure alike - a font that will not load must not block the UI, the
// word degrades to unstyled rendering instead.
type FontLoader struct {
	delivery driven.FontDelivery
	window   time.Duration

	mu      sync.Mutex
	loaded  map[string]map[rune]struct{} // variant key -> confirmed characters
	fetched map[string]struct{}          // stylesheet URLs already requested
	pending map[string]*loaderBatch      // variant key -> current batch
	timer   *time.Timer
	closed  bool
}

// NewFontLoader creates a loader flushing at the given batch window.
// A non-positive window uses the default.
func NewFontLoader(delivery driven.FontDelivery, settings domain.LoaderSettings) *FontLoader {
	window := settings.BatchWindow
	if window <= 0 {
		window = domain.DefaultBatchWindow
	}
	return &FontLoader{
		delivery: delivery,
		window:   window,
		loaded:   make(map[string]map[rune]struct{}),
		fetched:  make(map[string]struct{}),
		pending:  make(map[string]*loaderBatch),
	}
}

// RequestFont ensures every character of text is available in the given
// variant, then invokes onLoaded. Characters already confirmed for the
// variant contribute no network load; their callback still waits for the
// next flush so completion order stays uniform.
func (l *FontLoader) RequestFont(variant domain.FontVariant, text string, onLoaded func()) {
	key := variant.Key()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		if onLoaded != nil {
			// Async so a caller holding its own lock cannot deadlock on
			// its completion handler.
			go onLoaded()
		}
		return
	}

	batch, ok := l.pending[key]
	if !ok {
		batch = &loaderBatch{variant: variant, chars: make(map[rune]struct{})}
		l.pending[key] = batch
	}
	for _, r := range text {
		if _, seen := l.loaded[key][r]; !seen {
			batch.chars[r] = struct{}{}
		}
	}
	if onLoaded != nil {
		batch.callbacks = append(batch.callbacks, onLoaded)
	}

	if l.timer == nil {
		l.timer = time.AfterFunc(l.window, l.flush)
	}
	l.mu.Unlock()
}

// flush drains the pending batches into a single stylesheet fetch.
func (l *FontLoader) flush() {
	l.mu.Lock()
	l.timer = nil
	batches := l.pending
	l.pending = make(map[string]*loaderBatch)

	var requests []driven.AssetRequest
	var callbacks []func()
	for _, b := range batches {
		callbacks = append(callbacks, b.callbacks...)
		if len(b.chars) == 0 {
			continue
		}
		requests = append(requests, driven.AssetRequest{
			Family:     b.variant.Family,
			Weight:     b.variant.Weight,
			Italic:     b.variant.Style == domain.StyleItalic,
			Characters: sortedChars(b.chars),
		})
	}

	if len(requests) == 0 {
		l.mu.Unlock()
		fire(callbacks)
		return
	}

	// Stable request order keeps identical flushes producing identical
	// URLs, which is what the dedupe below keys on.
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].Family != requests[j].Family {
			return requests[i].Family < requests[j].Family
		}
		if requests[i].Weight != requests[j].Weight {
			return requests[i].Weight < requests[j].Weight
		}
		return !requests[i].Italic && requests[j].Italic
	})

	url := l.delivery.StylesheetURL(requests)
	if _, done := l.fetched[url]; done {
		// Already injected; treat every requested character as loaded.
		l.markLoadedLocked(batches)
		l.mu.Unlock()
		fire(callbacks)
		return
	}
	l.fetched[url] = struct{}{}
	l.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := l.delivery.Fetch(ctx, url)

		l.mu.Lock()
		if err != nil {
			// Allow a later batch to retry the same URL.
			delete(l.fetched, url)
			logger.Warn("font fetch failed: %v", err)
		} else {
			l.markLoadedLocked(batches)
		}
		l.mu.Unlock()

		// Callbacks fire even on failure; a missing font never blocks
		// the reveal.
		fire(callbacks)
	}()
}

// markLoadedLocked records every batched character as confirmed for its
// variant. Caller holds l.mu.
func (l *FontLoader) markLoadedLocked(batches map[string]*loaderBatch) {
	for key, b := range batches {
		set, ok := l.loaded[key]
		if !ok {
			set = make(map[rune]struct{})
			l.loaded[key] = set
		}
		for r := range b.chars {
			set[r] = struct{}{}
		}
	}
}

// Loaded reports whether every character of text is confirmed loaded for
// the variant.
func (l *FontLoader) Loaded(variant domain.FontVariant, text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	set := l.loaded[variant.Key()]
	for _, r := range text {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}

// Close stops the batch timer. Pending callbacks fire immediately so no
// caller is left waiting on a loader that will never flush.
func (l *FontLoader) Close() error {
	l.mu.Lock()
	l.closed = true
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	var callbacks []func()
	for _, b := range l.pending {
		callbacks = append(callbacks, b.callbacks...)
	}
	l.pending = make(map[string]*loaderBatch)
	l.mu.Unlock()

	fire(callbacks)
	return nil
}

func fire(callbacks []func()) {
	for _, fn := range callbacks {
		if fn != nil {
			fn()
		}
	}
}

func sortedChars(set map[rune]struct{}) string {
	runes := make([]rune, 0, len(set))
	for r := range set {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}
