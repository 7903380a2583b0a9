package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/core/ports/driving"
)

// newTestCatalog builds a small catalog covering every category.
func newTestCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.CatalogFamily{
		{Name: "Inter", Category: domain.CategorySans, Weights: []int{100, 400, 700, 900}, HasItalic: true},
		{Name: "Lora", Category: domain.CategorySerif, Weights: []int{400, 500, 600, 700}, HasItalic: true},
		{Name: "Oswald", Category: domain.CategoryDisplay, Weights: []int{200, 400, 600, 700}},
		{Name: "Caveat", Category: domain.CategoryHandwriting, Weights: []int{400, 700}},
		{Name: "JetBrains Mono", Category: domain.CategoryMonospace, Weights: []int{400, 800}, HasItalic: true},
	})
}

// stubVetted is a fixed-map vetted store.
type stubVetted struct {
	entries map[string]domain.FontVariant
}

func (s *stubVetted) Lookup(subject string) (domain.FontVariant, bool) {
	v, ok := s.entries[strings.ToLower(strings.TrimSpace(subject))]
	return v, ok
}

func (s *stubVetted) Len() int     { return len(s.entries) }
func (s *stubVetted) Close() error { return nil }

// stubInference is a scripted inference backend that counts calls.
type stubInference struct {
	mu sync.Mutex

	variant   driven.InferredVariant
	inferErr  error
	phrases   []domain.DetectedPhrase
	detectErr error
	model     string
	delay     time.Duration

	inferCalls  int
	detectCalls int
}

func (s *stubInference) InferVariant(ctx context.Context, _ driven.InferenceRequest) (driven.InferredVariant, error) {
	s.mu.Lock()
	s.inferCalls++
	variant, err, delay := s.variant, s.inferErr, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return driven.InferredVariant{}, ctx.Err()
		}
	}
	return variant, err
}

func (s *stubInference) DetectPhrases(_ context.Context, _ []string) ([]domain.DetectedPhrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detectCalls++
	return s.phrases, s.detectErr
}

func (s *stubInference) ModelVersion() string {
	if s.model == "" {
		return "stub-model"
	}
	return s.model
}

func (s *stubInference) Ping(context.Context) error { return nil }
func (s *stubInference) Close() error               { return nil }

func (s *stubInference) inferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inferCalls
}

func (s *stubInference) detectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detectCalls
}

// stubDelivery records stylesheet fetches.
type stubDelivery struct {
	mu       sync.Mutex
	fetchErr error
	fetched  []string
}

func (d *stubDelivery) StylesheetURL(requests []driven.AssetRequest) string {
	parts := make([]string, len(requests))
	for i, r := range requests {
		ital := "0"
		if r.Italic {
			ital = "1"
		}
		parts[i] = r.Family + ":" + ital + ":" + r.Characters
	}
	return "stylesheet?" + strings.Join(parts, "|")
}

func (d *stubDelivery) Fetch(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetched = append(d.fetched, url)
	return d.fetchErr
}

func (d *stubDelivery) fetchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fetched)
}

func (d *stubDelivery) setErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetchErr = err
}

// stubResolver resolves every subject to a fixed variant, optionally
// after a delay or blocking until the context is cancelled.
type stubResolver struct {
	mu sync.Mutex

	variant domain.FontVariant
	err     error
	block   bool
	delay   time.Duration

	wordCalls   []string
	phraseCalls [][]string
	cancelled   int
}

func (r *stubResolver) ResolveWord(ctx context.Context, raw string) (driving.Resolution, error) {
	r.mu.Lock()
	r.wordCalls = append(r.wordCalls, raw)
	block := r.block
	delay := r.delay
	r.mu.Unlock()

	if block {
		<-ctx.Done()
		r.mu.Lock()
		r.cancelled++
		r.mu.Unlock()
		return driving.Resolution{}, ctx.Err()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			r.mu.Lock()
			r.cancelled++
			r.mu.Unlock()
			return driving.Resolution{}, ctx.Err()
		}
	}
	if r.err != nil {
		return driving.Resolution{}, r.err
	}
	return driving.Resolution{Variant: r.variant, Source: domain.SourceLLM}, nil
}

func (r *stubResolver) ResolvePhrase(_ context.Context, words []string) (driving.Resolution, error) {
	r.mu.Lock()
	r.phraseCalls = append(r.phraseCalls, words)
	r.mu.Unlock()
	if r.err != nil {
		return driving.Resolution{}, r.err
	}
	return driving.Resolution{Variant: r.variant, Source: domain.SourceLLM}, nil
}

func (r *stubResolver) Fallback() domain.FontVariant {
	return domain.FontVariant{Family: domain.DefaultFamily, Weight: 400, Style: domain.StyleNormal}
}

func (r *stubResolver) wordCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wordCalls)
}

func (r *stubResolver) cancelCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

func (r *stubResolver) phraseCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.phraseCalls)
}

// stubPhrases returns a fixed detection result, optionally after a
// delay.
type stubPhrases struct {
	mu      sync.Mutex
	phrases []domain.DetectedPhrase
	delay   time.Duration
	calls   int
}

func (p *stubPhrases) DetectPhrases(ctx context.Context, _ []string) ([]domain.DetectedPhrase, error) {
	p.mu.Lock()
	p.calls++
	delay := p.delay
	phrases := p.phrases
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return phrases, nil
}
