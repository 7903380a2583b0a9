package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/core/ports/driving"
	"github.com/typetide/typetide/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.InputHandler = (*Orchestrator)(nil)

// inflight tracks one word's outstanding resolution.
type inflight struct {
	requestID string
	cancel    context.CancelFunc
}

// Orchestrator ties the pipeline together: it reconciles text edits into
// word states, debounces resolution triggers, cancels requests for words
// that no longer exist and dispatches state-machine transitions.
//
// Staleness is guarded asymmetrically, on purpose. Phrase detection is
// checked against a generation counter that bumps on every debounce
// trigger: a detection computed over an outdated word list must not group
// words that since moved. Individual word resolutions check only their
// own request id: additional, unrelated typing elsewhere bumps the
// generation but must not discard a valid in-flight result for a word
// that is still present. Collapsing both checks into one generation check
// would regress that behaviour.
type Orchestrator struct {
	resolver  driving.ResolverService
	phrases   driving.PhraseService
	loader    *FontLoader
	fastCache driven.CacheStore // synchronous client-side cache, optional
	settings  domain.OrchestratorSettings

	mu         sync.Mutex
	state      domain.InputState
	generation uint64
	debounce   *time.Timer
	requests   map[string]inflight // token id -> outstanding request
	subs       map[int]func(domain.InputState)
	nextSub    int
	closed     bool
}

// NewOrchestrator creates an orchestrator. The phrase service, font
// loader and fast cache are optional (nil disables that behaviour).
func NewOrchestrator(
	resolver driving.ResolverService,
	phrases driving.PhraseService,
	loader *FontLoader,
	fastCache driven.CacheStore,
	settings domain.OrchestratorSettings,
) *Orchestrator {
	if settings.Debounce <= 0 {
		settings.Debounce = domain.DefaultDebounce
	}
	return &Orchestrator{
		resolver:  resolver,
		phrases:   phrases,
		loader:    loader,
		fastCache: fastCache,
		settings:  settings,
		requests:  make(map[string]inflight),
		subs:      make(map[int]func(domain.InputState)),
	}
}

// SetText replaces the input text. The word list reconciles immediately;
// resolution of pending words waits out the debounce window, which resets
// on every further change.
func (o *Orchestrator) SetText(text string) {
	tokens := domain.Tokenize(text)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}

	o.state = domain.InputState{
		RawText: text,
		Words:   domain.Reconcile(o.state.Words, tokens),
	}

	// Abort requests whose token vanished in the edit. Cancelling one
	// word's resolution never touches its siblings.
	alive := make(map[string]struct{}, len(o.state.Words))
	for _, ws := range o.state.Words {
		alive[ws.Token.ID] = struct{}{}
	}
	for id, req := range o.requests {
		if _, ok := alive[id]; !ok {
			req.cancel()
			delete(o.requests, id)
		}
	}

	if o.debounce != nil {
		o.debounce.Stop()
	}
	o.debounce = time.AfterFunc(o.settings.Debounce, o.process)

	snapshot := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snapshot)
}

// process runs one resolution cycle after the debounce window expires.
func (o *Orchestrator) process() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.generation++
	gen := o.generation

	// Fast path: words already known to the synchronous client cache
	// resolve pending -> resolved with no loading flicker.
	changed := o.applyFastCacheLocked()

	words := make([]string, len(o.state.Words))
	for i, ws := range o.state.Words {
		words[i] = ws.Token.Normalised
	}
	pendingLeft := o.pendingCountLocked()

	var snapshot domain.InputState
	if changed {
		snapshot = o.snapshotLocked()
	}
	o.mu.Unlock()
	if changed {
		o.notify(snapshot)
	}

	if pendingLeft == 0 {
		return
	}

	// Phrase detection first, for two or more words. The call runs
	// without holding the lock; its result is discarded when the
	// generation moved on while it was in flight.
	grouped := make(map[string]struct{})
	if o.phrases != nil && len(words) >= 2 {
		detected, err := o.phrases.DetectPhrases(context.Background(), words)
		if err != nil {
			logger.Warn("phrase detection: %v", err)
		}

		o.mu.Lock()
		if o.closed || o.generation != gen {
			// Stale by replacement: a newer cycle owns the word list.
			o.mu.Unlock()
			return
		}
		for _, phrase := range detected {
			if !o.phraseIntersectsPendingLocked(phrase) {
				continue
			}
			for i := phrase.StartIndex; i <= phrase.EndIndex; i++ {
				grouped[o.state.Words[i].Token.ID] = struct{}{}
			}
			o.startPhraseLocked(phrase)
		}
		o.mu.Unlock()
	}

	// Remaining ungrouped pending words resolve individually and
	// concurrently, each under its own request id and cancellation scope.
	o.mu.Lock()
	if o.closed || o.generation != gen {
		o.mu.Unlock()
		return
	}
	var started bool
	for i := range o.state.Words {
		ws := &o.state.Words[i]
		if ws.Resolution.Status != domain.ResolutionPending {
			continue
		}
		if _, ok := grouped[ws.Token.ID]; ok {
			continue
		}
		o.startWordLocked(ws)
		started = true
	}
	snapshot = o.snapshotLocked()
	o.mu.Unlock()

	if started || len(grouped) > 0 {
		o.notify(snapshot)
	}
}

// applyFastCacheLocked resolves pending words present in the synchronous
// client cache, straight pending -> resolved. Caller holds o.mu.
func (o *Orchestrator) applyFastCacheLocked() bool {
	if o.fastCache == nil {
		return false
	}

	changed := false
	for i := range o.state.Words {
		ws := &o.state.Words[i]
		if ws.Resolution.Status != domain.ResolutionPending {
			continue
		}
		key := domain.WordCacheKey(ws.Token.Normalised, false, false)
		entry, found, err := o.fastCache.Get(context.Background(), key)
		if err != nil || !found {
			continue
		}
		next, ok := domain.ApplyResolution(ws.Resolution, domain.ResolutionEvent{
			Kind:      domain.EventResolve,
			RequestID: domain.InstantRequestID,
			Variant:   entry.Variant,
			Source:    domain.SourceCache,
		})
		if !ok {
			continue
		}
		ws.Resolution = next
		changed = true
		o.requestGlyphs(ws.Token.ID, ws.Token.Raw, entry.Variant)
	}
	return changed
}

// phraseIntersectsPendingLocked reports whether the phrase covers at
// least one still-pending word. Caller holds o.mu.
func (o *Orchestrator) phraseIntersectsPendingLocked(phrase domain.DetectedPhrase) bool {
	if !phrase.Valid(len(o.state.Words)) {
		return false
	}
	for i := phrase.StartIndex; i <= phrase.EndIndex; i++ {
		if o.state.Words[i].Resolution.Status == domain.ResolutionPending {
			return true
		}
	}
	return false
}

// phraseMember snapshots one word at the moment a phrase claims it. A
// member that was already settled (the fast cache runs before detection
// in the same cycle) is overlaid only if its resolution is still exactly
// the one recorded here; any change in between means a newer request
// took the word and the overlay must leave it alone.
type phraseMember struct {
	id      string
	raw     string
	settled bool
	prev    domain.WordResolution
}

// startPhraseLocked claims every member of a phrase for one shared
// request and spawns the group resolution. Members resolve as one unit:
// when the result lands, all surviving members receive the same variant
// and group id together. Caller holds o.mu.
func (o *Orchestrator) startPhraseLocked(phrase domain.DetectedPhrase) {
	requestID := uuid.NewString()
	groupID := uuid.NewString()

	members := make([]phraseMember, 0, phrase.EndIndex-phrase.StartIndex+1)
	for i := phrase.StartIndex; i <= phrase.EndIndex; i++ {
		ws := &o.state.Words[i]
		m := phraseMember{id: ws.Token.ID, raw: ws.Token.Raw}
		next, ok := domain.ApplyResolution(ws.Resolution, domain.ResolutionEvent{
			Kind:      domain.EventStartLoading,
			RequestID: requestID,
		})
		if ok {
			ws.Resolution = next
		} else {
			m.settled = true
			m.prev = ws.Resolution
		}
		members = append(members, m)
	}

	go func() {
		res, err := o.resolver.ResolvePhrase(context.Background(), phrase.Words)
		if err != nil {
			logger.Warn("phrase %q: %v", phrase.Text(), err)
			return
		}

		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return
		}
		applied := false
		for i := range o.state.Words {
			ws := &o.state.Words[i]
			for _, m := range members {
				if ws.Token.ID != m.id {
					continue
				}
				// Members still waiting on this phrase request accept
				// the overlay, as do members that settled before the
				// phrase claimed them and have not changed since.
				// Anything else was superseded.
				accept := ws.Resolution.Status == domain.ResolutionLoading && ws.Resolution.RequestID == requestID
				if m.settled {
					accept = ws.Resolution == m.prev
				}
				if !accept {
					continue
				}
				ws.Resolution = domain.WordResolution{
					Status:    domain.ResolutionResolved,
					RequestID: requestID,
					Variant:   res.Variant,
					Source:    res.Source,
				}
				ws.PhraseGroupID = groupID
				ws.FontLoaded = false
				o.requestGlyphs(ws.Token.ID, m.raw, res.Variant)
				applied = true
			}
		}
		snapshot := o.snapshotLocked()
		o.mu.Unlock()
		if applied {
			o.notify(snapshot)
		}
	}()
}

// startWordLocked moves one word into loading and spawns its resolution.
// Caller holds o.mu.
func (o *Orchestrator) startWordLocked(ws *domain.WordState) {
	requestID := uuid.NewString()
	next, ok := domain.ApplyResolution(ws.Resolution, domain.ResolutionEvent{
		Kind:      domain.EventStartLoading,
		RequestID: requestID,
	})
	if !ok {
		return
	}
	ws.Resolution = next

	ctx, cancel := context.WithCancel(context.Background())
	tokenID := ws.Token.ID
	raw := ws.Token.Raw
	normalised := ws.Token.Normalised
	o.requests[tokenID] = inflight{requestID: requestID, cancel: cancel}

	go func() {
		defer cancel()
		res, err := o.resolver.ResolveWord(ctx, raw)

		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return
		}
		if req, ok := o.requests[tokenID]; ok && req.requestID == requestID {
			delete(o.requests, tokenID)
		}

		var ev domain.ResolutionEvent
		switch {
		case errors.Is(err, context.Canceled):
			// Abort is not a failure; the result is simply dropped.
			o.mu.Unlock()
			return
		case err != nil:
			ev = domain.ResolutionEvent{Kind: domain.EventFail, RequestID: requestID, Message: err.Error()}
		default:
			ev = domain.ResolutionEvent{
				Kind:      domain.EventResolve,
				RequestID: requestID,
				Variant:   res.Variant,
				Source:    res.Source,
			}
		}

		applied := false
		for i := range o.state.Words {
			if o.state.Words[i].Token.ID != tokenID {
				continue
			}
			nextRes, ok := domain.ApplyResolution(o.state.Words[i].Resolution, ev)
			if ok {
				o.state.Words[i].Resolution = nextRes
				applied = ok
				if ev.Kind == domain.EventResolve {
					o.requestGlyphs(tokenID, raw, res.Variant)
					o.populateFastCache(normalised, res.Variant)
				}
			}
		}
		snapshot := o.snapshotLocked()
		o.mu.Unlock()
		if applied {
			o.notify(snapshot)
		}
	}()
}

// requestGlyphs schedules the font assets for a freshly styled word and
// flips FontLoaded once they are usable. Caller holds o.mu.
func (o *Orchestrator) requestGlyphs(tokenID, text string, variant domain.FontVariant) {
	if o.loader == nil {
		return
	}
	o.loader.RequestFont(variant, text, func() {
		o.MarkFontLoaded(tokenID)
	})
}

// populateFastCache records a resolved word in the synchronous client
// cache so re-typing it resolves instantly. Caller holds o.mu.
func (o *Orchestrator) populateFastCache(normalised string, variant domain.FontVariant) {
	if o.fastCache == nil {
		return
	}
	key := domain.WordCacheKey(normalised, false, false)
	entry := domain.CacheEntry{
		Variant:       variant,
		SchemaVersion: domain.SchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := o.fastCache.Set(ctx, key, entry, 0); err != nil {
			logger.Warn("fast cache set %q: %v", key, err)
		}
	}()
}

// pendingCountLocked counts words still pending. Caller holds o.mu.
func (o *Orchestrator) pendingCountLocked() int {
	n := 0
	for i := range o.state.Words {
		if o.state.Words[i].Resolution.Status == domain.ResolutionPending {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the current input state.
func (o *Orchestrator) Snapshot() domain.InputState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// snapshotLocked copies the state. Caller holds o.mu.
func (o *Orchestrator) snapshotLocked() domain.InputState {
	words := make([]domain.WordState, len(o.state.Words))
	copy(words, o.state.Words)
	return domain.InputState{RawText: o.state.RawText, Words: words}
}

// Subscribe registers a state-change callback and returns its cancel.
func (o *Orchestrator) Subscribe(fn func(domain.InputState)) func() {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// notify fans a snapshot out to subscribers without holding the lock.
func (o *Orchestrator) notify(snapshot domain.InputState) {
	o.mu.Lock()
	fns := make([]func(domain.InputState), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// MarkFontLoaded records that the glyphs for a word are usable.
func (o *Orchestrator) MarkFontLoaded(wordID string) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	changed := false
	for i := range o.state.Words {
		if o.state.Words[i].Token.ID == wordID && !o.state.Words[i].FontLoaded {
			o.state.Words[i].FontLoaded = true
			changed = true
		}
	}
	snapshot := o.snapshotLocked()
	o.mu.Unlock()
	if changed {
		o.notify(snapshot)
	}
}

// UpdateVariant manually overrides one word's variant outside the normal
// pending pipeline (a re-roll). The word leaves its phrase group: it no
// longer shares the group's resolution.
func (o *Orchestrator) UpdateVariant(wordID string, variant domain.FontVariant) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	changed := false
	for i := range o.state.Words {
		ws := &o.state.Words[i]
		if ws.Token.ID != wordID {
			continue
		}
		ws.Resolution = domain.WordResolution{
			Status:  domain.ResolutionResolved,
			Variant: variant,
			Source:  domain.SourceLLM,
		}
		ws.PhraseGroupID = ""
		ws.FontLoaded = false
		o.requestGlyphs(ws.Token.ID, ws.Token.Raw, variant)
		o.populateFastCache(ws.Token.Normalised, variant)
		changed = true
	}
	snapshot := o.snapshotLocked()
	o.mu.Unlock()
	if changed {
		o.notify(snapshot)
	}
}

// SetPhraseLoading re-enters loading for every member of a phrase group,
// ahead of a manual phrase re-roll.
func (o *Orchestrator) SetPhraseLoading(groupID string) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	requestID := uuid.NewString()
	changed := false
	for i := range o.state.Words {
		ws := &o.state.Words[i]
		if ws.PhraseGroupID != groupID {
			continue
		}
		ws.Resolution = domain.WordResolution{
			Status:    domain.ResolutionLoading,
			RequestID: requestID,
		}
		changed = true
	}
	snapshot := o.snapshotLocked()
	o.mu.Unlock()
	if changed {
		o.notify(snapshot)
	}
}

// ResolvePhraseGroup applies a new variant to every member of a phrase
// group atomically, resetting their font-loaded flags.
func (o *Orchestrator) ResolvePhraseGroup(groupID string, variant domain.FontVariant) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	changed := false
	for i := range o.state.Words {
		ws := &o.state.Words[i]
		if ws.PhraseGroupID != groupID {
			continue
		}
		ws.Resolution = domain.WordResolution{
			Status:  domain.ResolutionResolved,
			Variant: variant,
			Source:  domain.SourceLLM,
		}
		ws.FontLoaded = false
		o.requestGlyphs(ws.Token.ID, ws.Token.Raw, variant)
		changed = true
	}
	snapshot := o.snapshotLocked()
	o.mu.Unlock()
	if changed {
		o.notify(snapshot)
	}
}

// Close cancels in-flight work and stops the debounce timer.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	if o.debounce != nil {
		o.debounce.Stop()
		o.debounce = nil
	}
	for id, req := range o.requests {
		req.cancel()
		delete(o.requests, id)
	}
	o.mu.Unlock()
	return nil
}
