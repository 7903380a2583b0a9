package domain

// ResolutionStatus is the lifecycle phase of a word's styling resolution.
type ResolutionStatus string

// Resolution statuses.
const (
	ResolutionPending  ResolutionStatus = "pending"
	ResolutionLoading  ResolutionStatus = "loading"
	ResolutionResolved ResolutionStatus = "resolved"
	ResolutionError    ResolutionStatus = "error"
)

// ResolutionSource records which tier produced a resolved variant.
type ResolutionSource string

// Resolution sources, ordered by priority.
const (
	SourceVetted ResolutionSource = "vetted"
	SourceCache  ResolutionSource = "cache"
	SourceLLM    ResolutionSource = "llm"
)

// InstantRequestID marks a synchronous cache result. It is exempt from the
// request-id match but only applies while the word is still pending, so an
// instant result can never clobber an in-flight or settled resolution.
const InstantRequestID = "instant"

// WordResolution is the tagged union of resolution states. Exactly the
// fields relevant to Status are meaningful; the rest are zero.
type WordResolution struct {
	// Status selects the active arm of the union.
	Status ResolutionStatus

	// RequestID identifies the in-flight request while loading, and the
	// request that settled the word once resolved or errored.
	RequestID string

	// Variant is the styling decision, valid when Status is resolved.
	Variant FontVariant

	// Source is the tier that produced Variant, valid when resolved.
	Source ResolutionSource

	// Message describes the failure, valid when Status is error.
	Message string
}

// PendingResolution returns the initial resolution state.
func PendingResolution() WordResolution {
	return WordResolution{Status: ResolutionPending}
}

// ResolutionEventKind discriminates resolution events.
type ResolutionEventKind string

// Resolution event kinds.
const (
	EventStartLoading ResolutionEventKind = "start-loading"
	EventResolve      ResolutionEventKind = "resolve"
	EventFail         ResolutionEventKind = "fail"
	EventReset        ResolutionEventKind = "reset"
)

// ResolutionEvent is one externally driven transition request. Events are
// applied through ApplyResolution; they never self-trigger.
type ResolutionEvent struct {
	// Kind selects the transition.
	Kind ResolutionEventKind

	// RequestID authenticates resolve/fail events against the loading
	// state, and stamps start-loading events.
	RequestID string

	// Variant accompanies resolve events.
	Variant FontVariant

	// Source accompanies resolve events.
	Source ResolutionSource

	// Message accompanies fail events.
	Message string
}

// ApplyResolution is the pure transition function of the resolution state
// machine. It returns the next state and whether the event was accepted.
// Rejected events leave the state untouched: at most one authoritative
// resolution wins per request generation.
//
// Guards:
//   - resolve/fail against a loading state require a matching request id;
//     a stale id is a no-op, the result was superseded.
//   - InstantRequestID resolves only a still-pending word (the synchronous
//     cache fast path, which never shows a loading flicker).
//   - start-loading replaces pending or loading (a newer request takes
//     over), but never reopens a settled word.
func ApplyResolution(state WordResolution, ev ResolutionEvent) (WordResolution, bool) {
	switch ev.Kind {
	case EventStartLoading:
		if state.Status == ResolutionResolved || state.Status == ResolutionError {
			return state, false
		}
		return WordResolution{Status: ResolutionLoading, RequestID: ev.RequestID}, true

	case EventResolve:
		if ev.RequestID == InstantRequestID {
			if state.Status != ResolutionPending {
				return state, false
			}
			return WordResolution{
				Status:    ResolutionResolved,
				RequestID: ev.RequestID,
				Variant:   ev.Variant,
				Source:    ev.Source,
			}, true
		}
		if state.Status != ResolutionLoading || state.RequestID != ev.RequestID {
			return state, false
		}
		return WordResolution{
			Status:    ResolutionResolved,
			RequestID: ev.RequestID,
			Variant:   ev.Variant,
			Source:    ev.Source,
		}, true

	case EventFail:
		if state.Status != ResolutionLoading || state.RequestID != ev.RequestID {
			return state, false
		}
		return WordResolution{
			Status:    ResolutionError,
			RequestID: ev.RequestID,
			Message:   ev.Message,
		}, true

	case EventReset:
		return PendingResolution(), true

	default:
		return state, false
	}
}
