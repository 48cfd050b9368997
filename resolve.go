package flowcore

import "sync"

// handle is the shared shape behind the tri-state ResolveHandle described
// here. Two concrete families implement it: the native family
// (onceHandle[O]/manyHandle[O]), whose callbacks accept a typed value
// directly, and serializedHandle (effect.go), which accepts raw bytes and
// decodes them before forwarding to a native handle. Both share the same
// slab/free-list registry mechanics in registry.go.
//
// deliver invokes the stored callback at most once per call and reports
// whether the handle has transitioned to Never and should be evicted from
// its registry slot.
type handle interface {
	deliver(payload any) (evict bool, err error)
}

// neverHandle backs fire-and-forget requests built by NotifyShell.
type neverHandle struct{}

func (neverHandle) deliver(any) (bool, error) { return true, ErrNever }

// onceHandle backs exactly-once requests (RequestFromShell). fn is
// cleared after it fires so a second resolve observes ErrNever, matching
// the Once→Never transition.
type onceHandle[O any] struct {
	mu sync.Mutex
	fn func(O)
}

func newOnceHandle[O any](fn func(O)) *onceHandle[O] {
	return &onceHandle[O]{fn: fn}
}

func (h *onceHandle[O]) deliver(payload any) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fn == nil {
		return true, ErrNever
	}
	v, ok := payload.(O)
	if !ok {
		return true, typeMismatchError(payload, v)
	}
	fn := h.fn
	h.fn = nil
	fn(v)
	return true, nil
}

// drop releases the callback without invoking it, modelling the "Request
// dropped without resolving" scenario: Go has no destructor to hook, so
// Request.Drop calls this explicitly.
func (h *onceHandle[O]) drop() {
	h.mu.Lock()
	h.fn = nil
	h.mu.Unlock()
}

// manyHandle backs streaming requests (StreamFromShell). fn
// returns false once the consumer has terminated (explicitly, or because
// the stream's terminator value was observed), at which point the handle
// transitions to Never and further resolves report ErrFinishedMany.
type manyHandle[O any] struct {
	mu       sync.Mutex
	fn       func(O) bool
	finished bool
}

func newManyHandle[O any](fn func(O) bool) *manyHandle[O] {
	return &manyHandle[O]{fn: fn}
}

func (h *manyHandle[O]) deliver(payload any) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		return true, ErrFinishedMany
	}
	v, ok := payload.(O)
	if !ok {
		return false, typeMismatchError(payload, v)
	}
	if !h.fn(v) {
		h.finished = true
		return true, nil
	}
	return false, nil
}

// terminate marks the stream finished, so every later resolve reports
// ErrFinishedMany. drop is its only caller; Registry.Shutdown discards
// handles without calling it.
func (h *manyHandle[O]) terminate() {
	h.mu.Lock()
	h.finished = true
	h.mu.Unlock()
}

// drop closes the stream from the consumer side, satisfying the dropper
// interface so Request.Drop works uniformly across Once and Many handles.
func (h *manyHandle[O]) drop() {
	h.terminate()
}

func typeMismatchError(payload any, want any) error {
	return &BridgeError{
		Kind:    KindProcessResponse,
		Message: "output type mismatch",
		Cause:   &typeMismatch{got: payload, want: want},
	}
}

type typeMismatch struct {
	got, want any
}

func (e *typeMismatch) Error() string {
	return "expected a different output type for this operation"
}
