package flowcore

import (
	"math"

	"github.com/rs/zerolog/log"
)

// EffectId is a stable, reusable identifier for a live ResolveHandle
// for a live ResolveHandle. Hosts must treat it as opaque; it is only ever reused
// after the slot it named has been evicted.
type EffectId uint32

// Registry is the keyed store mapping a live EffectId to its ResolveHandle.
// A Registry serves both as the "native" registry (typed callbacks, for
// in-process task suspension) and, once its Command has been switched
// into serialized mode with UseWireFormat, as the "serialized" registry
// (handles wrapped in serializedHandle, accepting byte-slice host
// responses) — both share this same slab/free-list slot map, the only
// difference is the kind of handle stored in it.
//
// Slot allocation is O(1) amortized via a free list. The
// zero value is not usable; construct with NewRegistry.
type Registry struct {
	mu      locker
	slots   []handle
	free    []EffectId
	next    EffectId
	high    int // high-water mark, exposed via HighWaterMark
	metrics bool
}

// NewRegistry constructs an empty Registry using the default RuntimeOptions
// (metrics enabled, no initial capacity hint).
func NewRegistry() *Registry {
	return NewRegistryWithOptions(DefaultRuntimeOptions())
}

// NewRegistryWithOptions constructs an empty Registry honoring opts'
// metrics toggle and registry initial capacity hint.
func NewRegistryWithOptions(opts *RuntimeOptions) *Registry {
	r := &Registry{mu: newLocker(), metrics: opts.metricsEnabled}
	if opts.registryInitialCapacity > 0 {
		r.slots = make([]handle, 0, opts.registryInitialCapacity)
		r.free = make([]EffectId, 0, opts.registryInitialCapacity)
	}
	return r
}

// Insert allocates a slot for h and returns its EffectId. Overflowing the
// id space is a hard failure rather than wraparound reuse.
func (r *Registry) Insert(h handle) EffectId {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id EffectId
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[id] = h
	} else {
		if r.next == math.MaxUint32 {
			panic("flowcore: registry exhausted the EffectId space")
		}
		id = r.next
		r.next++
		r.slots = append(r.slots, h)
	}
	if live := len(r.slots) - len(r.free); live > r.high {
		r.high = live
	}
	r.reportSlotsInUse()
	log.Debug().Uint32("effect_id", uint32(id)).Msg("flowcore: registry insert")
	return id
}

// reportSlotsInUse publishes the current live-slot count to the
// registrySlotsInUse gauge, unless this Registry was built with metrics
// disabled. Must be called with r.mu held.
func (r *Registry) reportSlotsInUse() {
	if r.metrics {
		registrySlotsInUse.Set(float64(len(r.slots) - len(r.free)))
	}
}

// Resume looks up the handle for id and delivers payload to it. If the
// delivery transitions the handle to Never, the slot is evicted and its id
// returned to the free list. Resuming an unknown id returns a *NotFoundError
// and allocates nothing.
func (r *Registry) Resume(id EffectId, payload any) error {
	r.mu.Lock()
	if int(id) >= len(r.slots) || r.slots[id] == nil {
		r.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	h := r.slots[id]
	r.mu.Unlock()

	evict, err := h.deliver(payload)

	if evict {
		r.mu.Lock()
		if int(id) < len(r.slots) && r.slots[id] == h {
			r.slots[id] = nil
			r.free = append(r.free, id)
			r.reportSlotsInUse()
		}
		r.mu.Unlock()
		log.Debug().Uint32("effect_id", uint32(id)).Msg("flowcore: registry evict")
	}
	return err
}

// Evict force-removes a slot without delivering to it and without calling
// its handle's drop method. Evicting an unknown id does nothing.
func (r *Registry) Evict(id EffectId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) < len(r.slots) && r.slots[id] != nil {
		r.slots[id] = nil
		r.free = append(r.free, id)
		r.reportSlotsInUse()
	}
}

// Drop discards the handle registered under id without ever delivering to
// it, the registry-side half of dropping a single outstanding Request: if
// the handle supports being dropped (every handle does except neverHandle,
// which has nothing left to discard), its drop method runs before the slot
// is freed, so a dropped Once request's callback is released rather than
// invoked and a dropped Many stream's owning task is cancelled rather than
// woken with a value. Dropping an unknown id returns a *NotFoundError.
func (r *Registry) Drop(id EffectId) error {
	r.mu.Lock()
	if int(id) >= len(r.slots) || r.slots[id] == nil {
		r.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	h := r.slots[id]
	r.slots[id] = nil
	r.free = append(r.free, id)
	r.reportSlotsInUse()
	r.mu.Unlock()

	if d, ok := h.(dropper); ok {
		d.drop()
	}
	log.Debug().Uint32("effect_id", uint32(id)).Msg("flowcore: registry drop")
	return nil
}

// Len reports the number of live (non-evicted) slots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots) - len(r.free)
}

// HighWaterMark reports the largest number of simultaneously live slots
// this registry has ever held, for diagnostics/metrics.
func (r *Registry) HighWaterMark() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.high
}

// Shutdown evicts every remaining slot, ending any outstanding Many
// streams and failing any outstanding Once/Never handles silently: no
// resolve is attempted and no handle's drop method runs — the handles are
// simply discarded.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		r.slots[i] = nil
	}
	r.free = r.free[:0]
	for i := EffectId(0); i < r.next; i++ {
		r.free = append(r.free, i)
	}
	if r.metrics {
		registrySlotsInUse.Set(0)
	}
}
