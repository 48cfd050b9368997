package flowcore

// Operation is a typed description of work for the shell, with a
// statically associated Output type. Go methods cannot carry
// extra type parameters, so the Output type is carried by the generic free
// functions that consume an Operation (RequestFromShell[O], StreamFromShell[O])
// rather than by the interface itself.
type Operation interface {
	// OperationName identifies the operation for logging, metrics, and the
	// FFI effect-variant discriminant.
	OperationName() string
}

// dropper is implemented by resolve handles that support being discarded
// without ever being delivered to — the Go rendering of "the shell drops
// the Request".
type dropper interface {
	drop()
}

// wakingHandle decorates an inner handle so that every delivery attempt
// (successful or not) re-enqueues the owning task via w. This is what lets
// a ResolveHandle's callback, which only knows how to unwrap its own typed
// payload, also satisfy the executor's "a delivered value wakes its task"
// contract without every onceHandle/manyHandle needing its own Waker field.
type wakingHandle struct {
	inner  handle
	w      *Waker
	cancel func()
}

func (h *wakingHandle) deliver(payload any) (bool, error) {
	evict, err := h.inner.deliver(payload)
	h.w.WakeByRef()
	return evict, err
}

// drop releases the inner handle and cancels the task awaiting it. Unlike
// deliver, drop never wakes the task through its Waker: nothing was
// delivered for it to resume with, so it must unwind instead of continue.
func (h *wakingHandle) drop() {
	if d, ok := h.inner.(dropper); ok {
		d.drop()
	}
	if h.cancel != nil {
		h.cancel()
	}
}

// Request pairs an Operation instance with a ResolveHandle. The
// Operation is what eventually travels to the shell; the handle is what
// lets a later Resume deliver the response back into the core. A Request
// is meant to be moved into exactly one of {a middleware, a Registry} —
// never shared — though Go cannot enforce that statically; callers should
// treat a Request as consumed after Attach or Drop.
type Request struct {
	Variant string
	Op      Operation
	h       handle
	cancel  func()
	decode  func(Format, []byte) (any, error)
}

// Attach registers the request's resolve handle with reg and returns the
// Effect ready to hand to the shell, with its EffectId populated.
func (r Request) Attach(reg *Registry) Effect {
	id := reg.Insert(r.h)
	effectsEmitted.WithLabelValues(r.Variant).Inc()
	return Effect{ID: id, Variant: r.Variant, Op: r.Op}
}

// AttachSerialized is Attach for a Command that has been switched into
// serialized mode with UseWireFormat: the registered handle decodes raw
// bytes through format before forwarding to whatever typed callback
// RequestFromShell/StreamFromShell originally built, so a host can
// resolve this effect with wire bytes instead of a native Go value.
func (r Request) AttachSerialized(reg *Registry, format Format) Effect {
	h := r.h
	if r.decode != nil {
		h = &serializedHandle{inner: r.h, decode: r.decode, format: format}
	}
	id := reg.Insert(h)
	effectsEmitted.WithLabelValues(r.Variant).Inc()
	return Effect{ID: id, Variant: r.Variant, Op: r.Op}
}

// serializedHandle decodes a raw-byte payload into the value the wrapped
// handle actually expects, before forwarding the delivery. Requests with
// no decode function (Never requests, which are never resolved) pass
// through Attach unwrapped instead of through this type.
type serializedHandle struct {
	inner  handle
	decode func(Format, []byte) (any, error)
	format Format
}

func (h *serializedHandle) deliver(payload any) (bool, error) {
	raw, ok := payload.([]byte)
	if !ok {
		return false, typeMismatchError(payload, raw)
	}
	v, err := h.decode(h.format, raw)
	if err != nil {
		return false, err
	}
	return h.inner.deliver(v)
}

func (h *serializedHandle) drop() {
	if d, ok := h.inner.(dropper); ok {
		d.drop()
	}
}

// Drop discards the request's resolve handle without ever attaching it to
// a registry or resolving it, and cancels the task that was awaiting it
// (if any), so Command.IsDone observes the drop immediately. This is the
// Go rendering of dropping a Request in a language with destructors.
func (r Request) Drop() {
	if d, ok := r.h.(dropper); ok {
		d.drop()
	}
	if r.cancel != nil {
		r.cancel()
	}
}

// Effect is the tagged-variant envelope of an outgoing
// request the app-declared Variant name its Command constructor was built
// for, the Operation bound for the shell, and the EffectId the registry
// assigned it.
type Effect struct {
	ID      EffectId
	Variant string
	Op      Operation
}

// FfiEffect is the parallel, host-facing shape of Effect: only the
// Operation and its EffectId cross the host boundary — no ResolveHandle
// can be serialized.
type FfiEffect struct {
	ID      EffectId  `msgpack:"id" json:"id"`
	Variant string    `msgpack:"variant" json:"variant"`
	Op      Operation `msgpack:"op" json:"op"`
}

// ToFFI projects an Effect down to its serializable shape.
func (e Effect) ToFFI() FfiEffect {
	return FfiEffect{ID: e.ID, Variant: e.Variant, Op: e.Op}
}
