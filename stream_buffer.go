package flowcore

import "sync"

// streamBuffer decouples a manyHandle's delivery (which must never block,
// so a host can resolve a streaming effect thousands of times back to
// back without waiting on the consuming task to catch up) from Stream's
// pull-based Next. Deliveries queue here; Next drains the queue and only
// parks its task when the queue is empty.
type streamBuffer[O any] struct {
	mu     sync.Mutex
	items  []O
	closed bool
	w      *Waker
}

func newStreamBuffer[O any](w *Waker) *streamBuffer[O] {
	return &streamBuffer[O]{w: w}
}

// deliver is the manyHandle callback: it always accepts the value and
// keeps the stream open. Streams in this rendering are closed explicitly
// via Stream.Close rather than by a producer-sent terminator value,
// since the producer (the host) has no Go type to send one as.
func (b *streamBuffer[O]) deliver(v O) bool {
	b.mu.Lock()
	b.items = append(b.items, v)
	b.mu.Unlock()
	return true
}

// pop returns the next buffered value (has=true, open=true), signals
// end-of-stream (has=true, open=false) once closed with nothing left
// buffered, or reports nothing is available yet (has=false) so the
// caller should park and retry after being woken.
func (b *streamBuffer[O]) pop() (v O, open bool, has bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) > 0 {
		v = b.items[0]
		b.items = b.items[1:]
		return v, true, true
	}
	if b.closed {
		return v, false, true
	}
	return v, false, false
}

func (b *streamBuffer[O]) close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.w.WakeByRef()
}
