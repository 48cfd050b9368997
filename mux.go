package flowcore

import "sync"

// Multiplexer assigns a single, ever-increasing namespace of EffectIds
// across several Commands' independently-numbered registries, and
// remembers which (Command, original id) pair each assigned id came from
// so a later Resolve can be routed back to the right Command. All/Race
// use it to present several child Commands as one; package bridge uses
// it to let a host address effects from every Command an app's Update
// has produced so far with one flat id space.
type Multiplexer struct {
	mu     sync.Mutex
	remap  map[EffectId]muxEntry
	nextID EffectId
}

type muxEntry struct {
	cmd  *Command
	orig EffectId
}

// NewMultiplexer returns an empty Multiplexer.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{remap: make(map[EffectId]muxEntry)}
}

// Assign records that the multiplexer-wide id it returns stands for
// (cmd, orig).
func (m *Multiplexer) Assign(cmd *Command, orig EffectId) EffectId {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.remap[id] = muxEntry{cmd: cmd, orig: orig}
	return id
}

// Resolve forwards payload to whichever Command Assign last associated
// with id.
func (m *Multiplexer) Resolve(id EffectId, payload any) error {
	m.mu.Lock()
	e, ok := m.remap[id]
	m.mu.Unlock()
	if !ok {
		return &NotFoundError{ID: id}
	}
	return e.cmd.Resolve(e.orig, payload)
}

// Drop forwards a per-effect drop to whichever Command Assign last
// associated with id, then forgets the mapping: a dropped id is never
// resolved, so nothing will call Forget for it on its own.
func (m *Multiplexer) Drop(id EffectId) error {
	m.mu.Lock()
	e, ok := m.remap[id]
	delete(m.remap, id)
	m.mu.Unlock()
	if !ok {
		return &NotFoundError{ID: id}
	}
	return e.cmd.DropEffect(e.orig)
}

// Forget drops id's entry once its owning handle has been evicted, so
// the map does not grow unboundedly across a long-running Bridge.
func (m *Multiplexer) Forget(id EffectId) {
	m.mu.Lock()
	delete(m.remap, id)
	m.mu.Unlock()
}
