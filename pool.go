package flowcore

import (
	"sync"
	"sync/atomic"
)

// PoolMetrics reports how often a SlicePool served a reused backing array
// versus allocating a fresh one.
type PoolMetrics struct {
	Hits   uint64
	Misses uint64
}

// SlicePool recycles zero-length slices of T handed back through Put,
// using a hit/miss-counted sync.Pool. A Command takes a fresh outbox slice
// from effectSlicePool/eventSlicePool on every drain but never Puts one
// back, since the drained slice goes to the caller; those Gets therefore
// allocate.
type SlicePool[T any] struct {
	pool       sync.Pool
	initialCap int
	hits       atomic.Uint64
	misses     atomic.Uint64
}

// NewSlicePool returns a SlicePool whose freshly-allocated slices start
// with capacity initialCap.
func NewSlicePool[T any](initialCap int) *SlicePool[T] {
	p := &SlicePool[T]{initialCap: initialCap}
	p.pool.New = func() any {
		var zero []T
		return zero
	}
	return p
}

// Get returns a zero-length slice, either recycled or freshly allocated.
func (p *SlicePool[T]) Get() []T {
	s := p.pool.Get().([]T)
	if s == nil {
		p.misses.Add(1)
		return make([]T, 0, p.initialCap)
	}
	p.hits.Add(1)
	return s[:0]
}

// Put returns s to the pool for reuse. Callers must not use s after Put.
func (p *SlicePool[T]) Put(s []T) {
	if s == nil {
		return
	}
	p.pool.Put(s[:0])
}

// Metrics returns a snapshot of this pool's hit/miss counts.
func (p *SlicePool[T]) Metrics() PoolMetrics {
	return PoolMetrics{Hits: p.hits.Load(), Misses: p.misses.Load()}
}

var (
	effectSlicePool = NewSlicePool[Effect](8)
	eventSlicePool  = NewSlicePool[any](8)
)
