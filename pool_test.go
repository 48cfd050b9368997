package flowcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A SlicePool always hands back a zero-length, non-nil slice, whether it
// came from an actual pool hit or a fresh allocation.
func TestSlicePoolGetAlwaysReturnsZeroLength(t *testing.T) {
	p := NewSlicePool[int](4)
	s := p.Get()
	require.NotNil(t, s)
	require.Empty(t, s)
}

// A slice returned to the pool and then retrieved again is truncated back
// to zero length, not carrying over its previous contents.
func TestSlicePoolPutThenGetIsTruncated(t *testing.T) {
	p := NewSlicePool[int](4)
	s := p.Get()
	s = append(s, 1, 2, 3)
	p.Put(s)

	got := p.Get()
	require.Empty(t, got)
}

// A fresh pool with nothing returned to it yet only ever reports misses;
// once something has been Put back, the next Get is a hit.
func TestSlicePoolMetricsTracksHitsAndMisses(t *testing.T) {
	p := NewSlicePool[int](4)
	s := p.Get()
	require.Equal(t, uint64(0), p.Metrics().Hits)
	require.Equal(t, uint64(1), p.Metrics().Misses)

	p.Put(s)
	_ = p.Get()
	require.Equal(t, uint64(1), p.Metrics().Hits)
}

// operationTypeName caches the reflect lookup across repeated calls for
// the same concrete type.
func TestOperationTypeNameIsStableAcrossCalls(t *testing.T) {
	first := operationTypeName(httpOp{N: 1})
	second := operationTypeName(httpOp{N: 2})
	require.Equal(t, first, second)
	require.Contains(t, first, "httpOp")
}
