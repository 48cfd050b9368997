package flowcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type computeOp struct{ N int }

func (computeOp) OperationName() string { return "Compute" }

// A middleware chain that resolves every one of 100,000 sequential
// requests locally must drain the Command down to zero outgoing effects
// without overflowing the executor.
func TestMiddlewareOverflowResolvesAllLocally(t *testing.T) {
	const n = 100_000
	cmd := New(func(ctx *Context) {
		for i := 0; i < n; i++ {
			out := RequestFromShell[int](ctx, "Compute", computeOp{N: i})
			if out != i*2 {
				panic("middleware produced the wrong result")
			}
		}
		ctx.SendEvent("done")
	})

	chain := NewChain().Use(InterceptorFunc(func(eff Effect) (any, bool) {
		op, ok := eff.Op.(computeOp)
		if !ok {
			return nil, false
		}
		return op.N * 2, true
	}))

	remaining := Drive(cmd, chain)
	require.Empty(t, remaining)
	require.True(t, cmd.IsDone())
	require.Equal(t, []any{"done"}, cmd.Events())
}

// A Chain tries its most recently added interceptor first.
func TestChainTriesMostRecentlyAddedInterceptorFirst(t *testing.T) {
	chain := NewChain()
	chain.Use(InterceptorFunc(func(Effect) (any, bool) { return "first", true }))
	chain.Use(InterceptorFunc(func(Effect) (any, bool) { return "second", true }))

	v, ok := chain.TryResolve(Effect{Variant: "anything"})
	require.True(t, ok)
	require.Equal(t, "second", v)
}

// An interceptor that does not recognize an effect's variant falls through
// to the next one in the chain.
func TestChainFallsThroughUnrecognizedVariants(t *testing.T) {
	chain := NewChain()
	chain.Use(InterceptorFunc(func(eff Effect) (any, bool) {
		if eff.Variant != "Wanted" {
			return nil, false
		}
		return "handled", true
	}))

	_, ok := chain.TryResolve(Effect{Variant: "Other"})
	require.False(t, ok)

	v, ok := chain.TryResolve(Effect{Variant: "Wanted"})
	require.True(t, ok)
	require.Equal(t, "handled", v)
}

// LoggingInterceptor delegates to its inner interceptor unchanged.
func TestLoggingInterceptorDelegatesResult(t *testing.T) {
	inner := InterceptorFunc(func(Effect) (any, bool) { return 42, true })
	l := LoggingInterceptor{Inner: inner}

	v, ok := l.TryResolve(Effect{Variant: "X"})
	require.True(t, ok)
	require.Equal(t, 42, v)
}
