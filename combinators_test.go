package flowcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type toStringOp struct{ N int }

func (toStringOp) OperationName() string { return "ToString" }

type convertedEvent struct{ Value string }

// Wrapping a child Command with MapEffect/MapEvent re-tags its outgoing
// effect under the enclosing app's own Effect shape, and lifts its events
// the same way once resolved.
func TestMapEffectAndMapEventComposeParentShape(t *testing.T) {
	child := New(func(ctx *Context) {
		s := RequestFromShell[string](ctx, "Convert", toStringOp{N: 3})
		ctx.SendEvent(convertedEvent{Value: s})
	})

	parent := child.
		MapEffect(func(e Effect) Effect {
			return Effect{ID: e.ID, Variant: "ParentConvert", Op: e.Op}
		}).
		MapEvent(func(ev any) any {
			if c, ok := ev.(convertedEvent); ok {
				return "parent:" + c.Value
			}
			return ev
		})

	effs := parent.Effects()
	require.Len(t, effs, 1)
	require.Equal(t, "ParentConvert", effs[0].Variant)
	op, ok := effs[0].Op.(toStringOp)
	require.True(t, ok)
	require.Equal(t, 3, op.N)

	require.NoError(t, parent.Resolve(effs[0].ID, "three"))
	events := parent.Events()
	require.Equal(t, []any{"parent:three"}, events)
}

// All settles only once every child has, and flattens their effects into
// one multiplexed id space in child order.
func TestAllSettlesOnceEveryChildDoes(t *testing.T) {
	a := New(func(ctx *Context) { ctx.Render(renderOp{}) })
	b := Done()

	merged := All(a, b)

	effs := merged.Effects()
	require.Len(t, effs, 1)
	require.True(t, merged.IsDone())
}

// Race settles as soon as any one child does, cancelling the rest.
func TestRaceSettlesOnFirstChildAndCancelsTheRest(t *testing.T) {
	fast := Done()
	slow := New(func(ctx *Context) {
		_ = RequestFromShell[string](ctx, "Http", httpOp{N: 1})
	})

	merged := Race(fast, slow)

	require.True(t, merged.IsDone())
	require.True(t, slow.IsDone())
}

// ThenSend appends a fire-and-forget notification after body completes.
func TestThenSendFiresNotificationAfterBody(t *testing.T) {
	cmd := ThenSend("Render", renderOp{}, func(ctx *Context) {
		ctx.SendEvent("body-done")
	})

	events := cmd.Events()
	require.Equal(t, []any{"body-done"}, events)

	effs := cmd.Effects()
	require.Len(t, effs, 1)
	require.Equal(t, "Render", effs[0].Variant)
	require.True(t, cmd.IsDone())
}
