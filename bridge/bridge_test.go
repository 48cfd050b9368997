package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowkit/flowcore"
)

type fakeEvent struct {
	Kind string `json:"kind"`
}

type fakeOpX struct{ N int }

func (fakeOpX) OperationName() string { return "OpVariantX" }

type fakeOpY struct{ N int }

func (fakeOpY) OperationName() string { return "OpVariantY" }

// fakeApp issues two sequential shell requests per event: the second is
// only emitted once the first has been resolved, so HandleResponse's
// return value is exactly the "successor effects" a host needs to see
// next.
type fakeApp struct{}

func (fakeApp) NewEvent() any { return &fakeEvent{} }

func (fakeApp) Update(event any) *flowcore.Command {
	ev := event.(*fakeEvent)
	return flowcore.New(func(ctx *flowcore.Context) {
		first := flowcore.RequestFromShell[string](ctx, "OpVariantX", fakeOpX{N: 1})
		flowcore.RequestFromShell[string](ctx, "OpVariantY", fakeOpY{N: 2})
		ctx.SendEvent(ev.Kind + ":" + first)
	})
}

func (fakeApp) View() (any, error) { return "the view", nil }

// ProcessEvent decodes the event, drives the app's Update, and returns the
// first effect. HandleResponse then delivers a response for it and
// returns the second, successor effect the resolution unblocked.
func TestBridgeRoundTrip(t *testing.T) {
	b := New(fakeApp{}, JSONFormat{})

	raw, err := JSONFormat{}.Encode(fakeEvent{Kind: "go"})
	require.NoError(t, err)

	effs, err := b.ProcessEvent(raw)
	require.NoError(t, err)
	require.Len(t, effs, 1)
	require.Equal(t, flowcore.EffectId(0), effs[0].ID)
	require.Equal(t, "OpVariantX", effs[0].Variant)

	respRaw, err := JSONFormat{}.Encode("hello")
	require.NoError(t, err)

	next, err := b.HandleResponse(effs[0].ID, respRaw)
	require.NoError(t, err)
	require.Len(t, next, 1)
	require.Equal(t, "OpVariantY", next[0].Variant)
}

// DropResponse abandons the outstanding request without resolving it: the
// task that emitted it unwinds instead of producing the successor effect
// HandleResponse would have unblocked, and the dropped id is no longer
// live afterward.
func TestBridgeDropResponse(t *testing.T) {
	b := New(fakeApp{}, JSONFormat{})

	raw, err := JSONFormat{}.Encode(fakeEvent{Kind: "go"})
	require.NoError(t, err)

	effs, err := b.ProcessEvent(raw)
	require.NoError(t, err)
	require.Len(t, effs, 1)

	next, err := b.DropResponse(effs[0].ID)
	require.NoError(t, err)
	require.Empty(t, next)

	_, err = b.HandleResponse(effs[0].ID, raw)
	require.Error(t, err)
	require.True(t, flowcore.IsNotFound(err))
}

// HandleResponse against an id nothing ever assigned reports a
// ProcessResponse-kind BridgeError naming the unknown id.
func TestBridgeUnknownIdResolve(t *testing.T) {
	b := New(fakeApp{}, JSONFormat{})

	_, err := b.HandleResponse(999, []byte(`"x"`))
	require.Error(t, err)

	var be *flowcore.BridgeError
	require.ErrorAs(t, err, &be)
	require.Equal(t, flowcore.KindProcessResponse, be.Kind)
	require.Contains(t, err.Error(), "effect id 999 not found")
}

// View encodes whatever the app's View returns through the configured
// Format.
func TestBridgeView(t *testing.T) {
	b := New(fakeApp{}, JSONFormat{})
	out, err := b.View()
	require.NoError(t, err)

	var decoded string
	require.NoError(t, JSONFormat{}.Decode(out, &decoded))
	require.Equal(t, "the view", decoded)
}

// A malformed event payload is reported as a ProcessEvent-kind
// BridgeError, not a raw decode error.
func TestBridgeProcessEventMalformedPayload(t *testing.T) {
	b := New(fakeApp{}, JSONFormat{})
	_, err := b.ProcessEvent([]byte(`not json`))
	require.Error(t, err)

	var be *flowcore.BridgeError
	require.ErrorAs(t, err, &be)
	require.Equal(t, flowcore.KindProcessEvent, be.Kind)
}

// Two consecutive Render effects from the same app step coalesce into one
// before reaching the host: re-rendering twice before yielding only ever
// means "show whatever is current now".
func TestBridgeCoalescesConsecutiveRenders(t *testing.T) {
	effs := []flowcore.FfiEffect{
		{ID: 0, Variant: flowcore.RenderVariant},
		{ID: 1, Variant: flowcore.RenderVariant},
		{ID: 2, Variant: "Http"},
		{ID: 3, Variant: flowcore.RenderVariant},
	}
	out := coalesceRenders(effs)

	require.Len(t, out, 3)
	require.Equal(t, flowcore.EffectId(1), out[0].ID)
	require.Equal(t, "Http", out[1].Variant)
	require.Equal(t, flowcore.EffectId(3), out[2].ID)
}
