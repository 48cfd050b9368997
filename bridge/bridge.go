package bridge

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/flowkit/flowcore"
)

// App is the shape a Bridge drives: NewEvent returns a fresh pointer the
// Bridge decodes an incoming event into, Update runs one step of the
// app's state machine, and View renders whatever the shell should
// currently show.
type App interface {
	// NewEvent returns a pointer to a zero-valued Event, for Format to
	// decode an incoming event payload into.
	NewEvent() any
	// Update processes event — the same pointer NewEvent returned, now
	// decoded in place — and returns the Command describing the
	// resulting effectful work.
	Update(event any) *flowcore.Command
	// View renders the app's current, externally-visible state.
	View() (any, error)
}

// Bridge is the host-facing entry point described by the ABI operations
// ProcessEvent, HandleResponse, DropResponse, and View. It keeps every
// Command an app's Update has produced alive until each is done, and
// multiplexes their EffectIds into one flat namespace a host can resolve
// against without tracking which Command an id came from.
type Bridge struct {
	mu      sync.Mutex
	app     App
	format  Format
	mux     *flowcore.Multiplexer
	pending []*flowcore.Command
}

// New returns a Bridge driving app over format.
func New(app App, format Format) *Bridge {
	return &Bridge{app: app, format: format, mux: flowcore.NewMultiplexer()}
}

// ProcessEvent decodes an event from raw, runs it through the app, and
// returns the serialized effects the shell must now carry out.
func (b *Bridge) ProcessEvent(raw []byte) ([]flowcore.FfiEffect, error) {
	_, span := flowcore.StartSpan(context.Background(), "bridge.ProcessEvent")
	defer span.End()
	correlationID := uuid.NewString()

	eventPtr := b.app.NewEvent()
	if err := b.format.Decode(raw, eventPtr); err != nil {
		log.Error().Str("correlation_id", correlationID).Err(err).Msg("bridge: failed to decode event")
		return nil, flowcore.NewProcessEventError(err)
	}

	cmd := b.app.Update(eventPtr)
	cmd.UseWireFormat(b.format)

	b.mu.Lock()
	b.pending = append(b.pending, cmd)
	b.mu.Unlock()

	log.Debug().Str("correlation_id", correlationID).Msg("bridge: processed event")
	return b.drainEffects(cmd)
}

// HandleResponse delivers a host's raw response for id to whichever
// pending Command's registry actually holds it, then drains every
// pending Command for any further effects the delivery unblocked.
func (b *Bridge) HandleResponse(id flowcore.EffectId, raw []byte) ([]flowcore.FfiEffect, error) {
	_, span := flowcore.StartSpan(context.Background(), "bridge.HandleResponse")
	defer span.End()

	if err := b.mux.Resolve(id, raw); err != nil {
		return nil, flowcore.NewProcessResponseError("resolve failed", err)
	}

	var out []flowcore.FfiEffect
	b.mu.Lock()
	pending := append([]*flowcore.Command(nil), b.pending...)
	b.mu.Unlock()

	for _, cmd := range pending {
		effs, err := b.drainEffects(cmd)
		if err != nil {
			return nil, err
		}
		out = append(out, effs...)
	}
	b.reap()
	return out, nil
}

// DropResponse tells the app the shell has abandoned the outstanding
// request named by id without ever resolving it — the host-facing
// counterpart to a shell that decides, say, a timed-out HTTP request is
// never coming back. Only the task that emitted id unwinds; every other
// pending Command, and every other task within the same Command, keeps
// running. Further effects the drop unblocked (a sibling task's Race
// winner, for instance) are drained same as HandleResponse does.
func (b *Bridge) DropResponse(id flowcore.EffectId) ([]flowcore.FfiEffect, error) {
	_, span := flowcore.StartSpan(context.Background(), "bridge.DropResponse")
	defer span.End()

	if err := b.mux.Drop(id); err != nil {
		return nil, flowcore.NewProcessResponseError("drop failed", err)
	}

	var out []flowcore.FfiEffect
	b.mu.Lock()
	pending := append([]*flowcore.Command(nil), b.pending...)
	b.mu.Unlock()

	for _, cmd := range pending {
		effs, err := b.drainEffects(cmd)
		if err != nil {
			return nil, err
		}
		out = append(out, effs...)
	}
	b.reap()
	return out, nil
}

// View renders the app's current state and encodes it with format.
func (b *Bridge) View() ([]byte, error) {
	_, span := flowcore.StartSpan(context.Background(), "bridge.View")
	defer span.End()

	v, err := b.app.View()
	if err != nil {
		return nil, flowcore.NewViewError(err)
	}
	encoded, err := b.format.Encode(v)
	if err != nil {
		return nil, flowcore.NewViewError(err)
	}
	return encoded, nil
}

func (b *Bridge) drainEffects(cmd *flowcore.Command) ([]flowcore.FfiEffect, error) {
	effs := cmd.Effects()
	out := make([]flowcore.FfiEffect, 0, len(effs))
	for _, eff := range effs {
		muxID := b.mux.Assign(cmd, eff.ID)
		out = append(out, flowcore.FfiEffect{ID: muxID, Variant: eff.Variant, Op: eff.Op})
	}
	return coalesceRenders(out), nil
}

// coalesceRenders drops every Render effect in a drained batch except the
// last one in each run of consecutive Renders: an app that calls
// ctx.Render() more than once before yielding only ever means "re-render
// with whatever is current", so the shell only needs to see it once.
func coalesceRenders(effs []flowcore.FfiEffect) []flowcore.FfiEffect {
	out := make([]flowcore.FfiEffect, 0, len(effs))
	for i, eff := range effs {
		if eff.Variant == flowcore.RenderVariant && i+1 < len(effs) && effs[i+1].Variant == flowcore.RenderVariant {
			continue
		}
		out = append(out, eff)
	}
	return out
}

// reap drops finished Commands from the pending list so a long-running
// Bridge does not accumulate settled Commands forever.
func (b *Bridge) reap() {
	b.mu.Lock()
	defer b.mu.Unlock()
	live := b.pending[:0]
	for _, cmd := range b.pending {
		if !cmd.IsDone() {
			live = append(live, cmd)
		}
	}
	b.pending = live
}
