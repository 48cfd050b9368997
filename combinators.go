package flowcore

import "golang.org/x/sync/errgroup"

// MapEffect returns c with every Effect it emits from now on passed
// through f before reaching Effects(). Used to adapt a sub-Command built
// for one Effect type into a variant of an enclosing app's Effect type.
func (c *Command) MapEffect(f func(Effect) Effect) *Command {
	c.mu.Lock()
	prev := c.mapEffect
	c.mapEffect = composeEffectMap(prev, f)
	c.mu.Unlock()
	return c
}

// MapEvent is MapEffect for the events outbox.
func (c *Command) MapEvent(f func(any) any) *Command {
	c.mu.Lock()
	prev := c.mapEvent
	c.mapEvent = composeEventMap(prev, f)
	c.mu.Unlock()
	return c
}

func composeEffectMap(prev, next func(Effect) Effect) func(Effect) Effect {
	if prev == nil {
		return next
	}
	return func(e Effect) Effect { return next(prev(e)) }
}

func composeEventMap(prev, next func(any) any) func(any) any {
	if prev == nil {
		return next
	}
	return func(v any) any { return next(prev(v)) }
}

// ThenSend builds a Command that runs body and, once body would
// otherwise be done, fires one further notify-shell request tagged
// variant — the Go rendering of chaining a plain notification onto the
// end of a builder pipeline.
func ThenSend(variant string, op Operation, body func(ctx *Context)) *Command {
	return New(func(ctx *Context) {
		body(ctx)
		NotifyShell(ctx, variant, op)
	})
}

// All merges cmds into a single Command whose Effects/Events drain every
// child and whose IsDone reports true only once every child does.
// Cancelling the merged Command cancels every child. Each child keeps
// its own registry, so EffectIds are remapped through a Multiplexer into
// one flat namespace the caller can treat uniformly.
func All(cmds ...*Command) *Command {
	return &Command{children: cmds, model: newCompositeModel(NewMultiplexer())}
}

// Race merges cmds into a single Command that settles as soon as any one
// child becomes done, cancelling the rest at that point.
func Race(cmds ...*Command) *Command {
	return &Command{children: cmds, race: true, model: newCompositeModel(NewMultiplexer())}
}

// newCompositeModel stashes the composite's Multiplexer inside the
// unused model slot of a children-only Command, avoiding a parallel
// field just for All/Race bookkeeping.
func newCompositeModel(mux *Multiplexer) *modelBox {
	return newModelBox(mux)
}

func (c *Command) compositeMux() *Multiplexer {
	return c.model.value.(*Multiplexer)
}

// compositeEffects drains every child concurrently via errgroup, the same
// fan-out-then-join shape oriys-nova's executor uses for independent
// pre-fetches, since each child's Effects() call blocks on its own task
// goroutines and children are otherwise unrelated. Results are collected
// per child index and flattened back in child order so the output is
// deterministic regardless of which child's tasks ran fastest.
func (c *Command) compositeEffects() []Effect {
	mux := c.compositeMux()
	perChild := make([][]Effect, len(c.children))
	var g errgroup.Group
	for i, ch := range c.children {
		i, ch := i, ch
		g.Go(func() error {
			effs := ch.Effects()
			mapped := make([]Effect, 0, len(effs))
			for _, eff := range effs {
				id := mux.Assign(ch, eff.ID)
				mapped = append(mapped, Effect{ID: id, Variant: eff.Variant, Op: eff.Op})
			}
			perChild[i] = mapped
			return nil
		})
	}
	_ = g.Wait()

	var out []Effect
	for _, mapped := range perChild {
		out = append(out, mapped...)
	}
	return out
}

// compositeEvents is compositeEffects for the events outbox.
func (c *Command) compositeEvents() []any {
	perChild := make([][]any, len(c.children))
	var g errgroup.Group
	for i, ch := range c.children {
		i, ch := i, ch
		g.Go(func() error {
			perChild[i] = ch.Events()
			return nil
		})
	}
	_ = g.Wait()

	var out []any
	for _, evs := range perChild {
		out = append(out, evs...)
	}
	return out
}

func (c *Command) compositeIsDone() bool {
	if c.race {
		for _, ch := range c.children {
			if ch.IsDone() {
				for _, other := range c.children {
					if other != ch {
						other.Cancel()
					}
				}
				return true
			}
		}
		return false
	}
	for _, ch := range c.children {
		if !ch.IsDone() {
			return false
		}
	}
	return true
}

func (c *Command) compositeResolve(id EffectId, payload any) error {
	return c.compositeMux().Resolve(id, payload)
}
