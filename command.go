package flowcore

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Command is the lazy description of effectful work an app hands back
// from processing an Event. It owns the tasks spawned for
// it, the ready queue those tasks wake each other (and themselves) onto,
// the registry that holds the ResolveHandles for requests it has emitted,
// and the two outboxes — effects bound for the shell, events bound for
// the app's own view — that draining fills.
//
// A zero Command is not usable; construct one with New or Done.
type Command struct {
	queue    *readyQueue
	registry *Registry
	model    *modelBox
	tasks    []*task

	mu      sync.Mutex
	effects []Effect
	events  []any

	mapEffect func(Effect) Effect
	mapEvent  func(any) any

	children []*Command // non-nil only for composites built by All/Race
	race     bool

	wireFormat Format // non-nil once UseWireFormat has been called
}

// Done returns an already-settled, empty Command: no tasks, no effects,
// no events. IsDone reports true immediately. This is the builder used
// when an app determines there is nothing to do.
func Done(opts ...Option) *Command {
	o := resolveOptions(opts)
	return &Command{
		queue:    newReadyQueueWithCapacity(o.readyQueueCapacityHint),
		registry: NewRegistryWithOptions(o),
		effects:  effectSlicePool.Get(),
		events:   eventSlicePool.Get(),
	}
}

// New builds a Command that runs body as a single task once polled for
// the first time (by Effects, Events, or RunUntilSettled; IsDone never
// starts it).
func New(body func(ctx *Context), opts ...Option) *Command {
	return newWithModel(nil, body, opts)
}

// NewWithModel is New, additionally giving body's Context exclusive,
// mutex-serialized access to model via the generic Model function.
func NewWithModel(model any, body func(ctx *Context), opts ...Option) *Command {
	return newWithModel(model, body, opts)
}

func newWithModel(model any, body func(ctx *Context), opts []Option) *Command {
	o := resolveOptions(opts)
	c := &Command{
		queue:    newReadyQueueWithCapacity(o.readyQueueCapacityHint),
		registry: NewRegistryWithOptions(o),
		model:    newModelBox(model),
		effects:  effectSlicePool.Get(),
		events:   eventSlicePool.Get(),
	}
	t := newTask(c.queue, body)
	t.ctx = &Context{task: t, cmd: c}
	c.tasks = append(c.tasks, t)
	c.queue.push(t)
	return c
}

// UseWireFormat switches c into serialized mode: every request it emits
// from now on is resolved with wire bytes, decoded through format,
// instead of a native Go value. Package bridge calls this on the Command
// an app's Update just returned, before draining its effects, so the
// host can resolve them over the wire.
func (c *Command) UseWireFormat(format Format) {
	c.wireFormat = format
}

// pushEffect attaches req's handle to the Command's registry and queues
// the resulting, ID-bearing Effect for the next Effects() drain.
func (c *Command) pushEffect(req Request) {
	var eff Effect
	if c.wireFormat != nil {
		eff = req.AttachSerialized(c.registry, c.wireFormat)
	} else {
		eff = req.Attach(c.registry)
	}
	c.mu.Lock()
	if c.mapEffect != nil {
		eff = c.mapEffect(eff)
	}
	c.effects = append(c.effects, eff)
	c.mu.Unlock()
}

// pushEvent queues ev for the next Events() drain.
func (c *Command) pushEvent(ev any) {
	c.mu.Lock()
	if c.mapEvent != nil {
		ev = c.mapEvent(ev)
	}
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *Command) effectsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.effects) == 0
}

func (c *Command) takeEffects() []Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.effects
	c.effects = effectSlicePool.Get()
	return out
}

func (c *Command) eventsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events) == 0
}

func (c *Command) takeEvents() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.events
	c.events = eventSlicePool.Get()
	return out
}

// Effects drains just enough ready tasks to produce at least one new
// Effect, or runs the queue dry trying, and returns whatever effects
// accumulated. Draining is lazy: a task that is ready but has not yet
// produced an effect does not block a caller only interested in effects
// that already exist, but Effects will step tasks rather than return
// empty-handed while there is still scheduled work that might produce
// one.
func (c *Command) Effects() []Effect {
	if len(c.children) > 0 {
		return c.compositeEffects()
	}
	for c.effectsEmpty() && !c.queue.empty() {
		runOne(c.queue)
	}
	return c.takeEffects()
}

// Events is Effects for the app-facing events outbox.
func (c *Command) Events() []any {
	if len(c.children) > 0 {
		return c.compositeEvents()
	}
	for c.eventsEmpty() && !c.queue.empty() {
		runOne(c.queue)
	}
	return c.takeEvents()
}

// IsDone reports whether every task this Command owns has finished
// (normally, cancelled, or panicked) and its ready queue is empty. A
// Command with outstanding effects the shell has not resolved yet is
// never done.
func (c *Command) IsDone() bool {
	if len(c.children) > 0 {
		return c.compositeIsDone()
	}
	if !c.queue.empty() {
		return false
	}
	for _, t := range c.tasks {
		if !t.isFinished() {
			return false
		}
	}
	return true
}

// RunUntilSettled drives every ready task to quiescence without
// returning the effects or events produced along the way — useful in
// tests that only care about the Command's final state, or about
// draining side effects of Resolve before asking IsDone.
func (c *Command) RunUntilSettled() {
	if len(c.children) > 0 {
		var g errgroup.Group
		for _, ch := range c.children {
			ch := ch
			g.Go(func() error {
				ch.RunUntilSettled()
				return nil
			})
		}
		_ = g.Wait()
		return
	}
	runAll(c.queue)
}

// Resolve delivers payload to the ResolveHandle registered under id,
// waking whatever task was awaiting it. The caller is responsible for
// driving the executor afterward (Effects, Events, or RunUntilSettled) —
// Resolve only performs the delivery.
func (c *Command) Resolve(id EffectId, payload any) error {
	if len(c.children) > 0 {
		return c.compositeResolve(id, payload)
	}
	return c.registry.Resume(id, payload)
}

// DropEffect discards the outstanding request registered under id without
// ever resolving it, cancelling just the task that was awaiting it — the
// Go rendering of the shell dropping one Request out of several rather
// than abandoning the whole Command. Siblings emitted by other tasks of
// this Command are unaffected; call Cancel instead to drop everything at
// once. Dropping an id this Command never assigned returns a
// *NotFoundError.
func (c *Command) DropEffect(id EffectId) error {
	if len(c.children) > 0 {
		return c.compositeMux().Drop(id)
	}
	return c.registry.Drop(id)
}

// Cancel unwinds every task this Command owns at its next suspension
// point and marks the Command done, mirroring the effect of the shell
// dropping every outstanding Request at once.
func (c *Command) Cancel() {
	if len(c.children) > 0 {
		for _, ch := range c.children {
			ch.Cancel()
		}
		return
	}
	for _, t := range c.tasks {
		t.cancelNow()
	}
	for {
		if _, ok := c.queue.pop(); !ok {
			break
		}
	}
	c.registry.Shutdown()
}
