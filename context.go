package flowcore

// Context is the per-task handle passed into a Command body. It exposes
// four capabilities: requesting a single
// response from the shell, consuming a stream of responses, firing a
// notification, and the task's own synchronous, app-facing outputs
// (events, model access).
type Context struct {
	task *task
	cmd  *Command
}

// SendEvent appends ev to the owning Command's events outbox. Events
// emitted by a single task preserve source order; events from different
// tasks of the same Command interleave in whatever order their tasks
// happened to run.
func (c *Context) SendEvent(ev any) {
	c.cmd.pushEvent(ev)
}

// TraceID returns the identifier assigned to this task when it was
// created, for correlating an app's own log lines with flowcore's.
func (c *Context) TraceID() string {
	return c.task.traceID
}

// Yield re-enqueues the calling task onto its own ready queue and parks,
// giving every other ready task of the same Command a chance to run
// before this one resumes. Unlike RequestFromShell, nothing external ever
// wakes a yielded task — it wakes itself, immediately.
func (c *Context) Yield() {
	c.task.waker.WakeByRef()
	if !c.task.park() {
		panic(taskCancelledSignal{})
	}
}

// Render is a convenience for the common "ask the shell to re-render"
// notification, used by apps that keep their view state in the shell
// rather than deriving it from the model inside Go.
func (c *Context) Render(op Operation) {
	NotifyShell(c, RenderVariant, op)
}

// RenderVariant is the Effect Variant ctx.Render uses. Package bridge
// coalesces consecutive effects of this variant into one at drain time,
// since an app that calls Render multiple times per update only means
// "the shell should re-render with whatever the latest state is".
const RenderVariant = "render"

// RequestFromShell emits a single request tagged with variant and parks
// the calling task until the shell resolves it, returning the typed
// output. It must be called from the running task's own goroutine; a call
// from anywhere else is not detected and blocks in park instead of
// panicking.
func RequestFromShell[O any](ctx *Context, variant string, op Operation) O {
	var value O
	inner := newOnceHandle(func(v O) { value = v })
	wrapped := &wakingHandle{inner: inner, w: ctx.task.waker, cancel: ctx.task.cancelNow}
	req := Request{
		Variant: variant,
		Op:      op,
		h:       wrapped,
		cancel:  ctx.task.cancelNow,
		decode:  decodeAs[O],
	}
	ctx.cmd.pushEffect(req)

	if !ctx.task.park() {
		panic(taskCancelledSignal{})
	}
	return value
}

// NotifyShell emits a single fire-and-forget request tagged with variant.
// The owning task never parks for it: the handle is Never from the
// start, so there is nothing for the shell to resolve.
func NotifyShell(ctx *Context, variant string, op Operation) {
	req := Request{Variant: variant, Op: op, h: neverHandle{}, cancel: func() {}}
	ctx.cmd.pushEffect(req)
}

// Stream is the consumer side of StreamFromShell: a pull-style sequence
// of typed values, backed by a manyHandle the shell resolves zero or
// more times.
type Stream[O any] struct {
	ctx    *Context
	buf    *streamBuffer[O]
	handle *manyHandle[O]
}

// Next parks the owning task until a value is available, the stream is
// closed, or the task is cancelled. The second return value is false
// once the stream has been exhausted — a normal, non-error end of
// iteration, not an error.
func (s *Stream[O]) Next() (O, bool) {
	for {
		v, open, has := s.buf.pop()
		if has {
			return v, open
		}
		if !s.ctx.task.park() {
			panic(taskCancelledSignal{})
		}
	}
}

// Close terminates the stream from the consumer side. The shell may
// still attempt further resolves against this EffectId; the registry
// observes the handle has finished on the next such attempt and evicts
// the slot then, reporting ErrFinishedMany to whichever resolve call
// found it.
func (s *Stream[O]) Close() {
	s.handle.drop()
	s.buf.close()
}

// StreamFromShell emits a streaming request tagged with variant and
// returns a Stream the task can pull values from across multiple
// suspension points.
func StreamFromShell[O any](ctx *Context, variant string, op Operation) *Stream[O] {
	buf := newStreamBuffer[O](ctx.task.waker)
	mh := newManyHandle(buf.deliver)
	wrapped := &wakingHandle{inner: mh, w: ctx.task.waker, cancel: ctx.task.cancelNow}
	req := Request{
		Variant: variant,
		Op:      op,
		h:       wrapped,
		cancel:  ctx.task.cancelNow,
		decode:  decodeAs[O],
	}
	ctx.cmd.pushEffect(req)
	return &Stream[O]{ctx: ctx, buf: buf, handle: mh}
}

// decodeAs is the generic decode function RequestFromShell/StreamFromShell
// install on a Request so AttachSerialized can recover the Request's
// static Output type without Context or Command ever needing to know it.
func decodeAs[O any](format Format, raw []byte) (any, error) {
	var v O
	if err := format.Decode(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
