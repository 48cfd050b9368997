package flowcore

import (
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// readyQueue is the MPSC FIFO of task wake-ups.
// Pushing a task that is already queued is a no-op (idempotent wake),
// since a task only ever needs to be polled once per batch of deliveries.
type readyQueue struct {
	mu     sync.Mutex
	items  []*task
	queued map[*task]bool
}

func newReadyQueue() *readyQueue {
	return newReadyQueueWithCapacity(0)
}

func newReadyQueueWithCapacity(hint int) *readyQueue {
	return &readyQueue{
		items:  make([]*task, 0, hint),
		queued: make(map[*task]bool, hint),
	}
}

func (q *readyQueue) push(t *task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.queued[t] {
		return
	}
	q.queued[t] = true
	q.items = append(q.items, t)
}

func (q *readyQueue) pop() (*task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	delete(q.queued, t)
	return t, true
}

func (q *readyQueue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Waker is the shared handle a ResolveHandle closes over to re-enqueue its
// owning task once a value has been delivered. Because Go
// has no reference-counted ownership, liveness is not inferred from waker
// refcounts: a task is evicted only by explicit means (completion, Drop,
// or a panic caught at the task boundary) — see Request.Drop and
// DESIGN.md's Open Question resolution.
type Waker struct {
	t *task
}

// WakeByRef re-enqueues the owning task onto its executor's ready queue.
// Safe to call from any goroutine, any number of times; redundant wakes
// collapse to a single ready-queue entry.
func (w *Waker) WakeByRef() {
	if w == nil || w.t == nil {
		return
	}
	w.t.queue.push(w.t)
}

// taskState tracks a task's lifecycle for is_done()/metrics purposes.
type taskState int

const (
	taskPending taskState = iota
	taskDone
	taskCancelled
	taskPanicked
)

// task is a goroutine parked on channels, playing the role of a
// "future pinned inside an arc-shared slot with a self-referential waker".
// Exactly one of {the owning executor goroutine, this task's own goroutine}
// is ever doing meaningful work at a time: the task always hands control
// back over yielded before it can block waiting for a delivered value, and
// the driving side always re-enqueues the task and waits for its next
// yield before returning — this is what makes the scheduler
// single-threaded-cooperative despite being built from real goroutines,
// the same ping-pong-over-channels idiom the standard library's iter.Pull
// uses to turn a push-style generator into a pull-style one.
type task struct {
	queue   *readyQueue
	body    func(ctx *Context)
	waker   *Waker
	ctx     *Context
	cancel  chan struct{}
	yielded chan struct{}
	traceID string

	mu      sync.Mutex
	resume  chan struct{} // non-nil while parked at a suspension point
	started bool
	state   taskState
	err     error
}

func newTask(queue *readyQueue, body func(ctx *Context)) *task {
	t := &task{
		queue:   queue,
		body:    body,
		cancel:  make(chan struct{}),
		yielded: make(chan struct{}),
		traceID: uuid.NewString(),
	}
	t.waker = &Waker{t: t}
	return t
}

// park is called from inside the task's own goroutine at every suspension
// point. It hands control back to whoever is driving the executor (by
// signalling yielded) then blocks until runStep closes the fresh resume
// gate it installed, or the task is cancelled. The delivered value itself
// travels out of band through the closure that created the ResolveHandle;
// park only handles the control-transfer half of the suspension.
//
// park returns false if the task was cancelled while parked, in which case
// the caller must unwind by panicking with taskCancelledSignal.
func (t *task) park() bool {
	resume := make(chan struct{})
	t.mu.Lock()
	t.resume = resume
	t.mu.Unlock()

	t.yielded <- struct{}{}

	select {
	case <-resume:
		return true
	case <-t.cancel:
		return false
	}
}

// taskCancelledSignal is the panic value used to unwind a parked task's
// goroutine when its owning Command is cancelled or its Request dropped.
// It is always recovered at the task boundary in finish and never
// surfaces to callers.
type taskCancelledSignal struct{}

// start launches the task's goroutine. Safe to call more than once; only
// the first call has effect, matching the "not yet polled" laziness of
// a Task/Command that has not yet been polled.
func (t *task) start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	tasksSpawned.Inc()
	log.Debug().Str("trace_id", t.traceID).Msg("flowcore: task spawned")

	go func() {
		defer t.finish()
		t.body(t.ctx)
	}()
}

func (t *task) finish() {
	if r := recover(); r != nil {
		if _, ok := r.(taskCancelledSignal); ok {
			t.mu.Lock()
			t.state = taskCancelled
			t.mu.Unlock()
			tasksEvicted.WithLabelValues(string(evictCancelled)).Inc()
		} else {
			t.mu.Lock()
			t.state = taskPanicked
			t.err = &PanicError{Recovered: r, Stack: debug.Stack()}
			t.mu.Unlock()
			tasksEvicted.WithLabelValues(string(evictPanicked)).Inc()
			log.Warn().Str("trace_id", t.traceID).Interface("recovered", r).Msg("flowcore: task panicked")
		}
	} else {
		t.mu.Lock()
		if t.state == taskPending {
			t.state = taskDone
		}
		t.mu.Unlock()
		tasksEvicted.WithLabelValues(string(evictDone)).Inc()
	}
	t.yielded <- struct{}{}
}

// cancelNow asks the task to unwind at its next suspension point. If the
// task has not started yet, it is marked cancelled directly and never
// spawned.
func (t *task) cancelNow() {
	t.mu.Lock()
	if t.state != taskPending {
		t.mu.Unlock()
		return
	}
	started := t.started
	if !started {
		t.state = taskCancelled
	}
	t.mu.Unlock()
	if started {
		close(t.cancel)
	}
}

func (t *task) isFinished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != taskPending
}

// runStep starts the task (first call) or resumes it after a value was
// delivered and its Waker woke it, then blocks until the task yields
// control back — by parking again at its next suspension point, or by
// finishing.
func (t *task) runStep() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !started {
		t.start()
		<-t.yielded
		return
	}

	t.mu.Lock()
	resume := t.resume
	t.resume = nil
	t.mu.Unlock()
	if resume != nil {
		close(resume)
	}
	<-t.yielded
}
