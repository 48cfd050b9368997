package flowcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// runOne steps exactly one ready task and reports it did; with an empty
// queue it reports false without blocking.
func TestRunOneStepsAtMostOneTask(t *testing.T) {
	q := newReadyQueue()
	require.False(t, runOne(q))

	ran := false
	tk := newTask(q, func(ctx *Context) { ran = true })
	q.push(tk)

	require.True(t, runOne(q))
	require.True(t, ran)
	require.True(t, q.empty())
}

// WakeByRef on a nil Waker, or a Waker whose task is nil, is a safe no-op.
func TestWakeByRefOnNilWakerIsSafe(t *testing.T) {
	var w *Waker
	require.NotPanics(t, func() { w.WakeByRef() })

	empty := &Waker{}
	require.NotPanics(t, func() { empty.WakeByRef() })
}

// Pushing the same task twice before it runs collapses to one ready-queue
// entry.
func TestReadyQueuePushIsIdempotentPerTask(t *testing.T) {
	q := newReadyQueue()
	tk := newTask(q, func(ctx *Context) {})
	q.push(tk)
	q.push(tk)

	_, ok := q.pop()
	require.True(t, ok)
	_, ok = q.pop()
	require.False(t, ok)
}

// Cancelling a task before it has ever started marks it finished directly.
func TestCancelNowBeforeStartMarksFinished(t *testing.T) {
	q := newReadyQueue()
	tk := newTask(q, func(ctx *Context) {})

	tk.cancelNow()
	require.True(t, tk.isFinished())
}

// Cancelling an already-started task unwinds it at its next suspension
// point, marking it finished once its goroutine has had a chance to
// observe the cancellation.
func TestCancelNowAfterStartUnwindsParkedTask(t *testing.T) {
	q := newReadyQueue()
	tk := newTask(q, func(ctx *Context) {
		if !ctx.task.park() {
			panic(taskCancelledSignal{})
		}
	})
	tk.ctx = &Context{task: tk}
	tk.start()
	<-tk.yielded

	tk.cancelNow()
	<-tk.yielded

	require.True(t, tk.isFinished())
}

// Every task gets a distinct, non-empty trace id at creation time.
func TestNewTaskAssignsDistinctTraceIDs(t *testing.T) {
	q := newReadyQueue()
	a := newTask(q, func(ctx *Context) {})
	b := newTask(q, func(ctx *Context) {})

	require.NotEmpty(t, a.traceID)
	require.NotEmpty(t, b.traceID)
	require.NotEqual(t, a.traceID, b.traceID)
}
