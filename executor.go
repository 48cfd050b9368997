package flowcore

// runAll drains queue to quiescence: pop a ready task, run one step of it
// (start it if this is its first run, or resume it past the suspension
// point that a delivered value just woke it from), and repeat until the
// queue is empty. This is the cooperative executor — it
// always runs on the caller's goroutine; no task makes progress unless
// this function (or a single runStep, via Command's lazy draining) is on
// the call stack.
func runAll(queue *readyQueue) {
	for {
		t, ok := queue.pop()
		if !ok {
			return
		}
		t.runStep()
	}
}

// runOne pops and steps a single ready task, if any, returning whether a
// task was actually stepped. Command's lazy effects()/events() iterators
// use this instead of runAll so that draining stops as soon as an effect
// or event is available, rather than running every ready task to
// quiescence up front.
func runOne(queue *readyQueue) bool {
	t, ok := queue.pop()
	if !ok {
		return false
	}
	t.runStep()
	return true
}
