package flowcore

import "sync"

// modelBox is the exclusive-access cell behind Context's model capability
// ("model(f).await", a synchronous, queued app-facing output).
// Access is serialized with a plain mutex rather than parked through the
// executor: model access never waits on the shell, so there is no
// suspension point to render as a task park — only mutual exclusion
// against other tasks of the same Command touching the same model
// concurrently.
type modelBox struct {
	mu    sync.Mutex
	value any
}

func newModelBox(initial any) *modelBox {
	return &modelBox{value: initial}
}

// Model runs fn with exclusive access to the Command's shared model of
// type M and returns fn's result. Concurrent Model calls from different
// tasks of the same Command are serialized against each other; a task
// never observes another task's model mutation half-applied.
func Model[M, R any](ctx *Context, fn func(m *M) R) R {
	box := ctx.cmd.model
	var result R
	box.mu.Lock()
	m, ok := box.value.(*M)
	if !ok {
		box.mu.Unlock()
		panic("flowcore: Model called with a type that does not match the Command's model")
	}
	result = fn(m)
	box.mu.Unlock()
	return result
}
