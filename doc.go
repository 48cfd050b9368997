// Package flowcore provides the core runtime of an effect-isolated
// application framework.
//
// An application is a pure state machine: it reacts to an Event by
// returning a Command, a lazy description of effectful work. A Command
// never performs I/O itself — it emits Effect requests for an outside host
// (the "shell") to carry out, and Events for the application's own view to
// react to. The cooperative Executor drives a Command to quiescence on the
// caller's goroutine; no task runs in the background unless the caller
// keeps polling it.
//
// # Basic usage
//
//	cmd := flowcore.New(func(ctx *flowcore.Context) {
//	    name := flowcore.RequestFromShell[string](ctx, "Http", fetchUserOp{ID: 42})
//	    ctx.SendEvent(userLoaded{Name: name})
//	})
//
//	for _, eff := range cmd.Effects() {
//	    // hand eff to the shell, eventually call cmd.Resolve(eff.ID, output)
//	}
//
// # Components
//
// The package is organized around the eight components of the design: the
// tri-state ResolveHandle (resolve.go), the Request registry (registry.go),
// the cooperative executor and its ready queue (task.go, executor.go), the
// per-task Context (context.go), Command and its builders (command.go),
// the Effect envelope (effect.go), the middleware chain (middleware.go),
// and the host-facing Bridge (package bridge).
package flowcore
