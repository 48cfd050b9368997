package flowcore

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Interceptor lets a host resolve selected Effect variants locally,
// without a round trip through the shell. TryResolve reports ok=false
// for any variant it does not recognize, so the chain can fall through to
// the next interceptor and, eventually, leave the effect for the shell.
type Interceptor interface {
	TryResolve(eff Effect) (result any, ok bool)
}

// InterceptorFunc adapts a plain function to Interceptor.
type InterceptorFunc func(eff Effect) (any, bool)

func (f InterceptorFunc) TryResolve(eff Effect) (any, bool) { return f(eff) }

// Chain folds a sequence of interceptors. The most recently added
// interceptor is tried first — later middleware wraps, and therefore
// sees the effect before, earlier middleware.
type Chain struct {
	interceptors []Interceptor
}

// NewChain returns an empty Chain.
func NewChain() *Chain {
	return &Chain{}
}

// Use adds i to the front of the chain and returns c for chaining.
func (c *Chain) Use(i Interceptor) *Chain {
	c.interceptors = append([]Interceptor{i}, c.interceptors...)
	return c
}

// TryResolve tries every interceptor in order, returning the first one
// that claims eff.
func (c *Chain) TryResolve(eff Effect) (any, bool) {
	for _, i := range c.interceptors {
		if v, ok := i.TryResolve(eff); ok {
			return v, true
		}
	}
	return nil, false
}

// maxDriveIterations bounds Drive's local resolve/re-drain loop so a
// middleware chain that keeps producing new, again-locally-resolvable
// effects cannot spin the caller's goroutine forever; it is sized well
// above the 100,000-effect stress scenario this runtime is tested
// against.
const maxDriveIterations = 1 << 20

// Drive repeatedly drains cmd's effects, hands each to chain, and
// immediately resolves the ones chain claims — looping so that a
// resolution which itself unparks a task into producing further
// locally-resolvable effects keeps converging without a shell round
// trip. It returns whatever effects remain for the shell once chain has
// had a chance at everything currently available, or once
// maxDriveIterations rounds have passed, whichever comes first.
func Drive(cmd *Command, chain *Chain) []Effect {
	var unresolved []Effect
	for i := 0; i < maxDriveIterations; i++ {
		effs := cmd.Effects()
		if len(effs) == 0 {
			break
		}
		progressed := false
		for _, eff := range effs {
			if v, ok := chain.TryResolve(eff); ok {
				if err := cmd.Resolve(eff.ID, v); err == nil {
					progressed = true
					continue
				}
			}
			unresolved = append(unresolved, eff)
		}
		if !progressed {
			break
		}
	}
	return unresolved
}

// LoggingInterceptor wraps another Interceptor and logs every attempt
// through it at debug level, with the outcome and how long it took.
type LoggingInterceptor struct {
	Inner Interceptor
}

// TryResolve delegates to Inner and logs the outcome.
func (l LoggingInterceptor) TryResolve(eff Effect) (any, bool) {
	start := time.Now()
	v, ok := l.Inner.TryResolve(eff)
	log.Debug().
		Str("variant", eff.Variant).
		Str("op_type", operationTypeName(eff.Op)).
		Uint32("effect_id", uint32(eff.ID)).
		Bool("handled", ok).
		Dur("elapsed", time.Since(start)).
		Msg("flowcore: interceptor tried effect")
	return v, ok
}
