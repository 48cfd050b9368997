package flowcore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type sharedCounter struct{ n int }

// Model mutations from several tasks of the same Command are serialized
// against each other: no task ever observes a half-applied mutation.
func TestModelSerializesConcurrentAccess(t *testing.T) {
	model := &sharedCounter{}
	box := newModelBox(model)
	cmd := &Command{model: box}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := &Context{cmd: cmd}
			Model(ctx, func(m *sharedCounter) any {
				m.n++
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, 100, model.n)
}

// Calling Model with a type that does not match the Command's actual model
// is a programmer error, not a recoverable one.
func TestModelPanicsOnTypeMismatch(t *testing.T) {
	model := &sharedCounter{}
	cmd := &Command{model: newModelBox(model)}
	ctx := &Context{cmd: cmd}

	require.Panics(t, func() {
		Model(ctx, func(m *string) any { return nil })
	})
}
