// Package flowcoretest provides small test helpers for asserting on a
// Command's effects and events without hand-rolling the drain/assert
// boilerplate in every test, the same role crux_core's AppTester plays
// for the implementation this runtime was modeled on.
package flowcoretest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowkit/flowcore"
)

// AssertEffect drains cmd until it has produced exactly one new effect,
// requires that effect's Variant equals wantVariant, and returns it.
func AssertEffect(t testing.TB, cmd *flowcore.Command, wantVariant string) flowcore.Effect {
	t.Helper()
	effs := cmd.Effects()
	require.Len(t, effs, 1, "expected exactly one effect, got %d", len(effs))
	require.Equal(t, wantVariant, effs[0].Variant)
	return effs[0]
}

// ResolveNext drains cmd for its next single effect, asserts its variant,
// resolves it with value, and runs cmd to quiescence before returning the
// effect that was resolved.
func ResolveNext(t testing.TB, cmd *flowcore.Command, wantVariant string, value any) flowcore.Effect {
	t.Helper()
	eff := AssertEffect(t, cmd, wantVariant)
	require.NoError(t, cmd.Resolve(eff.ID, value))
	cmd.RunUntilSettled()
	return eff
}

// DrainEvents runs cmd to quiescence and returns every event it produced,
// in emission order.
func DrainEvents(t testing.TB, cmd *flowcore.Command) []any {
	t.Helper()
	cmd.RunUntilSettled()
	return cmd.Events()
}

// RequireDone asserts that cmd has settled: no outstanding tasks and
// nothing left in its ready queue.
func RequireDone(t testing.TB, cmd *flowcore.Command) {
	t.Helper()
	require.True(t, cmd.IsDone(), "expected command to be done")
}
