package flowcore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Leaves traverses through a nested All/Race structure to the actual leaf
// Commands, never returning a tracked composite itself.
func TestCommandGraphLeavesFindsNestedLeaves(t *testing.T) {
	leafA := Done()
	leafB := Done()
	leafC := Done()
	inner := All(leafB, leafC)
	outer := All(leafA, inner)

	g := NewCommandGraph()
	g.Track(outer, []*Command{leafA, inner})
	g.Track(inner, []*Command{leafB, leafC})

	leaves := g.Leaves(outer)
	require.ElementsMatch(t, []*Command{leafA, leafB, leafC}, leaves)
}

// Render draws the tracked composite shape, labeling each node with the
// caller-supplied label function.
func TestCommandGraphRenderLabelsEveryNode(t *testing.T) {
	leafA := Done()
	leafB := Done()
	parent := All(leafA, leafB)

	g := NewCommandGraph()
	g.Track(parent, []*Command{leafA, leafB})

	names := map[*Command]string{parent: "All", leafA: "A", leafB: "B"}
	out := g.Render(parent, func(c *Command) string { return names[c] })

	require.True(t, strings.Contains(out, "All"))
	require.True(t, strings.Contains(out, "A"))
	require.True(t, strings.Contains(out, "B"))
}

// An untracked Command has no children in the graph and is itself its own
// only leaf.
func TestCommandGraphLeavesOfUntrackedCommandIsItself(t *testing.T) {
	solo := Done()
	g := NewCommandGraph()

	leaves := g.Leaves(solo)
	require.Equal(t, []*Command{solo}, leaves)
}
