package flowcore

import (
	"sync"

	"github.com/m1gwings/treedrawer/tree"
)

// CommandGraph tracks parent/child relationships between composite
// Commands (built by All/Race) and the leaf Commands underneath them, for
// debugging and tests that want to see the shape of a composed Command
// without reaching into its unexported fields.
//
// The adjacency-list-plus-iterative-stack traversal below is the same
// shape as a reactive dependency graph's "find everything downstream of
// this node" query; here downstream means "leaf Commands nested under
// this composite" instead of "executors depending on this executor".
type CommandGraph struct {
	mu       sync.Mutex
	children map[*Command][]*Command
}

// NewCommandGraph returns an empty CommandGraph.
func NewCommandGraph() *CommandGraph {
	return &CommandGraph{children: make(map[*Command][]*Command)}
}

// Track records that parent (an All/Race composite) was built over
// children. Call this right after All/Race if the debug graph is wanted;
// composites do not register themselves automatically, so tracking has
// no cost for callers who never ask for it.
func (g *CommandGraph) Track(parent *Command, children []*Command) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children[parent] = append([]*Command(nil), children...)
}

// Leaves returns every Command reachable under root that has no children
// recorded by Track (an untracked composite counts as a leaf),
// traversing with an explicit stack rather than recursion so a deeply
// nested composite cannot blow the goroutine's stack.
func (g *CommandGraph) Leaves(root *Command) []*Command {
	g.mu.Lock()
	defer g.mu.Unlock()

	stack := []*Command{root}
	seen := make(map[*Command]bool)
	var leaves []*Command

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true

		kids, isComposite := g.children[cur]
		if !isComposite {
			leaves = append(leaves, cur)
			continue
		}
		for _, k := range kids {
			stack = append(stack, k)
		}
	}
	return leaves
}

// Render draws root's tracked composite structure as an ASCII tree, each
// node labelled with whatever label returns for its Command. Useful in
// tests and host-side logging when a Race/All composite behaves
// unexpectedly.
func (g *CommandGraph) Render(root *Command, label func(*Command) string) string {
	g.mu.Lock()
	t := g.buildNode(root, label, make(map[*Command]bool))
	g.mu.Unlock()
	return t.String()
}

func (g *CommandGraph) buildNode(c *Command, label func(*Command) string, visiting map[*Command]bool) *tree.Tree {
	name := label(c)
	if visiting[c] {
		return tree.NewTree(tree.NodeString(name + " (cycle)"))
	}
	visiting[c] = true
	defer delete(visiting, c)

	node := tree.NewTree(tree.NodeString(name))
	for _, kid := range g.children[c] {
		childNode := g.buildNode(kid, label, visiting)
		attachSubtree(node, childNode)
	}
	return node
}

// attachSubtree copies child's value onto a new child of parent, then
// recurses over child's own children — treedrawer has no "graft an
// existing subtree" primitive, only AddChild(value).
func attachSubtree(parent *tree.Tree, child *tree.Tree) {
	grafted := parent.AddChild(child.Val())
	for _, grandchild := range child.Children() {
		attachSubtree(grafted, grandchild)
	}
}
