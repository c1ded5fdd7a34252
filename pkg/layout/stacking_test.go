package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackingContextTree(t *testing.T) {
	a := el(t, "height: 10px")
	b := el(t, "position: relative; z-index: -1; height: 10px")
	c := el(t, "position: relative; z-index: 2; height: 10px", el(t, "position: absolute; z-index: -3"))
	dd := el(t, "position: absolute")
	e := el(t, "opacity: 0.5", el(t, "position: relative; z-index: 1"))
	f := el(t, "position: relative; z-index: 1")
	d := doc(t, el(t, "width: 400px", a, b, c, dd, e, f))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	root := BuildStackingContextTree(tree)
	assert.Equal(t, tree.Root, root.Node)

	nodes := func(list []*StackingContext) []NodeIndex {
		var out []NodeIndex
		for _, sc := range list {
			out = append(out, sc.Node)
		}
		return out
	}
	assert.Equal(t, []NodeIndex{indexOf(t, tree, b)}, nodes(root.NegativeZContexts))
	assert.Equal(t, []NodeIndex{indexOf(t, tree, dd), indexOf(t, tree, e)}, nodes(root.ZeroZContexts))
	assert.Equal(t, []NodeIndex{indexOf(t, tree, f), indexOf(t, tree, c)}, nodes(root.PositiveZContexts))

	// Contexts nest: c owns its negative child, e its positive one.
	cc := root.PositiveZContexts[1]
	assert.Len(t, cc.NegativeZContexts, 1)
	assert.Same(t, cc, cc.NegativeZContexts[0].Parent)
	assert.Len(t, root.ZeroZContexts[1].PositiveZContexts, 1)

	var order []NodeIndex
	root.Walk(func(sc *StackingContext) { order = append(order, sc.Node) })
	assert.Equal(t, []NodeIndex{
		indexOf(t, tree, b), tree.Root, indexOf(t, tree, dd), indexOf(t, tree, e),
		indexOf(t, tree, e) + 1, indexOf(t, tree, f), indexOf(t, tree, c) + 1, indexOf(t, tree, c),
	}, order)
}
