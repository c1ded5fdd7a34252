package layout

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

// css builds a style from "prop: value; prop: value" declarations.
func css(t *testing.T, decls string) style.Style {
	t.Helper()
	s := style.Default()
	for _, decl := range strings.Split(decls, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, val, ok := strings.Cut(decl, ":")
		require.True(t, ok, decl)
		require.NoError(t, s.Apply(strings.TrimSpace(prop), strings.TrimSpace(val)), decl)
	}
	return s
}

func el(t *testing.T, decls string, children ...*style.Node) *style.Node {
	return style.El(css(t, decls), children...)
}

func doc(t *testing.T, root *style.Node) *style.Document {
	t.Helper()
	d, err := style.NewDocument(uuid.Nil, root)
	require.NoError(t, err)
	return d
}

func newEngine() *LayoutEngine {
	return NewLayoutEngine(text.NewCellShaper(8, 16), Options{ScrollbarWidth: 16})
}

// layout builds a fresh tree and runs a full reflow over it.
func layout(t *testing.T, le *LayoutEngine, d *style.Document, vw, vh float64) (*Tree, Result) {
	t.Helper()
	tree, err := Build(d, Size{Width: vw, Height: vh})
	require.NoError(t, err)
	res, err := le.Reflow(tree, []NodeIndex{tree.Root})
	require.NoError(t, err)
	return tree, res
}

func rectOf(t *testing.T, tree *Tree, n *style.Node) Rect {
	t.Helper()
	i, ok := tree.IndexOf(n.ID)
	require.True(t, ok, "node %d has no box", n.ID)
	return tree.AbsoluteRect(i)
}

func indexOf(t *testing.T, tree *Tree, n *style.Node) NodeIndex {
	t.Helper()
	i, ok := tree.IndexOf(n.ID)
	require.True(t, ok, "node %d has no box", n.ID)
	return i
}
