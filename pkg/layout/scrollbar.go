package layout

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"boxflow/pkg/style"
)

// epsilon absorbs float noise when comparing content and container sizes.
const epsilon = 0.01

// scrollbarFor derives scrollbar needs from the content extent and the
// padding-box interior of a container. scroll always asks for a bar, auto
// only on overflow, and visible, hidden and clip never do. A classic bar
// shrinks the other axis, which can make that axis overflow too.
func (le *LayoutEngine) scrollbarFor(s style.Style, content, inner Size) ScrollbarInfo {
	thick := le.scrollbarWidth
	if le.overlay {
		thick = 0
	}
	needH := s.OverflowX == style.OverflowScroll ||
		(s.OverflowX == style.OverflowAuto && content.Width > inner.Width+epsilon)
	needV := s.OverflowY == style.OverflowScroll ||
		(s.OverflowY == style.OverflowAuto && content.Height > inner.Height+epsilon)

	if thick > 0 {
		if needV && !needH && s.OverflowX == style.OverflowAuto && content.Width > inner.Width-thick+epsilon {
			needH = true
		}
		if needH && !needV && s.OverflowY == style.OverflowAuto && content.Height > inner.Height-thick+epsilon {
			needV = true
		}
	}

	info := ScrollbarInfo{NeedsHorizontal: needH, NeedsVertical: needV}
	if needV {
		info.ScrollbarWidth = thick
	}
	if needH {
		info.ScrollbarHeight = thick
	}
	return info
}

// Result summarizes one Reflow.
type Result struct {
	// Iterations is the number of used-size passes run, including restarts.
	Iterations int
	// Warnings are non-fatal problems such as ErrMissingContainingBlock.
	Warnings []error
}

// Reflow runs intrinsic sizing, the used-size pass from roots and the
// out-of-flow pass until scrollbar presence is stable. A change of any
// ScrollbarInfo restarts from the root with every cache dropped. More than
// the configured number of passes fails with ErrScrollbarNonConvergence.
func (le *LayoutEngine) Reflow(t *Tree, roots []NodeIndex) (Result, error) {
	var res Result
	roots = append([]NodeIndex(nil), roots...)
	sort.Slice(roots, func(a, b int) bool { return roots[a] < roots[b] })

	for {
		res.Iterations++
		if res.Iterations > le.maxIterations {
			return res, fmt.Errorf("after %d passes: %w", le.maxIterations, ErrScrollbarNonConvergence)
		}
		res.Warnings = res.Warnings[:0]

		if err := le.ComputeIntrinsic(t); err != nil {
			return res, err
		}
		err := le.layoutRoots(t, roots)
		if err == nil {
			res.Warnings, err = le.positionOutOfFlow(t)
		}
		if errors.Is(err, errReflow) {
			le.logger.Debug("reflow restart", zap.Int("iteration", res.Iterations))
			t.MarkAllDirty()
			roots = []NodeIndex{t.Root}
			continue
		}
		if err != nil {
			return res, err
		}
		return res, nil
	}
}

// layoutRoots lays out each root in place with the constraints it had last
// frame. When a root's outer size or margins change, or its parent's
// intrinsic sizes moved, the parent is laid out again, up to the tree root.
func (le *LayoutEngine) layoutRoots(t *Tree, roots []NodeIndex) error {
	for _, r := range roots {
		for r != NoIndex {
			n, err := t.Node(r)
			if err != nil {
				return err
			}
			if r == t.Root {
				if err := le.layoutNode(t, r, le.rootConstraints(t)); err != nil {
					return err
				}
				break
			}
			if n.IsOutOfFlow() {
				// Re-laid out with its containing block by the positioner.
				break
			}
			if !n.Visited || n.Kind == KindInline {
				r = t.blockContainer(n.Parent)
				continue
			}
			oldSize, oldMargin := n.Used, n.Box.Margin
			if err := le.layoutNode(t, r, n.cache.cons); err != nil {
				return err
			}
			parent := t.blockContainer(n.Parent)
			if n.Used == oldSize && n.Box.Margin == oldMargin && !t.intrinsicChanged[parent] {
				break
			}
			r = parent
		}
	}
	return nil
}
