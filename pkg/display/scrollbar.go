package display

import (
	"boxflow/pkg/layout"
	"boxflow/pkg/style"
)

// scrollbars emits the bars of scroll container i from its cached
// ScrollbarInfo. Thumb size follows the visible fraction of the content and
// thumb position the current scroll offset.
func (g *generator) scrollbars(i layout.NodeIndex) {
	n := &g.t.Nodes[i]
	sb := n.Scrollbar
	if !sb.Any() {
		return
	}
	opacity := 1.0
	if g.opts.Scroll != nil && n.Source != style.NoNode {
		opacity = g.opts.Scroll.ScrollbarOpacity(n.Source)
	}
	opacity *= g.opacity

	r := g.rect(i)
	pb := n.PaddingBox().Translate(r.X, r.Y)
	view := g.clipRect(i)
	off := g.offset(i)

	thickness := func(w float64) float64 {
		if w <= 0 {
			return g.opts.OverlayScrollbarWidth
		}
		return w
	}
	vw, hh := 0.0, 0.0
	if sb.NeedsVertical {
		vw = thickness(sb.ScrollbarWidth)
	}
	if sb.NeedsHorizontal {
		hh = thickness(sb.ScrollbarHeight)
	}

	if sb.NeedsVertical {
		track := layout.Rect{X: pb.X + pb.Width - vw, Y: pb.Y, Width: vw, Height: max(0, pb.Height-hh)}
		pos, length := g.thumb(track.Height, view.Height, n.Overflow.Height, off.Y)
		g.emit(ScrollBar{
			Node:     n.Source,
			Track:    track,
			Thumb:    layout.Rect{X: track.X, Y: track.Y + pos, Width: vw, Height: length},
			Vertical: true,
			Opacity:  opacity,
		})
	}
	if sb.NeedsHorizontal {
		track := layout.Rect{X: pb.X, Y: pb.Y + pb.Height - hh, Width: max(0, pb.Width-vw), Height: hh}
		pos, length := g.thumb(track.Width, view.Width, n.Overflow.Width, off.X)
		g.emit(ScrollBar{
			Node:    n.Source,
			Track:   track,
			Thumb:   layout.Rect{X: track.X + pos, Y: track.Y, Width: length, Height: hh},
			Opacity: opacity,
		})
	}
}

// thumb returns the thumb start and length along a track.
func (g *generator) thumb(track, view, content, offset float64) (float64, float64) {
	if track <= 0 || content <= view {
		return 0, max(0, track)
	}
	length := max(min(track, g.opts.MinThumb), track*view/content)
	frac := min(max(offset/(content-view), 0), 1)
	return (track - length) * frac, length
}
