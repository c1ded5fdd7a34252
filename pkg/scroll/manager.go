// Package scroll keeps per-node scroll offsets across frames, animates
// smooth scrolls and drives scrollbar fading.
package scroll

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boxflow/pkg/layout"
	"boxflow/pkg/style"
)

// Key identifies a scroll container across frames.
type Key struct {
	Doc  uuid.UUID
	Node style.NodeID
}

func (k Key) less(o Key) bool {
	if c := bytes.Compare(k.Doc[:], o.Doc[:]); c != 0 {
		return c < 0
	}
	return k.Node < o.Node
}

type animation struct {
	start    time.Time
	duration time.Duration
	from, to layout.Point
	easing   Easing
}

// State is the scroll state of one container.
type State struct {
	Offset   layout.Point
	Previous layout.Point
	// Container is the visible size, Content the scrollable size.
	Container    layout.Size
	Content      layout.Size
	LastActivity time.Time

	anim *animation
}

// Animating reports whether a smooth scroll is in progress.
func (s *State) Animating() bool { return s.anim != nil }

// MaxOffset returns the largest valid offset.
func (s *State) MaxOffset() layout.Point {
	return layout.Point{
		X: max(0, s.Content.Width-s.Container.Width),
		Y: max(0, s.Content.Height-s.Container.Height),
	}
}

// Clamp limits p to [0, content-container] on both axes.
func (s *State) Clamp(p layout.Point) layout.Point {
	m := s.MaxOffset()
	return layout.Point{X: min(max(p.X, 0), m.X), Y: min(max(p.Y, 0), m.Y)}
}

// TickResult reports what a Tick changed.
type TickResult struct {
	// NeedsRepaint is set while an animation or a scrollbar fade runs.
	NeedsRepaint bool
	// Updated lists containers whose offset moved.
	Updated []Key
	// NearEnd lists containers scrolled within the threshold of the end of
	// their content.
	NearEnd []Key
}

// Options configure a Manager.
type Options struct {
	// FadeDelay is how long scrollbars stay opaque after activity.
	FadeDelay time.Duration
	// FadeDuration is the length of the fade out; zero disables fading.
	FadeDuration time.Duration
	// NearEndThreshold is the distance from the end of content that counts
	// as near the end.
	NearEndThreshold float64
	Logger           *zap.Logger
}

// Manager owns the scroll states of all documents. It is not safe for
// concurrent use.
type Manager struct {
	opts   Options
	states map[Key]*State
	logger *zap.Logger
}

// NewManager creates an empty manager.
func NewManager(opts Options) *Manager {
	m := &Manager{opts: opts, states: map[Key]*State{}, logger: opts.Logger}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

func (m *Manager) state(now time.Time, k Key) *State {
	s, ok := m.states[k]
	if !ok {
		s = &State{LastActivity: now}
		m.states[k] = s
	}
	return s
}

// State returns the state for k, if any.
func (m *Manager) State(k Key) (State, bool) {
	s, ok := m.states[k]
	if !ok {
		return State{}, false
	}
	return *s, true
}

// Offset returns the current offset of k; zero when unknown.
func (m *Manager) Offset(k Key) layout.Point {
	if s, ok := m.states[k]; ok {
		return s.Offset
	}
	return layout.Point{}
}

// Set jumps to target, cancelling any animation.
func (m *Manager) Set(now time.Time, k Key, target layout.Point) {
	s := m.state(now, k)
	s.Offset = s.Clamp(target)
	s.anim = nil
	s.LastActivity = now
}

// ScrollTo animates to target over d. A zero duration is a Set.
func (m *Manager) ScrollTo(now time.Time, k Key, target layout.Point, d time.Duration, e Easing) {
	if d <= 0 {
		m.Set(now, k, target)
		return
	}
	s := m.state(now, k)
	s.anim = &animation{start: now, duration: d, from: s.Offset, to: s.Clamp(target), easing: e}
	s.LastActivity = now
	m.logger.Debug("scroll animation",
		zap.Stringer("doc", k.Doc), zap.Int("node", int(k.Node)),
		zap.Float64("to_x", s.anim.to.X), zap.Float64("to_y", s.anim.to.Y),
		zap.Duration("duration", d), zap.Stringer("easing", e))
}

// ScrollBy animates by delta from the current offset.
func (m *Manager) ScrollBy(now time.Time, k Key, delta layout.Point, d time.Duration, e Easing) {
	m.ScrollTo(now, k, m.Offset(k).Add(delta), d, e)
}

// UpdateBounds records the container and content sizes from layout and
// re-clamps the offset and any animation target.
func (m *Manager) UpdateBounds(now time.Time, k Key, container, content layout.Size) {
	s := m.state(now, k)
	s.Container, s.Content = container, content
	s.Offset = s.Clamp(s.Offset)
	if s.anim != nil {
		s.anim.to = s.Clamp(s.anim.to)
	}
}

// Tick advances animations to now.
func (m *Manager) Tick(now time.Time) TickResult {
	var res TickResult
	for k, s := range m.states {
		if a := s.anim; a != nil {
			t := float64(now.Sub(a.start)) / float64(a.duration)
			p := a.easing.Apply(t)
			next := s.Clamp(layout.Point{
				X: a.from.X + (a.to.X-a.from.X)*p,
				Y: a.from.Y + (a.to.Y-a.from.Y)*p,
			})
			if next != s.Offset {
				res.Updated = append(res.Updated, k)
			}
			s.Offset = next
			s.LastActivity = now
			res.NeedsRepaint = true
			if t >= 1 {
				s.anim = nil
			}
		}
		if m.fading(now, s) {
			res.NeedsRepaint = true
		}
		if m.nearEnd(s) {
			res.NearEnd = append(res.NearEnd, k)
		}
	}
	sortKeys(res.Updated)
	sortKeys(res.NearEnd)
	return res
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(a, b int) bool { return keys[a].less(keys[b]) })
}

func (m *Manager) nearEnd(s *State) bool {
	mx := s.MaxOffset()
	if mx.Y > 0 && mx.Y-s.Offset.Y <= m.opts.NearEndThreshold {
		return true
	}
	return mx.X > 0 && mx.X-s.Offset.X <= m.opts.NearEndThreshold
}

func (m *Manager) fading(now time.Time, s *State) bool {
	if m.opts.FadeDuration <= 0 {
		return false
	}
	el := now.Sub(s.LastActivity)
	return el > m.opts.FadeDelay && el < m.opts.FadeDelay+m.opts.FadeDuration
}

// ScrollbarOpacity is 1 until FadeDelay has passed since the last activity
// on k, then falls linearly to 0 over FadeDuration.
func (m *Manager) ScrollbarOpacity(now time.Time, k Key) float64 {
	s, ok := m.states[k]
	if !ok || m.opts.FadeDuration <= 0 {
		return 1
	}
	el := now.Sub(s.LastActivity)
	switch {
	case el <= m.opts.FadeDelay:
		return 1
	case el >= m.opts.FadeDelay+m.opts.FadeDuration:
		return 0
	}
	return 1 - float64(el-m.opts.FadeDelay)/float64(m.opts.FadeDuration)
}

// BeginFrame remembers current offsets so Delta reports per-frame motion.
func (m *Manager) BeginFrame() {
	for _, s := range m.states {
		s.Previous = s.Offset
	}
}

// Delta returns the motion of k since BeginFrame, if any.
func (m *Manager) Delta(k Key) (layout.Point, bool) {
	s, ok := m.states[k]
	if !ok {
		return layout.Point{}, false
	}
	d := s.Offset.Sub(s.Previous)
	return d, d != (layout.Point{})
}

// RemoveDocument drops every state of doc.
func (m *Manager) RemoveDocument(doc uuid.UUID) {
	for k := range m.states {
		if k.Doc == doc {
			delete(m.states, k)
		}
	}
}

// Keys returns the registered containers in a stable order.
func (m *Manager) Keys() []Key {
	keys := make([]Key, 0, len(m.states))
	for k := range m.states {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// View returns the per-node scroll view of one document at time now.
func (m *Manager) View(doc uuid.UUID, now time.Time) DocumentView {
	return DocumentView{m: m, doc: doc, now: now}
}

// DocumentView reads the scroll state of one document.
type DocumentView struct {
	m   *Manager
	doc uuid.UUID
	now time.Time
}

// Offset returns the offset of node.
func (v DocumentView) Offset(node style.NodeID) layout.Point {
	return v.m.Offset(Key{Doc: v.doc, Node: node})
}

// ScrollbarOpacity returns the fade level of node's scrollbars.
func (v DocumentView) ScrollbarOpacity(node style.NodeID) float64 {
	return v.m.ScrollbarOpacity(v.now, Key{Doc: v.doc, Node: node})
}
