// Package script drives an engine from JavaScript. Scripts scroll
// containers, advance a virtual frame clock and take snapshots, which makes
// scroll animations reproducible from the command line and in tests.
//
// Globals:
//
//	scroll.set(node, x, y)
//	scroll.to(node, x, y, ms, easing)
//	scroll.by(node, dx, dy, ms, easing)
//	scroll.offset(node)            -> {x, y}
//	scroll.opacity(node)           -> number
//	frame.now()                    -> ms since start
//	frame.advance(ms)              -> {repaint, updated, nearEnd}
//	frame.snapshot(name)
//	layout.bounds(node)            -> {x, y, width, height} | null
//	layout.hitTest(x, y)           -> node id | null
//	layout.wheel(x, y, dx, dy)     -> node id | null
//	console.log / warn / error
//
// A node is its reconciliation key (string) or its numeric id.
package script

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"boxflow/pkg/display"
	"boxflow/pkg/engine"
	"boxflow/pkg/layout"
	"boxflow/pkg/scroll"
	"boxflow/pkg/style"
)

// Options configure a Runner.
type Options struct {
	// Start is the virtual clock origin; the zero time is used when unset.
	Start time.Time
	// Snapshot receives the display list for frame.snapshot(name).
	Snapshot func(name string, l *display.List) error
	Logger   *zap.Logger
}

// Runner executes scripts against one engine.
type Runner struct {
	vm     *goja.Runtime
	eng    *engine.Engine
	start  time.Time
	now    time.Time
	opts   Options
	logger *zap.Logger
}

// New creates a runner with a fresh goja runtime. The engine must have
// committed a frame before scripts address nodes.
func New(e *engine.Engine, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Runner{
		vm:     goja.New(),
		eng:    e,
		start:  opts.Start,
		now:    opts.Start,
		opts:   opts,
		logger: opts.Logger,
	}
	c := &consoleAPI{logger: opts.Logger.Named("console")}
	c.register(r.vm)
	r.registerScroll()
	r.registerFrame()
	r.registerLayout()
	return r
}

// Now returns the virtual clock.
func (r *Runner) Now() time.Time { return r.now }

// Run executes src. Uncaught exceptions are returned as errors.
func (r *Runner) Run(name, src string) error {
	if _, err := r.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

func (r *Runner) frame() *engine.Frame {
	f := r.eng.Frame()
	if f == nil {
		panic(r.vm.NewGoError(engine.ErrNoFrame))
	}
	return f
}

// node resolves a key or id argument.
func (r *Runner) node(v goja.Value) style.NodeID {
	f := r.frame()
	if key, ok := v.Export().(string); ok {
		n, found := f.Doc.ByKey(key)
		if !found {
			panic(r.vm.NewTypeError("no node with key %q", key))
		}
		return n.ID
	}
	id := style.NodeID(v.ToInteger())
	if f.Doc.Node(id) == nil {
		panic(r.vm.NewTypeError("no node with id %d", id))
	}
	return id
}

func (r *Runner) key(v goja.Value) scroll.Key {
	return scroll.Key{Doc: r.frame().Doc.ID, Node: r.node(v)}
}

func (r *Runner) easing(v goja.Value) scroll.Easing {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return scroll.EaseOut
	}
	e, err := scroll.ParseEasing(v.String())
	if err != nil {
		panic(r.vm.NewTypeError(err.Error()))
	}
	return e
}

func millis(v goja.Value) time.Duration {
	if goja.IsUndefined(v) {
		return 0
	}
	return time.Duration(v.ToFloat() * float64(time.Millisecond))
}

func (r *Runner) point(p layout.Point) goja.Value {
	return r.vm.ToValue(map[string]any{"x": p.X, "y": p.Y})
}

func (r *Runner) nodeOrNull(id style.NodeID, ok bool) goja.Value {
	if !ok {
		return goja.Null()
	}
	if n := r.frame().Doc.Node(id); n != nil && n.Key != "" {
		return r.vm.ToValue(n.Key)
	}
	return r.vm.ToValue(int(id))
}

func (r *Runner) registerScroll() {
	m := r.eng.Scroll()
	obj := r.vm.NewObject()
	obj.Set("set", func(call goja.FunctionCall) goja.Value {
		k := r.key(call.Argument(0))
		m.Set(r.now, k, layout.Point{X: call.Argument(1).ToFloat(), Y: call.Argument(2).ToFloat()})
		return goja.Undefined()
	})
	obj.Set("to", func(call goja.FunctionCall) goja.Value {
		k := r.key(call.Argument(0))
		target := layout.Point{X: call.Argument(1).ToFloat(), Y: call.Argument(2).ToFloat()}
		m.ScrollTo(r.now, k, target, millis(call.Argument(3)), r.easing(call.Argument(4)))
		return goja.Undefined()
	})
	obj.Set("by", func(call goja.FunctionCall) goja.Value {
		k := r.key(call.Argument(0))
		delta := layout.Point{X: call.Argument(1).ToFloat(), Y: call.Argument(2).ToFloat()}
		m.ScrollBy(r.now, k, delta, millis(call.Argument(3)), r.easing(call.Argument(4)))
		return goja.Undefined()
	})
	obj.Set("offset", func(call goja.FunctionCall) goja.Value {
		return r.point(m.Offset(r.key(call.Argument(0))))
	})
	obj.Set("opacity", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(m.ScrollbarOpacity(r.now, r.key(call.Argument(0))))
	})
	r.vm.Set("scroll", obj)
}

func (r *Runner) registerFrame() {
	obj := r.vm.NewObject()
	obj.Set("now", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(float64(r.now.Sub(r.start)) / float64(time.Millisecond))
	})
	obj.Set("advance", func(call goja.FunctionCall) goja.Value {
		r.now = r.now.Add(millis(call.Argument(0)))
		res, err := r.eng.Tick(r.now)
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		ids := func(keys []scroll.Key) []any {
			out := make([]any, 0, len(keys))
			for _, k := range keys {
				out = append(out, r.nodeOrNull(k.Node, true).Export())
			}
			return out
		}
		return r.vm.ToValue(map[string]any{
			"repaint": res.NeedsRepaint,
			"updated": ids(res.Updated),
			"nearEnd": ids(res.NearEnd),
		})
	})
	obj.Set("snapshot", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		l, err := r.eng.Repaint(r.now)
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		r.logger.Debug("snapshot", zap.String("name", name), zap.Int("items", l.Len()))
		if r.opts.Snapshot != nil {
			if err := r.opts.Snapshot(name, l); err != nil {
				panic(r.vm.NewGoError(err))
			}
		}
		return goja.Undefined()
	})
	r.vm.Set("frame", obj)
}

func (r *Runner) registerLayout() {
	obj := r.vm.NewObject()
	obj.Set("bounds", func(call goja.FunctionCall) goja.Value {
		b, ok := r.eng.Bounds(r.node(call.Argument(0)))
		if !ok {
			return goja.Null()
		}
		return r.vm.ToValue(map[string]any{"x": b.X, "y": b.Y, "width": b.Width, "height": b.Height})
	})
	obj.Set("hitTest", func(call goja.FunctionCall) goja.Value {
		a, ok := r.eng.HitTest(layout.Point{X: call.Argument(0).ToFloat(), Y: call.Argument(1).ToFloat()})
		return r.nodeOrNull(a.Node, ok)
	})
	obj.Set("wheel", func(call goja.FunctionCall) goja.Value {
		p := layout.Point{X: call.Argument(0).ToFloat(), Y: call.Argument(1).ToFloat()}
		d := layout.Point{X: call.Argument(2).ToFloat(), Y: call.Argument(3).ToFloat()}
		id, ok := r.eng.Wheel(r.now, p, d)
		return r.nodeOrNull(id, ok)
	})
	r.vm.Set("layout", obj)
}
