package script

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"boxflow/pkg/display"
	"boxflow/pkg/engine"
	"boxflow/pkg/layout"
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func css(t *testing.T, decls string) style.Style {
	t.Helper()
	s := style.Default()
	for _, decl := range strings.Split(decls, ";") {
		if decl = strings.TrimSpace(decl); decl == "" {
			continue
		}
		prop, val, ok := strings.Cut(decl, ":")
		require.True(t, ok, decl)
		require.NoError(t, s.Apply(strings.TrimSpace(prop), strings.TrimSpace(val)))
	}
	return s
}

// setup lays out a 300x200 scroll box ("box") around 400px of content
// ("inner") and returns a runner over it.
func setup(t *testing.T, opts Options) (*Runner, *engine.Engine) {
	t.Helper()
	inner := style.El(css(t, "height: 400px; background: red")).WithKey("inner")
	box := style.El(css(t, "width: 300px; height: 200px; overflow: auto"), inner).WithKey("box")
	d, err := style.NewDocument(uuid.New(), style.El(css(t, "width: 400px"), box))
	require.NoError(t, err)

	e := engine.NewEngine(text.NewCellShaper(8, 16), engine.Options{
		Layout: layout.Options{ScrollbarWidth: 16},
	})
	_, err = e.Layout(d, layout.Size{Width: 400, Height: 300}, nil, t0)
	require.NoError(t, err)

	opts.Start = t0
	return New(e, opts), e
}

func number(r *Runner, name string) float64 {
	return r.vm.Get(name).ToFloat()
}

func TestScrollSetClamps(t *testing.T) {
	r, _ := setup(t, Options{})
	require.NoError(t, r.Run("set.js", `
		scroll.set("box", 0, 5000);
		var y = scroll.offset("box").y;
	`))
	assert.Equal(t, 200.0, number(r, "y"))
}

func TestScrollToAnimatesWithFrameClock(t *testing.T) {
	r, _ := setup(t, Options{})
	require.NoError(t, r.Run("to.js", `
		scroll.to("box", 0, 100, 100, "linear");
		var res = frame.advance(50);
		var y = scroll.offset("box").y;
		var now = frame.now();
		var updated = res.updated[0];
		var repaint = res.repaint;
	`))
	assert.Equal(t, 50.0, number(r, "y"))
	assert.Equal(t, 50.0, number(r, "now"))
	assert.Equal(t, "box", r.vm.Get("updated").String())
	assert.True(t, r.vm.Get("repaint").ToBoolean())
	assert.Equal(t, t0.Add(50*time.Millisecond), r.Now())
}

func TestScrollByUsesNodeIDs(t *testing.T) {
	r, e := setup(t, Options{})
	box, ok := e.Frame().Doc.ByKey("box")
	require.True(t, ok)
	r.vm.Set("boxID", int(box.ID))
	require.NoError(t, r.Run("by.js", `
		scroll.by(boxID, 0, 30);
		scroll.by(boxID, 0, 30);
		var y = scroll.offset(boxID).y;
		var opacity = scroll.opacity(boxID);
	`))
	assert.Equal(t, 60.0, number(r, "y"))
	assert.Equal(t, 1.0, number(r, "opacity"))
}

func TestLayoutQueries(t *testing.T) {
	r, _ := setup(t, Options{})
	require.NoError(t, r.Run("layout.js", `
		var b = layout.bounds("inner");
		var hit = layout.hitTest(10, 10);
		var miss = layout.hitTest(350, 10);
		var wheeled = layout.wheel(10, 10, 0, 40);
		var y = scroll.offset("box").y;
	`))
	b := r.vm.Get("b").Export().(map[string]any)
	assert.Equal(t, map[string]any{"x": 0.0, "y": 0.0, "width": 284.0, "height": 400.0}, b)
	assert.Equal(t, "box", r.vm.Get("hit").String())
	assert.True(t, goja.IsNull(r.vm.Get("miss")))
	assert.Equal(t, "box", r.vm.Get("wheeled").String())
	assert.Equal(t, 40.0, number(r, "y"))
}

func TestSnapshotReceivesScrolledList(t *testing.T) {
	var got []string
	var lists []*display.List
	r, _ := setup(t, Options{Snapshot: func(name string, l *display.List) error {
		got = append(got, name)
		lists = append(lists, l)
		return nil
	}})
	require.NoError(t, r.Run("snap.js", `
		frame.snapshot("top");
		scroll.set("box", 0, 120);
		frame.snapshot("scrolled");
	`))
	assert.Equal(t, []string{"top", "scrolled"}, got)
	require.Len(t, lists, 2)
	rectY := func(l *display.List) float64 {
		for _, it := range l.Items {
			if v, ok := it.(display.Rect); ok {
				return v.Bounds.Y
			}
		}
		t.Fatal("no rect")
		return 0
	}
	assert.Equal(t, 0.0, rectY(lists[0]))
	assert.Equal(t, -120.0, rectY(lists[1]))
}

func TestSnapshotErrorStopsScript(t *testing.T) {
	boom := errors.New("disk full")
	r, _ := setup(t, Options{Snapshot: func(string, *display.List) error { return boom }})
	err := r.Run("fail.js", `frame.snapshot("x");`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script fail.js")
	assert.Contains(t, err.Error(), "disk full")
}

func TestUnknownNodeThrows(t *testing.T) {
	r, _ := setup(t, Options{})
	err := r.Run("bad.js", `scroll.set("missing", 0, 10);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no node with key "missing"`)

	err = r.Run("bad-id.js", `scroll.offset(999);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no node with id 999")

	err = r.Run("bad-easing.js", `scroll.to("box", 0, 10, 100, "bounce");`)
	require.Error(t, err)
}

func TestScriptsCanCatchErrors(t *testing.T) {
	r, _ := setup(t, Options{})
	require.NoError(t, r.Run("catch.js", `
		var caught = false;
		try { scroll.set("missing", 0, 0); } catch (e) { caught = e instanceof TypeError; }
	`))
	assert.True(t, r.vm.Get("caught").ToBoolean())
}

func TestConsoleLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r, _ := setup(t, Options{Logger: zap.New(core)})
	require.NoError(t, r.Run("console.js", `
		console.log("offset", scroll.offset("box").y);
		console.warn("careful");
		console.error("bad", 1, true);
	`))
	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "offset 0", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "bad 1 true", entries[2].Message)
	assert.Equal(t, "console", entries[2].LoggerName)
}

func TestRunWithoutFrame(t *testing.T) {
	e := engine.NewEngine(text.NewCellShaper(8, 16), engine.Options{})
	r := New(e, Options{})
	err := r.Run("early.js", `scroll.set("box", 0, 0);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), engine.ErrNoFrame.Error())
}
