package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boxflow/internal/app"
	"boxflow/pkg/layout"
	"boxflow/pkg/render/termcell"
	"boxflow/pkg/style"
)

func newTermCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "term <document.yaml>",
		Short: "Show a document in the terminal and scroll it with the wheel or keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, doc, err := s.load(args[0])
			if err != nil {
				return err
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()
			screen.EnableMouse()
			screen.HideCursor()

			t := newTermSession(a, doc, screen)
			return t.run()
		},
	}
}

// termSession shows one document on a tcell screen.
type termSession struct {
	app     *app.App
	doc     *style.Document
	screen  tcell.Screen
	painter *termcell.Painter
	// pointer is the last mouse position; keys scroll the container under it.
	pointer layout.Point
}

func newTermSession(a *app.App, doc *style.Document, screen tcell.Screen) *termSession {
	return &termSession{app: a, doc: doc, screen: screen, painter: a.Painter(screen)}
}

// layout lays the document out for the current screen size and draws it.
func (t *termSession) layout(now time.Time) error {
	f, err := t.app.Engine.Layout(t.doc, t.painter.Viewport(), nil, now)
	if err != nil {
		return err
	}
	t.painter.Render(f.List)
	t.screen.Show()
	return nil
}

func (t *termSession) run() error {
	if err := t.layout(time.Now()); err != nil {
		return err
	}

	events := make(chan tcell.Event, 10)
	done := make(chan struct{})
	defer close(done)
	go t.poll(events, done)

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			done, err := t.handle(ev, time.Now())
			if err != nil || done {
				return err
			}
		case now := <-ticker.C:
			if err := t.tick(now); err != nil {
				return err
			}
		}
	}
}

// poll forwards screen events until the screen is finalized or done is
// closed. events is closed on return.
func (t *termSession) poll(events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (t *termSession) tick(now time.Time) error {
	res, err := t.app.Engine.Tick(now)
	if err != nil {
		return err
	}
	if res.NeedsRepaint || len(res.Updated) > 0 {
		t.painter.Render(t.app.Engine.Frame().List)
		t.screen.Show()
	}
	for _, k := range res.NearEnd {
		t.app.Logger.Debug("near end", zap.Int("node", int(k.Node)))
	}
	return nil
}

// handle processes one event and reports whether the session should end.
func (t *termSession) handle(ev tcell.Event, now time.Time) (bool, error) {
	line := t.app.Config.Text.LineHeight
	page := t.painter.Viewport().Height - line
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		return false, t.layout(now)
	case *tcell.EventMouse:
		x, y := ev.Position()
		t.pointer = t.painter.Point(x, y)
		btn := ev.Buttons()
		switch {
		case btn&tcell.WheelUp != 0:
			t.wheel(now, layout.Point{Y: -3 * line})
		case btn&tcell.WheelDown != 0:
			t.wheel(now, layout.Point{Y: 3 * line})
		case btn&tcell.WheelLeft != 0:
			t.wheel(now, layout.Point{X: -3 * line})
		case btn&tcell.WheelRight != 0:
			t.wheel(now, layout.Point{X: 3 * line})
		}
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true, nil
		case tcell.KeyUp:
			t.wheel(now, layout.Point{Y: -line})
		case tcell.KeyDown:
			t.wheel(now, layout.Point{Y: line})
		case tcell.KeyPgUp:
			t.wheel(now, layout.Point{Y: -page})
		case tcell.KeyPgDn:
			t.wheel(now, layout.Point{Y: page})
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return true, nil
			}
		}
	}
	return false, nil
}

func (t *termSession) wheel(now time.Time, delta layout.Point) {
	if id, ok := t.app.Engine.Wheel(now, t.pointer, delta); ok {
		t.app.Logger.Debug("wheel", zap.Int("node", int(id)), zap.Float64("dy", delta.Y))
	}
}
