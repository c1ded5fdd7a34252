// Package app wires configuration into an engine, a shaper and renderers
// for the boxflow commands.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"boxflow/internal/config"
	"boxflow/pkg/engine"
	"boxflow/pkg/images"
	"boxflow/pkg/layout"
	"boxflow/pkg/render"
	"boxflow/pkg/render/termcell"
	"boxflow/pkg/scroll"
	"boxflow/pkg/text"
)

// App is one configured engine and everything needed to paint it.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Engine *engine.Engine
	Shaper text.Shaper

	// fonts is nil for the cell shaper; the raster renderer then uses its
	// bitmap face.
	fonts render.FaceSource
}

// New builds an App from cfg.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	easing, err := scroll.ParseEasing(cfg.Scroll.Easing)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}
	switch cfg.Text.Shaper {
	case "font":
		g, err := text.NewFontShaper(cfg.Text.FontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load font: %w", err)
		}
		a.Shaper = g
		a.fonts = g.Measurer().(*text.FontMeasurer)
	default:
		a.Shaper = text.NewCellShaper(cfg.Text.CellWidth, cfg.Text.LineHeight)
	}

	sm := scroll.NewManager(scroll.Options{
		FadeDelay:        cfg.Scroll.FadeDelay,
		FadeDuration:     cfg.Scroll.FadeDuration,
		NearEndThreshold: cfg.Scroll.NearEndThreshold,
		Logger:           logger.Named("scroll"),
	})
	var overlay float64
	if cfg.Layout.OverlayScrollbars {
		overlay = cfg.Layout.ScrollbarWidth
	}
	a.Engine = engine.NewEngine(a.Shaper, engine.Options{
		Layout: layout.Options{
			ScrollbarWidth:      cfg.Layout.ScrollbarWidth,
			OverlayScrollbars:   cfg.Layout.OverlayScrollbars,
			MaxReflowIterations: cfg.Layout.MaxReflowIterations,
		},
		Scroll:                sm,
		OverlayScrollbarWidth: overlay,
		MinThumb:              cfg.Layout.MinThumb,
		WheelDuration:         cfg.Scroll.DefaultDuration,
		WheelEasing:           easing,
		Logger:                logger,
	})
	return a, nil
}

// Viewport is the configured viewport.
func (a *App) Viewport() layout.Size {
	return layout.Size{Width: a.Config.Viewport.Width, Height: a.Config.Viewport.Height}
}

// Renderer returns a raster renderer the size of the viewport that resolves
// relative image sources against dir.
func (a *App) Renderer(dir string) *render.Renderer {
	vp := a.Viewport()
	return render.NewRenderer(int(vp.Width), int(vp.Height), render.Options{
		Fonts:  a.fonts,
		Images: images.NewLoader(dir),
		Logger: a.Logger.Named("render"),
	})
}

// Painter returns a cell painter over s using the cell shaper's grid.
func (a *App) Painter(s termcell.Screen) *termcell.Painter {
	return termcell.NewPainter(s, a.Config.Text.CellWidth, a.Config.Text.LineHeight)
}

// ApplyOffsets jumps the scroll containers named by key to the given
// offsets on the committed frame.
func (a *App) ApplyOffsets(now time.Time, offsets map[string]layout.Point) error {
	f := a.Engine.Frame()
	if f == nil {
		return engine.ErrNoFrame
	}
	for key, p := range offsets {
		n, ok := f.Doc.ByKey(key)
		if !ok {
			return fmt.Errorf("no node with key %q", key)
		}
		a.Engine.Scroll().Set(now, scroll.Key{Doc: f.Doc.ID, Node: n.ID}, p)
	}
	return nil
}
