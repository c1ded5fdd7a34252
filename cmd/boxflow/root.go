package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boxflow/internal/app"
	"boxflow/internal/config"
	"boxflow/internal/observability"
	"boxflow/pkg/layout"
	"boxflow/pkg/style"
)

// state is shared by every subcommand of one invocation.
type state struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	s := &state{}
	root := &cobra.Command{
		Use:           "boxflow",
		Short:         "Incremental box layout engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s.logger != nil {
				observability.Sync(s.logger)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&s.cfgFile, "config", "c", "", "config file (YAML)")
	flags.Float64("width", 0, "viewport width in pixels")
	flags.Float64("height", 0, "viewport height in pixels")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRenderCmd(s),
		newDumpCmd(s),
		newScriptCmd(s),
		newTermCmd(s),
		newConfigCmd(s),
		newDiffCmd(s),
	)
	return root
}

// setup loads the configuration and logger. Flags that were set override
// the file and environment.
func (s *state) setup(cmd *cobra.Command) error {
	v, err := config.New(s.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"viewport.width":  "width",
		"viewport.height": "height",
		"logger.level":    "log-level",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", flag, err)
			}
		}
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = observability.NewLogger(cfg.Logger)
	s.logger.Debug("configuration loaded",
		zap.String("file", v.ConfigFileUsed()),
		zap.Float64("viewport_width", cfg.Viewport.Width),
		zap.Float64("viewport_height", cfg.Viewport.Height))
	return nil
}

// load builds an App and reads the document at path.
func (s *state) load(path string) (*app.App, *style.Document, error) {
	a, err := app.New(s.cfg, s.logger)
	if err != nil {
		return nil, nil, err
	}
	doc, err := style.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("document loaded", zap.String("path", path), zap.Stringer("id", doc.ID))
	return a, doc, nil
}

// assetDir is where relative image sources of the document at path live.
func assetDir(path string) string {
	return filepath.Dir(path)
}

// parseOffsets reads key=x,y scroll offsets. A single number scrolls
// vertically.
func parseOffsets(specs []string) (map[string]layout.Point, error) {
	out := make(map[string]layout.Point, len(specs))
	for _, spec := range specs {
		key, val, ok := strings.Cut(spec, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid scroll offset %q, want key=x,y", spec)
		}
		var p layout.Point
		xs, ys, pair := strings.Cut(val, ",")
		if !pair {
			xs, ys = "0", val
		}
		var err error
		if p.X, err = strconv.ParseFloat(strings.TrimSpace(xs), 64); err != nil {
			return nil, fmt.Errorf("invalid scroll offset %q: %w", spec, err)
		}
		if p.Y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
			return nil, fmt.Errorf("invalid scroll offset %q: %w", spec, err)
		}
		out[key] = p
	}
	return out, nil
}
