package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boxflow/pkg/display"
	"boxflow/pkg/script"
)

func newScriptCmd(s *state) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "script <document.yaml> <script.js>",
		Short: "Drive scrolling from a script and save snapshots as PNGs",
		Long: `Runs a JavaScript file against the laid-out document on a virtual
clock. frame.snapshot(name) writes <out>/<name>.png.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}
			a, doc, err := s.load(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			start := time.Now()
			if _, err := a.Engine.Layout(doc, a.Viewport(), nil, start); err != nil {
				return err
			}
			r := a.Renderer(assetDir(args[0]))
			runner := script.New(a.Engine, script.Options{
				Start:  start,
				Logger: s.logger,
				Snapshot: func(name string, l *display.List) error {
					path := filepath.Join(outDir, name+".png")
					r.Render(l)
					if err := r.SavePNG(path); err != nil {
						return err
					}
					s.logger.Info("snapshot saved", zap.String("path", path))
					return nil
				},
			})
			return runner.Run(filepath.Base(args[1]), string(src))
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for snapshots")
	return cmd
}
