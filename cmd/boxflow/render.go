package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd(s *state) *cobra.Command {
	var (
		output  string
		offsets []string
	)
	cmd := &cobra.Command{
		Use:   "render <document.yaml>",
		Short: "Lay out a document and save it as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scrolls, err := parseOffsets(offsets)
			if err != nil {
				return err
			}
			a, doc, err := s.load(args[0])
			if err != nil {
				return err
			}

			now := time.Now()
			frame, err := a.Engine.Layout(doc, a.Viewport(), nil, now)
			if err != nil {
				return err
			}
			if err := a.ApplyOffsets(now, scrolls); err != nil {
				return err
			}
			l, err := a.Engine.Repaint(now)
			if err != nil {
				return err
			}

			r := a.Renderer(assetDir(args[0]))
			r.Render(l)
			if err := r.SavePNG(output); err != nil {
				return err
			}
			s.logger.Info("rendered",
				zap.String("output", output),
				zap.Int("iterations", frame.Result.Iterations),
				zap.Int("items", l.Len()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "output PNG file")
	cmd.Flags().StringArrayVar(&offsets, "scroll", nil, "scroll offset key=x,y or key=y (repeatable)")
	return cmd
}
