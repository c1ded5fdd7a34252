package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boxflow/pkg/visualtest"
)

// errImagesDiffer is returned when two renders do not match.
var errImagesDiffer = errors.New("images differ")

func newDiffCmd(s *state) *cobra.Command {
	var (
		opts     = visualtest.DefaultOptions()
		diffPath string
	)
	cmd := &cobra.Command{
		Use:   "diff <actual.png> <expected.png>",
		Short: "Compare two renders pixel by pixel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Diff = diffPath != ""
			res, err := visualtest.CompareFiles(args[0], args[1], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d pixels differ (%.2f%%), max channel difference %d\n",
				res.DifferentPixels, res.TotalPixels, res.Percent(), res.MaxDifference)
			if res.Match {
				return nil
			}
			if res.Diff != nil {
				if err := visualtest.WritePNG(diffPath, res.Diff); err != nil {
					return err
				}
				s.logger.Info("diff image saved", zap.String("path", diffPath))
			}
			return errImagesDiffer
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Tolerance, "tolerance", opts.Tolerance, "largest per-channel difference that still matches")
	f.IntVar(&opts.FuzzyRadius, "fuzzy", 0, "match pixels within this radius")
	f.Float64Var(&opts.MaxDifferentPercent, "max-percent", 0, "accept up to this share of differing pixels")
	f.StringVar(&diffPath, "diff", "", "write a diff image here when the images differ")
	return cmd
}
