package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"boxflow/pkg/display"
	"boxflow/pkg/engine"
	"boxflow/pkg/layout"
	"boxflow/pkg/style"
)

type boxDump struct {
	ID       int       `yaml:"id"`
	Key      string    `yaml:"key,omitempty"`
	Kind     string    `yaml:"kind"`
	Text     string    `yaml:"text,omitempty"`
	Bounds   []float64 `yaml:"bounds,flow,omitempty"`
	Children []boxDump `yaml:"children,omitempty"`
}

type itemDump struct {
	Kind   string    `yaml:"kind"`
	Node   int       `yaml:"node"`
	Bounds []float64 `yaml:"bounds,flow,omitempty"`
	Detail string    `yaml:"detail,omitempty"`
}

type frameDump struct {
	Iterations int        `yaml:"iterations"`
	Warnings   []string   `yaml:"warnings,omitempty"`
	Boxes      boxDump    `yaml:"boxes"`
	Items      []itemDump `yaml:"items,omitempty"`
}

func newDumpCmd(s *state) *cobra.Command {
	var (
		format  string
		items   bool
		offsets []string
	)
	cmd := &cobra.Command{
		Use:   "dump <document.yaml>",
		Short: "Print the laid-out boxes and display list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return fmt.Errorf("unknown format %q, want text or yaml", format)
			}
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
			if frame.List, err = a.Engine.Repaint(now); err != nil {
				return err
			}

			d := buildDump(a.Engine, frame, items)
			if format == "yaml" {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(d); err != nil {
					return err
				}
				return enc.Close()
			}
			writeText(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	cmd.Flags().BoolVar(&items, "items", false, "include the display list")
	cmd.Flags().StringArrayVar(&offsets, "scroll", nil, "scroll offset key=x,y or key=y (repeatable)")
	return cmd
}

func rect(r layout.Rect) []float64 {
	return []float64{r.X, r.Y, r.Width, r.Height}
}

func buildDump(e *engine.Engine, f *engine.Frame, withItems bool) frameDump {
	d := frameDump{Iterations: f.Result.Iterations, Boxes: dumpNode(e, f.Doc.Root)}
	for _, w := range f.Result.Warnings {
		d.Warnings = append(d.Warnings, w.Error())
	}
	if withItems {
		for _, it := range f.List.Items {
			d.Items = append(d.Items, dumpItem(it))
		}
	}
	return d
}

func dumpNode(e *engine.Engine, n *style.Node) boxDump {
	b := boxDump{ID: int(n.ID), Key: n.Key, Kind: n.Kind.String(), Text: n.Text}
	if r, ok := e.Bounds(n.ID); ok {
		b.Bounds = rect(r)
	}
	for _, c := range n.Children {
		b.Children = append(b.Children, dumpNode(e, c))
	}
	return b
}

func colorString(c style.Color) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func dumpItem(it display.Item) itemDump {
	d := itemDump{Node: int(it.Source())}
	switch v := it.(type) {
	case display.Rect:
		d.Kind, d.Bounds, d.Detail = "rect", rect(v.Bounds), colorString(v.Color)
	case display.Border:
		d.Kind, d.Bounds, d.Detail = "border", rect(v.Bounds), colorString(v.Color)
	case display.TextRun:
		d.Kind, d.Bounds, d.Detail = "text", rect(v.Bounds), fmt.Sprintf("%q %s %gpx", v.Text, v.Font, v.Size)
	case display.Image:
		d.Kind, d.Bounds, d.Detail = "image", rect(v.Bounds), v.Src
	case display.SelectionRect:
		d.Kind, d.Bounds = "selection", rect(v.Bounds)
	case display.CursorRect:
		d.Kind, d.Bounds = "cursor", rect(v.Bounds)
	case display.ScrollBar:
		axis := "horizontal"
		if v.Vertical {
			axis = "vertical"
		}
		d.Kind, d.Bounds = "scrollbar", rect(v.Track)
		d.Detail = fmt.Sprintf("%s thumb=%v opacity=%.2f", axis, rect(v.Thumb), v.Opacity)
	case display.PushClip:
		d.Kind, d.Bounds = "push-clip", rect(v.Bounds)
	case display.PopClip:
		d.Kind = "pop-clip"
	case display.PushScrollFrame:
		d.Kind, d.Bounds = "push-scroll", rect(v.Clip)
		d.Detail = fmt.Sprintf("offset=%g,%g", v.Offset.X, v.Offset.Y)
	case display.PopScrollFrame:
		d.Kind = "pop-scroll"
	case display.HitTestArea:
		d.Kind, d.Bounds = "hit", rect(v.Bounds)
		if v.Scroll {
			d.Detail = "scroll"
		}
	default:
		d.Kind = fmt.Sprintf("%T", it)
	}
	return d
}

func writeText(w io.Writer, d frameDump) {
	fmt.Fprintf(w, "iterations: %d\n", d.Iterations)
	for _, warn := range d.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	var box func(b boxDump, depth int)
	box = func(b boxDump, depth int) {
		fmt.Fprintf(w, "%s#%d %s", strings.Repeat("  ", depth), b.ID, b.Kind)
		if b.Key != "" {
			fmt.Fprintf(w, " key=%s", b.Key)
		}
		if b.Text != "" {
			fmt.Fprintf(w, " %q", b.Text)
		}
		if b.Bounds != nil {
			fmt.Fprintf(w, " (%g,%g %gx%g)", b.Bounds[0], b.Bounds[1], b.Bounds[2], b.Bounds[3])
		}
		fmt.Fprintln(w)
		for _, c := range b.Children {
			box(c, depth+1)
		}
	}
	box(d.Boxes, 0)
	if len(d.Items) > 0 {
		fmt.Fprintln(w, "items:")
	}
	for _, it := range d.Items {
		fmt.Fprintf(w, "  %-12s node=%d", it.Kind, it.Node)
		if it.Bounds != nil {
			fmt.Fprintf(w, " (%g,%g %gx%g)", it.Bounds[0], it.Bounds[1], it.Bounds[2], it.Bounds[3])
		}
		if it.Detail != "" {
			fmt.Fprintf(w, " %s", it.Detail)
		}
		fmt.Fprintln(w)
	}
}
