// Command boxview opens a YAML document fixture in a window. The wheel
// scrolls the container under the pointer.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boxflow/internal/app"
	"boxflow/internal/config"
	"boxflow/internal/observability"
	"boxflow/pkg/style"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:           "boxview <document.yaml>",
		Short:         "Show a document in a window",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.Logger)
			defer observability.Sync(logger)
			return show(cfg, logger, args[0])
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	return cmd
}

func show(cfg *config.Config, logger *zap.Logger, path string) error {
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	doc, err := style.LoadFile(path)
	if err != nil {
		return err
	}

	fa := fyneapp.New()
	w := fa.NewWindow("boxview - " + filepath.Base(path))

	status := widget.NewLabel("")
	view := newDocView(a, doc, filepath.Dir(path))
	view.OnStatus = status.SetText
	if err := view.load(time.Now()); err != nil {
		return err
	}

	w.SetContent(container.NewBorder(nil, status, nil, nil, view))
	w.Resize(view.MinSize().Add(fyne.NewSize(0, status.MinSize().Height)))

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	go func() {
		for now := range ticker.C {
			fyne.Do(func() { view.tick(now) })
		}
	}()

	w.ShowAndRun()
	return nil
}

func statusLine(iterations, items int) string {
	return fmt.Sprintf("laid out in %d pass(es), %d display items", iterations, items)
}

// nodeLabel names a node by key when it has one.
func nodeLabel(doc *style.Document, id style.NodeID) string {
	n := doc.Node(id)
	if n == nil {
		return ""
	}
	if n.Key != "" {
		return fmt.Sprintf("%s #%d (%s)", n.Kind, n.ID, n.Key)
	}
	return fmt.Sprintf("%s #%d", n.Kind, n.ID)
}
