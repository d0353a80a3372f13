package main

import (
	"github.com/spf13/cobra"

	"github.com/opd-ai/monwidget/internal/tui"
	"github.com/opd-ai/monwidget/pkg/monwidget"
)

// tuiSource adapts a Widget to the dashboard.
type tuiSource struct {
	monwidget.Widget
}

func (s tuiSource) LastErrors() *monwidget.UpdateError { return s.Errors() }

func tuiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Show the widget in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			// The dashboard drives the ticks itself; the headless loop
			// only keeps Snapshot fresh for other readers.
			w, _, err := flags.open(monwidget.Options{Headless: true, WatchConfig: true}, true)
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			return tui.Run(ctx, tuiSource{w})
		},
	}
}
