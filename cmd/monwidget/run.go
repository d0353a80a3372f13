package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opd-ai/monwidget/internal/profiling"
	"github.com/opd-ai/monwidget/pkg/monwidget"
)

type runFlags struct {
	headless   bool
	watch      bool
	cpuProfile string
	memProfile string
}

func runCmd(flags *rootFlags) *cobra.Command {
	rf := runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the widget window",
		Long: `Open the widget window and refresh it every second.
SIGHUP reloads the configuration file; SIGINT and SIGTERM exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWidget(cmd, flags, rf)
		},
	}
	cmd.Flags().BoolVar(&rf.headless, "headless", false, "refresh the monitors without a window")
	cmd.Flags().BoolVar(&rf.watch, "watch", true, "reload the configuration when the file changes")
	cmd.Flags().StringVar(&rf.cpuProfile, "cpuprofile", "", "write a CPU profile to `file`")
	cmd.Flags().StringVar(&rf.memProfile, "memprofile", "", "write a heap profile to `file` on exit")
	return cmd
}

func runWidget(cmd *cobra.Command, flags *rootFlags, rf runFlags) error {
	profCfg := profiling.Config{CPUPath: rf.cpuProfile, HeapPath: rf.memProfile}
	if profCfg.Enabled() {
		profiler := profiling.New(profCfg)
		if err := profiler.Start(); err != nil {
			return err
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
		}()
	}

	w, _, err := flags.open(monwidget.Options{
		Headless:    rf.headless,
		WatchConfig: rf.watch,
	}, false)
	if err != nil {
		return err
	}

	stopped := make(chan struct{})
	w.SetErrorHandler(func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	})
	w.SetEventHandler(func(e monwidget.Event) {
		if e.Type == monwidget.EventStopped {
			close(stopped)
		}
	})

	if err := w.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-stopped:
			// Window closed by the user.
			return nil
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				if err := w.ReloadConfig(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Reload failed: %v\n", err)
				}
				continue
			}
			return w.Stop()
		}
	}
}
