// Command monwidget shows CPU, memory, storage, battery, weather and
// notification status in a small overlay window on the Linux desktop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opd-ai/monwidget/internal/config"
	"github.com/opd-ai/monwidget/pkg/monwidget"
)

// Version can be overridden at build time:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	verbose    bool
	scale      float64
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "monwidget",
		Short: "Desktop system metrics widget",
		Long: `monwidget draws CPU, memory, GPU, temperature, storage, battery,
weather and notification status in a small window kept below other windows.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWidget(cmd, flags, runFlags{watch: true})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output")
	pf.Float64Var(&flags.scale, "scale", 1, "window scale factor for HiDPI screens")

	root.AddCommand(
		runCmd(flags),
		statusCmd(flags),
		tuiCmd(flags),
		configCmd(flags),
		cacheCmd(),
		notificationsCmd(flags),
		versionCmd(),
	)
	return root
}

func (f *rootFlags) path() string {
	if f.configPath != "" {
		return f.configPath
	}
	return config.DefaultPath()
}

// load reads the configuration. A missing file gives the defaults.
func (f *rootFlags) load() (config.Config, error) {
	cfg, err := config.Load(f.path())
	if err != nil {
		return config.Config{}, fmt.Errorf("load %s: %w", f.path(), err)
	}
	return cfg, nil
}

// logger picks the log level: --verbose or enable_logging turn on debug.
func (f *rootFlags) logger(cfg config.Config) monwidget.Logger {
	if f.verbose || cfg.EnableLogging {
		return monwidget.DebugLogger()
	}
	return monwidget.DefaultLogger()
}

// quietLogger is used by commands that own the terminal.
func (f *rootFlags) quietLogger() monwidget.Logger {
	if f.verbose {
		return monwidget.DebugLogger()
	}
	return monwidget.NopLogger()
}

// open loads the configuration and builds an unstarted widget.
func (f *rootFlags) open(opts monwidget.Options, quiet bool) (monwidget.Widget, config.Config, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, cfg, err
	}
	w, err := f.build(cfg, opts, quiet)
	return w, cfg, err
}

// build creates a widget for cfg with the shared flags applied.
func (f *rootFlags) build(cfg config.Config, opts monwidget.Options, quiet bool) (monwidget.Widget, error) {
	if opts.Logger == nil {
		if quiet {
			opts.Logger = f.quietLogger()
		} else {
			opts.Logger = f.logger(cfg)
		}
	}
	opts.ConfigPath = f.path()
	opts.Scale = f.scale
	return monwidget.New(cfg, &opts)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "monwidget version %s\n", Version)
		},
	}
}
