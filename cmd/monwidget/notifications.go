package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opd-ai/monwidget/internal/monitor"
	"github.com/opd-ai/monwidget/pkg/monwidget"
)

func notificationsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "notifications",
		Short: "Print desktop notifications as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			cfg, err := flags.load()
			if err != nil {
				return err
			}
			cfg.ShowNotifications = true
			w, err := flags.build(cfg, monwidget.Options{Headless: true, DisableCache: true}, true)
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			return tailNotifications(ctx, w, cmd.OutOrStdout(), time.Second)
		},
	}
}

type snapshotter interface {
	Snapshot() monwidget.Snapshot
}

// tailNotifications prints every notification not printed before, oldest
// first, until ctx is done.
func tailNotifications(ctx context.Context, src snapshotter, out io.Writer, every time.Duration) error {
	seen := make(map[string]bool)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		fresh := unseen(src.Snapshot().Notifications, seen)
		for _, n := range fresh {
			fmt.Fprintln(out, formatNotification(n))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func unseen(notes []monitor.Notification, seen map[string]bool) []monitor.Notification {
	var fresh []monitor.Notification
	for _, n := range notes {
		key := fmt.Sprintf("%s\x00%d\x00%s\x00%s", n.AppName, n.Timestamp, n.Summary, n.Body)
		if seen[key] {
			continue
		}
		seen[key] = true
		fresh = append(fresh, n)
	}
	sort.SliceStable(fresh, func(i, j int) bool { return fresh[i].Timestamp < fresh[j].Timestamp })
	return fresh
}

func formatNotification(n monitor.Notification) string {
	line := n.Time().Format("15:04:05") + " " + n.AppName + ": " + n.Summary
	if body := strings.Join(strings.Fields(n.Body), " "); body != "" {
		line += " - " + body
	}
	return line
}
