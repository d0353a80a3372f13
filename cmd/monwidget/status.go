package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opd-ai/monwidget/pkg/monwidget"
)

// statusSamples is how many ticks status waits for. CPU usage is measured
// between two samples, so one is not enough.
const statusSamples = 2

func statusCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Sample every monitor once and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			status, err := sampleStatus(ctx, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := status.JSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			writeStatus(out, status, isTerminal(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func sampleStatus(ctx context.Context, flags *rootFlags) (monwidget.Status, error) {
	metrics := monwidget.NewMetrics()
	w, _, err := flags.open(monwidget.Options{Headless: true, Metrics: metrics}, true)
	if err != nil {
		return monwidget.Status{}, err
	}
	if err := w.Start(); err != nil {
		return monwidget.Status{}, err
	}
	defer w.Stop()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(3 * time.Second)
	for metrics.Snapshot().Ticks < statusSamples {
		select {
		case <-ctx.Done():
			return monwidget.Status{}, ctx.Err()
		case <-timeout:
			return w.Status(), nil
		case <-ticker.C:
		}
	}
	return w.Status(), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	statusHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6699FF"))
	statusMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	statusError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E66666"))
)

// writeStatus prints s as aligned text, styled only for terminals.
func writeStatus(w io.Writer, s monwidget.Status, styled bool) {
	style := func(st lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return st.Render(text)
	}
	heading := func(title string) { fmt.Fprintln(w, style(statusHeading, title)) }
	row := func(label, value string) { fmt.Fprintf(w, "  %-12s %s\n", label, value) }
	na := style(statusMuted, "n/a")

	sample := s.Sample
	heading("Utilization")
	row("CPU", fmt.Sprintf("%.1f%%", sample.CPU))
	mem := fmt.Sprintf("%.1f%%", sample.Memory)
	if sample.MemoryTotal > 0 {
		mem += fmt.Sprintf("  %s / %s", humanize.IBytes(sample.MemoryUsed), humanize.IBytes(sample.MemoryTotal))
	}
	row("Memory", mem)
	row("GPU", optional(sample.GPU, "%.1f%%", na))
	row("Network", fmt.Sprintf("down %s  up %s", rate(sample.NetRx), rate(sample.NetTx)))
	row("Disk I/O", fmt.Sprintf("read %s  write %s", rate(sample.DiskRead), rate(sample.DiskWrite)))

	heading("Temperatures")
	row("CPU", optional(sample.CPUTemp, "%.1f°C", na))
	row("GPU", optional(sample.GPUTemp, "%.1f°C", na))

	heading("Storage")
	if len(sample.Disks) == 0 {
		row("", na)
	}
	for _, d := range sample.Disks {
		row(d.Name, fmt.Sprintf("%.1f%%  %s / %s  %s", d.UsedPercent,
			humanize.Bytes(d.UsedBytes), humanize.Bytes(d.TotalBytes), style(statusMuted, d.MountPoint)))
	}

	heading("Batteries")
	if len(sample.Batteries) == 0 {
		row("", style(statusMuted, "No batteries detected"))
	}
	for _, b := range sample.Batteries {
		state := na
		switch {
		case !b.Connected:
			state = style(statusMuted, "Disconnected")
		case b.Level != nil:
			state = fmt.Sprintf("%d%%", *b.Level)
			if b.Status != "" {
				state += " " + strings.ToLower(b.Status)
			}
		}
		row(b.Name, state)
	}

	heading("Weather")
	if sample.Weather == nil {
		row("", na)
	} else {
		row(sample.Weather.Location, fmt.Sprintf("%.1f°C  %s  humidity %d%%",
			sample.Weather.Temperature, sample.Weather.Description, sample.Weather.Humidity))
	}

	heading("Notifications")
	row("Captured", fmt.Sprintf("%d", sample.Notifications))

	if m := sample.Media; m != nil {
		heading("Media")
		track := m.Title
		if m.Artist != "" {
			track += " by " + m.Artist
		}
		row(m.Player, fmt.Sprintf("%s  %s", track, style(statusMuted, strings.ToLower(m.Status))))
	}

	if len(s.FailingSources) > 0 {
		fmt.Fprintln(w, style(statusError, "Failing: "+strings.Join(s.FailingSources, ", ")))
	}
}

func optional(v *float64, format, missing string) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf(format, *v)
}

func rate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	return humanize.Bytes(uint64(bytesPerSec)) + "/s"
}
