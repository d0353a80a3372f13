// Package tui renders the widget's frame parameters in a terminal.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/opd-ai/monwidget/internal/config"
	"github.com/opd-ai/monwidget/internal/layout"
	"github.com/opd-ai/monwidget/internal/monitor"
	"github.com/opd-ai/monwidget/internal/widget"
)

// Source is the part of the scheduler the dashboard drives.
type Source interface {
	Tick(ctx context.Context, now time.Time) widget.RenderParams
	ClearNotifications()
	NextPlayer()
	PrevPlayer()
	LastErrors() *monitor.UpdateError
}

type tickMsg time.Time

const (
	minBarWidth = 10
	maxBarWidth = 40
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx context.Context
	src Source

	params  widget.RenderParams
	sampled bool
	errs    *monitor.UpdateError

	bar   progress.Model
	help  help.Model
	width int
}

// New returns a dashboard over src. ctx bounds every monitor refresh.
func New(ctx context.Context, src Source) Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = maxBarWidth
	return Model{ctx: ctx, src: src, bar: bar, help: help.New()}
}

// Init samples immediately.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg(time.Now()) }
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) refresh(now time.Time) {
	m.params = m.src.Tick(m.ctx, now)
	m.errs = m.src.LastErrors()
	m.sampled = true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh(time.Time(msg))
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.src.ClearNotifications()
			m.refresh(time.Now())
		case key.Matches(msg, keys.Refresh):
			m.refresh(time.Now())
		case key.Matches(msg, keys.NextPlayer):
			m.src.NextPlayer()
			m.refresh(time.Now())
		case key.Matches(msg, keys.PrevPlayer):
			m.src.PrevPlayer()
			m.refresh(time.Now())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-34, minBarWidth), maxBarWidth)
		m.help.Width = msg.Width
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.sampled {
		return "Sampling...\n"
	}
	p := &m.params
	cfg := &p.Config

	blocks := []string{m.viewClock()}
	for _, sec := range cfg.SectionOrder {
		if layout.SectionHeight(cfg, sec, p.Counts()) == 0 {
			continue
		}
		if body := m.viewSection(sec); body != "" {
			blocks = append(blocks, styleSection.Render(styleTitle.Render(sec.Label())+"\n"+body))
		}
	}
	if m.errs != nil && len(m.errs.Errors) > 0 {
		var names []string
		for _, ce := range m.errs.Errors {
			names = append(names, string(ce.Source))
		}
		blocks = append(blocks, styleError.Render("failing: "+strings.Join(names, ", ")))
	}
	blocks = append(blocks, m.help.View(keys))
	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}

func (m Model) viewClock() string {
	cfg := &m.params.Config
	now := m.params.Now
	var parts []string
	if cfg.ShowClock {
		format := "3:04:05 PM"
		if cfg.Use24HourTime {
			format = "15:04:05"
		}
		parts = append(parts, styleClock.Render(now.Format(format)))
	}
	if cfg.ShowDate {
		parts = append(parts, styleDate.Render(now.Format("Monday, 02 January 2006")))
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewSection(sec config.Section) string {
	switch sec {
	case config.SectionUtilization:
		return m.viewUtilization()
	case config.SectionTemperatures:
		return m.viewTemperatures()
	case config.SectionStorage:
		return m.viewStorage()
	case config.SectionBattery:
		return m.viewBatteries()
	case config.SectionWeather:
		return m.viewWeather()
	case config.SectionNotifications:
		return m.viewNotifications()
	case config.SectionMedia:
		return m.viewMedia()
	}
	return ""
}

func (m Model) barLine(label string, pct float64, suffix string) string {
	return styleLabel.Render(label) + m.bar.ViewAs(math.Min(math.Max(pct, 0), 100)/100) + " " + levelStyle(pct).Render(suffix)
}

func (m Model) viewUtilization() string {
	cfg := &m.params.Config
	u := m.params.Utilization
	var lines []string
	if cfg.ShowCPU {
		lines = append(lines, m.barLine("CPU", u.CPUUsage, fmt.Sprintf("%5.1f%%", u.CPUUsage)))
	}
	if cfg.ShowMemory {
		mem := fmt.Sprintf("%5.1f%%", u.MemoryUsage)
		if u.MemoryTotal > 0 {
			mem += styleMuted.Render(fmt.Sprintf("  %s / %s", humanize.IBytes(u.MemoryUsed), humanize.IBytes(u.MemoryTotal)))
		}
		lines = append(lines, m.barLine("RAM", u.MemoryUsage, mem))
	}
	if cfg.ShowGPU {
		if u.GPUAvailable {
			lines = append(lines, m.barLine("GPU", u.GPUUsage, fmt.Sprintf("%5.1f%%", u.GPUUsage)))
		} else {
			lines = append(lines, styleLabel.Render("GPU")+styleMuted.Render("N/A"))
		}
	}
	if cfg.ShowNetwork {
		n := m.params.Network
		lines = append(lines, styleLabel.Render("Network")+fmt.Sprintf("↓ %s  ↑ %s", rate(n.RxBytesPerSec), rate(n.TxBytesPerSec)))
	}
	if cfg.ShowDisk {
		d := m.params.DiskIO
		lines = append(lines, styleLabel.Render("Disk I/O")+fmt.Sprintf("read %s  write %s", rate(d.ReadBytesPerSec), rate(d.WriteBytesPerSec)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewTemperatures() string {
	cfg := &m.params.Config
	t := m.params.Temperature
	var lines []string
	for _, e := range []struct {
		on    bool
		label string
		temp  float64
	}{
		{cfg.ShowCPUTemp, "CPU", t.CPUTemp},
		{cfg.ShowGPUTemp, "GPU", t.GPUTemp},
	} {
		if !e.on {
			continue
		}
		value := styleMuted.Render("N/A")
		if e.temp > 0 {
			value = levelStyle(e.temp).Render(fmt.Sprintf("%.1f°C", e.temp))
		}
		lines = append(lines, styleLabel.Render(e.label)+value)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewStorage() string {
	var lines []string
	for _, d := range m.params.Disks {
		if d.IsLoading {
			lines = append(lines, styleLabel.Render(d.Name)+m.bar.ViewAs(0)+" "+styleMuted.Render("Loading..."))
			continue
		}
		suffix := fmt.Sprintf("%5.1f%%", d.UsedPercentage)
		suffix += styleMuted.Render(fmt.Sprintf("  %s / %s", humanize.Bytes(d.UsedSpace), humanize.Bytes(d.TotalSpace)))
		lines = append(lines, m.barLine(d.Name, d.UsedPercentage, suffix))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewBatteries() string {
	if len(m.params.Batteries) == 0 {
		return styleMuted.Render("No batteries detected")
	}
	var lines []string
	for _, dev := range m.params.Batteries {
		var state string
		switch {
		case !dev.IsConnected:
			state = styleMuted.Render("Disconnected")
		case dev.IsLoading:
			state = styleMuted.Render("Connecting...")
		case dev.HasLevel:
			// Invert so a low charge reads as danger.
			state = levelStyle(100 - float64(dev.Level)).Render(fmt.Sprintf("%d%%", dev.Level))
			if s := strings.ToLower(dev.Status); strings.HasPrefix(s, "charging") || strings.HasPrefix(s, "recharging") {
				state += " charging"
			}
		default:
			state = styleMuted.Render("N/A")
		}
		name := dev.Name
		if dev.Kind != "" {
			name += styleMuted.Render(" (" + dev.Kind + ")")
		}
		lines = append(lines, name+"  "+state)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewWeather() string {
	w := m.params.Weather
	temp := "N/A"
	if w.HasData() {
		temp = fmt.Sprintf("%.1f°C", w.Temperature)
		if !math.IsNaN(w.FeelsLike) {
			temp += styleMuted.Render(fmt.Sprintf(" (feels %.0f°C)", w.FeelsLike))
		}
	}
	line := temp + "  " + w.Description
	if w.HasData() && w.Humidity > 0 {
		line += styleMuted.Render(fmt.Sprintf("  humidity %d%%", w.Humidity))
	}
	return line + "\n" + styleMuted.Render(w.Location)
}

func (m Model) viewNotifications() string {
	groups := m.params.NotificationGroups
	if len(groups) == 0 {
		return styleMuted.Render("No notifications")
	}
	var lines []string
	shown := 0
	for _, g := range groups {
		if shown >= layout.MaxNotificationRows {
			break
		}
		lines = append(lines, styleApp.Render(fmt.Sprintf("%s (%d)", g.AppName, len(g.Notifications))))
		for _, n := range g.Notifications {
			if shown >= layout.MaxNotificationRows {
				break
			}
			line := "  " + n.Summary
			if body := strings.Join(strings.Fields(n.Body), " "); body != "" {
				line += ": " + body
			}
			line += styleMuted.Render("  " + humanize.RelTime(n.Time(), m.params.Now, "ago", "from now"))
			lines = append(lines, line)
			shown++
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewMedia() string {
	cur, ok := m.params.CurrentMedia()
	if !ok {
		return styleMuted.Render("Nothing playing")
	}
	title := cur.Title
	if cur.Artist != "" {
		title += styleMuted.Render(" by ") + cur.Artist
	}
	lines := []string{title}
	if cur.Album != "" {
		lines = append(lines, styleMuted.Render(cur.Album))
	}
	timing := monitor.FormatTrackTime(cur.Position)
	if cur.Length > 0 {
		timing += " / " + monitor.FormatTrackTime(cur.Length)
	}
	lines = append(lines, m.bar.ViewAs(cur.Progress())+" "+timing)

	player := styleApp.Render(cur.Player) + styleMuted.Render(" "+strings.ToLower(string(cur.Status)))
	if n := len(m.params.Media); n > 1 {
		player += styleMuted.Render(fmt.Sprintf("  (%d/%d)", m.params.MediaIndex+1, n))
	}
	return strings.Join(append(lines, player), "\n")
}

func rate(bytesPerSec float64) string {
	if bytesPerSec < 0 || math.IsNaN(bytesPerSec) {
		bytesPerSec = 0
	}
	return humanize.Bytes(uint64(bytesPerSec)) + "/s"
}

// Run starts the dashboard on the terminal and blocks until the user quits.
func Run(ctx context.Context, src Source) error {
	_, err := tea.NewProgram(New(ctx, src), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
