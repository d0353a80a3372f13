package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/opd-ai/monwidget/internal/config"
	"github.com/opd-ai/monwidget/internal/layout"
	"github.com/opd-ai/monwidget/internal/monitor"
	"github.com/opd-ai/monwidget/internal/widget"
)

// Empty-state messages.
const (
	NoBatteriesText     = "No batteries detected"
	NoNotificationsText = "No notifications"
	NoMediaText         = "Nothing playing"
)

const (
	marginX  = 10.0
	barX     = 90.0
	barWidth = 200.0
	barH     = 12.0
)

// Renderer turns RenderParams into frames. It is safe for concurrent use;
// frames are drawn one at a time.
type Renderer struct {
	mu    sync.Mutex
	fonts *FontManager
}

// NewRenderer loads the embedded fonts.
func NewRenderer() (*Renderer, error) {
	fonts, err := NewFontManager()
	if err != nil {
		return nil, err
	}
	return &Renderer{fonts: fonts}, nil
}

// Close releases the cached font faces.
func (r *Renderer) Close() {
	if r.fonts != nil {
		r.fonts.Close()
	}
}

var defaultRenderer = sync.OnceValues(NewRenderer)

// RenderFrame draws p with a shared renderer. If the fonts cannot be
// loaded the frame carries shapes only.
func RenderFrame(p widget.RenderParams) *image.RGBA {
	r, err := defaultRenderer()
	if err != nil {
		r = &Renderer{}
	}
	return r.RenderFrame(p)
}

// RenderFrame draws the clock, then every visible section in the
// configured order, onto a transparent Width by p.Height frame.
func (r *Renderer) RenderFrame(p widget.RenderParams) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := p.Counts()
	height := p.Height
	if height <= 0 {
		height = layout.CalculateHeight(&p.Config, counts)
	}
	img := image.NewRGBA(image.Rect(0, 0, layout.Width, height))
	f := &frame{Painter: NewPainter(img, r.fonts), p: &p}

	y := float64(layout.BasePadding)
	f.clock(y)
	y += float64(layout.ClockBlockHeight(&p.Config))

	for _, sec := range p.Config.SectionOrder {
		h := layout.SectionHeight(&p.Config, sec, counts)
		if h == 0 {
			continue
		}
		f.section(sec, y)
		y += float64(h)
	}
	return img
}

type frame struct {
	*Painter
	p *widget.RenderParams
}

func (f *frame) cfg() *config.Config { return &f.p.Config }

func (f *frame) clock(y float64) {
	cfg := f.cfg()
	now := f.p.Now
	if cfg.ShowClock {
		hm := now.Format("3:04")
		if cfg.Use24HourTime {
			hm = now.Format("15:04")
		}
		x := marginX
		x += f.Text(x, y, hm, FontStyleBold, 48, ColorText)
		x += f.Text(x, y+5, now.Format(":05"), FontStyleBold, 28, ColorText)
		if !cfg.Use24HourTime {
			f.Text(x, y+10, now.Format(" PM"), FontStyleBold, 20, ColorText)
		}
		y += layout.ClockHeight
	}
	if cfg.ShowDate {
		f.Text(marginX, y, now.Format("Monday, 02 January 2006"), FontStyleRegular, 16, ColorText)
	}
}

func (f *frame) section(sec config.Section, y float64) {
	if sec != config.SectionUtilization {
		y += layout.SectionSpacing
	}
	switch sec {
	case config.SectionUtilization:
		f.utilization(y)
	case config.SectionTemperatures:
		f.header(sec, y)
		f.temperatures(y + layout.HeaderHeight)
	case config.SectionStorage:
		f.header(sec, y)
		f.storage(y + layout.HeaderHeight)
	case config.SectionBattery:
		f.header(sec, y)
		f.batteries(y + layout.HeaderHeight)
	case config.SectionWeather:
		f.header(sec, y)
		f.weather(y + layout.HeaderHeight)
	case config.SectionNotifications:
		f.header(sec, y)
		f.notifications(y + layout.HeaderHeight)
	case config.SectionMedia:
		f.header(sec, y)
		f.media(y + layout.MediaHeaderHeight)
	}
}

func (f *frame) header(sec config.Section, y float64) {
	f.Text(marginX, y, sec.Label(), FontStyleBold, 14, ColorText)
}

func (f *frame) utilization(y float64) {
	cfg := f.cfg()
	u := f.p.Utilization
	if cfg.UtilizationEnabled() {
		f.header(config.SectionUtilization, y)
		y += layout.HeaderHeight
		rows := []struct {
			on    bool
			kind  string
			label string
			pct   float64
		}{
			{cfg.ShowCPU, "cpu", "CPU:", u.CPUUsage},
			{cfg.ShowMemory, "ram", "RAM:", u.MemoryUsage},
			{cfg.ShowGPU, "gpu", "GPU:", u.GPUUsage},
		}
		for _, row := range rows {
			if !row.on {
				continue
			}
			f.icon(row.kind, marginX, y-2)
			f.Text(marginX+30, y, row.label, FontStyleRegular, 12, ColorText)
			f.ProgressBar(barX, y+3, barWidth, barH, row.pct)
			if cfg.ShowPercentages {
				f.Text(300, y, fmt.Sprintf("%.1f%%", row.pct), FontStyleRegular, 12, ColorText)
			}
			y += layout.UtilizationRowHeight
		}
	}
	if cfg.ShowNetwork {
		n := f.p.Network
		f.Text(marginX, y, "Network ↓: "+FormatRate(n.RxBytesPerSec), FontStyleRegular, 12, ColorText)
		f.Text(marginX, y+25, "Network ↑: "+FormatRate(n.TxBytesPerSec), FontStyleRegular, 12, ColorText)
		y += layout.NetworkHeight
	}
	if cfg.ShowDisk {
		d := f.p.DiskIO
		f.Text(marginX, y, "Disk Read: "+FormatRate(d.ReadBytesPerSec), FontStyleRegular, 12, ColorText)
		f.Text(marginX, y+25, "Disk Write: "+FormatRate(d.WriteBytesPerSec), FontStyleRegular, 12, ColorText)
	}
}

// icon draws a 20px glyph for a utilization row.
func (f *frame) icon(kind string, x, y float64) {
	const s = 20.0
	switch kind {
	case "cpu":
		f.StrokeRect(x+4, y+4, s-8, s-8, 1.5, ColorText)
		f.FillRect(x+8, y+8, s-16, s-16, ColorAccent)
		for i := 0.0; i < 3; i++ {
			off := 6 + i*4
			f.Line(x+off, y, x+off, y+4, 1, ColorText)
			f.Line(x+off, y+s-4, x+off, y+s, 1, ColorText)
			f.Line(x, y+off, x+4, y+off, 1, ColorText)
			f.Line(x+s-4, y+off, x+s, y+off, 1, ColorText)
		}
	case "ram":
		f.StrokeRect(x, y+5, s, s-10, 1.5, ColorText)
		for i := 0.0; i < 4; i++ {
			f.FillRect(x+2+i*4.5, y+8, 3, 4, ColorAccent)
		}
	case "gpu":
		f.StrokeRect(x, y+3, s, s-6, 1.5, ColorText)
		f.Ring(x+s/2, y+s/2, 5, 1.5, 0, 2*math.Pi, ColorAccent)
	}
}

func (f *frame) temperatures(y float64) {
	cfg := f.cfg()
	t := f.p.Temperature
	entries := []struct {
		on    bool
		label string
		temp  float64
	}{
		{cfg.ShowCPUTemp, "CPU", t.CPUTemp},
		{cfg.ShowGPUTemp, "GPU", t.GPUTemp},
	}

	if cfg.UseCircularTempDisplay {
		const radius = 25.0
		x := 15.0
		for _, e := range entries {
			if !e.on {
				continue
			}
			cx, cy := x+radius, y+radius
			f.Gauge(cx, cy, radius, 5, e.temp)
			value := "N/A"
			if e.temp > 0 {
				value = fmt.Sprintf("%.0f°", e.temp)
			}
			w := f.MeasureText(value, FontStyleBold, 12)
			lh := f.LineHeight(FontStyleBold, 12)
			f.Text(cx-w/2, cy-lh/2, value, FontStyleBold, 12, ColorText)
			lw := f.MeasureText(e.label, FontStyleRegular, 10)
			f.Text(cx-lw/2, y+2*radius+6, e.label, FontStyleRegular, 10, ColorText)
			x += 2*radius + 20
		}
		return
	}

	for _, e := range entries {
		if !e.on {
			continue
		}
		text := fmt.Sprintf("  %s: N/A", e.label)
		if e.temp > 0 {
			text = fmt.Sprintf("  %s: %.1f°C", e.label, e.temp)
		}
		f.Text(marginX, y, text, FontStyleRegular, 14, ColorText)
		y += layout.TextTempRowHeight
	}
}

func (f *frame) storage(y float64) {
	for _, d := range f.p.Disks {
		f.Text(marginX, y, f.Ellipsize(d.Name, FontStyleRegular, 12, 180), FontStyleRegular, 12, ColorText)
		if !d.IsLoading && d.TotalSpace > 0 {
			sizes := humanize.Bytes(d.UsedSpace) + " / " + humanize.Bytes(d.TotalSpace)
			w := f.MeasureText(sizes, FontStyleRegular, 10)
			f.Text(layout.Width-marginX-w, y+2, sizes, FontStyleRegular, 10, ColorSecondary)
		}

		pct := d.UsedPercentage
		if d.IsLoading {
			pct = 0
		}
		f.ProgressBar(marginX, y+20, barWidth, barH, pct)
		if f.cfg().ShowPercentages {
			label := fmt.Sprintf("%.1f%%", d.UsedPercentage)
			if d.IsLoading {
				label = "Loading..."
			}
			f.Text(220, y+17, label, FontStyleRegular, 12, ColorText)
		}
		y += layout.DiskRowHeight
	}
}

func (f *frame) batteries(y float64) {
	if len(f.p.Batteries) == 0 {
		f.Text(marginX, y, NoBatteriesText, FontStyleRegular, 12, ColorText)
		return
	}
	const iconSize = 24.0
	for _, dev := range f.p.Batteries {
		f.Text(marginX, y, dev.Name, FontStyleRegular, 12, ColorText)
		row := y + 28
		textX := marginX + iconSize + 8
		switch {
		case !dev.IsConnected:
			f.disconnectedIcon(marginX, row-2, iconSize)
			f.Text(textX, row-2, "Disconnected", FontStyleRegular, 12, ColorSecondary)
		case dev.IsLoading:
			f.disconnectedIcon(marginX, row-2, iconSize)
			f.Text(textX, row-2, "Connecting...", FontStyleRegular, 12, ColorSecondary)
		case dev.HasLevel:
			f.batteryIcon(marginX, row-2, iconSize, dev.Level)
			text := fmt.Sprintf("%d%%", dev.Level)
			if IsCharging(dev.Status) {
				f.chargingBolt(marginX, row-2, iconSize)
				text += " charging"
			}
			f.Text(textX, row-2, text, FontStyleRegular, 12, ColorText)
		default:
			f.Text(marginX, row, "  Battery: N/A", FontStyleRegular, 12, ColorText)
		}
		y += layout.BatteryRowHeight
	}
}

// IsCharging reports whether a free-form battery status means charging.
func IsCharging(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return strings.HasPrefix(s, "charging") || strings.HasPrefix(s, "recharging")
}

// batteryOutline draws a vertical battery of the given height and returns
// the top and width of its body.
func (f *frame) batteryOutline(x, y, size float64, terminal, body color.NRGBA) (bodyY, bodyW float64) {
	bodyW = size * 0.6
	termH := size * 0.1
	termW := bodyW * 0.4
	f.StrokeRect(x+(bodyW-termW)/2, y, termW, termH, 1, terminal)
	bodyY = y + termH
	f.StrokeRect(x, bodyY, bodyW, size, 1.5, body)
	return bodyY, bodyW
}

func (f *frame) batteryIcon(x, y, size float64, level int) {
	bodyY, bodyW := f.batteryOutline(x, y, size, ColorSecondary, ColorText)
	if level > 0 {
		fill := (size - 4) * float64(min(level, 100)) / 100
		f.FillRect(x+2, bodyY+size-2-fill, bodyW-4, fill, BatteryColor(level))
	}
}

func (f *frame) disconnectedIcon(x, y, size float64) {
	bodyY, bodyW := f.batteryOutline(x, y, size, ColorMuted, ColorMuted)
	f.Line(x, bodyY, x+bodyW, bodyY+size, 2, ColorWarning)
}

func (f *frame) chargingBolt(x, y, size float64) {
	bodyW := size * 0.6
	bodyY := y + size*0.1
	bx := x + bodyW/2
	by := bodyY + size*0.2
	bh := size * 0.6
	bw := bodyW * 0.4
	f.Line(bx, by, bx-bw/3, by+bh/2, 2, ColorCharging)
	f.Line(bx-bw/3, by+bh/2, bx, by+bh/2, 2, ColorCharging)
	f.Line(bx, by+bh/2, bx-bw/3, by+bh, 2, ColorCharging)
	f.Line(bx, by+bh/2, bx+bw/3, by, 2, ColorCharging)
}

func (f *frame) weather(y float64) {
	w := f.p.Weather
	f.weatherIcon(20, y, 40, w.Icon)

	const infoX = 80.0
	temp := "N/A"
	if w.HasData() {
		temp = fmt.Sprintf("%.1f°C", w.Temperature)
		if !math.IsNaN(w.FeelsLike) {
			temp += fmt.Sprintf("  feels %.0f°", w.FeelsLike)
		}
		if w.Humidity > 0 {
			temp += fmt.Sprintf("  %d%%", w.Humidity)
		}
	}
	f.Text(infoX, y, temp, FontStyleRegular, 14, ColorText)
	f.Text(infoX, y+20, f.Ellipsize(w.Description, FontStyleRegular, 14, layout.Width-infoX-marginX), FontStyleRegular, 14, ColorText)
	f.Text(infoX, y+45, f.Ellipsize(w.Location, FontStyleRegular, 12, layout.Width-infoX-marginX), FontStyleRegular, 12, ColorSecondary)
}

// weatherIcon draws a glyph for a provider icon code such as "10n".
func (f *frame) weatherIcon(x, y, size float64, code string) {
	kind, night := code, false
	if len(code) == 3 {
		kind, night = code[:2], code[2] == 'n'
	}
	cx, cy := x+size/2, y+size/2
	sun := color.NRGBA{R: 255, G: 204, B: 0, A: 255}
	moon := color.NRGBA{R: 220, G: 220, B: 235, A: 255}
	cloud := color.NRGBA{R: 200, G: 200, B: 210, A: 255}

	drawCloud := func() {
		f.Disc(cx-8, cy+4, 9, cloud)
		f.Disc(cx+2, cy-2, 12, cloud)
		f.Disc(cx+11, cy+5, 8, cloud)
		f.FillRect(cx-8, cy+4, 19, 9, cloud)
	}
	switch kind {
	case "01":
		if night {
			f.Disc(cx, cy, size*0.35, moon)
			return
		}
		f.Disc(cx, cy, size*0.25, sun)
		for i := 0.0; i < 8; i++ {
			a := i * math.Pi / 4
			f.Line(cx+math.Cos(a)*size*0.32, cy+math.Sin(a)*size*0.32,
				cx+math.Cos(a)*size*0.45, cy+math.Sin(a)*size*0.45, 2, sun)
		}
	case "02":
		if night {
			f.Disc(cx+8, cy-8, 9, moon)
		} else {
			f.Disc(cx+8, cy-8, 9, sun)
		}
		drawCloud()
	case "09", "10":
		drawCloud()
		rain := color.NRGBA{R: 102, G: 153, B: 255, A: 255}
		for i := -1.0; i <= 1; i++ {
			f.Line(cx+i*8, cy+15, cx+i*8-3, cy+21, 2, rain)
		}
	case "11":
		drawCloud()
		f.Line(cx+2, cy+12, cx-3, cy+18, 2, sun)
		f.Line(cx-3, cy+18, cx+3, cy+18, 2, sun)
		f.Line(cx+3, cy+18, cx-2, cy+24, 2, sun)
	case "13":
		drawCloud()
		for i := -1.0; i <= 1; i++ {
			f.Disc(cx+i*8, cy+19, 2, ColorText)
		}
	case "50":
		for i := -1.0; i <= 1; i++ {
			f.Line(cx-15, cy+i*8, cx+15, cy+i*8, 3, cloud)
		}
	default:
		drawCloud()
	}
}

func (f *frame) notifications(y float64) {
	rows := NotificationRows(f.p.NotificationGroups, layout.MaxNotificationRows)
	if len(rows) == 0 {
		f.Text(marginX, y, NoNotificationsText, FontStyleRegular, 12, ColorText)
		return
	}
	const (
		panelW = layout.Width - 2*marginX
		panelH = layout.NotificationRowHeight - 5
		textX  = marginX + 8
		textW  = panelW - 16
	)
	for _, n := range rows {
		f.FillRect(marginX, y, panelW, panelH, ColorPanel)
		f.StrokeRect(marginX, y, panelW, panelH, 1, WithOpacity(ColorAccent, 0.6))

		when := humanize.RelTime(n.Time(), f.p.Now, "ago", "from now")
		ww := f.MeasureText(when, FontStyleRegular, 10)
		f.Text(marginX+panelW-8-ww, y+5, when, FontStyleRegular, 10, ColorSecondary)
		f.Text(textX, y+4, f.Ellipsize(n.AppName, FontStyleBold, 12, textW-ww-8), FontStyleBold, 12, ColorAccent)
		f.Text(textX, y+21, f.Ellipsize(n.Summary, FontStyleRegular, 12, textW), FontStyleRegular, 12, ColorText)
		if body := strings.Join(strings.Fields(n.Body), " "); body != "" {
			f.Text(textX, y+39, f.Ellipsize(body, FontStyleRegular, 10, textW), FontStyleRegular, 10, ColorSecondary)
		}
		y += layout.NotificationRowHeight
	}
}

func (f *frame) media(y float64) {
	const (
		panelW = layout.Width - 2*marginX
		panelH = layout.MediaPanelHeight - 10
		art    = 80.0
		infoX  = marginX + 10 + art + 12
		infoW  = panelW - art - 32
	)
	f.FillRect(marginX, y, panelW, panelH, ColorPanel)

	cur, ok := f.p.CurrentMedia()
	if !ok {
		f.Text(marginX+10, y+10, NoMediaText, FontStyleRegular, 12, ColorSecondary)
		return
	}

	// No artwork is fetched; a disc stands in for the cover.
	ax, ay := marginX+10, y+10
	f.FillRect(ax, ay, art, art, WithOpacity(ColorAccent, 0.25))
	f.Disc(ax+art/2, ay+art/2, art*0.3, WithOpacity(ColorText, 0.6))
	f.Disc(ax+art/2, ay+art/2, art*0.08, ColorPanel)

	f.Text(infoX, ay, f.Ellipsize(cur.Title, FontStyleBold, 14, infoW), FontStyleBold, 14, ColorText)
	f.Text(infoX, ay+22, f.Ellipsize(cur.Artist, FontStyleRegular, 12, infoW), FontStyleRegular, 12, ColorText)
	f.Text(infoX, ay+40, f.Ellipsize(cur.Album, FontStyleRegular, 10, infoW), FontStyleRegular, 10, ColorSecondary)
	f.Text(infoX, ay+60, cur.Player+" · "+string(cur.Status), FontStyleRegular, 10, ColorAccent)

	barY := ay + art + 14
	f.ProgressBar(ax, barY, panelW-20, 6, cur.Progress()*100)
	f.Text(ax, barY+10, monitor.FormatTrackTime(cur.Position), FontStyleRegular, 10, ColorSecondary)
	if cur.Length > 0 {
		total := monitor.FormatTrackTime(cur.Length)
		w := f.MeasureText(total, FontStyleRegular, 10)
		f.Text(ax+panelW-20-w, barY+10, total, FontStyleRegular, 10, ColorSecondary)
	}

	if n := len(f.p.Media); n > 1 {
		const gap = 14.0
		dotsY := y + layout.MediaPanelHeight + layout.MediaPagerHeight/2
		x := float64(layout.Width)/2 - gap*float64(n-1)/2
		for i := 0; i < n; i++ {
			c := ColorMuted
			if i == f.p.MediaIndex {
				c = ColorAccent
			}
			f.Disc(x+float64(i)*gap, dotsY, 4, c)
		}
	}
}

// NotificationRows flattens groups in display order, keeping at most limit
// entries.
func NotificationRows(groups []widget.NotificationGroup, limit int) []monitor.Notification {
	var rows []monitor.Notification
	for _, g := range groups {
		for _, n := range g.Notifications {
			if len(rows) >= limit {
				return rows
			}
			rows = append(rows, n)
		}
	}
	return rows
}

// FormatRate renders a byte rate such as "1.5 kB/s".
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec < 0 || math.IsNaN(bytesPerSec) {
		bytesPerSec = 0
	}
	return humanize.Bytes(uint64(bytesPerSec)) + "/s"
}
