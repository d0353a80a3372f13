package render

import (
	"image"
	"image/color"
	"math"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Painter draws shapes and outlined text into an RGBA frame in software.
// Coordinates are in pixels with the origin at the top left.
type Painter struct {
	img   *image.RGBA
	fonts *FontManager
}

// NewPainter wraps img. fonts may be nil when no text is drawn.
func NewPainter(img *image.RGBA, fonts *FontManager) *Painter {
	return &Painter{img: img, fonts: fonts}
}

// Image returns the target frame.
func (p *Painter) Image() *image.RGBA { return p.img }

// Clear makes every pixel fully transparent.
func (p *Painter) Clear() {
	clear(p.img.Pix)
}

// blend composites c over the pixel at (x, y) with the given coverage.
func (p *Painter) blend(x, y int, c color.NRGBA, coverage float64) {
	if !(image.Point{X: x, Y: y}).In(p.img.Rect) || coverage <= 0 || c.A == 0 {
		return
	}
	a := float64(c.A) / 255 * math.Min(coverage, 1)
	i := p.img.PixOffset(x, y)
	px := p.img.Pix[i : i+4 : i+4]
	px[0] = uint8(float64(c.R)*a + float64(px[0])*(1-a) + 0.5)
	px[1] = uint8(float64(c.G)*a + float64(px[1])*(1-a) + 0.5)
	px[2] = uint8(float64(c.B)*a + float64(px[2])*(1-a) + 0.5)
	px[3] = uint8(255*a + float64(px[3])*(1-a) + 0.5)
}

// bounds clips a float rectangle to the frame in integer pixels.
func (p *Painter) bounds(x0, y0, x1, y1 float64) image.Rectangle {
	r := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	return r.Intersect(p.img.Rect)
}

// FillRect fills the rectangle at (x, y) of size w by h.
func (p *Painter) FillRect(x, y, w, h float64, c color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	r := p.bounds(x, y, x+w, y+h)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			p.blend(px, py, c, 1)
		}
	}
}

// StrokeRect draws a rectangle outline of the given width inside the
// rectangle bounds.
func (p *Painter) StrokeRect(x, y, w, h, width float64, c color.NRGBA) {
	if width <= 0 {
		return
	}
	p.FillRect(x, y, w, width, c)
	p.FillRect(x, y+h-width, w, width, c)
	p.FillRect(x, y+width, width, h-2*width, c)
	p.FillRect(x+w-width, y+width, width, h-2*width, c)
}

// Line draws an anti-aliased segment of the given width.
func (p *Painter) Line(x0, y0, x1, y1, width float64, c color.NRGBA) {
	half := width / 2
	r := p.bounds(math.Min(x0, x1)-half-1, math.Min(y0, y1)-half-1, math.Max(x0, x1)+half+1, math.Max(y0, y1)+half+1)
	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			cx, cy := float64(px)+0.5, float64(py)+0.5
			t := 0.0
			if lenSq > 0 {
				t = clamp01(((cx-x0)*dx + (cy-y0)*dy) / lenSq)
			}
			d := math.Hypot(cx-(x0+t*dx), cy-(y0+t*dy))
			p.blend(px, py, c, half-d+0.5)
		}
	}
}

// Disc fills a circle.
func (p *Painter) Disc(cx, cy, radius float64, c color.NRGBA) {
	p.Ring(cx, cy, radius, radius, 0, 2*math.Pi, c)
}

// Ring draws an annulus segment of the given thickness, starting at angle
// start (radians, 0 pointing right, increasing clockwise) and spanning
// sweep radians.
func (p *Painter) Ring(cx, cy, radius, thickness, start, sweep float64, c color.NRGBA) {
	if sweep <= 0 || radius <= 0 {
		return
	}
	inner := math.Max(radius-thickness, 0)
	full := sweep >= 2*math.Pi
	r := p.bounds(cx-radius-1, cy-radius-1, cx+radius+1, cy+radius+1)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			dx, dy := float64(px)+0.5-cx, float64(py)+0.5-cy
			d := math.Hypot(dx, dy)
			coverage := math.Min(radius-d+0.5, 1)
			if inner > 0 {
				coverage = math.Min(coverage, d-inner+0.5)
			}
			if coverage <= 0 {
				continue
			}
			if !full {
				rel := math.Mod(math.Atan2(dy, dx)-start, 2*math.Pi)
				if rel < 0 {
					rel += 2 * math.Pi
				}
				if rel > sweep {
					continue
				}
			}
			p.blend(px, py, c, coverage)
		}
	}
}

// ProgressBar draws a bordered bar filled to pct (0-100) in the usage color.
func (p *Painter) ProgressBar(x, y, w, h, pct float64) {
	p.FillRect(x, y, w, h, ColorTrack)
	p.StrokeRect(x-1, y-1, w+2, h+2, 1, ColorOutline)
	p.StrokeRect(x, y, w, h, 1, ColorText)

	fill := w * clamp01(pct/100)
	if fill > 2 {
		p.FillRect(x+1, y+1, fill-2, h-2, UsageColor(pct))
	}
}

// Gauge draws a ring gauge filled clockwise from the top to pct (0-100).
func (p *Painter) Gauge(cx, cy, radius, thickness, pct float64) {
	p.Ring(cx, cy, radius, thickness, 0, 2*math.Pi, ColorTrack)
	if pct > 0 {
		p.Ring(cx, cy, radius, thickness, -math.Pi/2, 2*math.Pi*clamp01(pct/100), UsageColor(pct))
	}
}

// Text draws s with a one-pixel dark outline. top is the top of the line
// box. It returns the advance width in pixels.
func (p *Painter) Text(x, top float64, s string, style FontStyle, size float64, c color.NRGBA) float64 {
	face := p.face(style, size)
	if face == nil || s == "" {
		return 0
	}
	baseline := fixed.I(int(math.Round(top))) + face.Metrics().Ascent
	origin := fixed.Point26_6{X: fixed.I(int(math.Round(x))), Y: baseline}

	d := &font.Drawer{Dst: p.img, Face: face, Src: image.NewUniform(ColorOutline)}
	for _, off := range [...]image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		d.Dot = origin.Add(fixed.P(off.X, off.Y))
		d.DrawString(s)
	}
	d.Src = image.NewUniform(c)
	d.Dot = origin
	d.DrawString(s)
	return float64((d.Dot.X - origin.X).Ceil())
}

// MeasureText returns the advance width of s in pixels.
func (p *Painter) MeasureText(s string, style FontStyle, size float64) float64 {
	face := p.face(style, size)
	if face == nil {
		return 0
	}
	return float64(font.MeasureString(face, s).Ceil())
}

// LineHeight returns the ascent plus descent of the face in pixels.
func (p *Painter) LineHeight(style FontStyle, size float64) float64 {
	face := p.face(style, size)
	if face == nil {
		return 0
	}
	m := face.Metrics()
	return float64((m.Ascent + m.Descent).Ceil())
}

// Ellipsize shortens s with a trailing ellipsis until it fits maxWidth.
func (p *Painter) Ellipsize(s string, style FontStyle, size, maxWidth float64) string {
	if p.MeasureText(s, style, size) <= maxWidth {
		return s
	}
	const ellipsis = "…"
	for len(s) > 0 {
		_, n := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-n]
		if p.MeasureText(s+ellipsis, style, size) <= maxWidth {
			return s + ellipsis
		}
	}
	return ellipsis
}

func (p *Painter) face(style FontStyle, size float64) font.Face {
	if p.fonts == nil {
		return nil
	}
	face, err := p.fonts.Face(style, size)
	if err != nil {
		return nil
	}
	return face
}
