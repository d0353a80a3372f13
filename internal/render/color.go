package render

import "image/color"

// Palette used by the widget. Colors are non-premultiplied.
var (
	ColorText      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ColorOutline   = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	ColorSecondary = color.NRGBA{R: 179, G: 179, B: 179, A: 255}
	ColorMuted     = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	ColorTrack     = color.NRGBA{R: 51, G: 51, B: 51, A: 179}
	ColorAccent    = color.NRGBA{R: 102, G: 153, B: 255, A: 255}
	ColorPanel     = color.NRGBA{R: 20, G: 24, B: 32, A: 150}
	ColorWarning   = color.NRGBA{R: 204, G: 77, B: 77, A: 255}
	ColorCharging  = color.NRGBA{R: 255, G: 255, B: 0, A: 230}

	colorLow  = color.NRGBA{R: 102, G: 230, B: 102, A: 255}
	colorMid  = color.NRGBA{R: 230, G: 230, B: 102, A: 255}
	colorHigh = color.NRGBA{R: 230, G: 102, B: 102, A: 255}
)

// UsageColor maps a 0-100 percentage to green, yellow or red with
// thresholds at 50 and 80.
func UsageColor(pct float64) color.NRGBA {
	switch {
	case pct < 50:
		return colorLow
	case pct < 80:
		return colorMid
	default:
		return colorHigh
	}
}

// BatteryColor maps a charge level to its indicator color.
func BatteryColor(level int) color.NRGBA {
	switch {
	case level > 60:
		return color.NRGBA{R: 0, G: 204, B: 0, A: 255}
	case level > 30:
		return color.NRGBA{R: 255, G: 204, B: 0, A: 255}
	case level > 15:
		return color.NRGBA{R: 255, G: 128, B: 0, A: 255}
	default:
		return color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	}
}

// WithOpacity returns c with its alpha scaled by opacity (0.0-1.0).
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = clamp01(opacity)
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

// Blend mixes two colors. A ratio of 0.0 returns c1 and 1.0 returns c2.
func Blend(c1, c2 color.NRGBA, ratio float64) color.NRGBA {
	ratio = clamp01(ratio)
	return color.NRGBA{
		R: blendChannel(c1.R, c2.R, ratio),
		G: blendChannel(c1.G, c2.G, ratio),
		B: blendChannel(c1.B, c2.B, ratio),
		A: blendChannel(c1.A, c2.A, ratio),
	}
}

func blendChannel(a, b uint8, ratio float64) uint8 {
	return uint8(float64(a)*(1-ratio) + float64(b)*ratio + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
