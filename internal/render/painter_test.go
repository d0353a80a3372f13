package render

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func newTestPainter(t *testing.T, w, h int, withFonts bool) *Painter {
	t.Helper()
	var fonts *FontManager
	if withFonts {
		var err error
		fonts, err = NewFontManager()
		if err != nil {
			t.Fatalf("NewFontManager() error = %v", err)
		}
		t.Cleanup(fonts.Close)
	}
	return NewPainter(image.NewRGBA(image.Rect(0, 0, w, h)), fonts)
}

func TestFillRectBlends(t *testing.T) {
	p := newTestPainter(t, 4, 4, false)
	p.FillRect(0, 0, 4, 4, color.NRGBA{R: 255, A: 255})
	if got := p.Image().RGBAAt(1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("opaque fill = %v", got)
	}

	p.FillRect(0, 0, 4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	got := p.Image().RGBAAt(2, 2)
	if got.R != 255 || got.A != 255 || got.G < 126 || got.G > 130 {
		t.Errorf("half white over red = %v, want about {255 128 128 255}", got)
	}
}

func TestFillRectClips(t *testing.T) {
	p := newTestPainter(t, 3, 3, false)
	p.FillRect(-5, -5, 100, 100, ColorText)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if p.Image().RGBAAt(x, y).A != 255 {
				t.Fatalf("pixel (%d,%d) not filled", x, y)
			}
		}
	}
}

func TestProgressBarFill(t *testing.T) {
	p := newTestPainter(t, 120, 20, false)
	p.ProgressBar(2, 2, 100, 12, 50)

	mid := UsageColor(50)
	if got := p.Image().RGBAAt(20, 8); got != (color.RGBA{R: mid.R, G: mid.G, B: mid.B, A: 255}) {
		t.Errorf("filled pixel = %v, want %v", got, mid)
	}
	if got := p.Image().RGBAAt(80, 8); got.G == mid.G && got.A == 255 {
		t.Errorf("pixel past the fill = %v, want track color", got)
	}
}

func TestGaugeSweep(t *testing.T) {
	p := newTestPainter(t, 100, 100, false)
	p.Gauge(50, 50, 40, 8, 25)

	low := UsageColor(25)
	if got := p.Image().RGBAAt(50, 14); got != (color.RGBA{R: low.R, G: low.G, B: low.B, A: 255}) {
		t.Errorf("top of ring = %v, want fill color", got)
	}
	if got := p.Image().RGBAAt(14, 50); got.A == 255 {
		t.Errorf("left of ring = %v, want translucent track", got)
	}
	if got := p.Image().RGBAAt(50, 50); got.A != 0 {
		t.Errorf("centre = %v, want transparent", got)
	}
}

func TestLine(t *testing.T) {
	p := newTestPainter(t, 30, 20, false)
	p.Line(0, 5.5, 30, 5.5, 2, ColorText)
	if got := p.Image().RGBAAt(10, 5).A; got != 255 {
		t.Errorf("on-line alpha = %d, want 255", got)
	}
	if got := p.Image().RGBAAt(10, 15).A; got != 0 {
		t.Errorf("off-line alpha = %d, want 0", got)
	}
}

func TestTextDrawsAndMeasures(t *testing.T) {
	p := newTestPainter(t, 200, 40, true)
	adv := p.Text(2, 2, "Hello", FontStyleBold, 12, ColorText)
	if adv <= 0 {
		t.Fatalf("Text() advance = %v", adv)
	}
	if m := p.MeasureText("Hello", FontStyleBold, 12); m != adv {
		t.Errorf("MeasureText() = %v, want %v", m, adv)
	}
	if p.LineHeight(FontStyleRegular, 12) <= 0 {
		t.Error("LineHeight() = 0")
	}

	inked := false
	for _, b := range p.Image().Pix {
		if b != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Error("Text() drew nothing")
	}
}

func TestTextWithoutFonts(t *testing.T) {
	p := newTestPainter(t, 10, 10, false)
	if adv := p.Text(0, 0, "x", FontStyleRegular, 12, ColorText); adv != 0 {
		t.Errorf("Text() without fonts = %v, want 0", adv)
	}
}

func TestEllipsize(t *testing.T) {
	p := newTestPainter(t, 1, 1, true)
	if got := p.Ellipsize("ok", FontStyleRegular, 12, 200); got != "ok" {
		t.Errorf("short text = %q, want unchanged", got)
	}

	long := strings.Repeat("notification body ", 10)
	got := p.Ellipsize(long, FontStyleRegular, 12, 120)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Ellipsize() = %q, want trailing ellipsis", got)
	}
	if w := p.MeasureText(got, FontStyleRegular, 12); w > 120 {
		t.Errorf("ellipsized width = %v, want <= 120", w)
	}
}
