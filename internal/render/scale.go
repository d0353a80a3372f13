package render

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// ScaleFrame resizes a frame by scale for HiDPI outputs. A scale of 1, or
// one that is not positive, returns img unchanged.
func ScaleFrame(img *image.RGBA, scale float64) *image.RGBA {
	if scale <= 0 || scale == 1 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return img
	}
	b := img.Bounds()
	w := max(int(math.Round(float64(b.Dx())*scale)), 1)
	h := max(int(math.Round(float64(b.Dy())*scale)), 1)

	scaled := imaging.Resize(img, w, h, imaging.Lanczos)

	// imaging works in straight alpha; the window expects premultiplied.
	out := image.NewRGBA(scaled.Bounds())
	draw.Draw(out, out.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	return out
}
