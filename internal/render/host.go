//go:build !noebiten

package render

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/zeebo/xxh3"

	"github.com/opd-ai/monwidget/internal/layout"
	"github.com/opd-ai/monwidget/internal/widget"
)

// ErrHostTerminated is returned from Update when the host context is done.
var ErrHostTerminated = errors.New("host terminated")

// TickInterval is how often the host asks for fresh parameters. The
// scheduler decides which monitors are actually due.
const TickInterval = time.Second

// hostTPS is the ebiten update rate. It only bounds how quickly a
// cancellation or forced redraw is noticed.
const hostTPS = 10

// FrameSource produces frame parameters. *widget.Scheduler implements it.
type FrameSource interface {
	Tick(ctx context.Context, now time.Time) widget.RenderParams
	NeedsRedraw() bool
}

// HostOptions configures the overlay window.
type HostOptions struct {
	Title string
	X, Y  int
	// Scale multiplies the frame size; 0 or 1 draws at native size.
	Scale float64
	Hints WindowHints
}

// Host implements ebiten.Game for the widget window. Frames are drawn in
// software and uploaded only when their pixels change.
type Host struct {
	src      FrameSource
	renderer *Renderer
	opts     HostOptions
	ctx      context.Context

	now        func() time.Time
	resize     func(w, h int)
	applyHints func(WindowHints) error

	// Owned by the ebiten loop.
	lastTick     time.Time
	pix          []byte
	width        int
	height       int
	hash         uint64
	hashed       bool
	dirty        bool
	hintsApplied bool
	texture      *ebiten.Image

	mu      sync.Mutex
	frames  int
	skipped int
	running bool
}

// NewHost creates a host drawing frames from src. The loop ends when ctx
// is cancelled or the window is closed.
func NewHost(ctx context.Context, src FrameSource, renderer *Renderer, opts HostOptions) *Host {
	if opts.Title == "" {
		opts.Title = "monwidget"
	}
	if renderer == nil {
		var err error
		if renderer, err = defaultRenderer(); err != nil {
			renderer = &Renderer{}
		}
	}
	return &Host{
		src:        src,
		renderer:   renderer,
		opts:       opts,
		ctx:        ctx,
		now:        time.Now,
		resize:     ebiten.SetWindowSize,
		applyHints: ApplyWindowHints,
	}
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	select {
	case <-h.ctx.Done():
		return ErrHostTerminated
	default:
	}

	h.step(h.now())

	// The window exists once the first Update runs.
	if !h.hintsApplied {
		h.hintsApplied = true
		_ = h.applyHints(h.opts.Hints)
	}
	return nil
}

// step ticks the source when a second has passed or a redraw was forced,
// and reports whether the frame changed.
func (h *Host) step(now time.Time) bool {
	forced := h.src.NeedsRedraw()
	if !forced && !h.lastTick.IsZero() && now.Sub(h.lastTick) < TickInterval {
		return false
	}
	h.lastTick = now

	params := h.src.Tick(h.ctx, now)
	img := ScaleFrame(h.renderer.RenderFrame(params), h.opts.Scale)
	w, ht := img.Rect.Dx(), img.Rect.Dy()
	sum := xxh3.Hash(img.Pix)

	if h.hashed && sum == h.hash && w == h.width && ht == h.height {
		h.mu.Lock()
		h.skipped++
		h.mu.Unlock()
		return false
	}
	if w != h.width || ht != h.height {
		h.resize(w, ht)
	}
	h.hash, h.hashed = sum, true
	h.pix, h.width, h.height = img.Pix, w, ht
	h.dirty = true

	h.mu.Lock()
	h.frames++
	h.mu.Unlock()
	return true
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.pix == nil {
		return
	}
	if h.texture == nil || h.texture.Bounds().Dx() != h.width || h.texture.Bounds().Dy() != h.height {
		if h.texture != nil {
			h.texture.Deallocate()
		}
		h.texture = ebiten.NewImage(h.width, h.height)
		h.dirty = true
	}
	if h.dirty {
		h.texture.WritePixels(h.pix)
		h.dirty = false
	}
	screen.DrawImage(h.texture, nil)
}

// Layout implements ebiten.Game.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if h.width == 0 || h.height == 0 {
		return layout.Width, layout.MinimumHeight
	}
	return h.width, h.height
}

// Stats returns how many frames were uploaded and how many unchanged
// frames were skipped.
func (h *Host) Stats() (frames, skipped int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames, h.skipped
}

// IsRunning reports whether the window loop is active.
func (h *Host) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Run opens the undecorated transparent window and blocks until it is
// closed or the context is cancelled.
func (h *Host) Run() error {
	ebiten.SetWindowTitle(h.opts.Title)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(hostTPS)

	// Size the window from the first frame before it is shown.
	h.step(h.now())
	ebiten.SetWindowPosition(h.opts.X, h.opts.Y)

	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	err := ebiten.RunGameWithOptions(h, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		SkipTaskbar:       h.opts.Hints.SkipTaskbar,
		X11ClassName:      "monwidget",
		X11InstanceName:   "monwidget",
	})

	h.mu.Lock()
	h.running = false
	h.mu.Unlock()
	CloseWindowHints()

	if errors.Is(err, ErrHostTerminated) {
		return nil
	}
	return err
}
