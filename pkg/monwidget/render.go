//go:build !noebiten

package monwidget

import (
	"context"
	"fmt"

	"github.com/opd-ai/monwidget/internal/render"
)

// runRenderLoop opens the overlay window and blocks until it closes or
// ctx is cancelled.
func (w *widgetImpl) runRenderLoop(ctx context.Context) {
	cfg := w.sched.Config()
	host := render.NewHost(ctx, w, nil, render.HostOptions{
		Title: "monwidget",
		X:     cfg.WidgetX,
		Y:     cfg.WidgetY,
		Scale: w.opts.Scale,
		Hints: render.DesktopWidgetHints(),
	})

	w.mu.Lock()
	w.host = host
	w.mu.Unlock()

	if err := host.Run(); err != nil {
		w.notifyError(fmt.Errorf("render loop: %w", err))
	}
}
