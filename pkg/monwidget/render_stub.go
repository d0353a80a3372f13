//go:build noebiten

package monwidget

import "context"

// runRenderLoop falls back to headless refreshing in builds without a
// window backend.
func (w *widgetImpl) runRenderLoop(ctx context.Context) {
	w.logger.Warn("built without window support; running headless")
	w.runHeadless(ctx)
}
