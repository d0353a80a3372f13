package render

// WindowHints are the window manager states a desktop widget asks for.
type WindowHints struct {
	SkipTaskbar bool
	SkipPager   bool
	// Below keeps the widget under normal windows.
	Below bool
	// Sticky shows the widget on every workspace.
	Sticky bool
}

// DesktopWidgetHints is the default set for the overlay window.
func DesktopWidgetHints() WindowHints {
	return WindowHints{SkipTaskbar: true, SkipPager: true, Below: true, Sticky: true}
}

// stateAtoms returns the EWMH _NET_WM_STATE atom names for h.
func (h WindowHints) stateAtoms() []string {
	var names []string
	if h.SkipTaskbar {
		names = append(names, "_NET_WM_STATE_SKIP_TASKBAR")
	}
	if h.SkipPager {
		names = append(names, "_NET_WM_STATE_SKIP_PAGER")
	}
	if h.Below {
		names = append(names, "_NET_WM_STATE_BELOW")
	}
	if h.Sticky {
		names = append(names, "_NET_WM_STATE_STICKY")
	}
	return names
}
