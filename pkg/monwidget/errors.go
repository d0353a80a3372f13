package monwidget

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a running widget.
	ErrAlreadyRunning = errors.New("widget already running")
	// ErrNotRunning is returned by operations that need a running widget.
	ErrNotRunning = errors.New("widget not running")
	// ErrNoConfigFile is returned by ReloadConfig on a widget built from
	// an in-memory configuration.
	ErrNoConfigFile = errors.New("widget has no config file")
)
