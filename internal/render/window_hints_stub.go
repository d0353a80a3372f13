//go:build !linux

package render

// ApplyWindowHints is a no-op outside Linux; EWMH hints are X11-specific.
func ApplyWindowHints(hints WindowHints) error {
	return nil
}

// CloseWindowHints is a no-op outside Linux.
func CloseWindowHints() {}
