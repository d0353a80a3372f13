//go:build linux

package render

import (
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// _NET_WM_STATE client message actions.
const (
	netWMStateAdd         = 1
	netWMSourceNormal     = 1
	netWMStateAtomsPerMsg = 2
)

// WindowHintApplier asks the X11 window manager to apply EWMH state
// hints. It keeps one connection and an atom cache.
type WindowHintApplier struct {
	mu    sync.Mutex
	conn  *xgb.Conn
	atoms map[string]xproto.Atom
}

var globalHintApplier = &WindowHintApplier{atoms: make(map[string]xproto.Atom)}

// ApplyWindowHints sets the requested states on the active window. It must
// run after the window is mapped. Without an X server it does nothing.
func ApplyWindowHints(hints WindowHints) error {
	if len(hints.stateAtoms()) == 0 {
		return nil
	}
	return globalHintApplier.Apply(hints)
}

// CloseWindowHints releases the X11 connection.
func CloseWindowHints() {
	globalHintApplier.Close()
}

// Apply sends one _NET_WM_STATE add request per pair of states. Window
// managers ignore direct property writes on mapped windows.
func (h *WindowHintApplier) Apply(hints WindowHints) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		conn, err := xgb.NewConn()
		if err != nil {
			return nil
		}
		h.conn = conn
	}

	setup := xproto.Setup(h.conn)
	if len(setup.Roots) == 0 {
		return nil
	}
	root := setup.Roots[0].Root

	window, err := h.activeWindow(root)
	if err != nil || window == xproto.WindowNone {
		return nil
	}

	stateAtom, err := h.atom("_NET_WM_STATE")
	if err != nil {
		return nil
	}

	names := hints.stateAtoms()
	for _, pair := range chunkAtoms(names, netWMStateAtomsPerMsg) {
		data := []uint32{netWMStateAdd, 0, 0, netWMSourceNormal, 0}
		for i, name := range pair {
			a, err := h.atom(name)
			if err != nil {
				continue
			}
			data[1+i] = uint32(a)
		}
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: window,
			Type:   stateAtom,
			Data:   xproto.ClientMessageDataUnionData32New(data),
		}
		mask := uint32(xproto.EventMaskSubstructureNotify | xproto.EventMaskSubstructureRedirect)
		xproto.SendEvent(h.conn, false, root, mask, string(ev.Bytes()))
	}
	return nil
}

func (h *WindowHintApplier) atom(name string) (xproto.Atom, error) {
	if a, ok := h.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(h.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	h.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// activeWindow prefers _NET_ACTIVE_WINDOW and falls back to input focus.
func (h *WindowHintApplier) activeWindow(root xproto.Window) (xproto.Window, error) {
	if active, err := h.atom("_NET_ACTIVE_WINDOW"); err == nil {
		reply, err := xproto.GetProperty(h.conn, false, root, active, xproto.AtomWindow, 0, 1).Reply()
		if err == nil && reply != nil && len(reply.Value) >= 4 {
			if w := xproto.Window(xgb.Get32(reply.Value)); w != xproto.WindowNone {
				return w, nil
			}
		}
	}
	focus, err := xproto.GetInputFocus(h.conn).Reply()
	if err != nil {
		return xproto.WindowNone, err
	}
	return focus.Focus, nil
}

// Close releases the connection. The applier reconnects on the next Apply.
func (h *WindowHintApplier) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
	h.atoms = make(map[string]xproto.Atom)
}

func chunkAtoms(names []string, size int) [][]string {
	var chunks [][]string
	for len(names) > size {
		chunks = append(chunks, names[:size])
		names = names[size:]
	}
	if len(names) > 0 {
		chunks = append(chunks, names)
	}
	return chunks
}
