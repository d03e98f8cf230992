package platform

import (
	"context"

	"github.com/lmburns/lwm/internal/geometry"
)

// Window is a platform-neutral window identifier.
type Window uint32

// None is the absent window. Focusing None gives focus back to the root.
const None Window = 0

// Monitor describes a physical output and the part of it not reserved by
// docks and panels.
type Monitor struct {
	ID     int
	Name   string
	Bounds geometry.Rectangle
	Usable geometry.Rectangle
}

// Identity is what the window system knows about a client at map time.
type Identity struct {
	Class     string
	Instance  string
	Name      string
	PID       int
	Process   string
	Types     []string
	States    []string
	Transient Window
	MinSize   geometry.Dimension
	Urgent    bool
	// Unmanaged windows (docks, desktops, override-redirect) are mapped
	// but never tiled.
	Unmanaged bool
}

// HasState reports whether the window asked for an EWMH state such as
// _NET_WM_STATE_FULLSCREEN.
func (id Identity) HasState(state string) bool {
	for _, s := range id.States {
		if s == state {
			return true
		}
	}
	return false
}

// Backend is the display server as the window manager sees it. Every call
// happens on the event loop goroutine.
type Backend interface {
	Monitors() ([]Monitor, error)
	Pointer() (geometry.Point, error)
	// ExistingWindows lists mapped top-level windows at startup, bottom
	// to top.
	ExistingWindows() ([]Window, error)

	QueryGeometry(w Window) (geometry.Rectangle, error)
	WindowIdentity(w Window) (Identity, error)

	// Manage selects the events the window manager needs from a client.
	Manage(w Window) error
	// ApplyGeometry moves and resizes w so that its outer frame, border
	// included, covers r.
	ApplyGeometry(w Window, r geometry.Rectangle, border uint) error
	// ConfirmGeometry answers a configure request without changing the
	// window, as required for windows whose geometry the manager owns.
	ConfirmGeometry(w Window, r geometry.Rectangle, border uint) error
	Map(w Window) error
	Unmap(w Window) error
	Focus(w Window) error
	Restack(order []Window) error
	SetBorderColor(w Window, color uint32) error
	WarpPointer(p geometry.Point) error
	Close(w Window) error
	Kill(w Window) error

	ShowFeedback(r geometry.Rectangle, color uint32) (Window, error)
	HideFeedback(w Window) error

	SetWindowStates(w Window, states []string) error
	SetWindowDesktop(w Window, desktop int) error
	PublishDesktops(names []string, current int) error
	PublishActive(w Window) error
	PublishClientList(ws []Window) error
}

// Loop drives a Backend. Run dispatches translated events to handle until
// ctx is done. Post schedules fn to run on the loop goroutine; it is safe
// to call from any goroutine.
type Loop interface {
	Run(ctx context.Context, handle func(Event)) error
	Post(fn func())
}
