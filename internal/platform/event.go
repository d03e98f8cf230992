package platform

import "github.com/lmburns/lwm/internal/geometry"

// EventKind enumerates the window system events the manager reacts to.
type EventKind int

const (
	MapRequest EventKind = iota
	UnmapNotify
	DestroyNotify
	ConfigureRequest
	FocusIn
	EnterNotify
	PropertyNotify
	// StateRequest is an EWMH _NET_WM_STATE client message.
	StateRequest
	// ActivateRequest is an EWMH _NET_ACTIVE_WINDOW client message.
	ActivateRequest
	// CloseRequest is an EWMH _NET_CLOSE_WINDOW client message.
	CloseRequest
	// DesktopRequest is _NET_CURRENT_DESKTOP or _NET_WM_DESKTOP.
	DesktopRequest
	ScreenChange
	// KeyCommand is a bound key press carrying its command line.
	KeyCommand
)

var kindNames = [...]string{
	MapRequest:       "map_request",
	UnmapNotify:      "unmap_notify",
	DestroyNotify:    "destroy_notify",
	ConfigureRequest: "configure_request",
	FocusIn:          "focus_in",
	EnterNotify:      "enter_notify",
	PropertyNotify:   "property_notify",
	StateRequest:     "state_request",
	ActivateRequest:  "activate_request",
	CloseRequest:     "close_request",
	DesktopRequest:   "desktop_request",
	ScreenChange:     "screen_change",
	KeyCommand:       "key_command",
}

func (k EventKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// StateAction is the _NET_WM_STATE action field.
type StateAction int

const (
	StateRemove StateAction = iota
	StateAdd
	StateToggle
)

// Event is a translated window system event. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind   EventKind
	Window Window

	// ConfigureRequest: the requested client area and border width.
	Rect   geometry.Rectangle
	Border uint

	// PropertyNotify
	Property string

	// StateRequest
	Action StateAction
	States []string

	// DesktopRequest: Window is None when switching the current desktop.
	Desktop int

	// EnterNotify
	Pointer geometry.Point

	// KeyCommand
	Command string
}
