//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/x11"
)

// ErrLoopStopped is returned by Run when the X connection goes away.
var ErrLoopStopped = errors.New("x11 event loop stopped")

// LinuxBackend drives an X11 display as its window manager.
type LinuxBackend struct {
	conn *x11.Connection
	log  *slog.Logger

	posts    chan func()
	done     chan struct{}
	doneOnce sync.Once
	handle   func(Event)
}

var (
	_ Backend = (*LinuxBackend)(nil)
	_ Loop    = (*LinuxBackend)(nil)
)

// NewLinuxBackend wraps a connection that already holds the window manager
// selection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{
		conn:  conn,
		log:   logger,
		posts: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

// NewLinuxBackendFromDisplay connects to $DISPLAY and becomes its window
// manager.
func NewLinuxBackendFromDisplay(name string, logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.BecomeWM(name); err != nil {
		conn.Close()
		return nil, err
	}
	return NewLinuxBackend(conn, logger), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Run dispatches X events to handle until ctx is done. Event callbacks and
// posted functions never run at the same time.
func (b *LinuxBackend) Run(ctx context.Context, handle func(Event)) error {
	defer b.doneOnce.Do(func() { close(b.done) })

	xu := b.conn.XUtil
	b.handle = handle
	xevent.ErrorHandlerSet(xu, func(err xgb.Error) {
		b.log.Debug("x11 request failed", "error", err)
	})
	xevent.HookFun(b.dispatch).Connect(xu)

	before, after, quit := xevent.MainPing(xu)
	for {
		select {
		case <-before:
			<-after
		case fn := <-b.posts:
			fn()
		case <-quit:
			return ErrLoopStopped
		case <-ctx.Done():
			xevent.Quit(xu)
			return nil
		}
	}
}

// Post schedules fn on the loop goroutine. It is dropped once the loop
// has stopped.
func (b *LinuxBackend) Post(fn func()) {
	select {
	case b.posts <- fn:
	case <-b.done:
	}
}

// Emit hands an event to the loop's handler. It must be called from an
// xevent callback.
func (b *LinuxBackend) Emit(ev Event) {
	if b.handle != nil {
		b.handle(ev)
	}
}

func (b *LinuxBackend) dispatch(xu *xgbutil.XUtil, raw interface{}) bool {
	if ev, ok := b.translate(raw); ok {
		b.Emit(ev)
	}
	return true
}

func (b *LinuxBackend) translate(raw interface{}) (Event, bool) {
	root := b.conn.Root
	switch e := raw.(type) {
	case xproto.MapRequestEvent:
		return Event{Kind: MapRequest, Window: Window(e.Window)}, true

	case xproto.UnmapNotifyEvent:
		if e.Event != root || e.FromConfigure {
			return Event{}, false
		}
		return Event{Kind: UnmapNotify, Window: Window(e.Window)}, true

	case xproto.DestroyNotifyEvent:
		if e.Event != root {
			return Event{}, false
		}
		return Event{Kind: DestroyNotify, Window: Window(e.Window)}, true

	case xproto.ConfigureRequestEvent:
		return b.configureRequest(e), true

	case xproto.FocusInEvent:
		if e.Mode == xproto.NotifyModeGrab || e.Mode == xproto.NotifyModeUngrab ||
			e.Detail == xproto.NotifyDetailPointer {
			return Event{}, false
		}
		return Event{Kind: FocusIn, Window: Window(e.Event)}, true

	case xproto.EnterNotifyEvent:
		if e.Mode != xproto.NotifyModeNormal || e.Detail == xproto.NotifyDetailInferior {
			return Event{}, false
		}
		return Event{
			Kind:    EnterNotify,
			Window:  Window(e.Event),
			Pointer: geometry.Point{X: int(e.RootX), Y: int(e.RootY)},
		}, true

	case xproto.PropertyNotifyEvent:
		if e.Window == root {
			return Event{}, false
		}
		return Event{Kind: PropertyNotify, Window: Window(e.Window), Property: b.conn.AtomName(e.Atom)}, true

	case xproto.ClientMessageEvent:
		return b.clientMessage(e)

	case randr.ScreenChangeNotifyEvent:
		return Event{Kind: ScreenChange}, true
	}
	return Event{}, false
}

// configureRequest fills the fields a client left out of its request with
// the window's current values.
func (b *LinuxBackend) configureRequest(e xproto.ConfigureRequestEvent) Event {
	r := geometry.Rect(int(e.X), int(e.Y), uint(e.Width), uint(e.Height))
	border := uint(e.BorderWidth)

	const all = xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth |
		xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth
	if e.ValueMask&all != all {
		if cur, bw, err := b.conn.ClientArea(e.Window); err == nil {
			if e.ValueMask&xproto.ConfigWindowX == 0 {
				r.X = cur.X
			}
			if e.ValueMask&xproto.ConfigWindowY == 0 {
				r.Y = cur.Y
			}
			if e.ValueMask&xproto.ConfigWindowWidth == 0 {
				r.W = cur.W
			}
			if e.ValueMask&xproto.ConfigWindowHeight == 0 {
				r.H = cur.H
			}
			if e.ValueMask&xproto.ConfigWindowBorderWidth == 0 {
				border = bw
			}
		}
	}
	return Event{Kind: ConfigureRequest, Window: Window(e.Window), Rect: r, Border: border}
}

func (b *LinuxBackend) clientMessage(e xproto.ClientMessageEvent) (Event, bool) {
	data := e.Data.Data32
	if len(data) < 3 {
		return Event{}, false
	}
	w := Window(e.Window)
	switch b.conn.AtomName(e.Type) {
	case "_NET_WM_STATE":
		ev := Event{Kind: StateRequest, Window: w, Action: StateAction(data[0])}
		for _, a := range data[1:3] {
			if a == 0 {
				continue
			}
			if name := b.conn.AtomName(xproto.Atom(a)); name != "" {
				ev.States = append(ev.States, name)
			}
		}
		return ev, true
	case "_NET_ACTIVE_WINDOW":
		return Event{Kind: ActivateRequest, Window: w}, true
	case "_NET_CLOSE_WINDOW":
		return Event{Kind: CloseRequest, Window: w}, true
	case "_NET_CURRENT_DESKTOP":
		return Event{Kind: DesktopRequest, Window: None, Desktop: int(data[0])}, true
	case "_NET_WM_DESKTOP":
		return Event{Kind: DesktopRequest, Window: w, Desktop: int(data[0])}, true
	}
	return Event{}, false
}

func (b *LinuxBackend) Monitors() ([]Monitor, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	out := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, Monitor{ID: m.ID, Name: m.Name, Bounds: m.Bounds, Usable: m.Usable})
	}
	return out, nil
}

func (b *LinuxBackend) Pointer() (geometry.Point, error) {
	return b.conn.Pointer()
}

func (b *LinuxBackend) ExistingWindows() ([]Window, error) {
	children, err := b.conn.Children()
	if err != nil {
		return nil, err
	}
	out := make([]Window, len(children))
	for i, w := range children {
		out[i] = Window(w)
	}
	return out, nil
}

func (b *LinuxBackend) QueryGeometry(w Window) (geometry.Rectangle, error) {
	return b.conn.Geometry(xproto.Window(w))
}

func (b *LinuxBackend) WindowIdentity(w Window) (Identity, error) {
	info, err := b.conn.WindowInfo(xproto.Window(w))
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Class:     info.Class,
		Instance:  info.Instance,
		Name:      info.Name,
		PID:       info.PID,
		Process:   info.Process,
		Types:     info.Types,
		States:    info.States,
		Transient: Window(info.Transient),
		MinSize:   info.MinSize,
		Urgent:    info.Urgent,
		Unmanaged: info.OverrideRedirect,
	}, nil
}

func (b *LinuxBackend) Manage(w Window) error {
	return b.conn.Listen(xproto.Window(w))
}

func (b *LinuxBackend) ApplyGeometry(w Window, r geometry.Rectangle, border uint) error {
	return b.conn.Configure(xproto.Window(w), r, border)
}

func (b *LinuxBackend) ConfirmGeometry(w Window, r geometry.Rectangle, border uint) error {
	return b.conn.SendConfigureNotify(xproto.Window(w), r, border)
}

func (b *LinuxBackend) Map(w Window) error   { return b.conn.Map(xproto.Window(w)) }
func (b *LinuxBackend) Unmap(w Window) error { return b.conn.Unmap(xproto.Window(w)) }
func (b *LinuxBackend) Focus(w Window) error { return b.conn.Focus(xproto.Window(w)) }

func (b *LinuxBackend) Restack(order []Window) error {
	return b.conn.Restack(toX(order))
}

func (b *LinuxBackend) SetBorderColor(w Window, color uint32) error {
	return b.conn.SetBorderColor(xproto.Window(w), color)
}

func (b *LinuxBackend) WarpPointer(p geometry.Point) error {
	return b.conn.WarpPointer(p)
}

func (b *LinuxBackend) Close(w Window) error { return b.conn.CloseWindow(xproto.Window(w)) }
func (b *LinuxBackend) Kill(w Window) error  { return b.conn.Kill(xproto.Window(w)) }

func (b *LinuxBackend) ShowFeedback(r geometry.Rectangle, color uint32) (Window, error) {
	w, err := b.conn.CreateFeedback(r, color)
	return Window(w), err
}

func (b *LinuxBackend) HideFeedback(w Window) error {
	return b.conn.DestroyWindow(xproto.Window(w))
}

func (b *LinuxBackend) SetWindowStates(w Window, states []string) error {
	return b.conn.SetWindowStates(xproto.Window(w), states)
}

func (b *LinuxBackend) SetWindowDesktop(w Window, desktop int) error {
	return b.conn.SetWindowDesktop(xproto.Window(w), desktop)
}

func (b *LinuxBackend) PublishDesktops(names []string, current int) error {
	return b.conn.SetDesktops(names, current)
}

func (b *LinuxBackend) PublishActive(w Window) error {
	return b.conn.SetActive(xproto.Window(w))
}

func (b *LinuxBackend) PublishClientList(ws []Window) error {
	return b.conn.SetClientList(toX(ws))
}

func toX(ws []Window) []xproto.Window {
	out := make([]xproto.Window, len(ws))
	for i, w := range ws {
		out[i] = xproto.Window(w)
	}
	return out
}
