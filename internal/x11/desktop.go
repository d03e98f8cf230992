package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/lmburns/lwm/internal/geometry"
)

// SetDesktops publishes the desktop names and the current desktop.
func (c *Connection) SetDesktops(names []string, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(names))); err != nil {
		return fmt.Errorf("failed to set desktop count: %w", err)
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return fmt.Errorf("failed to set desktop names: %w", err)
	}
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(current)); err != nil {
		return fmt.Errorf("failed to set current desktop: %w", err)
	}
	return nil
}

// SetWindowDesktop records the desktop a window is on in _NET_WM_DESKTOP.
func (c *Connection) SetWindowDesktop(windowID xproto.Window, desktop int) error {
	return ewmh.WmDesktopSet(c.XUtil, windowID, uint(desktop))
}

func (c *Connection) SetWindowStates(windowID xproto.Window, states []string) error {
	return ewmh.WmStateSet(c.XUtil, windowID, states)
}

// SetActive publishes _NET_ACTIVE_WINDOW. WindowNone clears it.
func (c *Connection) SetActive(windowID xproto.Window) error {
	return ewmh.ActiveWindowSet(c.XUtil, windowID)
}

func (c *Connection) SetClientList(windows []xproto.Window) error {
	return ewmh.ClientListSet(c.XUtil, windows)
}

// AtomName resolves an atom, returning "" for unknown atoms.
func (c *Connection) AtomName(atom xproto.Atom) string {
	name, err := xprop.AtomName(c.XUtil, atom)
	if err != nil {
		return ""
	}
	return name
}

// CreateFeedback maps an override-redirect window filled with color over r.
// It is used to preview where the next window will go.
func (c *Connection) CreateFeedback(r geometry.Rectangle, color uint32) (xproto.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate feedback window: %w", err)
	}
	w, h := inner(r, 0)
	err = win.CreateChecked(c.Root, r.X, r.Y, int(w), int(h),
		xproto.CwBackPixel|xproto.CwOverrideRedirect, color, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to create feedback window: %w", err)
	}
	win.Map()
	if err := c.Raise(win.Id); err != nil {
		return win.Id, err
	}
	return win.Id, nil
}

// DestroyWindow destroys a window the window manager created.
func (c *Connection) DestroyWindow(windowID xproto.Window) error {
	return xproto.DestroyWindowChecked(c.XUtil.Conn(), windowID).Check()
}
